package models

import (
	"time"

	"github.com/google/uuid"
)

// Job records one dispatch of asynchronous route computation. Its ID is the
// task id assigned by the executor, so live status is always derived by
// querying the executor rather than stored here. A route accumulates a new
// Job per recalculation; the one with the latest Created wins status queries.
type Job struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Created time.Time `json:"created"`
	RouteID uint      `json:"route_id"`
	Route   *Route    `json:"-"`
}
