package models

import (
	"time"
)

// Route is a single routing request between two coordinates, resolved or
// in flight. A route is resolved once Calculated is set and JSON is non-nil;
// JSONUnsmoothed set with JSON still nil is a mid-computation checkpoint.
type Route struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Requested  time.Time  `json:"requested"`
	Calculated *time.Time `json:"calculated"`

	// Optional reference to an exported route file.
	File *string `json:"file,omitempty"`

	// Human-readable error or informational text, set by the computation
	// task on failure.
	Info *string `json:"info,omitempty"`

	MeshID *uint `json:"mesh_id"`
	Mesh   *Mesh `json:"-"`

	StartLat  float64 `json:"start_lat"`
	StartLon  float64 `json:"start_lon"`
	EndLat    float64 `json:"end_lat"`
	EndLon    float64 `json:"end_lon"`
	StartName *string `json:"start_name,omitempty"`
	EndName   *string `json:"end_name,omitempty"`

	// Unsmoothed path checkpoint, persisted before smoothing begins.
	JSONUnsmoothed []byte `gorm:"column:json_unsmoothed;type:bytea" json:"-"`

	// Final smoothed route geometry (GeoJSON).
	JSON []byte `gorm:"column:json;type:bytea" json:"-"`

	PlannerVersion *string `json:"planner_version,omitempty"`
}

// Resolved reports whether the route has a completed calculation.
func (r *Route) Resolved() bool {
	return r.Calculated != nil && len(r.JSON) > 0
}
