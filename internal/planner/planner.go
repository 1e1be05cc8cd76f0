// Package planner defines the boundary to the external route-optimization
// library. The broker never looks inside the computation: it hands over a raw
// vessel mesh document and two waypoints, persists the unsmoothed result as a
// checkpoint, then asks for smoothing.
package planner

import (
	"encoding/json"
)

// Waypoint is one end of a requested route.
type Waypoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// Engine computes routes over a vessel mesh. Compute produces the unsmoothed
// path; Smooth refines it into the final geometry. The two phases are split
// so callers can persist the unsmoothed path before smoothing begins.
// Neither phase has a cancellation point: once running, a computation can
// only be abandoned, not interrupted.
type Engine interface {
	Compute(mesh json.RawMessage, start, end Waypoint) (json.RawMessage, error)
	Smooth(mesh, unsmoothed json.RawMessage) (json.RawMessage, error)
	Version() string
}
