package models

import (
	"time"
)

// Mesh is a vessel mesh covering a geographic region. Meshes are created by
// the ingest task and are immutable once stored; the MD5 checksum of the
// source artifact keys ingestion idempotence.
type Mesh struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	MD5     string    `gorm:"size:32;uniqueIndex" json:"md5"`
	Created time.Time `json:"created"`

	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`

	// Raw vessel mesh document, consumed opaquely by the planner engine.
	JSON []byte `gorm:"column:json;type:bytea" json:"-"`

	// Size ranks overlapping meshes: bounding-box area in square degrees.
	// Smaller means more specific.
	Size float64 `json:"size"`

	Name            string `json:"name"`
	MeshiphiVersion string `json:"meshiphi_version"`
}

// Contains reports whether the point lies within the mesh's bounding box.
// All four bounds are inclusive.
func (m *Mesh) Contains(lat, lon float64) bool {
	return m.LatMin <= lat && lat <= m.LatMax &&
		m.LonMin <= lon && lon <= m.LonMax
}
