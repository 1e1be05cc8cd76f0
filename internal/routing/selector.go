package routing

import (
	"sort"

	"gorm.io/gorm"

	"routebroker/internal/models"
)

// SelectMesh finds the most suitable meshes for a pair of start and end
// coordinates. Candidates must contain both points (bounding-box bounds
// inclusive); of those, only meshes created on the most recent creation date
// are kept, ordered smallest extent first so the most specific mesh leads.
// Returns an empty slice when no mesh contains both points.
func SelectMesh(db *gorm.DB, startLat, startLon, endLat, endLon float64) ([]models.Mesh, error) {
	var containing []models.Mesh
	err := db.
		Where("lat_min <= ? AND lat_max >= ? AND lon_min <= ? AND lon_max >= ?",
			startLat, startLat, startLon, startLon).
		Where("lat_min <= ? AND lat_max >= ? AND lon_min <= ? AND lon_max >= ?",
			endLat, endLat, endLon, endLon).
		Order("id").
		Find(&containing).Error
	if err != nil {
		return nil, err
	}
	if len(containing) == 0 {
		return nil, nil
	}

	// Latest creation calendar date among the containing meshes, time of
	// day discarded.
	latest := containing[0].Created
	for _, m := range containing[1:] {
		if m.Created.After(latest) {
			latest = m.Created
		}
	}
	latestY, latestM, latestD := latest.UTC().Date()

	valid := make([]models.Mesh, 0, len(containing))
	for _, m := range containing {
		y, mo, d := m.Created.UTC().Date()
		if y == latestY && mo == latestM && d == latestD {
			valid = append(valid, m)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Size != valid[j].Size {
			return valid[i].Size < valid[j].Size
		}
		return valid[i].ID < valid[j].ID
	})

	return valid, nil
}
