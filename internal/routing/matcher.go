package routing

import (
	"sort"

	"gorm.io/gorm"

	"routebroker/internal/models"
)

// FindExistingRoute checks whether a route satisfying the request has already
// been calculated. Mesh candidates are walked in selector order; the first
// mesh holding any stored routes decides the outcome, so a later mesh is
// never consulted once one with routes is found. Within that mesh an exact
// coordinate match wins (lowest route id when several exist), otherwise the
// closest route within tolerance is returned, which may be nil.
func FindExistingRoute(db *gorm.DB, meshes []models.Mesh, startLat, startLon, endLat, endLon, toleranceNM float64) (*models.Route, error) {
	for i := range meshes {
		var routes []models.Route
		err := db.Where("mesh_id = ?", meshes[i].ID).Order("id").Find(&routes).Error
		if err != nil {
			return nil, err
		}
		if len(routes) == 0 {
			continue
		}

		for j := range routes {
			r := &routes[j]
			if r.StartLat == startLat && r.StartLon == startLon &&
				r.EndLat == endLat && r.EndLon == endLon {
				// Routes are ordered by id, so the lowest id wins.
				return r, nil
			}
		}

		return ClosestRouteInTolerance(routes, startLat, startLon, endLat, endLon, toleranceNM), nil
	}
	return nil, nil
}

// ClosestRouteInTolerance returns the stored route closest to the requested
// endpoints, or nil if none qualifies. A route qualifies only when the
// request start is strictly within toleranceNM of its start AND the request
// end is strictly within toleranceNM of its end; the two endpoint distances
// are never combined for qualification. Qualifying routes are ranked by the
// sum of the two distances, ties broken by route id.
func ClosestRouteInTolerance(routes []models.Route, startLat, startLon, endLat, endLon, toleranceNM float64) *models.Route {
	type candidate struct {
		route      *models.Route
		cumulative float64
	}

	var qualifying []candidate
	for i := range routes {
		r := &routes[i]
		startDist := haversineNM(startLat, startLon, r.StartLat, r.StartLon)
		endDist := haversineNM(endLat, endLon, r.EndLat, r.EndLon)
		if startDist < toleranceNM && endDist < toleranceNM {
			qualifying = append(qualifying, candidate{route: r, cumulative: startDist + endDist})
		}
	}

	if len(qualifying) == 0 {
		return nil
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		if qualifying[i].cumulative != qualifying[j].cumulative {
			return qualifying[i].cumulative < qualifying[j].cumulative
		}
		return qualifying[i].route.ID < qualifying[j].route.ID
	})

	return qualifying[0].route
}
