package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"routebroker/internal/models"
	"routebroker/internal/planner"
)

// OptimiseRoute computes the geometry for a stored route. The unsmoothed
// path is persisted as a checkpoint together with the calculation timestamp
// and engine version before smoothing begins, so a smoothing failure cannot
// lose it. On any failure the error text is recorded on the route's Info
// field and the error is returned, which the executor turns into FAILURE.
// Failures are terminal per job; retrying takes a new request or a forced
// recalculation.
func (s *Service) OptimiseRoute(routeID uint) error {
	if err := s.optimise(routeID); err != nil {
		logrus.WithError(err).Errorf("route %d: computation failed", routeID)
		if dbErr := s.db.Model(&models.Route{}).
			Where("id = ?", routeID).
			Update("info", err.Error()).Error; dbErr != nil {
			logrus.WithError(dbErr).Errorf("route %d: recording failure", routeID)
		}
		return err
	}
	return nil
}

func (s *Service) optimise(routeID uint) error {
	var route models.Route
	if err := s.db.First(&route, routeID).Error; err != nil {
		return fmt.Errorf("loading route %d: %w", routeID, err)
	}

	mesh, err := s.loadMesh(&route)
	if err != nil {
		return err
	}

	start := planner.Waypoint{
		Name: nameOrDefault(route.StartName, "Start"),
		Lat:  route.StartLat,
		Lon:  route.StartLon,
	}
	end := planner.Waypoint{
		Name: nameOrDefault(route.EndName, "End"),
		Lat:  route.EndLat,
		Lon:  route.EndLon,
	}

	unsmoothed, err := s.engine.Compute(mesh, start, end)
	if err != nil {
		return fmt.Errorf("computing route: %w", err)
	}

	logrus.Infof("route %d: saving unsmoothed path", route.ID)
	version := s.engine.Version()
	err = s.db.Model(&route).Updates(map[string]interface{}{
		"json_unsmoothed": []byte(unsmoothed),
		"calculated":      time.Now().UTC(),
		"planner_version": version,
	}).Error
	if err != nil {
		return fmt.Errorf("saving unsmoothed path: %w", err)
	}

	smoothed, err := s.engine.Smooth(mesh, unsmoothed)
	if err != nil {
		return fmt.Errorf("smoothing route: %w", err)
	}

	logrus.Infof("route %d: smoothing complete", route.ID)
	err = s.db.Model(&route).Updates(map[string]interface{}{
		"json":            []byte(smoothed),
		"calculated":      time.Now().UTC(),
		"planner_version": version,
	}).Error
	if err != nil {
		return fmt.Errorf("saving smoothed route: %w", err)
	}
	return nil
}

// loadMesh returns the vessel mesh document for the route: from the store
// when the route references a mesh, otherwise from the configured default
// mesh file.
func (s *Service) loadMesh(route *models.Route) (json.RawMessage, error) {
	if route.MeshID != nil {
		logrus.Infof("route %d: loading mesh %d from database", route.ID, *route.MeshID)
		var mesh models.Mesh
		if err := s.db.First(&mesh, *route.MeshID).Error; err != nil {
			return nil, fmt.Errorf("loading mesh %d: %w", *route.MeshID, err)
		}
		return mesh.JSON, nil
	}

	if s.meshPath == "" {
		return nil, errors.New("route has no mesh and no default mesh file is configured")
	}
	logrus.Infof("route %d: loading mesh file %s", route.ID, s.meshPath)
	doc, err := os.ReadFile(s.meshPath)
	if err != nil {
		return nil, fmt.Errorf("loading mesh file %s: %w", s.meshPath, err)
	}
	return doc, nil
}

func nameOrDefault(name *string, fallback string) string {
	if name != nil && *name != "" {
		return *name
	}
	return fallback
}
