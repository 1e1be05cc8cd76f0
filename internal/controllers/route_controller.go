package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"routebroker/internal/models"
	"routebroker/internal/routing"
	"routebroker/internal/tasks"
)

const preexistingRouteInfo = "Pre-existing route found and returned. " +
	"To force new calculation, include 'force_recalculate': true in POST request."

// RouteController serves the route request, status, cancel and recent-routes
// endpoints.
type RouteController struct {
	DB          *gorm.DB
	Jobs        *tasks.Service
	ToleranceNM float64
}

func NewRouteController(db *gorm.DB, jobs *tasks.Service, toleranceNM float64) *RouteController {
	return &RouteController{DB: db, Jobs: jobs, ToleranceNM: toleranceNM}
}

type routeRequest struct {
	StartLat         *float64 `json:"start_lat" binding:"required"`
	StartLon         *float64 `json:"start_lon" binding:"required"`
	EndLat           *float64 `json:"end_lat" binding:"required"`
	EndLon           *float64 `json:"end_lon" binding:"required"`
	StartName        string   `json:"start_name"`
	EndName          string   `json:"end_name"`
	ForceRecalculate bool     `json:"force_recalculate"`
}

// RequestRoute is the entry point for route requests. It selects a mesh,
// returns a matching pre-computed route when one exists, and otherwise
// creates a route and dispatches its computation.
func (rc *RouteController) RequestRoute(c *gin.Context) {
	var input routeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("RequestRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	startLat, startLon := *input.StartLat, *input.StartLon
	endLat, endLon := *input.EndLat, *input.EndLon

	logrus.Infof("%s %s from %s: start(%g,%g) end(%g,%g)",
		c.Request.Method, c.Request.URL.Path, c.ClientIP(), startLat, startLon, endLat, endLon)

	meshes, err := routing.SelectMesh(rc.DB, startLat, startLon, endLat, endLon)
	if err != nil {
		logrus.WithError(err).Error("RequestRoute: mesh selection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mesh selection failed"})
		return
	}

	// No suitable mesh is a normal structured failure, not a transport
	// error.
	if len(meshes) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"info":   gin.H{"error": "No suitable mesh available."},
			"status": "FAILURE",
		})
		return
	}

	existing, err := routing.FindExistingRoute(rc.DB, meshes, startLat, startLon, endLat, endLon, rc.ToleranceNM)
	if err != nil {
		logrus.WithError(err).Error("RequestRoute: route lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "route lookup failed"})
		return
	}

	if existing != nil {
		if !input.ForceRecalculate {
			logrus.Infof("Existing route found: %d", existing.ID)
			rc.respondExistingRoute(c, existing)
			return
		}
		logrus.Infof("Found existing route %d but got force_recalculate=true, beginning recalculation", existing.ID)
	}

	meshID := meshes[0].ID
	route := models.Route{
		Requested: time.Now().UTC(),
		MeshID:    &meshID,
		StartLat:  startLat,
		StartLon:  startLon,
		EndLat:    endLat,
		EndLon:    endLon,
		StartName: optionalString(input.StartName),
		EndName:   optionalString(input.EndName),
	}
	if err := rc.DB.Create(&route).Error; err != nil {
		logrus.WithError(err).Error("RequestRoute: creating route failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating route failed"})
		return
	}

	job, err := rc.Jobs.Dispatch(&route)
	if err != nil {
		logrus.WithError(err).Error("RequestRoute: dispatch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":         job.ID.String(),
		"status-url": statusURL(c, job.ID),
	})
}

// respondExistingRoute returns a matched route together with its latest job
// id. A matched route without any recorded job gets a fresh job dispatched
// for it so the status URL stays meaningful.
func (rc *RouteController) respondExistingRoute(c *gin.Context, route *models.Route) {
	var job models.Job
	err := rc.DB.Where("route_id = ?", route.ID).Order("created DESC").First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dispatched, dispatchErr := rc.Jobs.Dispatch(route)
		if dispatchErr != nil {
			logrus.WithError(dispatchErr).Error("RequestRoute: dispatch for matched route failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
			return
		}
		job = *dispatched
	} else if err != nil {
		logrus.WithError(err).Error("RequestRoute: job lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed"})
		return
	}

	data := routePayload(route)
	data["info"] = gin.H{"info": preexistingRouteInfo}
	data["id"] = job.ID.String()
	data["status-url"] = statusURL(c, job.ID)

	c.JSON(http.StatusAccepted, data)
}

// RouteStatus returns the live status of a route calculation and the route
// itself so far, including any checkpointed geometry.
func (rc *RouteController) RouteStatus(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	status, err := rc.Jobs.Status(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("RouteStatus: status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}

	c.JSON(http.StatusOK, statusPayload(status))
}

// CancelRoute requests cancellation of a route calculation. Best-effort:
// always acknowledged, but running work is not interrupted.
func (rc *RouteController) CancelRoute(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	rc.Jobs.Cancel(id)
	c.JSON(http.StatusAccepted, gin.H{})
}

// RecentRoutes lists every route requested today with its latest job and
// live status.
func (rc *RouteController) RecentRoutes(c *gin.Context) {
	statuses, err := rc.Jobs.RecentRoutes(time.Now())
	if err != nil {
		logrus.WithError(err).Error("RecentRoutes: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recent routes lookup failed"})
		return
	}

	payload := make([]gin.H, 0, len(statuses))
	for i := range statuses {
		payload = append(payload, statusPayload(&statuses[i]))
	}
	c.JSON(http.StatusOK, payload)
}

func jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return uuid.UUID{}, false
	}
	return id, true
}

func statusPayload(status *tasks.JobStatus) gin.H {
	data := routePayload(status.Route)
	data["id"] = status.Job.ID.String()
	data["status"] = string(status.State)
	if status.State == tasks.StateFailure && status.Route.Info != nil {
		data["error"] = *status.Route.Info
	}
	return data
}

func routePayload(r *models.Route) gin.H {
	data := gin.H{
		"requested":       r.Requested,
		"calculated":      r.Calculated,
		"mesh_id":         r.MeshID,
		"start_lat":       r.StartLat,
		"start_lon":       r.StartLon,
		"end_lat":         r.EndLat,
		"end_lon":         r.EndLon,
		"start_name":      r.StartName,
		"end_name":        r.EndName,
		"planner_version": r.PlannerVersion,
	}
	if len(r.JSON) > 0 {
		data["json"] = json.RawMessage(r.JSON)
	}
	if len(r.JSONUnsmoothed) > 0 {
		data["json_unsmoothed"] = json.RawMessage(r.JSONUnsmoothed)
	}
	return data
}

func statusURL(c *gin.Context, id uuid.UUID) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/route/%s", scheme, c.Request.Host, id)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
