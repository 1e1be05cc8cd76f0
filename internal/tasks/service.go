package tasks

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"routebroker/internal/models"
	"routebroker/internal/planner"
)

// Service ties route computation jobs together: it dispatches work to the
// executor, records Job rows, and answers status queries by merging the
// executor's live task state with the route's stored fields.
type Service struct {
	db     *gorm.DB
	exec   *Executor
	engine planner.Engine

	// Fallback vessel mesh file used when a route has no stored mesh.
	meshPath string
}

func NewService(db *gorm.DB, exec *Executor, engine planner.Engine, meshPath string) *Service {
	return &Service{db: db, exec: exec, engine: engine, meshPath: meshPath}
}

// Dispatch submits asynchronous computation for route and records the Job.
// Call once per new-work decision: one created route, or one forced
// recalculation.
func (s *Service) Dispatch(route *models.Route) (*models.Job, error) {
	routeID := route.ID
	taskID := s.exec.Submit(func() error {
		return s.OptimiseRoute(routeID)
	})

	job := &models.Job{
		ID:      taskID,
		Created: time.Now().UTC(),
		RouteID: routeID,
	}
	if err := s.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// JobStatus is a job's live execution state joined with its route snapshot.
type JobStatus struct {
	Job   *models.Job
	State State
	Route *models.Route
}

// Status returns the live state of the job with the given id together with
// the current stored route fields, including any checkpointed geometry.
// Returns gorm.ErrRecordNotFound when no such job was ever recorded.
func (s *Service) Status(id uuid.UUID) (*JobStatus, error) {
	var job models.Job
	if err := s.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var route models.Route
	if err := s.db.First(&route, job.RouteID).Error; err != nil {
		return nil, err
	}

	return &JobStatus{Job: &job, State: s.exec.State(id), Route: &route}, nil
}

// Cancel requests revocation of the job's task. Queued work will not start;
// work already running is not interrupted.
func (s *Service) Cancel(id uuid.UUID) {
	s.exec.Revoke(id)
}

// RecentRoutes returns, for every route requested on the current UTC
// calendar day, its latest job and that job's live state. Routes without any
// recorded job are skipped. Timestamps are stored in UTC, so the day
// boundaries are UTC too.
func (s *Service) RecentRoutes(now time.Time) ([]JobStatus, error) {
	now = now.UTC()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var routes []models.Route
	err := s.db.
		Where("requested >= ? AND requested < ?", dayStart, dayEnd).
		Order("id").
		Find(&routes).Error
	if err != nil {
		return nil, err
	}

	statuses := make([]JobStatus, 0, len(routes))
	for i := range routes {
		route := &routes[i]

		var job models.Job
		err := s.db.
			Where("route_id = ?", route.ID).
			Order("created DESC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		statuses = append(statuses, JobStatus{
			Job:   &job,
			State: s.exec.State(job.ID),
			Route: route,
		})
	}
	return statuses, nil
}
