package main

import (
	"log"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"routebroker/internal/config"
	"routebroker/internal/controllers"
	"routebroker/internal/logger"
	"routebroker/internal/middleware"
	"routebroker/internal/planner"
	"routebroker/internal/routes"
	"routebroker/internal/tasks"
)

func main() {
	// Initialize structured logging to file and console
	logger.Setup()

	cfg := config.Load()

	// Connect to the database
	config.InitDB()
	db := config.GetDB()

	exec := tasks.NewExecutor(cfg.WorkerCount, 100)
	exec.Start()
	defer exec.Shutdown()

	jobs := tasks.NewService(db, exec, planner.NewGreatCircle(), cfg.MeshPath)

	// Periodic mesh ingest, independent of request handling. A failed run
	// is logged and retried on the next tick.
	go func() {
		ticker := time.NewTicker(cfg.MeshImportInterval)
		defer ticker.Stop()
		for range ticker.C {
			added, err := tasks.ImportNewMeshes(db, cfg.MeshDir)
			if err != nil {
				logrus.WithError(err).Error("mesh import failed")
				continue
			}
			if len(added) > 0 {
				logrus.Infof("mesh import added %d new meshes", len(added))
			}
		}
	}()

	rc := controllers.NewRouteController(db, jobs, cfg.ToleranceNM)
	r := routes.SetupRouter(rc)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	logrus.Infof("Server running at %s", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, handler))
}
