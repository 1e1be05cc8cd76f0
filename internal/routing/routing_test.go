package routing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"routebroker/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Mesh{}, &models.Route{}, &models.Job{}))
	return db
}

func addMesh(t *testing.T, db *gorm.DB, md5 string, latMin, latMax, lonMin, lonMax float64, created time.Time) models.Mesh {
	t.Helper()

	mesh := models.Mesh{
		MD5:     md5,
		Created: created,
		LatMin:  latMin,
		LatMax:  latMax,
		LonMin:  lonMin,
		LonMax:  lonMax,
		Size:    (latMax - latMin) * (lonMax - lonMin),
		Name:    md5 + ".vessel.json",
	}
	require.NoError(t, db.Create(&mesh).Error)
	return mesh
}

func addRoute(t *testing.T, db *gorm.DB, meshID uint, startLat, startLon, endLat, endLon float64) models.Route {
	t.Helper()

	route := models.Route{
		Requested: time.Now().UTC(),
		MeshID:    &meshID,
		StartLat:  startLat,
		StartLon:  startLon,
		EndLat:    endLat,
		EndLon:    endLon,
	}
	require.NoError(t, db.Create(&route).Error)
	return route
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
