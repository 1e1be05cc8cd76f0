package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings consumed by the route broker.
type Config struct {
	ServerAddr string

	// Directory scanned for mesh upload manifests and artifacts.
	MeshDir string
	// Fallback vessel mesh file used when a route has no stored mesh.
	MeshPath string

	// Fuzzy route matching tolerance in nautical miles.
	ToleranceNM float64

	WorkerCount        int
	MeshImportInterval time.Duration
}

// Load reads configuration from the environment, with a .env file if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	return &Config{
		ServerAddr:         getEnv("SERVER_ADDR", "0.0.0.0:8080"),
		MeshDir:            getEnv("MESH_DIR", "./meshes"),
		MeshPath:           getEnv("MESH_PATH", ""),
		ToleranceNM:        getEnvFloat("WAYPOINT_TOLERANCE_NM", 10),
		WorkerCount:        getEnvInt("WORKER_COUNT", 2),
		MeshImportInterval: time.Duration(getEnvInt("MESH_IMPORT_INTERVAL_MINUTES", 10)) * time.Minute,
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid value for %s: %q, using default %d", key, v, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s: %q, using default %g", key, v, defaultValue)
	}
	return defaultValue
}
