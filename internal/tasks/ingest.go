package tasks

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"routebroker/internal/models"
)

// ErrNoManifest is returned when no upload manifest exists in the mesh
// directory. A scheduled ingest run treats this as an operational alarm, not
// a silent no-op.
var ErrNoManifest = errors.New("upload metadata file not found")

const (
	manifestPrefix     = "upload_metadata_"
	manifestSuffix     = ".yaml.gz"
	manifestTimeLayout = "20060102T150405"
	vesselMeshSuffix   = ".vessel.json"
)

type manifest struct {
	Records []manifestRecord `yaml:"records"`
}

type manifestRecord struct {
	FilePath string `yaml:"filepath"`
	MD5      string `yaml:"md5"`
	Created  string `yaml:"created"`
	Meshiphi string `yaml:"meshiphi"`
	LatLong  struct {
		LatMin float64 `yaml:"latmin"`
		LatMax float64 `yaml:"latmax"`
		LonMin float64 `yaml:"lonmin"`
		LonMax float64 `yaml:"lonmax"`
	} `yaml:"latlong"`
}

// AddedMesh describes one mesh inserted by an ingest run.
type AddedMesh struct {
	ID   uint   `json:"id"`
	MD5  string `json:"md5"`
	Name string `json:"name"`
}

// ImportNewMeshes scans meshDir for the most recently modified upload
// manifest and inserts every vessel mesh it lists that is not already
// stored, keyed by checksum. Re-running against an unchanged manifest adds
// nothing. Returns only the newly added meshes.
func ImportNewMeshes(db *gorm.DB, meshDir string) ([]AddedMesh, error) {
	manifestPath, err := latestManifest(meshDir)
	if err != nil {
		return nil, err
	}

	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	var added []AddedMesh
	for _, rec := range m.Records {
		// only vessel mesh documents are ingestible
		if !strings.HasSuffix(rec.FilePath, vesselMeshSuffix) {
			continue
		}
		name := path.Base(rec.FilePath)

		var count int64
		if err := db.Model(&models.Mesh{}).Where("md5 = ?", rec.MD5).Count(&count).Error; err != nil {
			return added, fmt.Errorf("checking for existing mesh %s: %w", rec.MD5, err)
		}
		if count > 0 {
			continue
		}

		created, err := time.Parse(manifestTimeLayout, rec.Created)
		if err != nil {
			return added, fmt.Errorf("parsing created time for %s: %w", name, err)
		}

		doc, err := readMeshDocument(filepath.Join(meshDir, name+".gz"))
		if err != nil {
			return added, err
		}

		mesh := models.Mesh{
			MD5:             rec.MD5,
			Created:         created,
			LatMin:          rec.LatLong.LatMin,
			LatMax:          rec.LatLong.LatMax,
			LonMin:          rec.LatLong.LonMin,
			LonMax:          rec.LatLong.LonMax,
			JSON:            doc,
			Size:            (rec.LatLong.LatMax - rec.LatLong.LatMin) * (rec.LatLong.LonMax - rec.LatLong.LonMin),
			Name:            name,
			MeshiphiVersion: rec.Meshiphi,
		}

		// Unique index on md5 plus do-nothing conflict handling keeps the
		// insert idempotent under concurrent ingest runs.
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "md5"}},
			DoNothing: true,
		}).Create(&mesh)
		if res.Error != nil {
			return added, fmt.Errorf("inserting mesh %s: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}

		logrus.Infof("Adding new mesh to database: %d %s %s", mesh.ID, mesh.Name, mesh.Created)
		added = append(added, AddedMesh{ID: mesh.ID, MD5: rec.MD5, Name: name})
	}
	return added, nil
}

// latestManifest returns the path of the manifest with the newest
// modification time in dir, or ErrNoManifest.
func latestManifest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading mesh directory %s: %w", dir, err)
	}

	var latestPath string
	var latestMod time.Time
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, manifestPrefix) || !strings.HasSuffix(name, manifestSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", err
		}
		if latestPath == "" || info.ModTime().After(latestMod) {
			latestPath = filepath.Join(dir, name)
			latestMod = info.ModTime()
		}
	}

	if latestPath == "" {
		return "", fmt.Errorf("%w in %s", ErrNoManifest, dir)
	}
	return latestPath, nil
}

func readManifest(path string) (*manifest, error) {
	raw, err := readGzip(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

func readMeshDocument(path string) ([]byte, error) {
	raw, err := readGzip(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh document %s: %w", path, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("mesh document %s is not valid JSON", path)
	}
	return raw, nil
}

func readGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
