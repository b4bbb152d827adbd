package tzlookup

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"
	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/database"
)

// DefaultShapefileURL is the timezone-boundary-builder release with oceans
// excluded; open water falls back to nautical zones.
const DefaultShapefileURL = "https://github.com/evansiroky/timezone-boundary-builder/releases/download/2025b/timezones.shapefile.zip"

const tzidField = "tzid"

// NeedsProvisioning reports whether the timezone_zones table is missing or
// empty.
func NeedsProvisioning(ctx context.Context, db *sql.DB) (bool, error) {
	exists, err := tableExists(ctx, db)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timezone_zones").Scan(&count); err != nil {
		return false, fmt.Errorf("counting timezone zones: %w", err)
	}
	return count == 0, nil
}

// Provisioner downloads the boundary shapefile and loads it into SQLite.
type Provisioner struct {
	db         *sql.DB
	httpClient *http.Client
	workDir    string
	logger     *zap.SugaredLogger
}

// NewProvisioner creates a provisioner that extracts into workDir.
func NewProvisioner(db *sql.DB, workDir string, logger *zap.SugaredLogger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Provisioner{
		db:         db,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		workDir:    workDir,
		logger:     logger,
	}
}

func report(progress chan<- string, format string, args ...any) {
	if progress == nil {
		return
	}
	progress <- fmt.Sprintf(format, args...)
}

// Provision downloads the zip at url (or reads it from disk when url is a
// local path), extracts it and replaces the contents of timezone_zones.
func (p *Provisioner) Provision(ctx context.Context, url string, progress chan<- string) (int, error) {
	if url == "" {
		url = DefaultShapefileURL
	}
	if err := os.MkdirAll(p.workDir, 0755); err != nil {
		return 0, fmt.Errorf("creating work directory: %w", err)
	}

	zipPath := url
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		zipPath = filepath.Join(p.workDir, "timezones.shapefile.zip")
		report(progress, "Downloading timezone boundaries...")
		p.logger.Infof("downloading timezone boundaries from %s", url)
		if err := p.download(ctx, zipPath, url); err != nil {
			return 0, fmt.Errorf("downloading shapefile: %w", err)
		}
		defer os.Remove(zipPath)
	}

	extractDir, err := os.MkdirTemp(p.workDir, "tz-shapefile-")
	if err != nil {
		return 0, fmt.Errorf("creating extract directory: %w", err)
	}
	defer os.RemoveAll(extractDir)

	report(progress, "Extracting shapefile...")
	shpPath, err := unzipFile(zipPath, extractDir)
	if err != nil {
		return 0, fmt.Errorf("extracting shapefile: %w", err)
	}

	report(progress, "Building timezone database...")
	n, err := LoadShapefile(ctx, p.db, shpPath, progress)
	if err != nil {
		return 0, err
	}
	p.logger.Infof("provisioned %d timezone polygons", n)
	return n, nil
}

func (p *Provisioner) download(ctx context.Context, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// unzipFile extracts src into dest and returns the path of the .shp file.
func unzipFile(src, dest string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var shpPath string
	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)

		// ZipSlip
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return "", fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return "", err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return "", err
		}
		if err := extractOne(f, fpath); err != nil {
			return "", err
		}
		if strings.EqualFold(filepath.Ext(fpath), ".shp") {
			shpPath = fpath
		}
	}
	if shpPath == "" {
		return "", fmt.Errorf("no .shp file in %s", src)
	}
	return shpPath, nil
}

func extractOne(f *zip.File, path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

// LoadShapefile replaces timezone_zones with the polygons in shpPath. The
// attribute table must carry a tzid column. All rows are written in one
// transaction.
func LoadShapefile(ctx context.Context, db *sql.DB, shpPath string, progress chan<- string) (int, error) {
	shape, err := shp.Open(shpPath)
	if err != nil {
		return 0, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	field := -1
	for i, f := range shape.Fields() {
		if strings.EqualFold(f.String(), tzidField) {
			field = i
			break
		}
	}
	if field < 0 {
		return 0, fmt.Errorf("shapefile has no %s field", tzidField)
	}

	count := 0
	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DROP TABLE IF EXISTS timezone_zones;
			CREATE TABLE timezone_zones (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				tzid TEXT NOT NULL,
				geometry TEXT NOT NULL,
				bbox_min_lat REAL NOT NULL,
				bbox_max_lat REAL NOT NULL,
				bbox_min_lon REAL NOT NULL,
				bbox_max_lon REAL NOT NULL
			);
			CREATE INDEX idx_timezone_zones_bbox ON timezone_zones(
				bbox_min_lat, bbox_max_lat, bbox_min_lon, bbox_max_lon
			);
		`); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO timezone_zones (
				tzid, geometry, bbox_min_lat, bbox_max_lat, bbox_min_lon, bbox_max_lon
			) VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for shape.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, s := shape.Shape()
			polygon, ok := s.(*shp.Polygon)
			if !ok {
				continue
			}
			tzid := strings.TrimSpace(shape.ReadAttribute(n, field))
			if tzid == "" {
				continue
			}

			geometry, err := json.Marshal(rings(polygon))
			if err != nil {
				return fmt.Errorf("encoding geometry for %s: %w", tzid, err)
			}

			box := polygon.BBox()
			if _, err := stmt.ExecContext(ctx, tzid, string(geometry),
				box.MinY, box.MaxY, box.MinX, box.MaxX); err != nil {
				return fmt.Errorf("inserting zone %s: %w", tzid, err)
			}

			count++
			if count%50 == 0 {
				report(progress, "Processed %d timezone polygons...", count)
			}
		}
		return shape.Err()
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// rings splits a polygon into its parts as [lon, lat] pairs.
func rings(polygon *shp.Polygon) [][][2]float64 {
	out := make([][][2]float64, 0, len(polygon.Parts))
	for i := range polygon.Parts {
		start := int(polygon.Parts[i])
		end := len(polygon.Points)
		if i+1 < len(polygon.Parts) {
			end = int(polygon.Parts[i+1])
		}
		ring := make([][2]float64, 0, end-start)
		for _, pt := range polygon.Points[start:end] {
			ring = append(ring, [2]float64{pt.X, pt.Y})
		}
		out = append(out, ring)
	}
	return out
}
