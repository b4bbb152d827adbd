// Package tzlookup resolves IANA timezone names from coordinates using
// timezone boundary polygons stored in SQLite.
package tzlookup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotProvisioned is returned when the timezone_zones table is missing.
	ErrNotProvisioned = errors.New("timezone boundaries not provisioned")
	// ErrNoZone is returned for coordinates no zone can be assigned to.
	ErrNoZone = errors.New("no timezone for coordinates")
)

// Resolver maps a coordinate to an IANA timezone name.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, lat, lon float64) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	return f(ctx, lat, lon)
}

// ShapeResolver looks coordinates up in the timezone_zones table.
type ShapeResolver struct {
	db *sql.DB
}

// NewShapeResolver creates a resolver backed by db.
func NewShapeResolver(db *sql.DB) *ShapeResolver {
	return &ShapeResolver{db: db}
}

// Resolve returns the timezone containing the point. Points outside every
// polygon (open ocean) get the nautical zone for their longitude.
func (r *ShapeResolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("%w: %v,%v", ErrNoZone, lat, lon)
	}

	provisioned, err := tableExists(ctx, r.db)
	if err != nil {
		return "", err
	}
	if !provisioned {
		return "", ErrNotProvisioned
	}

	// Smallest boxes first so enclaves win over the zone surrounding them.
	rows, err := r.db.QueryContext(ctx, `
		SELECT tzid, geometry
		FROM timezone_zones
		WHERE bbox_min_lat <= ? AND bbox_max_lat >= ?
		  AND bbox_min_lon <= ? AND bbox_max_lon >= ?
		ORDER BY (bbox_max_lat - bbox_min_lat) * (bbox_max_lon - bbox_min_lon) ASC
	`, lat, lat, lon, lon)
	if err != nil {
		return "", fmt.Errorf("querying timezone candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tzid, geometry string
		if err := rows.Scan(&tzid, &geometry); err != nil {
			return "", fmt.Errorf("scanning timezone candidate: %w", err)
		}

		var rings [][][2]float64
		if err := json.Unmarshal([]byte(geometry), &rings); err != nil {
			continue
		}
		if containsPoint(rings, lon, lat) {
			return tzid, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading timezone candidates: %w", err)
	}

	return NauticalZone(lon), nil
}

// containsPoint applies the even-odd rule across every ring, so holes and
// multipart polygons are handled without knowing ring orientation.
func containsPoint(rings [][][2]float64, x, y float64) bool {
	inside := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

// NauticalZone returns the Etc/GMT zone for a longitude. IANA inverts the
// sign, so 105W is Etc/GMT+7.
func NauticalZone(lon float64) string {
	n := int(math.Round(lon / 15))
	if n == 0 {
		return "UTC"
	}
	return fmt.Sprintf("Etc/GMT%+d", -n)
}

func tableExists(ctx context.Context, db *sql.DB) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='timezone_zones'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for timezone_zones table: %w", err)
	}
	return count > 0, nil
}
