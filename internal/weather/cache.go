package weather

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
)

// DefaultTTL is how long a cached forecast is served.
const DefaultTTL = 60 * time.Minute

// ErrFetch wraps failures of the live weather source.
var ErrFetch = errors.New("weather fetch failed")

// RoundCoord rounds to two decimal places, roughly 1 km.
func RoundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// Cache serves weather from SQLite, refetching entries older than the TTL.
type Cache struct {
	db      *sql.DB
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.SugaredLogger
	mu      sync.Mutex
}

// NewCache creates a cache in front of fetcher. A ttl of zero uses
// DefaultTTL.
func NewCache(db *sql.DB, fetcher Fetcher, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{db: db, fetcher: fetcher, ttl: ttl, now: time.Now, logger: logger}
}

// Get returns weather for the rounded coordinates, fetching and storing it
// when there is no fresh entry. Fetch failures are returned wrapped in
// ErrFetch and nothing is cached.
func (c *Cache) Get(ctx context.Context, lat, lon float64) (*models.WeatherData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lat, lon = RoundCoord(lat), RoundCoord(lon)
	now := c.now()

	if data, ok := c.lookup(ctx, lat, lon, now); ok {
		return data, nil
	}

	data, err := c.fetcher.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	data.FetchedAt = now
	data.FromCache = false

	if err := c.store(ctx, lat, lon, data); err != nil {
		c.logger.Warnf("caching weather for %.2f,%.2f: %v", lat, lon, err)
	}
	return data, nil
}

// lookup returns a fresh, decodable entry. Anything else is a miss.
func (c *Cache) lookup(ctx context.Context, lat, lon float64, now time.Time) (*models.WeatherData, bool) {
	var (
		blob      []byte
		fetchedAt string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT data, fetched_at FROM weather_cache WHERE latitude = ? AND longitude = ?",
		lat, lon).Scan(&blob, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warnf("reading weather cache: %v", err)
		}
		return nil, false
	}

	fetched, err := database.ParseTime(fetchedAt)
	if err != nil || now.Sub(fetched) > c.ttl {
		return nil, false
	}

	var data models.WeatherData
	if err := msgpack.Unmarshal(blob, &data); err != nil {
		c.logger.Warnf("decoding cached weather for %.2f,%.2f: %v", lat, lon, err)
		return nil, false
	}
	data.FromCache = true
	return &data, true
}

func (c *Cache) store(ctx context.Context, lat, lon float64, data *models.WeatherData) error {
	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding weather: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO weather_cache (latitude, longitude, data, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(latitude, longitude) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, lat, lon, blob, database.FormatTime(data.FetchedAt))
	return err
}

// Invalidate drops the entry for the rounded coordinates.
func (c *Cache) Invalidate(ctx context.Context, lat, lon float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM weather_cache WHERE latitude = ? AND longitude = ?",
		RoundCoord(lat), RoundCoord(lon))
	if err != nil {
		return fmt.Errorf("invalidating weather cache: %w", err)
	}
	return nil
}

// PurgeExpired removes entries older than the TTL and returns how many.
func (c *Cache) PurgeExpired(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := database.FormatTime(c.now().Add(-c.ttl))
	res, err := c.db.ExecContext(ctx, "DELETE FROM weather_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging weather cache: %w", err)
	}
	return res.RowsAffected()
}

// Clear empties the cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.ExecContext(ctx, "DELETE FROM weather_cache"); err != nil {
		return fmt.Errorf("clearing weather cache: %w", err)
	}
	return nil
}
