// Package parks stores and searches POTA parks in SQLite.
package parks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/option"
)

const (
	DefaultSearchLimit = 100
	MaxSearchLimit     = 500
)

var referencePattern = regexp.MustCompile(`^[A-Z]+-\d{4,}$`)

// ValidReference reports whether ref looks like "K-0039".
func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}

const parkColumns = `id, reference, name, latitude, longitude, grid_square, state, country,
	entity_id, program_id, location_desc, activation_count, is_active, is_favorite,
	timezone, updated_at`

// Repository is the park store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPark(row scanner) (models.Park, error) {
	var (
		p                                     models.Park
		lat, lon                              sql.NullFloat64
		grid, state, country, entity, program sql.NullString
		locationDesc, timezone                sql.NullString
		updatedAt                             string
	)
	err := row.Scan(&p.ID, &p.Reference, &p.Name, &lat, &lon, &grid, &state, &country,
		&entity, &program, &locationDesc, &p.ActivationCount, &p.IsActive, &p.IsFavorite,
		&timezone, &updatedAt)
	if err != nil {
		return models.Park{}, err
	}

	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lon.Valid {
		p.Longitude = &lon.Float64
	}
	p.GridSquare = grid.String
	p.State = state.String
	p.Country = country.String
	p.EntityID = entity.String
	p.ProgramID = program.String
	p.LocationDesc = locationDesc.String
	p.Timezone = timezone.String
	if t, err := database.ParseTime(updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPredicate builds the WHERE clause shared by the count and page
// queries so they always agree.
func searchPredicate(f models.ParkSearchFilters) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(reference) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.EntityID != "" {
		clauses = append(clauses, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	if f.ProgramID != "" {
		clauses = append(clauses, "program_id = ?")
		args = append(args, f.ProgramID)
	}
	if f.FavoritesOnly {
		clauses = append(clauses, "is_favorite = 1")
	}
	if b := f.Bounds; b != nil {
		clauses = append(clauses, "latitude BETWEEN ? AND ?")
		args = append(args, b.South, b.North)
		if b.West <= b.East {
			clauses = append(clauses, "longitude BETWEEN ? AND ?")
			args = append(args, b.West, b.East)
		} else {
			clauses = append(clauses, "(longitude >= ? OR longitude <= ?)")
			args = append(args, b.West, b.East)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Search returns one page of parks matching f, ordered by name then
// reference, with the total match count.
func (r *Repository) Search(ctx context.Context, f models.ParkSearchFilters) (models.ParkSearchResult, error) {
	limit, offset := clampPage(f.Limit, f.Offset, DefaultSearchLimit, MaxSearchLimit)
	where, args := searchPredicate(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parks"+where, args...).Scan(&total); err != nil {
		return models.ParkSearchResult{}, fmt.Errorf("counting parks: %w", err)
	}

	query := "SELECT " + parkColumns + " FROM parks" + where +
		" ORDER BY name ASC, reference ASC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return models.ParkSearchResult{}, fmt.Errorf("searching parks: %w", err)
	}
	defer rows.Close()

	parks := make([]models.Park, 0)
	for rows.Next() {
		p, err := scanPark(rows)
		if err != nil {
			return models.ParkSearchResult{}, fmt.Errorf("scanning park: %w", err)
		}
		parks = append(parks, p)
	}
	if err := rows.Err(); err != nil {
		return models.ParkSearchResult{}, fmt.Errorf("reading parks: %w", err)
	}

	return models.ParkSearchResult{
		Parks:   parks,
		Total:   total,
		HasMore: offset+len(parks) < total,
	}, nil
}

// GetByReference reads a park without side effects.
func (r *Repository) GetByReference(ctx context.Context, ref string) (option.Option[models.Park], error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+parkColumns+" FROM parks WHERE reference = ?", ref)
	p, err := scanPark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[models.Park](), nil
	}
	if err != nil {
		return option.None[models.Park](), fmt.Errorf("querying park %s: %w", ref, err)
	}
	return option.Some(p), nil
}

// SetTimezoneIfAbsent stores tz only if the park has none yet. It reports
// whether a row was written.
func (r *Repository) SetTimezoneIfAbsent(ctx context.Context, ref, tz string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE parks SET timezone = ? WHERE reference = ? AND timezone IS NULL", tz, ref)
	if err != nil {
		return false, fmt.Errorf("setting timezone for %s: %w", ref, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting timezone for %s: %w", ref, err)
	}
	return n > 0, nil
}

// ToggleFavorite flips the favorite flag and returns the new state, or None
// when the park does not exist.
func (r *Repository) ToggleFavorite(ctx context.Context, ref string) (option.Option[models.FavoriteToggle], error) {
	var fav bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE parks SET is_favorite = 1 - is_favorite, updated_at = ?
		WHERE reference = ?
		RETURNING is_favorite
	`, database.FormatTime(time.Now()), ref).Scan(&fav)
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[models.FavoriteToggle](), nil
	}
	if err != nil {
		return option.None[models.FavoriteToggle](), fmt.Errorf("toggling favorite for %s: %w", ref, err)
	}
	return option.Some(models.FavoriteToggle{Reference: ref, IsFavorite: fav}), nil
}

// Attribute columns are replaced on conflict. The row id, a resolved
// timezone and the favorite flag are kept; is_favorite only changes
// through ToggleFavorite once the row exists.
const upsertPark = `
	INSERT INTO parks (
		reference, name, latitude, longitude, grid_square, state, country,
		entity_id, program_id, location_desc, activation_count, is_active,
		is_favorite, timezone, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(reference) DO UPDATE SET
		name = excluded.name,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		grid_square = excluded.grid_square,
		state = excluded.state,
		country = excluded.country,
		entity_id = excluded.entity_id,
		program_id = excluded.program_id,
		location_desc = excluded.location_desc,
		activation_count = excluded.activation_count,
		is_active = excluded.is_active,
		timezone = COALESCE(parks.timezone, excluded.timezone),
		updated_at = excluded.updated_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, p models.Park, now time.Time) error {
	_, err := ex.ExecContext(ctx, upsertPark,
		p.Reference, p.Name, nullFloat(p.Latitude), nullFloat(p.Longitude),
		nullIfEmpty(strings.ToUpper(p.GridSquare)), nullIfEmpty(p.State), nullIfEmpty(p.Country),
		nullIfEmpty(p.EntityID), nullIfEmpty(p.ProgramID), nullIfEmpty(p.LocationDesc),
		p.ActivationCount, p.IsActive, p.IsFavorite, nullIfEmpty(p.Timezone),
		database.FormatTime(now))
	if err != nil {
		return fmt.Errorf("upserting park %s: %w", p.Reference, err)
	}
	return nil
}

// InsertPark inserts or replaces a park by reference.
func (r *Repository) InsertPark(ctx context.Context, p models.Park) error {
	return upsert(ctx, r.db, p, time.Now())
}

// InsertParks upserts a batch in one transaction; a failure rolls back the
// whole batch.
func (r *Repository) InsertParks(ctx context.Context, parks []models.Park) (int, error) {
	now := time.Now()
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range parks {
			if err := upsert(ctx, tx, p, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(parks), nil
}

// Count returns the number of stored parks.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting parks: %w", err)
	}
	return int(n.Int64), nil
}

// ClearAll deletes every park. Plans referencing them go too.
func (r *Repository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM parks"); err != nil {
		return fmt.Errorf("clearing parks: %w", err)
	}
	return nil
}

// ResolveID maps a reference to its row id.
func (r *Repository) ResolveID(ctx context.Context, ref string) (option.Option[int64], error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM parks WHERE reference = ?", ref).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[int64](), nil
	}
	if err != nil {
		return option.None[int64](), fmt.Errorf("resolving park %s: %w", ref, err)
	}
	return option.Some(id), nil
}

// ListFavorites returns all favorite parks by name.
func (r *Repository) ListFavorites(ctx context.Context) ([]models.Park, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+parkColumns+" FROM parks WHERE is_favorite = 1 ORDER BY name ASC, reference ASC")
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	parks := make([]models.Park, 0)
	for rows.Next() {
		p, err := scanPark(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning park: %w", err)
		}
		parks = append(parks, p)
	}
	return parks, rows.Err()
}

// RecordImport stores a row in import_metadata.
func (r *Repository) RecordImport(ctx context.Context, meta models.ImportMetadata) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO import_metadata (filename, rows_imported, imported_at) VALUES (?, ?, ?)",
		meta.Filename, meta.RowsImported, database.FormatTime(meta.ImportedAt))
	if err != nil {
		return fmt.Errorf("recording import: %w", err)
	}
	return nil
}

// LastImport returns the most recent import record.
func (r *Repository) LastImport(ctx context.Context) (option.Option[models.ImportMetadata], error) {
	var (
		meta       models.ImportMetadata
		importedAt string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT filename, rows_imported, imported_at FROM import_metadata ORDER BY id DESC LIMIT 1",
	).Scan(&meta.Filename, &meta.RowsImported, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[models.ImportMetadata](), nil
	}
	if err != nil {
		return option.None[models.ImportMetadata](), fmt.Errorf("querying last import: %w", err)
	}
	meta.ImportedAt, err = database.ParseTime(importedAt)
	if err != nil {
		return option.None[models.ImportMetadata](), fmt.Errorf("parsing import time: %w", err)
	}
	return option.Some(meta), nil
}
