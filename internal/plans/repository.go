// Package plans stores activation plans and equipment presets.
package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/option"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	// ErrParkNotFound means a plan referenced a park that is not stored.
	ErrParkNotFound = errors.New("park not found")
	// ErrPresetNotFound means a plan referenced an unknown equipment preset.
	ErrPresetNotFound = errors.New("equipment preset not found")
	// ErrBuiltinPreset is returned when modifying a builtin preset.
	ErrBuiltinPreset = errors.New("builtin presets are read-only")
)

// ParkResolver maps park references to row ids.
type ParkResolver interface {
	ResolveID(ctx context.Context, ref string) (option.Option[int64], error)
}

// Repository is the plan and preset store.
type Repository struct {
	db    *sql.DB
	parks ParkResolver
	now   func() time.Time
}

// NewRepository creates a repository. parks resolves plan park references.
func NewRepository(db *sql.DB, parks ParkResolver) *Repository {
	return &Repository{db: db, parks: parks, now: time.Now}
}

const planSelect = `
	SELECT pl.plan_uuid, pl.name, pk.reference, pk.name,
		pl.activation_date, pl.start_time, pl.end_time, pl.equipment_preset_id,
		ep.name, ep.radio, ep.antenna, ep.power_watts, ep.mode, ep.notes, ep.is_builtin,
		pl.bands, pl.time_slots, pl.operator_callsign, pl.notes, pl.status,
		pl.created_at, pl.updated_at
	FROM plans pl
	JOIN parks pk ON pk.id = pl.park_id
	LEFT JOIN equipment_presets ep ON ep.id = pl.equipment_preset_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (models.Plan, error) {
	var (
		p                                        models.Plan
		presetID, power                          sql.NullInt64
		presetName, radio, antenna, mode, pNotes sql.NullString
		builtin                                  sql.NullBool
		bands, slots, callsign, notes            sql.NullString
		status, createdAt, updatedAt             string
	)
	err := row.Scan(&p.ID, &p.Name, &p.ParkReference, &p.ParkName,
		&p.ActivationDate, &p.StartTime, &p.EndTime, &presetID,
		&presetName, &radio, &antenna, &power, &mode, &pNotes, &builtin,
		&bands, &slots, &callsign, &notes, &status,
		&createdAt, &updatedAt)
	if err != nil {
		return models.Plan{}, err
	}

	if presetID.Valid {
		id := presetID.Int64
		p.EquipmentPresetID = &id
		if presetName.Valid {
			preset := models.EquipmentPreset{
				ID:         id,
				Name:       presetName.String,
				Radio:      radio.String,
				Antenna:    antenna.String,
				PowerWatts: int(power.Int64),
				Mode:       mode.String,
				Notes:      pNotes.String,
				IsBuiltin:  builtin.Bool,
			}.WithFallbacks()
			p.EquipmentPreset = &preset
		}
	}

	p.Bands = decodeBands(bands.String)
	p.TimeSlots = decodeSlots(slots.String)
	p.OperatorCallsign = callsign.String
	p.Notes = notes.String
	p.Status = models.PlanStatus(status)
	p.CreatedAt, _ = database.ParseTime(createdAt)
	p.UpdatedAt, _ = database.ParseTime(updatedAt)
	return p, nil
}

func encodeBands(bands []string) string {
	return strings.Join(bands, ",")
}

func decodeBands(s string) []string {
	out := make([]string, 0)
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func encodeSlots(slots []models.TimeSlot) (string, error) {
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return "", fmt.Errorf("encoding time slots: %w", err)
	}
	return string(b), nil
}

// decodeSlots treats empty or malformed JSON as no slots.
func decodeSlots(s string) []models.TimeSlot {
	var slots []models.TimeSlot
	if s == "" || json.Unmarshal([]byte(s), &slots) != nil || slots == nil {
		return []models.TimeSlot{}
	}
	return slots
}

// optionalText stores empty strings as NULL.
func optionalText(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return database.NullString(s)
}

func (r *Repository) resolvePark(ctx context.Context, ref string) (int64, error) {
	found, err := r.parks.ResolveID(ctx, ref)
	if err != nil {
		return 0, err
	}
	id, ok := found.Get()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrParkNotFound, ref)
	}
	return id, nil
}

func (r *Repository) checkPreset(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM equipment_presets WHERE id = ?", *id).Scan(&n); err != nil {
		return fmt.Errorf("checking preset %d: %w", *id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrPresetNotFound, *id)
	}
	return nil
}

// Create stores a new plan and returns it hydrated. The park must exist;
// otherwise ErrParkNotFound is returned and nothing is written.
func (r *Repository) Create(ctx context.Context, in models.PlanInput) (models.Plan, error) {
	parkID, err := r.resolvePark(ctx, in.ParkReference)
	if err != nil {
		return models.Plan{}, err
	}
	if err := r.checkPreset(ctx, in.EquipmentPresetID); err != nil {
		return models.Plan{}, err
	}

	slots, err := encodeSlots(in.TimeSlots)
	if err != nil {
		return models.Plan{}, err
	}
	status := in.Status
	if status == "" {
		status = models.PlanDraft
	}

	id := uuid.NewString()
	now := database.FormatTime(r.now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO plans (
			plan_uuid, park_id, name, activation_date, start_time, end_time,
			equipment_preset_id, time_slots, operator_callsign, bands, notes,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, parkID, in.Name, in.ActivationDate, in.StartTime, in.EndTime,
		database.NullInt64(in.EquipmentPresetID), slots, optionalText(in.OperatorCallsign),
		encodeBands(in.Bands), optionalText(in.Notes), string(status), now, now)
	if err != nil {
		return models.Plan{}, fmt.Errorf("inserting plan: %w", err)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Plan{}, err
	}
	plan, ok := created.Get()
	if !ok {
		return models.Plan{}, fmt.Errorf("plan %s missing after insert", id)
	}
	return plan, nil
}

// GetByID returns the plan with the given UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (option.Option[models.Plan], error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx, planSelect+" WHERE pl.plan_uuid = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[models.Plan](), nil
	}
	if err != nil {
		return option.None[models.Plan](), fmt.Errorf("querying plan %s: %w", id, err)
	}
	return option.Some(p), nil
}

// List returns one page of plans, newest activation first.
func (r *Repository) List(ctx context.Context, f models.PlanListFilters) (models.PlanListResult, error) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	empty := models.PlanListResult{Plans: []models.Plan{}}

	var (
		clauses []string
		args    []any
	)
	if f.ParkReference != "" {
		found, err := r.parks.ResolveID(ctx, f.ParkReference)
		if err != nil {
			return empty, err
		}
		parkID, ok := found.Get()
		if !ok {
			return empty, nil
		}
		clauses = append(clauses, "pl.park_id = ?")
		args = append(args, parkID)
	}
	if f.DateFrom != "" {
		clauses = append(clauses, "pl.activation_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		clauses = append(clauses, "pl.activation_date <= ?")
		args = append(args, f.DateTo)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans pl"+where, args...).Scan(&total); err != nil {
		return empty, fmt.Errorf("counting plans: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		planSelect+where+" ORDER BY pl.activation_date DESC, pl.start_time DESC, pl.created_at DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return empty, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return empty, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return empty, fmt.Errorf("reading plans: %w", err)
	}

	return models.PlanListResult{
		Plans:   plans,
		Total:   total,
		HasMore: offset+len(plans) < total,
	}, nil
}

// Update writes only the fields set in u and always refreshes updated_at.
// A missing plan yields None without writing.
func (r *Repository) Update(ctx context.Context, id string, u models.PlanUpdate) (option.Option[models.Plan], error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans WHERE plan_uuid = ?", id).Scan(&exists); err != nil {
		return option.None[models.Plan](), fmt.Errorf("checking plan %s: %w", id, err)
	}
	if exists == 0 {
		return option.None[models.Plan](), nil
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.ParkReference != nil {
		parkID, err := r.resolvePark(ctx, *u.ParkReference)
		if err != nil {
			return option.None[models.Plan](), err
		}
		set("park_id", parkID)
	}
	if u.EquipmentPresetID != nil {
		if err := r.checkPreset(ctx, u.EquipmentPresetID); err != nil {
			return option.None[models.Plan](), err
		}
		set("equipment_preset_id", *u.EquipmentPresetID)
	} else if u.ClearPreset {
		set("equipment_preset_id", nil)
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.ActivationDate != nil {
		set("activation_date", *u.ActivationDate)
	}
	if u.StartTime != nil {
		set("start_time", *u.StartTime)
	}
	if u.EndTime != nil {
		set("end_time", *u.EndTime)
	}
	if u.Bands != nil {
		set("bands", encodeBands(*u.Bands))
	}
	if u.TimeSlots != nil {
		slots, err := encodeSlots(*u.TimeSlots)
		if err != nil {
			return option.None[models.Plan](), err
		}
		set("time_slots", slots)
	}
	if u.OperatorCallsign != nil {
		set("operator_callsign", optionalText(u.OperatorCallsign))
	}
	if u.Notes != nil {
		set("notes", optionalText(u.Notes))
	}
	if u.Status != nil {
		set("status", string(*u.Status))
	}
	set("updated_at", database.FormatTime(r.now()))

	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE plans SET "+strings.Join(sets, ", ")+" WHERE plan_uuid = ?", args...)
	if err != nil {
		return option.None[models.Plan](), fmt.Errorf("updating plan %s: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a plan and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM plans WHERE plan_uuid = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting plan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting plan %s: %w", id, err)
	}
	return n > 0, nil
}
