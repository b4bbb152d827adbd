package plans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
	"github.com/ngmaloney/pota-planner/internal/option"
)

const presetColumns = "id, name, radio, antenna, power_watts, mode, notes, is_builtin"

func scanPreset(row scanner) (models.EquipmentPreset, error) {
	var (
		p                           models.EquipmentPreset
		radio, antenna, mode, notes sql.NullString
		power                       sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &radio, &antenna, &power, &mode, &notes, &p.IsBuiltin); err != nil {
		return models.EquipmentPreset{}, err
	}
	p.Radio = radio.String
	p.Antenna = antenna.String
	p.PowerWatts = int(power.Int64)
	p.Mode = mode.String
	p.Notes = notes.String
	return p.WithFallbacks(), nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIfZero(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// ListPresets returns builtin presets first, then user presets, each by
// name. Missing fields are filled with fallbacks.
func (r *Repository) ListPresets(ctx context.Context) ([]models.EquipmentPreset, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+presetColumns+" FROM equipment_presets ORDER BY is_builtin DESC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	presets := make([]models.EquipmentPreset, 0)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preset: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// GetPreset returns one preset by id.
func (r *Repository) GetPreset(ctx context.Context, id int64) (option.Option[models.EquipmentPreset], error) {
	p, err := scanPreset(r.db.QueryRowContext(ctx,
		"SELECT "+presetColumns+" FROM equipment_presets WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[models.EquipmentPreset](), nil
	}
	if err != nil {
		return option.None[models.EquipmentPreset](), fmt.Errorf("querying preset %d: %w", id, err)
	}
	return option.Some(p), nil
}

// CreatePreset stores a user preset. IsBuiltin on the input is ignored.
func (r *Repository) CreatePreset(ctx context.Context, p models.EquipmentPreset) (models.EquipmentPreset, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO equipment_presets (name, radio, antenna, power_watts, mode, notes, is_builtin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, p.Name, nullIfEmpty(p.Radio), nullIfEmpty(p.Antenna), nullIfZero(p.PowerWatts),
		nullIfEmpty(p.Mode), nullIfEmpty(p.Notes), database.FormatTime(r.now()))
	if err != nil {
		return models.EquipmentPreset{}, fmt.Errorf("inserting preset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.EquipmentPreset{}, fmt.Errorf("inserting preset: %w", err)
	}

	created, err := r.GetPreset(ctx, id)
	if err != nil {
		return models.EquipmentPreset{}, err
	}
	return created.OrElse(models.EquipmentPreset{}), nil
}

func (r *Repository) presetIsBuiltin(ctx context.Context, id int64) (found, builtin bool, err error) {
	err = r.db.QueryRowContext(ctx, "SELECT is_builtin FROM equipment_presets WHERE id = ?", id).Scan(&builtin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("querying preset %d: %w", id, err)
	}
	return true, builtin, nil
}

// UpdatePreset replaces a user preset's fields. Builtin presets return
// ErrBuiltinPreset.
func (r *Repository) UpdatePreset(ctx context.Context, id int64, p models.EquipmentPreset) (option.Option[models.EquipmentPreset], error) {
	found, builtin, err := r.presetIsBuiltin(ctx, id)
	if err != nil || !found {
		return option.None[models.EquipmentPreset](), err
	}
	if builtin {
		return option.None[models.EquipmentPreset](), ErrBuiltinPreset
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE equipment_presets
		SET name = ?, radio = ?, antenna = ?, power_watts = ?, mode = ?, notes = ?
		WHERE id = ?
	`, p.Name, nullIfEmpty(p.Radio), nullIfEmpty(p.Antenna), nullIfZero(p.PowerWatts),
		nullIfEmpty(p.Mode), nullIfEmpty(p.Notes), id)
	if err != nil {
		return option.None[models.EquipmentPreset](), fmt.Errorf("updating preset %d: %w", id, err)
	}
	return r.GetPreset(ctx, id)
}

// DeletePreset removes a user preset, detaching it from any plans in the
// same transaction.
func (r *Repository) DeletePreset(ctx context.Context, id int64) (bool, error) {
	found, builtin, err := r.presetIsBuiltin(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if builtin {
		return false, ErrBuiltinPreset
	}

	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE plans SET equipment_preset_id = NULL, updated_at = ? WHERE equipment_preset_id = ?",
			database.FormatTime(r.now()), id); err != nil {
			return fmt.Errorf("detaching preset %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM equipment_presets WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting preset %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
