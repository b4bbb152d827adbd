package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ngmaloney/pota-planner/internal/database"
	"github.com/ngmaloney/pota-planner/internal/models"
)

// Keys in the app_config table.
const (
	keyCallsign   = "profile.callsign"
	keyName       = "profile.name"
	keyHomeGrid   = "profile.home_grid"
	keyTheme      = "theme"
	keyUnits      = "units"
	keyOnboarding = "onboarding_complete"
)

// SettingsStore reads and writes user settings as key/value rows.
type SettingsStore struct {
	db *sql.DB
}

// NewSettingsStore creates a store over db.
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored settings; missing keys keep their defaults.
func (s *SettingsStore) Get(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM app_config")
	if err != nil {
		return settings, fmt.Errorf("reading settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("scanning setting: %w", err)
		}
		switch key {
		case keyCallsign:
			settings.Profile.Callsign = value
		case keyName:
			settings.Profile.Name = value
		case keyHomeGrid:
			settings.Profile.HomeGrid = value
		case keyTheme:
			settings.Theme = value
		case keyUnits:
			settings.Units = value
		case keyOnboarding:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.OnboardingComplete = b
			}
		}
	}
	return settings, rows.Err()
}

// Set writes every setting in one transaction.
func (s *SettingsStore) Set(ctx context.Context, settings models.Settings) error {
	values := map[string]string{
		keyCallsign:   settings.Profile.Callsign,
		keyName:       settings.Profile.Name,
		keyHomeGrid:   settings.Profile.HomeGrid,
		keyTheme:      settings.Theme,
		keyUnits:      settings.Units,
		keyOnboarding: strconv.FormatBool(settings.OnboardingComplete),
	}
	now := database.FormatTime(time.Now())

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for key, value := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO app_config (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, key, value, now)
			if err != nil {
				return fmt.Errorf("writing setting %s: %w", key, err)
			}
		}
		return nil
	})
}
