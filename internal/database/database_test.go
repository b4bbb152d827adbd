package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestDBPath(t *testing.T) {
	expected := filepath.Join("data", "pota-planner.db")
	if got := DBPath(); got != expected {
		t.Errorf("DBPath() = %v, want %v", got, expected)
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	for _, table := range []string{"parks", "plans", "equipment_presets", "weather_cache", "import_metadata", "app_config"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s missing after Open()", table)
		}
	}

	var builtin int
	if err := db.QueryRow("SELECT COUNT(*) FROM equipment_presets WHERE is_builtin = 1").Scan(&builtin); err != nil {
		t.Fatalf("counting presets: %v", err)
	}
	if builtin == 0 {
		t.Error("expected builtin presets to be seeded")
	}
}

func TestOpen_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	_, err = db.Exec(`INSERT INTO app_config (key, value, updated_at) VALUES ('theme', 'light', '2026-01-01T00:00:00.000Z')`)
	db.Close()
	if err != nil {
		t.Fatalf("inserting record: %v", err)
	}

	// Re-running migrations must not drop data
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow("SELECT value FROM app_config WHERE key = 'theme'").Scan(&value); err != nil {
		t.Fatalf("querying record: %v", err)
	}
	if value != "light" {
		t.Errorf("value = %q, want light", value)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO import_metadata (filename, rows_imported, imported_at) VALUES ('a.csv', 1, 'x')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM import_metadata").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestFormatAndParseTime(t *testing.T) {
	ts := time.Date(2026, 2, 24, 16, 0, 0, 123000000, time.FixedZone("MST", -7*3600))

	s := FormatTime(ts)
	if s != "2026-02-24T23:00:00.123Z" {
		t.Errorf("FormatTime() = %q", s)
	}

	back, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime() error = %v", err)
	}
	if !back.Equal(ts) {
		t.Errorf("ParseTime() = %v, want %v", back, ts)
	}

	if _, err := ParseTime("2026-02-24T23:00:00Z"); err != nil {
		t.Errorf("ParseTime(RFC3339) error = %v", err)
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("ParseTime(garbage) expected error")
	}
}
