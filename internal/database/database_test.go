package database

import (
	"path/filepath"
	"testing"

	"mob-ledger/internal/config"

	"github.com/rs/zerolog"
)

func TestNewMigratesOnceAndReopens(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "ledger.db")}

	db, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv_slots (key, value, updated_at) VALUES ('tagvalhalla:data', '{}', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert slot: %v", err)
	}
	db.Close()

	db, err = New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow(`SELECT value FROM kv_slots WHERE key = 'tagvalhalla:data'`).Scan(&value); err != nil || value != "{}" {
		t.Fatalf("slot after reopen = %q, %v", value, err)
	}
	var tables int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('kv_slots', 'artifact_log')`).Scan(&tables); err != nil || tables != 2 {
		t.Fatalf("tables = %d, %v", tables, err)
	}

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil || mode != "wal" {
		t.Fatalf("journal mode = %q, %v", mode, err)
	}
}

func TestNewFailsOnUnusablePath(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "missing", "dir", "ledger.db")}
	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for a path in a missing directory")
	}
}
