package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mob-ledger/internal/config"
	"mob-ledger/internal/database"
	"mob-ledger/internal/db"
	"mob-ledger/internal/domain"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) (*SlotRepository, *ArtifactRepository) {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "ledger.db")}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	return NewSlotRepository(queries, zerolog.Nop()), NewArtifactRepository(sqlDB, queries, zerolog.Nop())
}

func TestSlotRepository(t *testing.T) {
	slots, _ := openTestDB(t)
	ctx := context.Background()

	if _, found, err := slots.Get(ctx, "tagvalhalla:data"); err != nil || found {
		t.Fatalf("Get on empty slot = found %v, err %v", found, err)
	}

	if err := slots.Put(ctx, "tagvalhalla:data", `{"records":{}}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := slots.Put(ctx, "tagvalhalla:data", `{"records":{},"lastSaved":1}`); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	value, found, err := slots.Get(ctx, "tagvalhalla:data")
	if err != nil || !found {
		t.Fatalf("Get = found %v, err %v", found, err)
	}
	if value != `{"records":{},"lastSaved":1}` {
		t.Fatalf("value = %q, want last write", value)
	}

	if _, found, _ := slots.Get(ctx, "other:slot"); found {
		t.Fatalf("unrelated key reported as present")
	}
}

func TestArtifactRepository(t *testing.T) {
	_, artifacts := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	entries := []domain.IssuedArtifact{
		{Serial: "a1", SubjectID: "e1", Kind: "minecraft:wolf", Label: "Rex", Snapshot: `{"id":"e1"}`,
			Location: domain.Location{Realm: "overworld", X: 1, Y: 64, Z: -3}, IssuedAt: base},
		{SubjectID: "e2", Kind: "minecraft:cow", Snapshot: `{"id":"e2"}`, IssuedAt: base.Add(time.Minute)},
	}
	if err := artifacts.InsertBatch(ctx, entries); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if err := artifacts.Insert(ctx, domain.IssuedArtifact{
		Serial: "a3", SubjectID: "e1", Kind: "minecraft:wolf", Snapshot: `{"id":"e1"}`, IssuedAt: base.Add(2 * time.Minute),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := artifacts.GetBySubject(ctx, "e1", 10)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if len(got) != 2 || got[0].Serial != "a3" || got[1].Serial != "a1" {
		t.Fatalf("GetBySubject = %+v, want a3 then a1", got)
	}
	if got[1].Location != entries[0].Location || got[1].Label != "Rex" {
		t.Fatalf("stored entry = %+v", got[1])
	}
	if !got[1].IssuedAt.Equal(base) {
		t.Fatalf("issued at = %v, want %v", got[1].IssuedAt, base)
	}

	recent, err := artifacts.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Serial != "a3" || recent[1].SubjectID != "e2" {
		t.Fatalf("Recent = %+v", recent)
	}
	if recent[1].Serial == "" {
		t.Fatalf("missing serial was not generated")
	}

	if err := artifacts.Insert(ctx, domain.IssuedArtifact{Serial: "a1", SubjectID: "e9", IssuedAt: base}); err == nil {
		t.Fatalf("duplicate serial should fail")
	}
	if err := artifacts.InsertBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}
