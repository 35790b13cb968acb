package codec

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"mob-ledger/internal/domain"

	"github.com/rs/zerolog"
)

const nametag = "minecraft:name_tag"

func sampleRecord() *domain.Record {
	owner := "alice"
	r := domain.NewRecord(
		"e1",
		"minecraft:wolf",
		"Rex",
		domain.Location{Realm: "minecraft:overworld", X: 12, Y: 70, Z: -8},
		domain.Vitality{Current: 14.5, Max: 20},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	)
	r.AgeSeconds = 3725
	r.Affinity = 64
	r.Kills = domain.KillCounts{
		ByKind:  map[string]int{"minecraft:sheep": 2, "minecraft:player": 1},
		Players: 1,
		Others:  2,
	}
	r.Interactions[domain.InteractionFed] = 3
	r.Interactions[domain.InteractionPetted] = 5
	r.Interactions[domain.InteractionHealed] = 1
	r.Owner = &owner
	r.Achievements = []string{"first_kill", "tamed"}
	return r
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	r := sampleRecord()

	got := Decode(Encode(r))
	want := *r.Clone()

	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("createdAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	r := sampleRecord()

	s, ok := Unmarshal(Marshal(Encode(r)))
	if !ok {
		t.Fatalf("unmarshal failed")
	}
	got := Decode(s)
	want := *r.Clone()
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestReadArtifactKeepsKillsByKind(t *testing.T) {
	c := New(nametag, zerolog.Nop())
	r := sampleRecord()

	rec, ok := c.ReadArtifact(c.NewArtifact(r))
	if !ok {
		t.Fatalf("ReadArtifact failed")
	}
	if !reflect.DeepEqual(rec.Kills.ByKind, r.Kills.ByKind) {
		t.Fatalf("byKind = %v, want %v", rec.Kills.ByKind, r.Kills.ByKind)
	}

	detailed := RenderDetailed(&rec)
	for _, want := range []string{"By kind:", "sheep: §f2", "player: §f1"} {
		if !strings.Contains(detailed, want) {
			t.Fatalf("inspected text missing %q:\n%s", want, detailed)
		}
	}
}

func TestSnapshotOmitsEmptyKillsByKind(t *testing.T) {
	r := domain.NewRecord("e1", "minecraft:cow", "", domain.Location{}, domain.Vitality{Current: 10, Max: 10}, time.Unix(10, 0))

	raw := Marshal(Encode(r))
	if strings.Contains(raw, `"s":`) {
		t.Fatalf("empty per-kind kills serialized: %s", raw)
	}
	got, ok := Unmarshal(raw)
	if !ok {
		t.Fatalf("unmarshal failed")
	}
	if byKind := Decode(got).Kills.ByKind; byKind == nil || len(byKind) != 0 {
		t.Fatalf("byKind = %#v, want empty", byKind)
	}
}

func TestAchievementsSurviveSnapshot(t *testing.T) {
	r := domain.NewRecord("e1", "minecraft:wolf", "", domain.Location{}, domain.Vitality{Current: 20, Max: 20}, time.Unix(10, 0))
	r.Achievements = []string{"first_kill"}

	got := Decode(Encode(r))
	if !reflect.DeepEqual(got.Achievements, []string{"first_kill"}) {
		t.Fatalf("achievements = %v", got.Achievements)
	}
}

func TestSnapshotUsesCompactKeys(t *testing.T) {
	raw := Marshal(Encode(sampleRecord()))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"v", "id", "type", "name", "spawn", "life", "kills", "affect", "inter", "loc", "hp", "owner", "ach"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("snapshot missing key %q: %s", key, raw)
		}
	}
	for _, key := range []string{"killCounts", "bySubjectKind", "interactionCounts", "originLocation"} {
		if strings.Contains(raw, key) {
			t.Fatalf("snapshot leaked full-record key %q: %s", key, raw)
		}
	}
}

func TestDecodeDefaults(t *testing.T) {
	got := Decode(Snapshot{ID: "e1", Kind: "minecraft:cat", Affinity: 500})

	if got.Vitality != (domain.Vitality{Current: 20, Max: 20}) {
		t.Fatalf("vitality default = %+v", got.Vitality)
	}
	if got.Affinity != domain.MaxAffinity {
		t.Fatalf("affinity = %d, want clamped to %d", got.Affinity, domain.MaxAffinity)
	}
	if got.Owner != nil {
		t.Fatalf("owner = %v, want nil", got.Owner)
	}
	if got.Achievements == nil || len(got.Achievements) != 0 {
		t.Fatalf("achievements = %#v, want empty", got.Achievements)
	}
	if got.Kills.ByKind == nil || len(got.Kills.ByKind) != 0 {
		t.Fatalf("byKind = %#v, want empty", got.Kills.ByKind)
	}
	if !got.CreatedAt.IsZero() {
		t.Fatalf("createdAt = %v, want zero", got.CreatedAt)
	}
	for _, k := range domain.InteractionKinds {
		if got.Interactions[k] != 0 {
			t.Fatalf("interaction %s = %d", k, got.Interactions[k])
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "nope", `{"id":`, `[1]`} {
		if _, ok := Unmarshal(raw); ok {
			t.Fatalf("Unmarshal(%q) should fail", raw)
		}
	}
}

func TestIsRecognizedArtifact(t *testing.T) {
	c := New(nametag, zerolog.Nop())
	valid := c.NewArtifact(sampleRecord())

	tests := []struct {
		name     string
		artifact domain.Artifact
		want     bool
	}{
		{"issued artifact", valid, true},
		{"minimal snapshot", domain.Artifact{
			ItemType:   nametag,
			Properties: map[string]string{PropertyKey: `{"id":"e1","type":"minecraft:cow"}`},
		}, true},
		{"other item", domain.Artifact{
			ItemType:   "minecraft:stick",
			Properties: valid.Properties,
		}, false},
		{"no property", domain.Artifact{ItemType: nametag}, false},
		{"malformed json", domain.Artifact{
			ItemType:   nametag,
			Properties: map[string]string{PropertyKey: `{"id":"e1","type":`},
		}, false},
		{"not an object", domain.Artifact{
			ItemType:   nametag,
			Properties: map[string]string{PropertyKey: `"e1"`},
		}, false},
		{"missing type", domain.Artifact{
			ItemType:   nametag,
			Properties: map[string]string{PropertyKey: `{"id":"e1"}`},
		}, false},
		{"numeric id", domain.Artifact{
			ItemType:   nametag,
			Properties: map[string]string{PropertyKey: `{"id":7,"type":"minecraft:cow"}`},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsRecognizedArtifact(tt.artifact); got != tt.want {
				t.Fatalf("IsRecognizedArtifact = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewArtifact(t *testing.T) {
	c := New(nametag, zerolog.Nop())
	r := sampleRecord()

	a := c.NewArtifact(r)
	if a.ItemType != nametag {
		t.Fatalf("item type = %q", a.ItemType)
	}
	if !strings.Contains(a.Label, "Rex's record") {
		t.Fatalf("label = %q", a.Label)
	}
	if len(a.Lore) == 0 || a.Serial == "" {
		t.Fatalf("artifact incomplete: %+v", a)
	}

	rec, ok := c.ReadArtifact(a)
	if !ok {
		t.Fatalf("ReadArtifact failed")
	}
	if rec.ID != r.ID || rec.Affinity != r.Affinity || *rec.Owner != *r.Owner {
		t.Fatalf("decoded record = %+v", rec)
	}

	if _, ok := c.ReadArtifact(domain.Artifact{ItemType: nametag}); ok {
		t.Fatalf("ReadArtifact should reject an empty artifact")
	}
}

func TestRenderingIsDeterministic(t *testing.T) {
	r := sampleRecord()

	if RenderDetailed(r) != RenderDetailed(r.Clone()) {
		t.Fatalf("RenderDetailed not deterministic")
	}
	if RenderSummary(r) != RenderSummary(r.Clone()) {
		t.Fatalf("RenderSummary not deterministic")
	}

	detailed := RenderDetailed(r)
	for _, want := range []string{"Rex", "wolf", "1 hours 2 minutes", "64/100", "sheep: §f2", "alice", "first_kill", "2026-03-01T12:00:00Z"} {
		if !strings.Contains(detailed, want) {
			t.Fatalf("detailed text missing %q:\n%s", want, detailed)
		}
	}
	if strings.Index(detailed, "player:") > strings.Index(detailed, "sheep:") {
		t.Fatalf("per-kind kills not sorted:\n%s", detailed)
	}

	summary := RenderSummary(r)
	for _, want := range []string{"=== Rex ===", "1h 2m 5s", "players 1 | creatures 2", "Owner: §falice"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestRenderUnnamedWithoutOwner(t *testing.T) {
	r := domain.NewRecord("e2", "minecraft:cow", "", domain.Location{Realm: "overworld"}, domain.Vitality{Current: 10, Max: 10}, time.Unix(0, 0))

	summary := RenderSummary(r)
	if !strings.Contains(summary, unnamed) {
		t.Fatalf("summary should fall back to %q:\n%s", unnamed, summary)
	}
	if strings.Contains(summary, "Owner") || strings.Contains(RenderDetailed(r), "Owner") {
		t.Fatalf("owner line rendered without an owner")
	}
	for _, line := range RenderLore(r) {
		if line == "" {
			t.Fatalf("lore contains an empty line")
		}
	}
}
