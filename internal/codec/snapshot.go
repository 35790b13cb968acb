package codec

import (
	"encoding/json"
	"time"

	"mob-ledger/internal/domain"
)

const (
	SnapshotVersion = 1

	// PropertyKey names the artifact property that holds the snapshot.
	PropertyKey = "tagvalhalla:mobdata"

	defaultVitality = 20
)

// Snapshot is the compact projection of a Record embedded in an artifact.
type Snapshot struct {
	Version      int                 `json:"v"`
	ID           string              `json:"id"`
	Kind         string              `json:"type"`
	Label        string              `json:"name"`
	Spawn        int64               `json:"spawn"`
	Life         int64               `json:"life"`
	Kills        snapshotKills       `json:"kills"`
	Affinity     int                 `json:"affect"`
	Interactions snapshotInteraction `json:"inter"`
	Location     snapshotLocation    `json:"loc"`
	Vitality     *snapshotVitality   `json:"hp,omitempty"`
	Owner        *string             `json:"owner"`
	Achievements []string            `json:"ach,omitempty"`
}

type snapshotKills struct {
	Players int            `json:"p"`
	Others  int            `json:"m"`
	ByKind  map[string]int `json:"s,omitempty"`
}

type snapshotInteraction struct {
	Fed    int `json:"fed"`
	Petted int `json:"pet"`
	Healed int `json:"heal"`
}

type snapshotLocation struct {
	Realm string `json:"d"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

type snapshotVitality struct {
	Current float64 `json:"c"`
	Max     float64 `json:"m"`
}

func Encode(r *domain.Record) Snapshot {
	s := Snapshot{
		Version:  SnapshotVersion,
		ID:       r.ID,
		Kind:     r.Kind,
		Label:    r.Label,
		Life:     r.AgeSeconds,
		Kills:    snapshotKills{Players: r.Kills.Players, Others: r.Kills.Others},
		Affinity: r.Affinity,
		Interactions: snapshotInteraction{
			Fed:    r.Interactions[domain.InteractionFed],
			Petted: r.Interactions[domain.InteractionPetted],
			Healed: r.Interactions[domain.InteractionHealed],
		},
		Location: snapshotLocation{
			Realm: r.Origin.Realm,
			X:     r.Origin.X,
			Y:     r.Origin.Y,
			Z:     r.Origin.Z,
		},
		Vitality: &snapshotVitality{Current: r.Vitality.Current, Max: r.Vitality.Max},
	}
	if !r.CreatedAt.IsZero() {
		s.Spawn = r.CreatedAt.UnixMilli()
	}
	if r.Owner != nil {
		owner := *r.Owner
		s.Owner = &owner
	}
	if len(r.Kills.ByKind) > 0 {
		s.Kills.ByKind = make(map[string]int, len(r.Kills.ByKind))
		for k, v := range r.Kills.ByKind {
			s.Kills.ByKind[k] = v
		}
	}
	if len(r.Achievements) > 0 {
		s.Achievements = append([]string{}, r.Achievements...)
	}
	return s
}

// Decode rebuilds a Record. Fields the snapshot does not carry, or that are
// absent from it, take their defaults.
func Decode(s Snapshot) domain.Record {
	r := domain.Record{
		ID:         s.ID,
		Kind:       s.Kind,
		Label:      s.Label,
		AgeSeconds: s.Life,
		Kills: domain.KillCounts{
			Players: s.Kills.Players,
			Others:  s.Kills.Others,
		},
		Affinity: s.Affinity,
		Interactions: map[domain.InteractionKind]int{
			domain.InteractionFed:    s.Interactions.Fed,
			domain.InteractionPetted: s.Interactions.Petted,
			domain.InteractionHealed: s.Interactions.Healed,
		},
		Origin: domain.Location{
			Realm: s.Location.Realm,
			X:     s.Location.X,
			Y:     s.Location.Y,
			Z:     s.Location.Z,
		},
		Vitality: domain.Vitality{Current: defaultVitality, Max: defaultVitality},
	}
	if s.Spawn != 0 {
		r.CreatedAt = time.UnixMilli(s.Spawn).UTC()
	}
	if s.Vitality != nil {
		r.Vitality = domain.Vitality{Current: s.Vitality.Current, Max: s.Vitality.Max}
	}
	if s.Owner != nil {
		owner := *s.Owner
		r.Owner = &owner
	}
	if len(s.Kills.ByKind) > 0 {
		r.Kills.ByKind = make(map[string]int, len(s.Kills.ByKind))
		for k, v := range s.Kills.ByKind {
			r.Kills.ByKind[k] = v
		}
	}
	if len(s.Achievements) > 0 {
		r.Achievements = append([]string{}, s.Achievements...)
	}
	r.Normalize()
	return r
}

func Marshal(s Snapshot) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Snapshot holds only strings, integers and finite floats from a
		// valid Record.
		return "{}"
	}
	return string(b)
}

// Unmarshal parses a snapshot property value. ok is false for anything that
// is not a JSON object.
func Unmarshal(raw string) (s Snapshot, ok bool) {
	if raw == "" {
		return Snapshot{}, false
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, false
	}
	return s, true
}
