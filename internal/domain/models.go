package domain

import (
	"encoding/json"
	"time"
)

const (
	MinAffinity = 0
	MaxAffinity = 100
)

type InteractionKind string

const (
	InteractionFed    InteractionKind = "fed"
	InteractionPetted InteractionKind = "petted"
	InteractionHealed InteractionKind = "healed"
)

// InteractionKinds is the closed set of counters a Record carries.
var InteractionKinds = []InteractionKind{InteractionFed, InteractionPetted, InteractionHealed}

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionFed, InteractionPetted, InteractionHealed:
		return true
	}
	return false
}

type Location struct {
	Realm string `json:"realm"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

type Vitality struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
}

type KillCounts struct {
	ByKind  map[string]int `json:"bySubjectKind"`
	Players int            `json:"totalPlayerKills"`
	Others  int            `json:"totalOtherKills"`
}

func (k KillCounts) Total() int {
	return k.Players + k.Others
}

type Record struct {
	ID           string
	Kind         string
	Label        string
	CreatedAt    time.Time
	AgeSeconds   int64
	Kills        KillCounts
	Affinity     int
	Interactions map[InteractionKind]int
	Origin       Location
	Vitality     Vitality
	Owner        *string
	Achievements []string
}

// recordJSON is the slot representation. Timestamps are unix millis.
type recordJSON struct {
	ID           string                  `json:"id"`
	Kind         string                  `json:"kind"`
	Label        string                  `json:"label"`
	CreatedAt    int64                   `json:"createdAt"`
	AgeSeconds   int64                   `json:"ageSeconds"`
	Kills        KillCounts              `json:"killCounts"`
	Affinity     int                     `json:"affinity"`
	Interactions map[InteractionKind]int `json:"interactionCounts"`
	Origin       Location                `json:"originLocation"`
	Vitality     Vitality                `json:"vitality"`
	Owner        *string                 `json:"ownerLabel"`
	Achievements []string                `json:"achievements"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:           r.ID,
		Kind:         r.Kind,
		Label:        r.Label,
		CreatedAt:    r.CreatedAt.UnixMilli(),
		AgeSeconds:   r.AgeSeconds,
		Kills:        r.Kills,
		Affinity:     r.Affinity,
		Interactions: r.Interactions,
		Origin:       r.Origin,
		Vitality:     r.Vitality,
		Owner:        r.Owner,
		Achievements: r.Achievements,
	})
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{
		ID:           raw.ID,
		Kind:         raw.Kind,
		Label:        raw.Label,
		CreatedAt:    time.UnixMilli(raw.CreatedAt).UTC(),
		AgeSeconds:   raw.AgeSeconds,
		Kills:        raw.Kills,
		Affinity:     raw.Affinity,
		Interactions: raw.Interactions,
		Origin:       raw.Origin,
		Vitality:     raw.Vitality,
		Owner:        raw.Owner,
		Achievements: raw.Achievements,
	}
	r.Normalize()
	return nil
}

// Normalize fills nil collections and clamps the bounded fields so a Record
// read from outside the process satisfies the same invariants as a fresh one.
func (r *Record) Normalize() {
	if r.Kills.ByKind == nil {
		r.Kills.ByKind = map[string]int{}
	}
	counts := make(map[InteractionKind]int, len(InteractionKinds))
	for _, k := range InteractionKinds {
		counts[k] = r.Interactions[k]
	}
	r.Interactions = counts
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
	if r.AgeSeconds < 0 {
		r.AgeSeconds = 0
	}
	r.Affinity = ClampAffinity(r.Affinity)
}

// Clone returns a deep copy so callers outside the store cannot mutate it.
func (r *Record) Clone() *Record {
	c := *r
	c.Kills.ByKind = make(map[string]int, len(r.Kills.ByKind))
	for k, v := range r.Kills.ByKind {
		c.Kills.ByKind[k] = v
	}
	c.Interactions = make(map[InteractionKind]int, len(r.Interactions))
	for k, v := range r.Interactions {
		c.Interactions[k] = v
	}
	if r.Owner != nil {
		owner := *r.Owner
		c.Owner = &owner
	}
	c.Achievements = append([]string{}, r.Achievements...)
	return &c
}

func (r *Record) HasAchievement(name string) bool {
	for _, a := range r.Achievements {
		if a == name {
			return true
		}
	}
	return false
}

func ClampAffinity(v int) int {
	if v < MinAffinity {
		return MinAffinity
	}
	if v > MaxAffinity {
		return MaxAffinity
	}
	return v
}

// NewRecord builds a live Record with every counter at zero.
func NewRecord(id, kind, label string, origin Location, vitality Vitality, createdAt time.Time) *Record {
	r := &Record{
		ID:        id,
		Kind:      kind,
		Label:     label,
		CreatedAt: createdAt,
		Origin:    origin,
		Vitality:  vitality,
	}
	r.Normalize()
	return r
}

// Artifact is the item-like payload the host carries: a display label,
// lore lines and named string properties.
type Artifact struct {
	ItemType   string            `json:"item_type"`
	Label      string            `json:"label"`
	Lore       []string          `json:"lore"`
	Properties map[string]string `json:"properties"`
	Serial     string            `json:"serial,omitempty"`
}

type SpawnEvent struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Label    string   `json:"label"`
	Location Location `json:"location"`
	Vitality Vitality `json:"vitality"`
}

type TerminateEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	KillerID   string    `json:"killer_id,omitempty"`
	KillerKind string    `json:"killer_kind,omitempty"`
	Location   *Location `json:"location,omitempty"`
}

type InteractEvent struct {
	ID       string `json:"id"`
	Actor    string `json:"actor"`
	ItemType string `json:"item_type,omitempty"`
}

type InspectEvent struct {
	Actor    string   `json:"actor"`
	Artifact Artifact `json:"artifact"`
}

// IssuedArtifact is the audit entry kept for every artifact handed to the
// host.
type IssuedArtifact struct {
	Serial    string    `json:"serial"`
	SubjectID string    `json:"subject_id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	Snapshot  string    `json:"snapshot"`
	Location  Location  `json:"location"`
	IssuedAt  time.Time `json:"issued_at"`
}
