package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mob-ledger/internal/domain"

	"github.com/rs/zerolog"
)

// Result reports how a mutation was absorbed. Mutations never fail; a
// caller that cares can branch on the Result instead of an error.
type Result int

const (
	Applied Result = iota
	MissingRecord
	Ignored
	Reset
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case MissingRecord:
		return "missing_record"
	case Ignored:
		return "ignored"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

var ErrMalformedBlob = errors.New("malformed slot blob")

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPlayerMatcher sets the predicate that decides whether a victim kind
// counts as a player kill.
func WithPlayerMatcher(isPlayer func(kind string) bool) Option {
	return func(s *Store) { s.isPlayer = isPlayer }
}

// Store is the live record map. It is not safe for concurrent use; the
// owner is expected to serialize calls.
type Store struct {
	records  map[string]*domain.Record
	now      func() time.Time
	isPlayer func(string) bool
	logger   zerolog.Logger
}

func New(logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		records: make(map[string]*domain.Record),
		now:     time.Now,
		isPlayer: func(kind string) bool {
			return strings.Contains(kind, "player")
		},
		logger: logger.With().Str("component", "record_store").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a subject. If id is already live the existing record is
// returned with created=false.
func (s *Store) Create(id, kind, label string, origin domain.Location, vitality domain.Vitality) (rec *domain.Record, created bool) {
	if existing, ok := s.records[id]; ok {
		s.logger.Debug().Str("id", id).Msg("record already exists")
		return existing.Clone(), false
	}
	createdAt := s.now().UTC().Truncate(time.Millisecond)
	r := domain.NewRecord(id, kind, label, origin, vitality, createdAt)
	s.records[id] = r
	s.logger.Debug().Str("id", id).Str("kind", kind).Msg("record created")
	return r.Clone(), true
}

func (s *Store) Get(id string) (*domain.Record, bool) {
	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (s *Store) Remove(id string) bool {
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	s.logger.Debug().Str("id", id).Msg("record removed")
	return true
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Records returns copies of every live record ordered by id.
func (s *Store) Records() []*domain.Record {
	out := make([]*domain.Record, 0, len(s.records))
	for _, id := range s.IDs() {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Tick recomputes ages from the clock. delta is the caller's interval and
// only informs logging; age is always derived from createdAt.
func (s *Store) Tick(delta time.Duration) {
	now := s.now()
	for _, r := range s.records {
		age := int64(now.Sub(r.CreatedAt) / time.Second)
		if age > r.AgeSeconds {
			r.AgeSeconds = age
		}
	}
	s.logger.Trace().Dur("delta", delta).Int("records", len(s.records)).Msg("records aged")
}

func (s *Store) RecordInteraction(id string, kind domain.InteractionKind) Result {
	r, ok := s.records[id]
	if !ok {
		return MissingRecord
	}
	if !kind.Valid() {
		s.logger.Debug().Str("id", id).Str("interaction", string(kind)).Msg("unrecognized interaction ignored")
		return Ignored
	}
	r.Interactions[kind]++
	return Applied
}

func (s *Store) AdjustAffinity(id string, delta int) Result {
	r, ok := s.records[id]
	if !ok {
		return MissingRecord
	}
	// compare against the headroom first so extreme deltas cannot overflow
	switch {
	case delta > domain.MaxAffinity-r.Affinity:
		r.Affinity = domain.MaxAffinity
	case delta < domain.MinAffinity-r.Affinity:
		r.Affinity = domain.MinAffinity
	default:
		r.Affinity += delta
	}
	return Applied
}

func (s *Store) RecordKill(killerID, victimKind string) Result {
	r, ok := s.records[killerID]
	if !ok {
		return MissingRecord
	}
	if s.isPlayer(victimKind) {
		r.Kills.Players++
	} else {
		r.Kills.Others++
	}
	r.Kills.ByKind[victimKind]++
	return Applied
}

func (s *Store) SetOwnerOnce(id, owner string) Result {
	r, ok := s.records[id]
	if !ok {
		return MissingRecord
	}
	if r.Owner != nil {
		return Ignored
	}
	r.Owner = &owner
	s.logger.Debug().Str("id", id).Str("owner", owner).Msg("owner set")
	return Applied
}

// AddAchievement appends name unless the record already holds it.
func (s *Store) AddAchievement(id, name string) Result {
	r, ok := s.records[id]
	if !ok {
		return MissingRecord
	}
	if name == "" || r.HasAchievement(name) {
		return Ignored
	}
	r.Achievements = append(r.Achievements, name)
	s.logger.Debug().Str("id", id).Str("achievement", name).Msg("achievement unlocked")
	return Applied
}

type slotBlob struct {
	Records   map[string]*domain.Record `json:"records"`
	LastSaved int64                     `json:"lastSaved"`
}

func (s *Store) SerializeAll() ([]byte, error) {
	blob := slotBlob{
		Records:   s.records,
		LastSaved: s.now().UnixMilli(),
	}
	b, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize records: %w", err)
	}
	return b, nil
}

// RestoreAll replaces the live map with the contents of blob. An empty or
// malformed blob leaves the store empty and reports Reset.
func (s *Store) RestoreAll(blob []byte) Result {
	s.records = make(map[string]*domain.Record)
	if len(blob) == 0 {
		s.logger.Info().Msg("no saved records, starting empty")
		return Reset
	}
	records, err := decodeBlob(blob)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to restore records, starting empty")
		return Reset
	}
	for id, r := range records {
		if r == nil {
			continue
		}
		r.ID = id
		s.records[id] = r
	}
	s.logger.Info().Int("records", len(s.records)).Msg("records restored")
	return Applied
}

func decodeBlob(blob []byte) (map[string]*domain.Record, error) {
	if err := validateBlob(blob); err != nil {
		return nil, err
	}
	var decoded slotBlob
	if err := json.Unmarshal(blob, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return decoded.Records, nil
}
