package service

import (
	"context"
	"sync"
	"time"

	"mob-ledger/internal/api"
	"mob-ledger/internal/catalog"
	"mob-ledger/internal/codec"
	"mob-ledger/internal/constants"
	"mob-ledger/internal/domain"
	"mob-ledger/internal/metrics"
	"mob-ledger/internal/store"

	"github.com/rs/zerolog"
)

// ArtifactLog keeps an audit trail of issued artifacts.
type ArtifactLog interface {
	Insert(ctx context.Context, entry domain.IssuedArtifact) error
	GetBySubject(ctx context.Context, subjectID string, limit int) ([]domain.IssuedArtifact, error)
	Recent(ctx context.Context, limit int) ([]domain.IssuedArtifact, error)
}

var defaultVitality = domain.Vitality{Current: 20, Max: 20}

// LedgerService routes host events into the record store. It is the single
// caller of the store: every store call happens under mu.
type LedgerService struct {
	mu        sync.Mutex
	store     *store.Store
	codec     *codec.Codec
	catalog   *catalog.Catalog
	sink      api.Sink
	artifacts ArtifactLog
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

func NewLedgerService(
	st *store.Store,
	cd *codec.Codec,
	cat *catalog.Catalog,
	sink api.Sink,
	artifacts ArtifactLog,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		store:     st,
		codec:     cd,
		catalog:   cat,
		sink:      sink,
		artifacts: artifacts,
		metrics:   m,
		now:       time.Now,
		logger:    logger.With().Str("component", "ledger").Logger(),
	}
}

// Spawned registers a newly observed subject. Untracked kinds and repeated
// spawns of a live id are ignored.
func (s *LedgerService) Spawned(ctx context.Context, ev domain.SpawnEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" || !s.catalog.IsTracked(ev.Kind) {
		s.metrics.Event("spawned", "ignored")
		return false
	}

	vitality := ev.Vitality
	if vitality.Max <= 0 {
		vitality = defaultVitality
	}

	_, created := s.store.Create(ev.ID, ev.Kind, ev.Label, ev.Location, vitality)
	if !created {
		s.metrics.Event("spawned", "duplicate")
		return false
	}

	s.logger.Info().Str("id", ev.ID).Str("kind", ev.Kind).Msg("subject registered")
	s.metrics.Event("spawned", "applied")
	s.metrics.LiveRecords.Set(float64(s.store.Len()))
	return true
}

// Terminated issues an artifact for a recorded subject, drops its record and
// credits the killer. The returned artifact is nil when the subject had no
// record.
func (s *LedgerService) Terminated(ctx context.Context, ev domain.TerminateEvent) *domain.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	victimKind := ev.Kind
	var issued *domain.Artifact

	if rec, ok := s.store.Get(ev.ID); ok {
		if victimKind == "" {
			victimKind = rec.Kind
		}
		at := rec.Origin
		if ev.Location != nil {
			at = *ev.Location
		}

		artifact := s.codec.NewArtifact(rec)
		issued = &artifact
		s.deliverArtifact(ctx, rec, at, artifact)

		s.store.Remove(ev.ID)
		s.metrics.LiveRecords.Set(float64(s.store.Len()))
		s.metrics.Event("terminated", "artifact_issued")
	} else {
		s.metrics.Event("terminated", "untracked")
	}

	if ev.KillerID != "" && victimKind != "" {
		if s.store.RecordKill(ev.KillerID, victimKind) == store.Applied {
			s.logger.Debug().Str("killer_id", ev.KillerID).Str("victim_kind", victimKind).Msg("kill recorded")
			s.award(ev.KillerID, constants.AchievementFirstKill)
			if s.catalog.IsPlayer(victimKind) {
				s.award(ev.KillerID, constants.AchievementPlayerSlayer)
			}
		}
	}

	return issued
}

func (s *LedgerService) deliverArtifact(ctx context.Context, rec *domain.Record, at domain.Location, artifact domain.Artifact) {
	sinkCtx, cancel := context.WithTimeout(ctx, constants.HostBridgeTimeout)
	defer cancel()

	if err := s.sink.PlaceArtifact(sinkCtx, at, artifact); err != nil {
		s.logger.Warn().Err(err).Str("id", rec.ID).Msg("failed to place artifact")
	} else {
		s.metrics.ArtifactsIssued.Inc()
		s.logger.Info().Str("id", rec.ID).Str("serial", artifact.Serial).Msg("artifact issued")
	}

	if s.artifacts == nil {
		return
	}
	entry := domain.IssuedArtifact{
		Serial:    artifact.Serial,
		SubjectID: rec.ID,
		Kind:      rec.Kind,
		Label:     rec.Label,
		Snapshot:  artifact.Properties[codec.PropertyKey],
		Location:  at,
		IssuedAt:  s.now().UTC(),
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer dbCancel()
	if err := s.artifacts.Insert(dbCtx, entry); err != nil {
		s.logger.Warn().Err(err).Str("id", rec.ID).Msg("failed to log artifact")
	}
}

// Interacted applies a player interaction. An empty hand pets, food feeds,
// healing items heal; anything else leaves the counters alone. Tameable
// subjects take the first interacting actor as owner.
func (s *LedgerService) Interacted(ctx context.Context, ev domain.InteractEvent) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(ev.ID)
	if !ok {
		s.metrics.Event("interacted", store.MissingRecord.String())
		return store.MissingRecord
	}

	result := store.Ignored
	if kind, ok := s.catalog.ClassifyItem(ev.ItemType); ok {
		result = s.store.RecordInteraction(ev.ID, kind)
		if result == store.Applied {
			s.store.AdjustAffinity(ev.ID, s.catalog.AffinityGain(kind))
		}
	}

	if ev.Actor != "" && s.catalog.IsTameable(rec.Kind) {
		if s.store.SetOwnerOnce(ev.ID, ev.Actor) == store.Applied {
			s.award(ev.ID, constants.AchievementTamed)
		}
	}

	if updated, ok := s.store.Get(ev.ID); ok && updated.Affinity >= domain.MaxAffinity {
		s.award(ev.ID, constants.AchievementBestFriend)
	}

	s.metrics.Event("interacted", result.String())
	return result
}

// Inspected renders a recognized artifact for the inspecting actor. ok is
// false when the payload is not an information artifact.
func (s *LedgerService) Inspected(ctx context.Context, ev domain.InspectEvent) (text string, ok bool) {
	rec, ok := s.codec.ReadArtifact(ev.Artifact)
	if !ok {
		s.metrics.Event("inspected", "unrecognized")
		return "", false
	}

	text = codec.RenderDetailed(&rec)
	if ev.Actor != "" {
		sinkCtx, cancel := context.WithTimeout(ctx, constants.HostBridgeTimeout)
		defer cancel()
		if err := s.sink.SendText(sinkCtx, ev.Actor, text); err != nil {
			s.logger.Warn().Err(err).Str("actor", ev.Actor).Msg("failed to send artifact details")
		}
	}

	s.metrics.Event("inspected", "applied")
	return text, true
}

// Age advances every record's age and awards the elder achievement.
func (s *LedgerService) Age(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Tick(delta)
	for _, rec := range s.store.Records() {
		if rec.AgeSeconds >= constants.ElderAgeSeconds {
			s.award(rec.ID, constants.AchievementElder)
		}
	}
}

func (s *LedgerService) award(id, achievement string) {
	if s.store.AddAchievement(id, achievement) == store.Applied {
		s.logger.Info().Str("id", id).Str("achievement", achievement).Msg("achievement awarded")
	}
}

func (s *LedgerService) Serialize() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SerializeAll()
}

func (s *LedgerService) Restore(blob []byte) store.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.store.RestoreAll(blob)
	s.metrics.Restores.WithLabelValues(result.String()).Inc()
	s.metrics.LiveRecords.Set(float64(s.store.Len()))
	return result
}

func (s *LedgerService) Record(id string) (*domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

func (s *LedgerService) Records() []*domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Records()
}

func (s *LedgerService) ArtifactHistory(ctx context.Context, subjectID string, limit int) ([]domain.IssuedArtifact, error) {
	if s.artifacts == nil {
		return []domain.IssuedArtifact{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if subjectID == "" {
		return s.artifacts.Recent(ctx, limit)
	}
	return s.artifacts.GetBySubject(ctx, subjectID, limit)
}
