package service

import (
	"context"
	"fmt"

	"mob-ledger/internal/config"
	"mob-ledger/internal/constants"
	"mob-ledger/internal/metrics"
	"mob-ledger/internal/store"

	"github.com/rs/zerolog"
)

// SlotStore is the host's persistent key-value slot.
type SlotStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
}

// PersistenceService moves the whole ledger in and out of one slot.
type PersistenceService struct {
	ledger  *LedgerService
	slots   SlotStore
	key     string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewPersistenceService(cfg *config.Config, ledger *LedgerService, slots SlotStore, m *metrics.Metrics, logger zerolog.Logger) *PersistenceService {
	return &PersistenceService{
		ledger:  ledger,
		slots:   slots,
		key:     cfg.SlotKey,
		metrics: m,
		logger:  logger.With().Str("component", "persistence").Str("slot", cfg.SlotKey).Logger(),
	}
}

// Restore loads the slot into the ledger. A missing, unreadable or corrupt
// slot leaves the ledger empty.
func (s *PersistenceService) Restore(ctx context.Context) store.Result {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	value, found, err := s.slots.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read slot, starting empty")
		return s.ledger.Restore(nil)
	}
	if !found {
		s.logger.Info().Msg("slot empty, starting fresh")
	}
	return s.ledger.Restore([]byte(value))
}

// Save writes every live record to the slot.
func (s *PersistenceService) Save(ctx context.Context) error {
	blob, err := s.ledger.Serialize()
	if err != nil {
		s.metrics.SlotWrites.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("failed to serialize ledger")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.slots.Put(ctx, s.key, string(blob)); err != nil {
		s.metrics.SlotWrites.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("failed to save ledger")
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	s.metrics.SlotWrites.WithLabelValues("ok").Inc()
	s.logger.Debug().Int("bytes", len(blob)).Msg("ledger saved")
	return nil
}
