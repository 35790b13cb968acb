package service

import (
	"context"
	"time"

	"mob-ledger/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// Scheduler drives the ledger's periodic work: aging every AGE_INTERVAL and
// saving every SAVE_INTERVAL.
type Scheduler struct {
	ledger      *LedgerService
	persistence *PersistenceService
	ageEvery    time.Duration
	saveEvery   time.Duration
	logger      zerolog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewScheduler(cfg *config.Config, ledger *LedgerService, persistence *PersistenceService, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		ledger:      ledger,
		persistence: persistence,
		ageEvery:    cfg.AgeInterval,
		saveEvery:   cfg.SaveInterval,
		logger:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start restores the ledger once and launches the periodic loops.
func (s *Scheduler) Start(ctx context.Context) error {
	result := s.persistence.Restore(ctx)
	s.logger.Info().Str("restore", result.String()).Msg("ledger restored")

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return s.every(gCtx, s.ageEvery, func(ctx context.Context) {
			s.ledger.Age(s.ageEvery)
		})
	})
	g.Go(func() error {
		return s.every(gCtx, s.saveEvery, func(ctx context.Context) {
			// failures are logged by Save and retried on the next tick
			_ = s.persistence.Save(ctx)
		})
	})
	s.group = g

	s.logger.Info().Dur("age_every", s.ageEvery).Dur("save_every", s.saveEvery).Msg("scheduler started")
	return nil
}

// Stop halts the loops and writes a final save.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		if err := s.group.Wait(); err != nil {
			s.logger.Error().Err(err).Msg("scheduler loop failed")
		}
	}
	s.logger.Info().Msg("scheduler stopped, writing final save")
	return s.persistence.Save(ctx)
}

func (s *Scheduler) every(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
