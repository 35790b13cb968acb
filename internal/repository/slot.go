package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mob-ledger/internal/db"

	"github.com/rs/zerolog"
)

// SlotRepository is the host's named string key-value store.
type SlotRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewSlotRepository(queries *db.Queries, logger zerolog.Logger) *SlotRepository {
	return &SlotRepository{
		queries: queries,
		logger:  logger,
	}
}

// Get returns the slot value. found is false when the key was never written.
func (r *SlotRepository) Get(ctx context.Context, key string) (value string, found bool, err error) {
	slot, err := r.queries.GetSlot(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("key", key).Msg("slot not found")
		return "", false, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read slot")
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	r.logger.Debug().
		Str("key", key).
		Int("bytes", len(slot.Value)).
		Time("updated_at", slot.UpdatedAt).
		Msg("slot read")
	return slot.Value, true, nil
}

// Put replaces the slot value. The last write wins.
func (r *SlotRepository) Put(ctx context.Context, key, value string) error {
	err := r.queries.UpsertSlot(ctx, db.UpsertSlotParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write slot")
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}
