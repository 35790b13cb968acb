package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mob-ledger/internal/db"
	"mob-ledger/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ArtifactRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewArtifactRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ArtifactRepository) Insert(ctx context.Context, entry domain.IssuedArtifact) error {
	return r.InsertBatch(ctx, []domain.IssuedArtifact{entry})
}

func (r *ArtifactRepository) InsertBatch(ctx context.Context, entries []domain.IssuedArtifact) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for _, entry := range entries {
		serial := entry.Serial
		if serial == "" {
			serial, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		err := qtx.InsertArtifact(ctx, db.InsertArtifactParams{
			Serial:    serial,
			SubjectID: entry.SubjectID,
			Kind:      entry.Kind,
			Label:     entry.Label,
			Snapshot:  entry.Snapshot,
			Realm:     entry.Location.Realm,
			X:         int64(entry.Location.X),
			Y:         int64(entry.Location.Y),
			Z:         int64(entry.Location.Z),
			IssuedAt:  entry.IssuedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to insert artifact for %s: %w", entry.SubjectID, err)
		}
	}

	return tx.Commit()
}

func (r *ArtifactRepository) GetBySubject(ctx context.Context, subjectID string, limit int) ([]domain.IssuedArtifact, error) {
	rows, err := r.queries.ListArtifactsBySubject(ctx, db.ListArtifactsBySubjectParams{
		SubjectID: subjectID,
		Limit:     int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return toIssuedArtifacts(rows), nil
}

func (r *ArtifactRepository) Recent(ctx context.Context, limit int) ([]domain.IssuedArtifact, error) {
	rows, err := r.queries.ListRecentArtifacts(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	return toIssuedArtifacts(rows), nil
}

func toIssuedArtifacts(rows []db.ArtifactLog) []domain.IssuedArtifact {
	result := make([]domain.IssuedArtifact, len(rows))
	for i, row := range rows {
		result[i] = domain.IssuedArtifact{
			Serial:    row.Serial,
			SubjectID: row.SubjectID,
			Kind:      row.Kind,
			Label:     row.Label,
			Snapshot:  row.Snapshot,
			Location: domain.Location{
				Realm: row.Realm,
				X:     int(row.X),
				Y:     int(row.Y),
				Z:     int(row.Z),
			},
			IssuedAt: row.IssuedAt,
		}
	}
	return result
}
