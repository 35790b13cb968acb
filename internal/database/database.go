package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"mob-ledger/internal/config"
	"mob-ledger/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ledgerPragmas tune SQLite for one writer saving a single large slot value
// every few seconds, with occasional small artifact log inserts.
var ledgerPragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"temp_store", "MEMORY"},
}

// New opens the SQLite file that backs the host slot and the artifact log,
// tunes it and brings the schema up to date.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	log := logger.With().Str("component", "database").Str("path", cfg.DBPath).Logger()
	log.Info().Msg("opening ledger database")

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := prepare(ctx, db, log); err != nil {
		db.Close()
		log.Error().Err(err).Msg("database setup failed")
		return nil, err
	}

	log.Info().Msg("database ready")
	return db, nil
}

func prepare(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	for _, p := range ledgerPragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
		log.Debug().Str("pragma", p.name).Str("value", p.value).Msg("SQLite pragma set")
	}
	return migrate(ctx, db, log)
}

func migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}
