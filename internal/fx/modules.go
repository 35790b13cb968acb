package fx

import (
	"context"
	"database/sql"

	"mob-ledger/internal/api"
	"mob-ledger/internal/catalog"
	"mob-ledger/internal/codec"
	"mob-ledger/internal/config"
	"mob-ledger/internal/database"
	"mob-ledger/internal/db"
	"mob-ledger/internal/logger"
	"mob-ledger/internal/metrics"
	"mob-ledger/internal/repository"
	"mob-ledger/internal/server"
	"mob-ledger/internal/service"
	"mob-ledger/internal/store"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideDB opens the database and closes it on stop. Hooks stop in reverse
// order, so anything that saves through the database stops first.
func ProvideDB(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	sqlDB, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
	return sqlDB, nil
}

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.CatalogPath)
}

func ProvideStore(cat *catalog.Catalog, logger zerolog.Logger) *store.Store {
	return store.New(logger, store.WithPlayerMatcher(cat.IsPlayer))
}

func ProvideCodec(cat *catalog.Catalog, logger zerolog.Logger) *codec.Codec {
	return codec.New(cat.NametagItem(), logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideDB),
	fx.Provide(ProvideQueries),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(
		fx.Annotate(repository.NewSlotRepository, fx.As(new(service.SlotStore))),
		fx.Annotate(repository.NewArtifactRepository, fx.As(new(service.ArtifactLog))),
	),
	// domain
	fx.Provide(ProvideCatalog),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideCodec),
	// host bridge
	fx.Provide(api.NewSink),
	// svc
	fx.Provide(service.NewLedgerService),
	fx.Provide(service.NewPersistenceService),
	fx.Provide(service.NewScheduler),
	fx.Invoke(service.RegisterScheduler),
	// server
	fx.Provide(server.NewLedgerServer),
)
