package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"mob-ledger/internal/config"
	"mob-ledger/internal/constants"
	fxmodules "mob-ledger/internal/fx"
	"mob-ledger/internal/middleware"
	"mob-ledger/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	ledgerServer *server.LedgerServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	ledgerServer.Routes(mux)

	// the host bridge and dashboards call from other origins
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      c.Handler(middleware.RequestID(logger)(middleware.Recover(mux))),
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// bind before returning so a taken port fails startup
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info().Str("addr", ln.Addr().String()).Msg("ledger ingress listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("ledger ingress stopped unexpectedly")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("ledger ingress shutdown failed")
				return err
			}
			logger.Info().Msg("ledger ingress stopped")
			return nil
		},
	})
}
