package logger

import (
	"io"
	"os"

	"mob-ledger/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const service = "mob-ledger"

// New builds the process logger. It starts at debug so config loading is
// visible; ApplyLevel narrows it once LOG_LEVEL is known.
func New() zerolog.Logger {
	return build(os.Stdout, zerolog.DebugLevel)
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Str("service", service).
		Logger().
		Level(level)
}

// ApplyLevel sets the global level from LOG_LEVEL.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping debug")
		return
	}
	zerolog.SetGlobalLevel(level)
	logger.Debug().Str("log_level", level.String()).Msg("log level applied")
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(ApplyLevel),
)
