package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath          string        `env:"DB_PATH" envDefault:"ledger.db"`
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SlotKey         string        `env:"SLOT_KEY" envDefault:"tagvalhalla:data"`
	AgeInterval     time.Duration `env:"AGE_INTERVAL" envDefault:"1s"`
	SaveInterval    time.Duration `env:"SAVE_INTERVAL" envDefault:"5s"`
	HostBridgeURL   string        `env:"HOST_BRIDGE_URL"`
	HostBridgeToken string        `env:"HOST_BRIDGE_TOKEN"`
	CatalogPath     string        `env:"CATALOG_PATH"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("slot_key", cfg.SlotKey).
		Dur("age_interval", cfg.AgeInterval).
		Dur("save_interval", cfg.SaveInterval).
		Bool("host_bridge", cfg.HostBridgeURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SlotKey == "" {
		return fmt.Errorf("SLOT_KEY must not be empty")
	}
	if c.AgeInterval <= 0 {
		return fmt.Errorf("AGE_INTERVAL must be positive, got %s", c.AgeInterval)
	}
	if c.SaveInterval <= 0 {
		return fmt.Errorf("SAVE_INTERVAL must be positive, got %s", c.SaveInterval)
	}
	return nil
}

var Module = fx.Provide(Load)
