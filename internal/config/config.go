package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Chat   ChatConfig
}

type ServerConfig struct {
	Addr            string        `env:"PORT" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

type AuthConfig struct {
	// Secret verifies identity assertions minted by the external auth
	// service; both sides must share it.
	Secret string `env:"JWT_SECRET,required,notEmpty"`
}

type ChatConfig struct {
	Rooms        []string `env:"ROOMS" envDefault:"general,random,tech"`
	DefaultRoom  string   `env:"DEFAULT_ROOM" envDefault:"general"`
	HistoryLimit int      `env:"HISTORY_LIMIT" envDefault:"100"`
	// Optional; when set the room directory is read from Postgres
	// instead of ROOMS.
	DatabaseURL string `env:"DATABASE_URL"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Chat.HistoryLimit < 1 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.Chat.HistoryLimit)
	}

	return cfg, nil
}
