package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Phase timings. Turn and vote timers bound how long a stalled or
	// disconnected player can hold up a room.
	TurnDuration  time.Duration `env:"TURN_DURATION" envDefault:"30s"`
	VoteDuration  time.Duration `env:"VOTE_DURATION" envDefault:"15s"`
	ResetDuration time.Duration `env:"RESET_DURATION" envDefault:"10s"`

	DefaultMaxPlayers int `env:"DEFAULT_MAX_PLAYERS" envDefault:"8"`

	// Per-connection websocket message budget (sliding window).
	RateLimitMessages int           `env:"RATE_LIMIT_MESSAGES" envDefault:"20"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
