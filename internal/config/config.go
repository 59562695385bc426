package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultJWTSecret is the JWT_SECRET used when none is configured. Tokens
// signed with it can be forged by anyone who has read this file.
const DefaultJWTSecret = "insecure-development-secret"

// Config holds every setting of the server. Values come from an optional
// YAML file and are overridden by environment variables.
type Config struct {
	HTTPAddr   string `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	StaticDir  string `yaml:"static-dir" env:"STATIC_DIR" env-default:"./web"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./master.db"`
	JWTSecret  string `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"insecure-development-secret"`

	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
	Game      Game      `yaml:"game"`
}

type Redis struct {
	ConnString string        `yaml:"conn-string" env:"REDIS_CONNSTRING" env-default:"localhost:6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
}

type Telemetry struct {
	// CollectorAddr is the OTLP gRPC endpoint. Empty disables export.
	CollectorAddr string `yaml:"collector-addr" env:"OTEL_COLLECTOR_ADDR"`
	ServiceName   string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"minimax-tictactoe"`
}

type Game struct {
	ThinkDelay     time.Duration `yaml:"think-delay" env:"THINK_DELAY" env-default:"500ms"`
	FirstTurn      string        `yaml:"first-turn" env:"FIRST_TURN" env-default:"player"`
	ReconnectGrace time.Duration `yaml:"reconnect-grace" env:"RECONNECT_GRACE" env-default:"60s"`
}

// Load reads the configuration from path, or from the environment alone when
// path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	switch cfg.Game.FirstTurn {
	case "player", "computer", "random":
	default:
		return nil, fmt.Errorf("invalid first turn policy %q", cfg.Game.FirstTurn)
	}
	if cfg.Game.ThinkDelay < 0 {
		return nil, fmt.Errorf("think delay must not be negative, got %s", cfg.Game.ThinkDelay)
	}
	return cfg, nil
}

// UsesDefaultJWTSecret reports whether tokens are signed with DefaultJWTSecret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
