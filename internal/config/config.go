package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all revise configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Digest   DigestConfig
}

type ServerConfig struct {
	Bind string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type DigestConfig struct {
	Enabled bool
	Hour    int // local hour (0-23) the daily digest fires
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37711,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Digest: DigestConfig{
			Enabled: true,
			Hour:    8,
		},
	}
}

// Load returns the defaults with environment overrides applied. Environment
// is the only config source; .env files are folded in by the CLI before this
// runs.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("REVISE_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("REVISE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REVISE_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REVISE_DIGEST"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Digest.Enabled = on
		}
	}
	if v := os.Getenv("REVISE_DIGEST_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil && hour >= 0 && hour <= 23 {
			cfg.Digest.Hour = hour
		}
	}

	return cfg
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
