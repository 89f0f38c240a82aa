package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds everything the server process needs. Sources are layered:
// defaults, then an optional TOML file, then the environment (a .env file
// in the working directory is loaded into the environment first).
type Config struct {
	Addr            string `toml:"addr"`
	MongoURI        string `toml:"mongo_uri"`
	Database        string `toml:"database"`
	Collection      string `toml:"collection"`
	LogLevel        string `toml:"log_level"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
	MemoryStore     bool   `toml:"memory_store"`
}

func defaults() *Config {
	return &Config{
		Addr:            ":8080",
		Database:        "todoapp",
		Collection:      "todos",
		LogLevel:        "info",
		ShutdownSeconds: 5,
	}
}

const defaultFile = "todoweb.toml"

// Load builds the configuration. path may be empty, in which case
// todoweb.toml is used when present.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		if _, err := os.Stat(defaultFile); err == nil {
			path = defaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()
	loadFromEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODOWEB_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("TODOWEB_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("TODOWEB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODOWEB_SHUTDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ShutdownSeconds = n
		}
	}
	if v := os.Getenv("TODOWEB_MEMORY_STORE"); v != "" {
		cfg.MemoryStore = v == "1" || v == "true"
	}
}

func (c *Config) validate() error {
	if !c.MemoryStore && c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI must be set (or memory_store enabled)")
	}
	if c.Database == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection name must not be empty")
	}
	return nil
}

// ShutdownTimeout is the grace period for draining in-flight requests.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSeconds) * time.Second
}
