// Package config loads blokdust settings from a TOML file and the
// environment.
//
// Precedence, lowest first: [Default], the config file, BLOKDUST_*
// environment variables, command-line flags (applied by the CLI).
//
// # File format
//
//	[history]
//	max_operations = 50
//
//	[particles]
//	min = 10
//	max = 100
//	policy = "reuse"
//
//	[storage]
//	driver = "file"
//	dir = "/var/lib/blokdust"
//	timeout = "10s"
//
//	[codec]
//	level = "default"
//
//	[server]
//	addr = ":8080"
//
// # Environment
//
// BLOKDUST_STORAGE_DRIVER, BLOKDUST_STORAGE_DIR, BLOKDUST_REDIS_URL,
// BLOKDUST_MONGO_URI, BLOKDUST_S3_BUCKET, BLOKDUST_S3_REGION,
// BLOKDUST_S3_ENDPOINT, BLOKDUST_HTTP_URL, BLOKDUST_SERVER_ADDR,
// BLOKDUST_MAX_OPERATIONS and BLOKDUST_CODEC_LEVEL override the matching
// settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blokdust/pkg/codec"
	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/history"
	"github.com/matzehuels/blokdust/pkg/pool"
	"github.com/matzehuels/blokdust/pkg/storage"
)

const appName = "blokdust"

// Default particle pool bounds.
const (
	DefaultParticlesMin = 10
	DefaultParticlesMax = 100
)

// DefaultServerAddr is the listen address of the storage server.
const DefaultServerAddr = ":8080"

// Config holds every configurable setting.
type Config struct {
	History   History        `toml:"history"`
	Particles Particles      `toml:"particles"`
	Storage   storage.Config `toml:"storage"`
	Codec     Codec          `toml:"codec"`
	Server    Server         `toml:"server"`
}

// History configures the undo ledger.
type History struct {
	MaxOperations int `toml:"max_operations"`
}

// Particles configures the particle pool.
type Particles struct {
	Min    int    `toml:"min"`
	Max    int    `toml:"max"`
	Policy string `toml:"policy"`
}

// Codec configures compression.
type Codec struct {
	Level string `toml:"level"`
}

// Server configures the storage server.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration: file storage in the default
// data directory, a 50-step history and a 10..100 particle pool.
func Default() Config {
	return Config{
		History:   History{MaxOperations: history.DefaultMaxOperations},
		Particles: Particles{Min: DefaultParticlesMin, Max: DefaultParticlesMax, Policy: pool.PolicyReuse.String()},
		Storage:   storage.Config{Driver: storage.DriverFile, Timeout: 10 * time.Second},
		Codec:     Codec{Level: "default"},
		Server:    Server{Addr: DefaultServerAddr},
	}
}

// Load reads path on top of [Default]. A missing file is not an error.
// The environment is not consulted; call [Config.ApplyEnv] for that.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/blokdust/config.toml, falling back to
// ~/.config/blokdust/config.toml.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// ApplyEnv overrides settings from BLOKDUST_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"BLOKDUST_STORAGE_DRIVER", &c.Storage.Driver},
		{"BLOKDUST_STORAGE_DIR", &c.Storage.Dir},
		{"BLOKDUST_REDIS_URL", &c.Storage.RedisURL},
		{"BLOKDUST_MONGO_URI", &c.Storage.MongoURI},
		{"BLOKDUST_S3_BUCKET", &c.Storage.S3Bucket},
		{"BLOKDUST_S3_REGION", &c.Storage.S3Region},
		{"BLOKDUST_S3_ENDPOINT", &c.Storage.S3Endpoint},
		{"BLOKDUST_HTTP_URL", &c.Storage.HTTPURL},
		{"BLOKDUST_SERVER_ADDR", &c.Server.Addr},
		{"BLOKDUST_CODEC_LEVEL", &c.Codec.Level},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.key); ok {
			*s.dst = v
		}
	}
	if v, ok := os.LookupEnv("BLOKDUST_MAX_OPERATIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "BLOKDUST_MAX_OPERATIONS: %q is not a number", v)
		}
		c.History.MaxOperations = n
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.History.MaxOperations < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "history.max_operations must not be negative")
	}
	if c.Particles.Min < 0 || c.Particles.Max < 1 || c.Particles.Min > c.Particles.Max {
		return errs.New(errs.ErrCodeInvalidInput, "particles: need 0 <= min <= max and max >= 1, got min=%d max=%d",
			c.Particles.Min, c.Particles.Max)
	}
	if _, err := pool.ParsePolicy(c.Particles.Policy); err != nil {
		return fmt.Errorf("particles: %w", err)
	}
	if _, err := codec.ParseLevel(c.Codec.Level); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

// ParticlePolicy returns the parsed particle pool policy.
func (c Config) ParticlePolicy() pool.Policy {
	p, _ := pool.ParsePolicy(c.Particles.Policy)
	return p
}
