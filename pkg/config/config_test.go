package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blokdust/pkg/pool"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[history]
max_operations = 5

[particles]
min = 2
max = 4
policy = "strict"

[storage]
driver = "redis"
redis_url = "redis://localhost:6379/1"
redis_ttl = "1h"
timeout = "3s"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.MaxOperations != 5 {
		t.Errorf("MaxOperations = %d, want 5", cfg.History.MaxOperations)
	}
	if cfg.ParticlePolicy() != pool.PolicyStrict {
		t.Errorf("ParticlePolicy() = %v, want strict", cfg.ParticlePolicy())
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.RedisTTL != time.Hour || cfg.Storage.Timeout != 3*time.Second {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Codec.Level != "default" {
		t.Errorf("Codec.Level = %q, want default kept", cfg.Codec.Level)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[history\n", "config"},
		{"unknown key", "[history]\ndepth = 3\n", "unknown key"},
		{"wrong type", "[history]\nmax_operations = \"many\"\n", "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BLOKDUST_STORAGE_DRIVER", "http")
	t.Setenv("BLOKDUST_HTTP_URL", "http://localhost:8080")
	t.Setenv("BLOKDUST_MAX_OPERATIONS", "7")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Storage.Driver != "http" || cfg.Storage.HTTPURL != "http://localhost:8080" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.History.MaxOperations != 7 {
		t.Errorf("MaxOperations = %d, want 7", cfg.History.MaxOperations)
	}

	t.Setenv("BLOKDUST_MAX_OPERATIONS", "lots")
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("ApplyEnv() accepted non-numeric BLOKDUST_MAX_OPERATIONS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative history", func(c *Config) { c.History.MaxOperations = -1 }},
		{"min above max", func(c *Config) { c.Particles.Min = 20; c.Particles.Max = 10 }},
		{"zero max", func(c *Config) { c.Particles.Min = 0; c.Particles.Max = 0 }},
		{"policy", func(c *Config) { c.Particles.Policy = "grow" }},
		{"codec level", func(c *Config) { c.Codec.Level = "max" }},
		{"storage driver", func(c *Config) { c.Storage.Driver = "tape" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() succeeded")
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", appName, "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
