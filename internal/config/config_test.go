package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Listen != DefaultListen || cfg.Simulation.Interval != DefaultInterval {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.History.Capacity != 600 || cfg.Simulation.HistoryPolicy != "always" {
		t.Fatalf("history defaults: %+v %+v", cfg.History, cfg.Simulation)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"policy", func(c *Config) { c.Simulation.HistoryPolicy = "sometimes" }},
		{"interval", func(c *Config) { c.Simulation.Interval = time.Millisecond }},
		{"listen", func(c *Config) { c.Listen = "8080" }},
	}
	for _, tc := range cases {
		var cfg Config
		ApplyDefaults(&cfg)
		tc.mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latencyviz.yaml")
	data := []byte(`listen: "0.0.0.0:9090"
simulation:
  interval: 2s
  history_policy: historical
  seed: 42
history:
  capacity: 120
security:
  allowed_origins: ["https://example.com"]
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9090" || cfg.Simulation.Interval != 2*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Simulation.HistoryPolicy != "historical" || cfg.Simulation.Seed != 42 || cfg.History.Capacity != 120 {
		t.Fatalf("simulation=%+v history=%+v", cfg.Simulation, cfg.History)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.RateBurst != DefaultRateBurst {
		t.Fatalf("security=%+v", cfg.Security)
	}
	if !cfg.Auth.Required || cfg.Auth.TokenExpiry != DefaultTokenExpiry {
		t.Fatalf("auth=%+v", cfg.Auth)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LATENCYVIZ_HISTORY_CAPACITY", "30")
	t.Setenv("LATENCYVIZ_AUTH_REQUIRED", "false")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.Capacity != 30 || cfg.Auth.Required {
		t.Fatalf("env not applied: history=%+v auth=%+v", cfg.History, cfg.Auth)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
