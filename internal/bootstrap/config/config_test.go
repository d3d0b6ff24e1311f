package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Fatalf("generation.model = %q", cfg.Generation.Model)
	}
	if cfg.Mediation.VariantCount != 4 || cfg.Mediation.IssueCodeAttempts != 10 {
		t.Fatalf("mediation = %+v", cfg.Mediation)
	}
	if cfg.Lock.Backend != "local" || cfg.Lock.TTL != 2*time.Minute {
		t.Fatalf("lock = %+v", cfg.Lock)
	}
}

func TestLoadReadsYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
database:
  dsn: "file:talk.sqlite"
generation:
  model: "gpt-4.1-mini"
  timeout: 15s
cache:
  backend: none
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GT_GENERATION_API_KEY", "sk-test")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "file:talk.sqlite" {
		t.Fatalf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Generation.Model != "gpt-4.1-mini" || cfg.Generation.Timeout != 15*time.Second {
		t.Fatalf("generation = %+v", cfg.Generation)
	}
	if cfg.Generation.APIKey != "sk-test" {
		t.Fatalf("generation.api_key = %q", cfg.Generation.APIKey)
	}
	if cfg.Cache.Backend != "none" {
		t.Fatalf("cache.backend = %q", cfg.Cache.Backend)
	}
}

func TestValidateRejectsRedisWithoutURL(t *testing.T) {
	cfg := Default()
	cfg.Lock.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() expected error for redis lock without url")
	}

	cfg = Default()
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() expected error for unknown cache backend")
	}
}
