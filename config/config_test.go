package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load should not fail on a missing file: %v", err)
	}

	if cfg.EngineConfig.RegimePeriod != 14 {
		t.Errorf("Expected default regime period 14, got %d", cfg.EngineConfig.RegimePeriod)
	}
	if cfg.EngineConfig.CacheTTL != 5*time.Minute {
		t.Errorf("Expected default cache TTL 5m, got %s", cfg.EngineConfig.CacheTTL)
	}
	if cfg.LoggingConfig.Level != "info" || cfg.LoggingConfig.Output != "stdout" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.LoggingConfig)
	}
	if cfg.RedisConfig.Enabled {
		t.Error("Redis should default to disabled")
	}
	if cfg.RedisConfig.KeyPrefix != "snapshot" {
		t.Errorf("Expected default key prefix, got %q", cfg.RedisConfig.KeyPrefix)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"engine": {"regime_period": 20},
		"logging": {"level": "debug", "json_format": true},
		"redis": {"enabled": true, "address": "redis:6379"}
	}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.EngineConfig.RegimePeriod != 20 {
		t.Errorf("Expected regime period 20 from file, got %d", cfg.EngineConfig.RegimePeriod)
	}
	if cfg.LoggingConfig.Level != "debug" {
		t.Errorf("Expected level debug from file, got %q", cfg.LoggingConfig.Level)
	}
	if !cfg.RedisConfig.Enabled || cfg.RedisConfig.Address != "redis:6379" {
		t.Errorf("Unexpected redis config: %+v", cfg.RedisConfig)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ENGINE_CACHE_TTL", "90s")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LoggingConfig.Level != "warn" {
		t.Errorf("Env should override the log level, got %q", cfg.LoggingConfig.Level)
	}
	if cfg.EngineConfig.CacheTTL != 90*time.Second {
		t.Errorf("Env should override the cache TTL, got %s", cfg.EngineConfig.CacheTTL)
	}
	if !cfg.RedisConfig.Enabled {
		t.Error("Env should enable Redis")
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	if err := GenerateSampleConfig(path); err != nil {
		t.Fatalf("GenerateSampleConfig failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Sample config should round-trip: %v", err)
	}
	if cfg.EngineConfig.RegimePeriod != 14 {
		t.Errorf("Unexpected sample regime period %d", cfg.EngineConfig.RegimePeriod)
	}
}
