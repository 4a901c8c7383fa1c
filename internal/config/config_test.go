package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FRONTENDENGINE_LOG_LEVEL", "")
	t.Setenv("FRONTENDENGINE_METRICS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if !cfg.Metrics {
		t.Error("Metrics = false, want true by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FRONTENDENGINE_LOG_LEVEL", "debug")
	t.Setenv("FRONTENDENGINE_METRICS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Metrics {
		t.Error("Metrics = true, want false")
	}
}

func TestLoad_InvalidMetricsValue(t *testing.T) {
	t.Setenv("FRONTENDENGINE_METRICS", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail for non-boolean FRONTENDENGINE_METRICS")
	}
}
