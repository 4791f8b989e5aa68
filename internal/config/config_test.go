package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Database.Path != "luckydraw.db" {
		t.Errorf("Database.Path = %q, want luckydraw.db", cfg.Database.Path)
	}
	if cfg.Wheel.Radius != 160 {
		t.Errorf("Wheel.Radius = %g, want 160", cfg.Wheel.Radius)
	}
	if cfg.History.PageSize != 50 {
		t.Errorf("History.PageSize = %d, want 50", cfg.History.PageSize)
	}
	if cfg.Remote.Enabled {
		t.Error("Remote sync must be disabled by default")
	}
}

func TestLoadMergesPartialFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
wheel:
  center_x: 200
  center_y: 200
  radius: 200
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.Wheel.Radius != 200 {
		t.Errorf("Wheel.Radius = %g, want 200", cfg.Wheel.Radius)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.Path != "luckydraw.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.History.PageSize != 50 {
		t.Errorf("History.PageSize = %d, want default 50", cfg.History.PageSize)
	}
	if cfg.Remote.TimeoutMS != 5000 {
		t.Errorf("Remote.TimeoutMS = %d, want default 5000", cfg.Remote.TimeoutMS)
	}
}

func TestLoadKeepsWheelCentersWhenRadiusOmitted(t *testing.T) {
	path := writeConfig(t, `
wheel:
  center_x: 240
  center_y: 240
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Wheel.CenterX != 240 || cfg.Wheel.CenterY != 240 {
		t.Errorf("Wheel centers = (%g, %g), want (240, 240)", cfg.Wheel.CenterX, cfg.Wheel.CenterY)
	}
	if cfg.Wheel.Radius != 160 {
		t.Errorf("Wheel.Radius = %g, want default 160", cfg.Wheel.Radius)
	}
}

func TestLoadRejectsRemoteWithoutBaseURL(t *testing.T) {
	path := writeConfig(t, `
remote:
  enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error when remote sync is enabled without base_url")
	}
}

func TestLoadRejectsBadPageSize(t *testing.T) {
	path := writeConfig(t, `
history:
  page_size: 9999
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for out-of-range page_size")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "listen: [:::")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}
