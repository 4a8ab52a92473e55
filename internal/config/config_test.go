package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := NewLoader().Parse([]byte("server:\n  request_logging: true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Server.MaxConcurrent != 4 {
		t.Errorf("max_concurrent = %d, want 4", cfg.Server.MaxConcurrent)
	}
	if !cfg.Server.RequestLogging {
		t.Error("request_logging lost")
	}
	if cfg.Defaults.PrinterBedSize != 300 || cfg.Defaults.SafetyMargin != 5 || cfg.Defaults.HeightAxis != "z" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
}

func TestParseFullConfig(t *testing.T) {
	data := []byte(`
server:
  address: ":9090"
  max_concurrent: 8
limits:
  max_upload_mb: 50
  max_triangles: 100000
  max_depth: 32
  timeout: 5m
  workers: 2
defaults:
  printer_bed_size: 220
  safety_margin: 10
  height_axis: y
`)
	cfg, err := NewLoader().Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Address != ":9090" || cfg.Server.MaxConcurrent != 8 {
		t.Errorf("server = %+v", cfg.Server)
	}
	limits := cfg.Limits.ToLimits()
	if limits.MaxUploadBytes != 50<<20 {
		t.Errorf("upload cap = %d, want %d", limits.MaxUploadBytes, 50<<20)
	}
	if limits.MaxTriangles != 100000 || limits.MaxDepth != 32 || limits.Timeout != 5*time.Minute || limits.Workers != 2 {
		t.Errorf("limits = %+v", limits)
	}
	if cfg.Defaults.PrinterBedSize != 220 || cfg.Defaults.HeightAxis != "y" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "server: [not a map", "failed to parse YAML"},
		{"negative concurrency", "server:\n  max_concurrent: -1\n", "max_concurrent"},
		{"negative upload", "limits:\n  max_upload_mb: -5\n", "max_upload_mb"},
		{"negative timeout", "limits:\n  timeout: -1s\n", "timeout"},
		{"bad axis", "defaults:\n  height_axis: q\n", "height_axis"},
		{"negative margin", "defaults:\n  safety_margin: -2\n", "safety_margin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  address: \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("address = %q, want :7070", cfg.Server.Address)
	}

	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Address != ":8080" || cfg.Defaults.HeightAxis != "z" {
		t.Errorf("default config = %+v", cfg)
	}
}
