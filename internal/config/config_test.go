package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(withDefaults())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.App.Port)
	}
	if cfg.Storage.Backend != "file" {
		t.Fatalf("expected file backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Export.Scale != 3 || cfg.Export.Attempts != 3 {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("EXPORT_SCALE", "4")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")

	cfg, err := load(withDefaults())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.App.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Export.Scale != 4 {
		t.Fatalf("expected scale 4, got %d", cfg.Export.Scale)
	}
	if cfg.Export.ChromePath != "/usr/bin/chromium" {
		t.Fatalf("expected chrome path, got %q", cfg.Export.ChromePath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":    {"STORAGE_BACKEND": "s3"},
		"postgres no dsn":    {"STORAGE_BACKEND": "postgres"},
		"redis no addr":      {"STORAGE_BACKEND": "redis"},
		"unknown assembler":  {"EXPORT_ASSEMBLER": "wkhtmltopdf"},
		"scale out of range": {"EXPORT_SCALE": "9"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := load(withDefaults()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func withDefaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}
