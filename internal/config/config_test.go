package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/myasin/meetnotes/internal/summarize"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Locale != "en-US" {
		t.Errorf("locale = %q, want en-US", cfg.Locale)
	}
	if cfg.Endpoint != summarize.DefaultEndpoint {
		t.Errorf("endpoint = %q, want default", cfg.Endpoint)
	}
	if cfg.ServeAddr != ":8787" {
		t.Errorf("serve_addr = %q, want :8787", cfg.ServeAddr)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "locale: de-DE\nserve_addr: \":9999\"\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Locale != "de-DE" {
		t.Errorf("locale = %q, want de-DE", cfg.Locale)
	}
	if cfg.ServeAddr != ":9999" {
		t.Errorf("serve_addr = %q, want :9999", cfg.ServeAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.Endpoint != summarize.DefaultEndpoint {
		t.Errorf("endpoint = %q, want default", cfg.Endpoint)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("locale: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("locale: de-DE\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MEETNOTES_LOCALE", "fr-FR")
	t.Setenv("HF_API_TOKEN", "hf_fromenv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Locale != "fr-FR" {
		t.Errorf("locale = %q, want env value fr-FR", cfg.Locale)
	}
	if cfg.Token != "hf_fromenv" {
		t.Errorf("token = %q, want env value", cfg.Token)
	}
}
