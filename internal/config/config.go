// Package config loads application settings from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/myasin/meetnotes/internal/capture"
	"github.com/myasin/meetnotes/internal/storage"
	"github.com/myasin/meetnotes/internal/summarize"
)

// Config holds all application settings.
type Config struct {
	DBPath     string `yaml:"db_path"`
	SocketPath string `yaml:"socket_path"`
	Locale     string `yaml:"locale"`
	Endpoint   string `yaml:"endpoint"`
	Token      string `yaml:"token"`
	ServeAddr  string `yaml:"serve_addr"`
	LogLevel   string `yaml:"log_level"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".meetnotes", "config.yaml")
}

func defaults() Config {
	return Config{
		DBPath:     storage.DefaultDBPath(),
		SocketPath: capture.DefaultSocketPath(),
		Locale:     "en-US",
		Endpoint:   summarize.DefaultEndpoint,
		ServeAddr:  ":8787",
		LogLevel:   "info",
	}
}

// Load reads the config file at path (missing files are fine) and
// applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// no config file; defaults apply
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setenv(&cfg.DBPath, "MEETNOTES_DB")
	setenv(&cfg.SocketPath, "MEETNOTES_SOCKET")
	setenv(&cfg.Locale, "MEETNOTES_LOCALE")
	setenv(&cfg.Endpoint, "MEETNOTES_ENDPOINT")
	setenv(&cfg.Token, "HF_API_TOKEN")
	setenv(&cfg.ServeAddr, "MEETNOTES_SERVE_ADDR")
	setenv(&cfg.LogLevel, "MEETNOTES_LOG_LEVEL")
}

func setenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
