package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "base url without host",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "empty index url",
			mutate: func(cfg *Config) {
				cfg.IndexURL = ""
			},
			wantErr: "index URL",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -time.Second
			},
			wantErr: "delay",
		},
		{
			name: "zero timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = 0
			},
			wantErr: "timeout",
		},
		{
			name: "empty output file",
			mutate: func(cfg *Config) {
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
		{
			name: "zero dedupe size",
			mutate: func(cfg *Config) {
				cfg.DedupeMaxSize = 0
			},
			wantErr: "dedupe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SCRAPER_TEST_STR", "out.json")
	if value, ok := EnvString("SCRAPER_TEST_STR"); !ok || value != "out.json" {
		t.Fatalf("EnvString = %q/%v, want out.json/true", value, ok)
	}
	if _, ok := EnvString("SCRAPER_TEST_UNSET"); ok {
		t.Fatalf("unset variable should not be found")
	}

	t.Setenv("SCRAPER_TEST_INT", "42")
	if value, ok, err := EnvInt("SCRAPER_TEST_INT"); err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = %d/%v/%v, want 42/true/nil", value, ok, err)
	}
	t.Setenv("SCRAPER_TEST_INT", "nope")
	if _, _, err := EnvInt("SCRAPER_TEST_INT"); err == nil {
		t.Fatalf("non-integer value should error")
	}

	t.Setenv("SCRAPER_TEST_FLOAT", "1.5")
	if value, ok, err := EnvFloat("SCRAPER_TEST_FLOAT"); err != nil || !ok || value != 1.5 {
		t.Fatalf("EnvFloat = %v/%v/%v, want 1.5/true/nil", value, ok, err)
	}
	t.Setenv("SCRAPER_TEST_FLOAT", "nope")
	if _, _, err := EnvFloat("SCRAPER_TEST_FLOAT"); err == nil {
		t.Fatalf("non-numeric value should error")
	}
}
