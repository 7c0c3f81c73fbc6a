// Package config holds scraper configuration and its validation.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL            string
	IndexURL           string
	Delay              time.Duration
	Timeout            time.Duration
	OutputFile         string
	OutputFormat       string // json, csv, or dual
	UserAgent          string
	Verbose            bool
	RespectRobotsTxt   bool
	MetricsAddr        string
	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int
}

// DefaultConfig returns the defaults for the prospektmaschine target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://www.prospektmaschine.de",
		IndexURL:           "https://www.prospektmaschine.de/hypermarkte/",
		Delay:              time.Second,
		Timeout:            30 * time.Second,
		OutputFile:         "leaflets.json",
		OutputFormat:       "json",
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Verbose:            false,
		RespectRobotsTxt:   false,
		MetricsAddr:        "",
		PipelineBufferSize: 256,
		BatchSize:          64,
		DedupeMaxSize:      4096,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("base URL", c.BaseURL); err != nil {
		return err
	}
	if err := validateURL("index URL", c.IndexURL); err != nil {
		return err
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be json, csv, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}

func validateURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
