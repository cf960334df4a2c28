// Package config loads converter settings from a YAML file, an optional
// .env file and CONVERTER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONVERTER_"

// Config represents the top-level converter.yaml configuration.
type Config struct {
	BankCode   string           `yaml:"bank_code"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	MaxUploadMB        int    `yaml:"max_upload_mb"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	MetricsEnabled     bool   `yaml:"metrics_enabled"`
	AllowOrigins       string `yaml:"allow_origins"` // comma separated, "*" for any
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ExtractionConfig controls the text extraction fallbacks.
type ExtractionConfig struct {
	PageSeparator Separator `yaml:"page_separator"`
	Pdftotext     bool      `yaml:"pdftotext"`
	OCR           bool      `yaml:"ocr"`
}

// Separator is text placed after every extracted page. It is always written
// double-quoted so whitespace-only values survive a Save and Load.
type Separator string

// MarshalYAML writes the separator as a double-quoted scalar.
func (s Separator) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: string(s),
	}, nil
}

// Default returns a Config with the defaults used when nothing is configured.
func Default() *Config {
	return &Config{
		BankCode: "SBI",
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			MaxUploadMB:        50,
			RateLimitPerMinute: 30,
			MetricsEnabled:     true,
			AllowOrigins:       "*",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Extraction: ExtractionConfig{
			PageSeparator: "\n",
			Pdftotext:     true,
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment. A .env file in the working
// directory is loaded when present; variables already set are kept.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BankCode = getEnv("BANK_CODE", c.BankCode)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.RateLimitPerMinute = getEnvAsInt("RATE_LIMIT", c.Server.RateLimitPerMinute)
	c.Server.MetricsEnabled = getEnvAsBool("METRICS", c.Server.MetricsEnabled)
	c.Server.AllowOrigins = getEnv("ALLOW_ORIGINS", c.Server.AllowOrigins)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Extraction.Pdftotext = getEnvAsBool("PDFTOTEXT", c.Extraction.Pdftotext)
	c.Extraction.OCR = getEnvAsBool("OCR", c.Extraction.OCR)
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if !validBankCode(c.BankCode) {
		return fmt.Errorf("bank_code %q must be 2 to 5 ASCII letters", c.BankCode)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("server.rate_limit_per_minute must not be negative, got %d", c.Server.RateLimitPerMinute)
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q must be console or json", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func validBankCode(code string) bool {
	if len(code) < 2 || len(code) > 5 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(EnvPrefix + key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(EnvPrefix + key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
