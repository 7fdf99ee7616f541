// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and POSTPULSE_ env vars on top of the defaults.
// - Loading errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory upload queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of upload workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many upload IDs are remembered for duplicate detection.
	DedupeSize int `koanf:"dedupe_size"`

	// StatusHistory caps the number of upload status records kept.
	StatusHistory int `koanf:"status_history"`

	// MaxUploadBytes caps the size of one uploaded file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Timezone is the IANA name used for zone-less timestamps, date labels
	// and the schedule grid. "Local" uses the process zone.
	Timezone string `koanf:"timezone"`

	// LLM collaborator settings. An empty key disables /analysis.
	LLMAPIURL         string  `koanf:"llm_api_url"`
	LLMAPIKey         string  `koanf:"llm_api_key"`
	LLMModel          string  `koanf:"llm_model"`
	LLMTemperature    float64 `koanf:"llm_temperature"`
	LLMTimeoutSeconds int     `koanf:"llm_timeout_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         64,
		WorkerCount:       1,
		DedupeSize:        10_000,
		StatusHistory:     1_000,
		MaxUploadBytes:    32 << 20,
		Timezone:          "Local",
		LLMAPIURL:         "https://api.openai.com/v1",
		LLMModel:          "gpt-4",
		LLMTemperature:    0.7,
		LLMTimeoutSeconds: 60,
	}
}

// Location resolves Timezone. Callers should only use it on a validated Config.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LLMTimeout returns the LLM request timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// LLMEnabled reports whether an API key was configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != ""
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return wrapInvalid("addr must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return wrapInvalid("max_upload_bytes must be positive")
	}
	if c.QueueSize <= 0 {
		return wrapInvalid("queue_size must be positive")
	}
	if c.WorkerCount <= 0 {
		return wrapInvalid("worker_count must be positive")
	}
	if _, err := loadLocation(c.Timezone); err != nil {
		return wrapInvalid("timezone " + c.Timezone + ": " + err.Error())
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
