package config

import (
	"encoding/json"
	"errors"
	"time"
)

// Config represents the main Afiya Care configuration
type Config struct {
	// Telegram
	Telegram TelegramConfig `json:"telegram" mapstructure:"telegram"`

	// Remote diagnosis service
	Diagnosis DiagnosisConfig `json:"diagnosis" mapstructure:"diagnosis"`

	// Health and metrics endpoint
	Health HealthConfig `json:"health" mapstructure:"health"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory for the PID file and logs
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken  string `json:"bot_token" mapstructure:"bot_token"`
	ParseMode string `json:"parse_mode" mapstructure:"parse_mode"` // Markdown, MarkdownV2, HTML or none
}

// DiagnosisConfig holds the diagnosis service client configuration
type DiagnosisConfig struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	ProbeSchedule  string `json:"probe_schedule" mapstructure:"probe_schedule"` // cron spec, empty disables probing
}

// Timeout returns the request timeout as a duration
func (d DiagnosisConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// HealthConfig holds the health server configuration
type HealthConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Host    string `json:"host" mapstructure:"host"`
	Port    int    `json:"port" mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			ParseMode: "Markdown",
		},
		Diagnosis: DiagnosisConfig{
			BaseURL:        "http://localhost:8000/api/v1",
			TimeoutSeconds: 30,
			ProbeSchedule:  "@every 1m",
		},
		Health: HealthConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    3000,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
	}
}

// String returns a JSON representation of the config with the bot token masked
func (c *Config) String() string {
	masked := *c
	if masked.Telegram.BotToken != "" {
		masked.Telegram.BotToken = "********"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks everything the daemon needs to start
func (c *Config) Validate() error {
	return errors.Join(NewValidator().ValidateConfig(c)...)
}
