package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

var telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// scheduleParser accepts standard five-field specs and descriptors like @every 1m
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTelegramToken validates a Telegram bot token
func (v *Validator) ValidateTelegramToken(token string) error {
	if token == "" {
		return fmt.Errorf("telegram bot token cannot be empty")
	}

	// Telegram bot tokens have format: <bot_id>:<token>
	if !telegramTokenPattern.MatchString(token) {
		return fmt.Errorf("invalid Telegram bot token format")
	}

	return nil
}

// ValidateParseMode validates the outbound Telegram parse mode
func (v *Validator) ValidateParseMode(mode string) error {
	return oneOf("telegram parse mode", mode, "", "none", "Markdown", "MarkdownV2", "HTML")
}

// ValidateBaseURL validates the diagnosis service base URL
func (v *Validator) ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("diagnosis base URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid diagnosis base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("diagnosis base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("diagnosis base URL has no host")
	}

	return nil
}

// ValidateTimeout validates the diagnosis request timeout
func (v *Validator) ValidateTimeout(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("diagnosis timeout must be positive, got %d", seconds)
	}
	return nil
}

// ValidateSchedule validates a cron schedule. Empty disables the job.
func (v *Validator) ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := scheduleParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", spec, err)
	}
	return nil
}

// ValidatePort validates a TCP port
func (v *Validator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	return oneOf("log level", level, "debug", "info", "warn", "error")
}

// ValidateDiagnosis validates the settings needed to reach the diagnosis service
func (v *Validator) ValidateDiagnosis(cfg DiagnosisConfig) []error {
	var errs []error

	if err := v.ValidateBaseURL(cfg.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateTimeout(cfg.TimeoutSeconds); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateSchedule(cfg.ProbeSchedule); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errs []error

	if err := v.ValidateTelegramToken(cfg.Telegram.BotToken); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateParseMode(cfg.Telegram.ParseMode); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, v.ValidateDiagnosis(cfg.Diagnosis)...)

	if cfg.Health.Enabled {
		if err := v.ValidatePort(cfg.Health.Port); err != nil {
			errs = append(errs, fmt.Errorf("health: %w", err))
		}
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	return errs
}

func oneOf(name, value string, valid ...string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %s (must be one of: %s)", name, value, strings.Join(valid, ", "))
}
