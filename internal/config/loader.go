package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. AFIYA_TELEGRAM_BOT_TOKEN
	EnvPrefix = "AFIYA"

	appDirName     = ".afiya"
	configFileName = "afiya.json"
)

// legacyEnv maps config keys to the unprefixed variable names the
// WhatsApp-era deployments used in their .env files
var legacyEnv = map[string]string{
	"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
	"diagnosis.base_url": "API_BASE_URL",
	"health.port":        "PORT",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
	envFiles   []string
}

// NewLoader creates a new config loader. envFiles are loaded into the
// process environment before the config is read; missing files are skipped.
// With no envFiles, ./.env is tried.
func NewLoader(configPath string, envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &Loader{
		configPath: configPath,
		envFiles:   envFiles,
	}
}

// Load reads the config file if present, applies environment overrides and
// fills path defaults. Validation is left to the caller.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	configPath, err := l.resolvePath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	for key, legacy := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(configPath)
	}

	return cfg, nil
}

// Save writes cfg to the config file as JSON
func (l *Loader) Save(cfg *Config) error {
	configPath, err := l.resolvePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("telegram", map[string]any{
		"bot_token":  cfg.Telegram.BotToken,
		"parse_mode": cfg.Telegram.ParseMode,
	})
	v.Set("diagnosis", map[string]any{
		"base_url":        cfg.Diagnosis.BaseURL,
		"timeout_seconds": cfg.Diagnosis.TimeoutSeconds,
		"probe_schedule":  cfg.Diagnosis.ProbeSchedule,
	})
	v.Set("health", map[string]any{
		"enabled": cfg.Health.Enabled,
		"host":    cfg.Health.Host,
		"port":    cfg.Health.Port,
	})
	v.Set("logging", map[string]any{
		"level":     cfg.Logging.Level,
		"file":      cfg.Logging.File,
		"console":   cfg.Logging.Console,
		"pretty":    cfg.Logging.Pretty,
		"redaction": cfg.Logging.Redaction,
	})
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// The file holds the bot token
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path, or "" if the home directory
// cannot be resolved
func (l *Loader) GetConfigPath() string {
	path, err := l.resolvePath()
	if err != nil {
		return ""
	}
	return path
}

func (l *Loader) resolvePath() (string, error) {
	if l.configPath != "" {
		return l.configPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, appDirName, configFileName), nil
}

func (l *Loader) loadEnvFiles() error {
	for _, path := range l.envFiles {
		// godotenv never overrides variables already set in the environment
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("telegram.bot_token", cfg.Telegram.BotToken)
	v.SetDefault("telegram.parse_mode", cfg.Telegram.ParseMode)
	v.SetDefault("diagnosis.base_url", cfg.Diagnosis.BaseURL)
	v.SetDefault("diagnosis.timeout_seconds", cfg.Diagnosis.TimeoutSeconds)
	v.SetDefault("diagnosis.probe_schedule", cfg.Diagnosis.ProbeSchedule)
	v.SetDefault("health.enabled", cfg.Health.Enabled)
	v.SetDefault("health.host", cfg.Health.Host)
	v.SetDefault("health.port", cfg.Health.Port)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.pretty", cfg.Logging.Pretty)
	v.SetDefault("logging.redaction", cfg.Logging.Redaction)
	v.SetDefault("data_dir", cfg.DataDir)
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}
