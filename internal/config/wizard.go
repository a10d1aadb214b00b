package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a wizard reading from stdin and writing to stdout
func NewWizard() *Wizard {
	return NewWizardWithIO(os.Stdin, os.Stdout)
}

// NewWizardWithIO creates a wizard over the given streams
func NewWizardWithIO(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run walks through the settings a deployment must provide, starting from base
func (w *Wizard) Run(base *Config) (*Config, error) {
	cfg := *base
	validator := NewValidator()

	w.println("=== Afiya Care Configuration Wizard ===")
	w.println("")

	w.println("Telegram Configuration:")
	for {
		token, err := w.prompt("Telegram Bot Token", cfg.Telegram.BotToken)
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateTelegramToken(token); err != nil {
			w.printf("Error: %v\n", err)
			continue
		}
		cfg.Telegram.BotToken = token
		break
	}
	w.println("")

	w.println("Diagnosis Service:")
	for {
		baseURL, err := w.prompt("Base URL", cfg.Diagnosis.BaseURL)
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateBaseURL(baseURL); err != nil {
			w.printf("Error: %v\n", err)
			continue
		}
		cfg.Diagnosis.BaseURL = baseURL
		break
	}
	w.println("")

	w.println("Logging:")
	level, err := w.prompt("Log level (debug/info/warn/error)", cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateLogLevel(level); err != nil {
		w.printf("Warning: %v, keeping %s\n", err, cfg.Logging.Level)
	} else {
		cfg.Logging.Level = level
	}

	w.println("")
	w.println("Configuration complete!")

	return &cfg, nil
}

// prompt reads one line, returning def when the line is empty. A bare EOF
// after some input is treated as the end of that line.
func (w *Wizard) prompt(label, def string) (string, error) {
	shown := def
	if label == "Telegram Bot Token" && def != "" {
		shown = "keep current"
	}
	if shown != "" {
		w.printf("%s [%s]: ", label, shown)
	} else {
		w.printf("%s: ", label)
	}

	line, err := w.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (w *Wizard) println(s string) {
	fmt.Fprintln(w.out, s)
}

func (w *Wizard) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}
