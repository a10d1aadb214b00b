package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTelegramToken(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", testToken, false},
		{"empty token", "", true},
		{"missing colon", "123456789ABCdef", true},
		{"non numeric id", "abc:ABCdef", true},
		{"spaces", "123456789:ABC def", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTelegramToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateBaseURL("http://localhost:8000/api/v1"))
	assert.NoError(t, v.ValidateBaseURL("https://afiya.example.com/api/v1"))
	assert.Error(t, v.ValidateBaseURL(""))
	assert.Error(t, v.ValidateBaseURL("localhost:8000"))
	assert.Error(t, v.ValidateBaseURL("http://"))
	assert.Error(t, v.ValidateBaseURL("ftp://example.com"))
}

func TestValidateSchedule(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateSchedule(""))
	assert.NoError(t, v.ValidateSchedule("@every 1m"))
	assert.NoError(t, v.ValidateSchedule("*/5 * * * *"))
	assert.NoError(t, v.ValidateSchedule("@hourly"))
	assert.Error(t, v.ValidateSchedule("every minute"))
	assert.Error(t, v.ValidateSchedule("* * *"))
}

func TestValidateParseMode(t *testing.T) {
	v := NewValidator()

	for _, mode := range []string{"", "none", "Markdown", "MarkdownV2", "HTML"} {
		assert.NoError(t, v.ValidateParseMode(mode), mode)
	}
	assert.Error(t, v.ValidateParseMode("markdown"))
}

func TestValidatePortAndTimeout(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidatePort(3000))
	assert.Error(t, v.ValidatePort(0))
	assert.Error(t, v.ValidatePort(70000))

	assert.NoError(t, v.ValidateTimeout(30))
	assert.Error(t, v.ValidateTimeout(0))
	assert.Error(t, v.ValidateTimeout(-1))
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, v.ValidateLogLevel(level))
	}
	assert.Error(t, v.ValidateLogLevel("trace"))
}

func TestValidateDiagnosis(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateDiagnosis(DefaultConfig().Diagnosis))

	errs := v.ValidateDiagnosis(DiagnosisConfig{BaseURL: "", TimeoutSeconds: 0, ProbeSchedule: "nope"})
	assert.Len(t, errs, 3)
}
