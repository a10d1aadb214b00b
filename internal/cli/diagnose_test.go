package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/afiya/afiyacare/internal/config"
	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagnosisServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return writeTestConfig(t, func(cfg *config.Config) {
		cfg.Diagnosis.BaseURL = ts.URL
		cfg.Diagnosis.TimeoutSeconds = 5
	})
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"bawo", "ni"}, "yo (Yoruba)"},
		{[]string{"sannu"}, "ha (Hausa)"},
		{[]string{"kedu"}, "ig (Igbo)"},
		{[]string{"make we go"}, "pcm (Pidgin)"},
		{[]string{"my chest hurts"}, "en (English)"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			output, err := executeCommand(t, "", append([]string{"detect"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", output)
		})
	}

	t.Run("requires text", func(t *testing.T) {
		_, err := executeCommand(t, "", "detect")
		assert.Error(t, err)
	})
}

func TestDiagnoseCommand(t *testing.T) {
	t.Run("renders the reply", func(t *testing.T) {
		var received diagnosis.Request
		path := diagnosisServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/diagnose", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Write([]byte(`{"natlas_analysis":"Likely malaria.","detected_language":"yo","processing_time_ms":12}`))
		})

		output, err := executeCommand(t, "", "diagnose", "--config", path, "mo", "ni", "iba")
		require.NoError(t, err)

		assert.Equal(t, "mo ni iba", received.Symptoms)
		assert.Equal(t, "yo", received.Language)
		assert.Contains(t, output, "💡 *AI Analysis:*\nLikely malaria.")
		assert.Contains(t, output, "🌍 Language: Yoruba")
		assert.Contains(t, output, "⚡ Response time: 12ms")
	})

	t.Run("language override", func(t *testing.T) {
		var received diagnosis.Request
		path := diagnosisServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Write([]byte(`{}`))
		})

		_, err := executeCommand(t, "", "diagnose", "--config", path, "--language", "HA", "headache")
		require.NoError(t, err)
		assert.Equal(t, "ha", received.Language)
	})

	t.Run("unsupported language", func(t *testing.T) {
		path := writeTestConfig(t, nil)

		_, err := executeCommand(t, "", "diagnose", "--config", path, "--language", "fr", "headache")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported language "fr"`)
	})

	t.Run("service failure", func(t *testing.T) {
		path := diagnosisServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := executeCommand(t, "", "diagnose", "--config", path, "fever")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get diagnosis")
		assert.ErrorIs(t, err, diagnosis.ErrUnavailable)
	})
}

func TestLanguagesCommand(t *testing.T) {
	t.Run("service list", func(t *testing.T) {
		path := diagnosisServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/languages", r.URL.Path)
			w.Write([]byte(`{"fr":"French","en":"English","yo":"Yoruba"}`))
		})

		output, err := executeCommand(t, "", "languages", "--config", path)
		require.NoError(t, err)
		assert.Equal(t, "en   English\nyo   Yoruba\nfr   French\n", output)
	})

	t.Run("fallback list", func(t *testing.T) {
		path := diagnosisServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		output, err := executeCommand(t, "", "languages", "--config", path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(output), "\n")
		require.Len(t, lines, len(diagnosis.FallbackLanguages))
		assert.Equal(t, "en   English", lines[0])
		assert.Equal(t, "pcm  Nigerian Pidgin", lines[4])
	})
}
