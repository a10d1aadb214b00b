package diagnosis

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers transport failures, timeouts and non-success
	// statuses from the diagnosis service.
	ErrUnavailable = errors.New("diagnosis service unavailable")
	// ErrMalformedResult is returned when the response body cannot be read
	// as a diagnosis result.
	ErrMalformedResult = errors.New("malformed diagnosis result")
	// ErrInvalidRequest is returned before any call is made when the request
	// cannot be sent, such as empty symptom text.
	ErrInvalidRequest = errors.New("invalid diagnosis request")
)

// Client is the boundary to the remote diagnosis service
type Client interface {
	// Diagnose submits symptom text for analysis
	Diagnose(ctx context.Context, symptoms, language string) (*Result, error)
	// ListLanguages returns code -> display name. It never fails; the
	// fallback table is returned on any error.
	ListLanguages(ctx context.Context) map[string]string
	// HealthCheck reports the service status. Failures are reported as an
	// unhealthy status, never as an error.
	HealthCheck(ctx context.Context) HealthStatus
}

// Request is the body of POST /diagnose
type Request struct {
	Symptoms string `json:"symptoms"`
	Language string `json:"language"`
}

// Result is the body returned by POST /diagnose
type Result struct {
	RedFlags         []string    `json:"red_flags"`
	Conditions       []Condition `json:"conditions"`
	NatlasAnalysis   *string     `json:"natlas_analysis,omitempty"`
	Recommendations  []string    `json:"recommendations"`
	Disclaimer       *string     `json:"disclaimer,omitempty"`
	DetectedLanguage *string     `json:"detected_language,omitempty"`
	ProcessingTimeMs *int        `json:"processing_time_ms,omitempty"`
	ResponseID       string      `json:"response_id,omitempty"`
}

// Condition is one candidate condition in a Result
type Condition struct {
	Title       string   `json:"title"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Treatments  []string `json:"treatments"`
	Severity    string   `json:"severity,omitempty"`
	Symptoms    []string `json:"symptoms,omitempty"`
}

// HealthStatus is the body returned by GET /health
type HealthStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"-"`
}

// StatusUnhealthy is reported when the health endpoint cannot be reached
const StatusUnhealthy = "unhealthy"

// Healthy reports whether the service declared itself healthy
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// FallbackLanguages is served by ListLanguages when the service cannot
// answer.
var FallbackLanguages = map[string]string{
	"en":  "English",
	"yo":  "Yoruba",
	"ha":  "Hausa",
	"ig":  "Igbo",
	"pcm": "Nigerian Pidgin",
}

func fallbackLanguages() map[string]string {
	out := make(map[string]string, len(FallbackLanguages))
	for k, v := range FallbackLanguages {
		out[k] = v
	}
	return out
}
