package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/afiya/afiyacare/internal/logger"
	"github.com/afiya/afiyacare/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultBaseURL is the local diagnosis API
	DefaultBaseURL = "http://localhost:8000/api/v1"
	// DefaultTimeout bounds every call to the diagnosis service
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// Options configures an HTTPClient
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport; its Timeout is replaced by Timeout
	HTTPClient *http.Client
}

// HTTPClient talks to the diagnosis service over JSON/HTTP. It does not
// retry.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	validator  *Validator
	logger     zerolog.Logger
}

// NewHTTPClient creates a client for the service at opts.BaseURL
func NewHTTPClient(opts Options, log zerolog.Logger) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = opts.Timeout

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		validator:  validator,
		logger:     log.With().Str("component", "diagnosis").Logger(),
	}, nil
}

// Timeout returns the per-call timeout
func (c *HTTPClient) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Diagnose calls POST /diagnose
func (c *HTTPClient) Diagnose(ctx context.Context, symptoms, language string) (*Result, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, fmt.Errorf("%w: symptoms are required", ErrInvalidRequest)
	}

	ctx, span := tracing.StartSpan(ctx, "diagnosis.diagnose", attribute.String("language", language))
	defer span.End()

	log := tracing.LoggerFromContext(ctx, c.logger)
	log.Debug().
		Str("symptoms", logger.Preview(symptoms)).
		Str("language", language).
		Msg("Calling diagnosis service")

	body, err := json.Marshal(Request{Symptoms: symptoms, Language: language})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode: %w", ErrInvalidRequest, err)
	}

	raw, status, err := c.do(ctx, http.MethodPost, "/diagnose", body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Int("status", status).Msg("Diagnosis request failed")
		return nil, err
	}

	if err := c.validator.Validate(raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Msg("Diagnosis response rejected")
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedResult, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log.Debug().
		Int("status", status).
		Str("response_id", result.ResponseID).
		Int("conditions", len(result.Conditions)).
		Int("red_flags", len(result.RedFlags)).
		Msg("Diagnosis received")

	return &result, nil
}

// ListLanguages calls GET /languages, falling back to FallbackLanguages
func (c *HTTPClient) ListLanguages(ctx context.Context) map[string]string {
	ctx, span := tracing.StartSpan(ctx, "diagnosis.list_languages")
	defer span.End()

	raw, _, err := c.do(ctx, http.MethodGet, "/languages", nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get languages, using fallback")
		return fallbackLanguages()
	}

	var langs map[string]string
	if err := json.Unmarshal(raw, &langs); err != nil || len(langs) == 0 {
		c.logger.Warn().Err(err).Msg("Invalid languages response, using fallback")
		return fallbackLanguages()
	}

	return langs
}

// HealthCheck calls GET /health
func (c *HTTPClient) HealthCheck(ctx context.Context) HealthStatus {
	ctx, span := tracing.StartSpan(ctx, "diagnosis.health")
	defer span.End()

	raw, _, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Diagnosis health check failed")
		return HealthStatus{Status: StatusUnhealthy}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return HealthStatus{Status: StatusUnhealthy}
	}

	health := HealthStatus{Services: make(map[string]string)}
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if k == "status" {
			health.Status = s
			continue
		}
		health.Services[k] = s
	}
	if health.Status == "" {
		health.Status = StatusUnhealthy
	}

	return health
}

// do performs a request and returns the body of a 2xx response. Any other
// outcome is reported as ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := tracing.GetRequestID(ctx)
	if requestID == "" {
		requestID = tracing.NewRequestID()
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s %s returned status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	return raw, resp.StatusCode, nil
}
