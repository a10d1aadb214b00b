package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	// StatusUnknown is reported before the first probe completes
	StatusUnknown = "unknown"

	probeTimeout = 10 * time.Second
)

// Checker reports the health of the diagnosis service
type Checker interface {
	HealthCheck(ctx context.Context) diagnosis.HealthStatus
}

// Prober periodically checks the diagnosis service and remembers the last
// reported status.
type Prober struct {
	checker  Checker
	metrics  *metrics.Metrics
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger

	mu        sync.RWMutex
	status    string
	checkedAt time.Time
}

// NewProber creates a prober running on a cron schedule such as "@every 1m"
// or "*/5 * * * *". The schedule is parsed immediately.
func NewProber(checker Checker, m *metrics.Metrics, schedule string, log zerolog.Logger) (*Prober, error) {
	if checker == nil {
		return nil, fmt.Errorf("health checker is required")
	}
	if m == nil {
		m = metrics.NewMetrics()
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	p := &Prober{
		checker:  checker,
		metrics:  m,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
		logger:   log.With().Str("component", "health").Str("module", "prober").Logger(),
		status:   StatusUnknown,
	}

	if _, err := p.cron.AddFunc(schedule, func() { p.Probe(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	return p, nil
}

// Start runs one probe right away and then follows the schedule
func (p *Prober) Start(ctx context.Context) {
	p.Probe(ctx)
	p.cron.Start()

	p.logger.Info().Str("schedule", p.schedule).Msg("Diagnosis health prober started")
}

// Stop halts the schedule and waits for a running probe to finish or ctx
// to end.
func (p *Prober) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		p.logger.Warn().Msg("Timed out waiting for running probe")
	}
	p.logger.Info().Msg("Diagnosis health prober stopped")
}

// Probe checks the service once and records the result
func (p *Prober) Probe(ctx context.Context) diagnosis.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	health := p.checker.HealthCheck(ctx)

	p.mu.Lock()
	previous := p.status
	p.status = health.Status
	p.checkedAt = time.Now()
	p.mu.Unlock()

	if health.Healthy() {
		p.metrics.DiagnosisServiceUp.Set(1)
	} else {
		p.metrics.DiagnosisServiceUp.Set(0)
	}

	if previous != health.Status {
		p.logger.Info().
			Str("previous", previous).
			Str("status", health.Status).
			Msg("Diagnosis service status changed")
	}

	return health
}

// Status returns the last probed status, or StatusUnknown before any probe
func (p *Prober) Status() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// CheckedAt returns when the last probe finished
func (p *Prober) CheckedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checkedAt
}
