package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/afiya/afiyacare/internal/bot"
	"github.com/afiya/afiyacare/internal/config"
	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/health"
	"github.com/afiya/afiyacare/internal/logger"
	"github.com/afiya/afiyacare/internal/metrics"
	"github.com/afiya/afiyacare/internal/session"
	"github.com/afiya/afiyacare/internal/telegram"
	"github.com/afiya/afiyacare/internal/tracing"
	"github.com/afiya/afiyacare/pkg/commandqueue"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace is added to the diagnosis timeout when draining lanes
const shutdownGrace = 5 * time.Second

// Status is a point-in-time view of the daemon
type Status struct {
	Running   bool          `json:"running"`
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
	Sessions  int           `json:"sessions"`
}

// Option customises daemon construction
type Option func(*Daemon)

// WithTelegramBot uses bot instead of authenticating a new one
func WithTelegramBot(b *telegram.Bot) Option {
	return func(d *Daemon) {
		d.telegramBot = b
	}
}

// WithDiagnosisClient replaces the HTTP diagnosis client
func WithDiagnosisClient(c diagnosis.Client) Option {
	return func(d *Daemon) {
		d.client = c
	}
}

// Daemon wires the Telegram transport, the orchestrator and the health
// endpoints into one process.
type Daemon struct {
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	store        *session.MemoryStore
	client       diagnosis.Client
	orchestrator *bot.Orchestrator
	queue        *commandqueue.CommandQueue

	telegramBot *telegram.Bot
	handler     *telegram.Handler

	prober       *health.Prober
	healthServer *health.Server
	lifecycle    *LifecycleManager

	startTime time.Time
	running   bool
	mu        sync.RWMutex
}

// New creates a new daemon instance
func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	d := &Daemon{
		config:  cfg,
		logger:  log,
		metrics: metrics.NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.initializeCoreModules(); err != nil {
		return nil, fmt.Errorf("failed to initialize core modules: %w", err)
	}
	if err := d.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	d.lifecycle = NewLifecycleManager(d)

	return d, nil
}

func (d *Daemon) initializeCoreModules() error {
	d.store = session.NewMemoryStore(session.WithOnCreate(func(session.Snapshot) {
		d.metrics.RecordSessionCreated()
	}))

	if d.client == nil {
		client, err := diagnosis.NewHTTPClient(diagnosis.Options{
			BaseURL: d.config.Diagnosis.BaseURL,
			Timeout: d.config.Diagnosis.Timeout(),
		}, d.logger.GetZerolog())
		if err != nil {
			return fmt.Errorf("failed to create diagnosis client: %w", err)
		}
		d.client = client
	}

	d.queue = commandqueue.New(d.logger.GetZerolog(), commandqueue.WithObserver(d.metrics))

	return nil
}

func (d *Daemon) initializeServices() error {
	if d.telegramBot == nil {
		b, err := telegram.New(d.config.Telegram, d.logger.GetZerolog())
		if err != nil {
			return fmt.Errorf("failed to create telegram bot: %w", err)
		}
		d.telegramBot = b
	}

	orch, err := bot.New(bot.Options{
		Store:   d.store,
		Client:  d.client,
		Replier: d.telegramBot.Sender(),
		Metrics: d.metrics,
		Timeout: d.config.Diagnosis.Timeout(),
		Logger:  d.logger.GetZerolog(),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	d.orchestrator = orch

	d.handler = telegram.NewHandler(d.queue, d.orchestrator, d.telegramBot.Username(), d.logger.GetZerolog())

	if d.config.Diagnosis.ProbeSchedule != "" {
		prober, err := health.NewProber(d.client, d.metrics, d.config.Diagnosis.ProbeSchedule, d.logger.GetZerolog())
		if err != nil {
			return fmt.Errorf("failed to create health prober: %w", err)
		}
		d.prober = prober
	}

	if d.config.Health.Enabled {
		sources := health.Sources{
			BotRunning: d.telegramBot.IsRunning,
			Sessions:   d.store.Len,
		}
		if d.prober != nil {
			sources.DiagnosisStatus = d.prober.Status
		}
		d.healthServer = health.NewServer(health.ServerOptions{
			Host: d.config.Health.Host,
			Port: d.config.Health.Port,
		}, sources, d.metrics, d.logger.GetZerolog())
	}

	return nil
}

// Run starts every service and blocks until ctx is cancelled or a service
// fails, then drains in-flight conversations and shuts down.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	log := d.logger.GetZerolog().With().Str("run_id", tracing.NewRequestID()).Logger()
	log.Info().Msg("Starting Afiya Care daemon")

	if err := d.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}
	defer func() {
		if err := d.lifecycle.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop lifecycle manager")
		}
	}()

	if err := tracing.InitOpenTelemetry(tracing.TracerName); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without spans")
	}

	if err := d.telegramBot.PublishCommands(); err != nil {
		log.Warn().Err(err).Msg("Failed to publish bot commands")
	}

	if d.prober != nil {
		d.prober.Start(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// The transport ending for any reason stops the daemon
		defer cancel()
		return d.telegramBot.Run(gctx, d.handler)
	})

	if d.healthServer != nil {
		g.Go(d.healthServer.Start)
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
			defer stop()
			return d.healthServer.Stop(stopCtx)
		})
	}

	log.Info().Msg("Daemon started successfully")

	runErr := g.Wait()

	d.shutdown(log)

	if runErr != nil {
		return fmt.Errorf("daemon stopped with error: %w", runErr)
	}
	return nil
}

func (d *Daemon) shutdown(log zerolog.Logger) {
	log.Info().Msg("Stopping Afiya Care daemon")

	drainCtx, cancel := context.WithTimeout(context.Background(), d.config.Diagnosis.Timeout()+shutdownGrace)
	defer cancel()

	if err := d.queue.Shutdown(drainCtx); err != nil {
		log.Warn().Err(err).Msg("Conversation lanes did not drain in time")
	}

	if d.prober != nil {
		d.prober.Stop(drainCtx)
	}

	if err := tracing.ShutdownOpenTelemetry(drainCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to shut down tracing")
	}

	log.Info().Int("sessions", d.store.Len()).Msg("Daemon stopped successfully")
}

// RunUntilSignal runs the daemon until SIGINT or SIGTERM
func (d *Daemon) RunUntilSignal(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running:  d.running,
		Sessions: d.store.Len(),
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// GetConfig returns the daemon configuration
func (d *Daemon) GetConfig() *config.Config {
	return d.config
}

// GetMetrics returns the daemon's metrics registry
func (d *Daemon) GetMetrics() *metrics.Metrics {
	return d.metrics
}

// GetHealthServer returns the health server, nil when disabled
func (d *Daemon) GetHealthServer() *health.Server {
	return d.healthServer
}

// GetProber returns the diagnosis prober, nil when probing is disabled
func (d *Daemon) GetProber() *health.Prober {
	return d.prober
}
