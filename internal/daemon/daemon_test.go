package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/afiya/afiyacare/internal/config"
	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/logger"
	"github.com/afiya/afiyacare/internal/render"
	"github.com/afiya/afiyacare/internal/telegram"
	"github.com/afiya/afiyacare/internal/tracing"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram is an in-memory Bot API
type fakeTelegram struct {
	mu      sync.Mutex
	sent    []string
	updates chan tgbotapi.Update
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg.Text)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type stubDiagnosis struct {
	result *diagnosis.Result
}

func (s *stubDiagnosis) Diagnose(ctx context.Context, symptoms, language string) (*diagnosis.Result, error) {
	return s.result, nil
}

func (s *stubDiagnosis) ListLanguages(ctx context.Context) map[string]string {
	return diagnosis.FallbackLanguages
}

func (s *stubDiagnosis) HealthCheck(ctx context.Context) diagnosis.HealthStatus {
	return diagnosis.HealthStatus{Status: "healthy"}
}

func update(id int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			From:      &tgbotapi.User{ID: 42, FirstName: "Ada"},
			Chat:      &tgbotapi.Chat{ID: 42, Type: "private"},
			Text:      text,
		},
	}
}

// createTestDaemon creates a daemon over a fake Telegram API
func createTestDaemon(t *testing.T) (*Daemon, *fakeTelegram) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Health.Host = "127.0.0.1"
	cfg.Health.Port = 0
	cfg.Diagnosis.TimeoutSeconds = 1

	log, err := logger.New(logger.Config{Level: "info", Console: false})
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	api := newFakeTelegram()
	tgBot := telegram.NewWithAPI(api, tgbotapi.User{ID: 1, UserName: "afiyabot"}, cfg.Telegram, zerolog.Nop())
	analysis := "Likely a mild cold."

	d, err := New(cfg, log,
		WithTelegramBot(tgBot),
		WithDiagnosisClient(&stubDiagnosis{result: &diagnosis.Result{NatlasAnalysis: &analysis}}),
	)
	require.NoError(t, err)

	return d, api
}

func TestNew(t *testing.T) {
	d, _ := createTestDaemon(t)

	assert.NotNil(t, d.queue)
	assert.NotNil(t, d.store)
	assert.NotNil(t, d.orchestrator)
	assert.NotNil(t, d.handler)
	assert.NotNil(t, d.lifecycle)
	assert.NotNil(t, d.GetProber())
	assert.NotNil(t, d.GetHealthServer())
	assert.NotNil(t, d.GetMetrics())
	assert.NotNil(t, d.GetConfig())
}

func TestNew_OptionalServices(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Health.Enabled = false
	cfg.Diagnosis.ProbeSchedule = ""

	log, err := logger.New(logger.Config{})
	require.NoError(t, err)
	defer log.Close()

	tgBot := telegram.NewWithAPI(newFakeTelegram(), tgbotapi.User{UserName: "afiyabot"}, cfg.Telegram, zerolog.Nop())
	d, err := New(cfg, log, WithTelegramBot(tgBot), WithDiagnosisClient(&stubDiagnosis{}))
	require.NoError(t, err)

	assert.Nil(t, d.GetProber())
	assert.Nil(t, d.GetHealthServer())
}

func TestNew_MissingToken(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	log, err := logger.New(logger.Config{})
	require.NoError(t, err)
	defer log.Close()

	_, err = New(cfg, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create telegram bot")
}

func TestDaemonRun(t *testing.T) {
	d, api := createTestDaemon(t)

	status := d.Status()
	assert.False(t, status.Running)
	assert.Equal(t, time.Duration(0), status.Uptime)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Status().Running }, time.Second, 5*time.Millisecond)

	pid, err := ReadPID(PIDFilePath(d.config.DataDir))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	api.updates <- update(1, "/start")
	api.updates <- update(2, "I have a cough")

	require.Eventually(t, func() bool { return len(api.texts()) == 3 }, 2*time.Second, 10*time.Millisecond)

	texts := api.texts()
	assert.Contains(t, texts[0], "Hello Ada!")
	assert.Equal(t, render.Analyzing, texts[1])
	assert.Contains(t, texts[2], "Likely a mild cold.")

	status = d.Status()
	assert.Equal(t, 1, status.Sessions)
	assert.Greater(t, status.Uptime, time.Duration(0))
	assert.Equal(t, "healthy", d.GetProber().Status())

	t.Run("tracing installed while running", func(t *testing.T) {
		_, span := tracing.StartSpan(context.Background(), "test.daemon")
		defer span.End()
		assert.True(t, span.SpanContext().IsValid())
	})

	t.Run("second run rejected", func(t *testing.T) {
		assert.Error(t, d.Run(ctx))
	})

	cancel()
	require.NoError(t, <-done)

	assert.False(t, d.Status().Running)
	_, err = os.Stat(filepath.Join(d.config.DataDir, PIDFileName))
	assert.True(t, os.IsNotExist(err))

	_, span := tracing.StartSpan(context.Background(), "test.after_stop")
	span.End()
	assert.False(t, span.IsRecording())
}

func TestDaemonRun_TransportClosed(t *testing.T) {
	d, api := createTestDaemon(t)
	close(api.updates)

	err := d.Run(context.Background())
	assert.NoError(t, err)
	assert.False(t, d.Status().Running)
}
