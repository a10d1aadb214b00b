package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/afiya/afiyacare/internal/command"
	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/language"
	"github.com/afiya/afiyacare/internal/logger"
	"github.com/afiya/afiyacare/internal/metrics"
	"github.com/afiya/afiyacare/internal/render"
	"github.com/afiya/afiyacare/internal/session"
	"github.com/afiya/afiyacare/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Options configures an Orchestrator
type Options struct {
	Store   session.Store
	Client  diagnosis.Client
	Replier Replier
	// Metrics defaults to a private registry
	Metrics *metrics.Metrics
	// Timeout bounds each diagnosis call, defaults to diagnosis.DefaultTimeout
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Orchestrator turns inbound events into replies: it keeps the session up to
// date, routes the text and either answers from templates or asks the
// diagnosis service.
type Orchestrator struct {
	store   session.Store
	client  diagnosis.Client
	replier Replier
	metrics *metrics.Metrics
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates an Orchestrator
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("diagnosis client is required")
	}
	if opts.Replier == nil {
		return nil, fmt.Errorf("replier is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = diagnosis.DefaultTimeout
	}

	return &Orchestrator{
		store:   opts.Store,
		client:  opts.Client,
		replier: opts.Replier,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
		logger:  opts.Logger.With().Str("component", "orchestrator").Logger(),
	}, nil
}

// eventState is the per-event bookkeeping that keeps the apology single
type eventState struct {
	apologized bool
}

// HandleMessage processes one event to completion. It never panics and never
// returns an error: every failure ends in at most one apology reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, ev Event) (outcome Outcome) {
	if tracing.GetRequestID(ctx) == "" {
		ctx = tracing.NewEventContext(ctx, ev.ConversationID)
	} else {
		ctx = tracing.WithConversationID(ctx, ev.ConversationID)
	}

	ctx, span := tracing.StartSpan(ctx, "bot.handle_message",
		attribute.String("channel", ev.Channel),
		attribute.Bool("group", ev.IsGroup),
	)
	defer span.End()

	log := tracing.LoggerFromContext(ctx, o.logger)
	o.metrics.MessagesReceivedTotal.WithLabelValues(channelLabel(ev.Channel)).Inc()

	st := &eventState{}
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic while handling message")

			if st.apologized {
				outcome = OutcomeUndelivered
			} else {
				outcome = o.apologize(ctx, ev, st, log, fmt.Errorf("panic: %v", r))
			}
		}

		span.SetAttributes(attribute.String("outcome", outcome.String()))
		log.Debug().Str("outcome", outcome.String()).Msg("Message handled")
	}()

	return o.handle(ctx, ev, st, log)
}

func (o *Orchestrator) handle(ctx context.Context, ev Event, st *eventState, log zerolog.Logger) Outcome {
	if ev.IsGroup {
		o.metrics.MessagesFilteredTotal.WithLabelValues("group").Inc()
		return OutcomeFiltered
	}
	if strings.TrimSpace(ev.Text) == "" {
		o.metrics.MessagesFilteredTotal.WithLabelValues("empty").Inc()
		return OutcomeIgnored
	}

	s := o.store.GetOrCreate(ev.ConversationID, ev.DisplayName)
	lang := language.Detect(ev.Text)
	snap := o.store.Touch(s, lang)
	o.metrics.DetectedLanguagesTotal.WithLabelValues(string(lang)).Inc()

	cmd := command.Route(ev.Text)
	o.metrics.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()

	log.Info().
		Str("name", snap.DisplayName).
		Str("language", string(snap.Language)).
		Int("message_count", snap.MessageCount).
		Str("command", cmd.Kind.String()).
		Str("text", logger.Preview(ev.Text)).
		Msg("Message received")

	switch cmd.Kind {
	case command.Start:
		name := snap.DisplayName
		if ev.DisplayName != "" {
			name = ev.DisplayName
		}
		return o.replyStatic(ctx, ev, st, log, "welcome", render.Welcome(snap.Language, name))
	case command.Help:
		return o.replyStatic(ctx, ev, st, log, "help", render.Help())
	case command.ListLanguages:
		return o.replyStatic(ctx, ev, st, log, "languages", render.Languages())
	default:
		return o.diagnose(ctx, ev, st, log, cmd.Text, snap.Language)
	}
}

func (o *Orchestrator) replyStatic(ctx context.Context, ev Event, st *eventState, log zerolog.Logger, kind, text string) Outcome {
	if err := o.send(ctx, ev, log, kind, text); err != nil {
		return o.apologize(ctx, ev, st, log, fmt.Errorf("failed to send %s reply: %w", kind, err))
	}
	return OutcomeReplied
}

func (o *Orchestrator) diagnose(ctx context.Context, ev Event, st *eventState, log zerolog.Logger, text string, lang language.Code) Outcome {
	// The acknowledgement is best effort; the diagnosis goes ahead without it.
	_ = o.send(ctx, ev, log, "analyzing", render.Analyzing)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result, err := o.client.Diagnose(callCtx, text, string(lang))
	o.metrics.DiagnosisDuration.Observe(time.Since(start).Seconds())
	o.metrics.DiagnosisRequestsTotal.WithLabelValues(diagnosisStatus(err)).Inc()

	if err != nil {
		return o.apologize(ctx, ev, st, log, err)
	}

	if result != nil && result.ResponseID != "" {
		log = log.With().Str("response_id", result.ResponseID).Logger()
	}

	if err := o.send(ctx, ev, log, "diagnosis", render.Render(result)); err != nil {
		return o.apologize(ctx, ev, st, log, fmt.Errorf("failed to send diagnosis reply: %w", err))
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Diagnosis delivered")
	return OutcomeDiagnosed
}

// apologize sends the apology unless one was already attempted for this event
func (o *Orchestrator) apologize(ctx context.Context, ev Event, st *eventState, log zerolog.Logger, cause error) Outcome {
	log.Error().Err(cause).Msg("Failed to handle message")

	if st.apologized {
		return OutcomeApologized
	}
	st.apologized = true
	o.metrics.ApologiesTotal.Inc()

	// The caller may have cancelled; the user should still hear back.
	sendCtx := context.WithoutCancel(ctx)
	if err := o.send(sendCtx, ev, log, "apology", render.Apology); err != nil {
		return OutcomeUndelivered
	}
	return OutcomeApologized
}

func (o *Orchestrator) send(ctx context.Context, ev Event, log zerolog.Logger, kind, text string) error {
	if err := o.replier.Reply(ctx, ev, text); err != nil {
		o.metrics.ReplyErrorsTotal.Inc()
		log.Error().Err(err).Str("reply", kind).Msg("Failed to send reply")
		return err
	}
	o.metrics.RepliesSentTotal.WithLabelValues(kind).Inc()
	return nil
}

func diagnosisStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, diagnosis.ErrMalformedResult):
		return "malformed"
	case errors.Is(err, diagnosis.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, diagnosis.ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}

func channelLabel(channel string) string {
	if channel == "" {
		return "unknown"
	}
	return channel
}
