package commandqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/afiya/afiyacare/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrClosed is returned when a task is submitted after shutdown began
var ErrClosed = errors.New("command queue closed")

// Task is a unit of work executed inside a lane
type Task func(ctx context.Context) error

// Observer receives queue activity, typically to export metrics
type Observer interface {
	// TaskQueued is called after a task is accepted; queueSize includes it
	TaskQueued(lane string, queueSize int)
	// TaskFinished is called after a task returns or panics
	TaskFinished(lane string, waited, duration time.Duration, err error)
}

// Option configures a CommandQueue
type Option func(*CommandQueue)

// WithObserver registers an observer for queue activity
func WithObserver(o Observer) Option {
	return func(cq *CommandQueue) {
		cq.observer = o
	}
}

// taskRecord tracks a task's execution state
type taskRecord struct {
	id         string
	task       Task
	ctx        context.Context
	enqueuedAt time.Time
	done       chan error
}

// laneState holds the pending tasks of one lane. running is true while a
// drain goroutine owns the lane.
type laneState struct {
	queue   []*taskRecord
	running bool
}

// CommandQueue serializes tasks per lane and runs lanes concurrently
type CommandQueue struct {
	lanes     map[string]*laneState
	taskIDSeq uint64
	closed    bool
	mu        sync.Mutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    zerolog.Logger
	observer  Observer
}

// New creates an empty CommandQueue
func New(logger zerolog.Logger, opts ...Option) *CommandQueue {
	ctx, cancel := context.WithCancel(context.Background())

	cq := &CommandQueue{
		lanes:  make(map[string]*laneState),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With().Str("component", "commandqueue").Logger(),
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Submit queues task on lane and returns a channel that receives the task's
// error (nil on success) once it has run.
func (cq *CommandQueue) Submit(ctx context.Context, lane string, task Task) (<-chan error, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cq.mu.Lock()
	defer cq.mu.Unlock()

	if cq.closed {
		return nil, ErrClosed
	}

	cq.taskIDSeq++
	record := &taskRecord{
		id:         fmt.Sprintf("%s-%d", lane, cq.taskIDSeq),
		task:       task,
		ctx:        ctx,
		enqueuedAt: time.Now(),
		done:       make(chan error, 1),
	}

	ls, ok := cq.lanes[lane]
	if !ok {
		ls = &laneState{}
		cq.lanes[lane] = ls
	}
	ls.queue = append(ls.queue, record)

	log := tracing.LoggerFromContext(ctx, cq.logger)
	log.Debug().
		Str("lane", lane).
		Str("task_id", record.id).
		Int("queue_size", len(ls.queue)).
		Msg("Task enqueued")

	if cq.observer != nil {
		cq.observer.TaskQueued(lane, len(ls.queue))
	}

	if !ls.running {
		ls.running = true
		cq.wg.Add(1)
		go cq.processLane(lane, ls)
	}

	return record.done, nil
}

// Enqueue submits task and waits for it to finish. If ctx ends first the
// task still runs; only the wait is abandoned.
func (cq *CommandQueue) Enqueue(ctx context.Context, lane string, task Task) error {
	done, err := cq.Submit(ctx, lane, task)
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// processLane runs queued tasks for a lane until it is empty, then forgets it
func (cq *CommandQueue) processLane(lane string, ls *laneState) {
	defer cq.wg.Done()

	for {
		cq.mu.Lock()
		if len(ls.queue) == 0 {
			ls.running = false
			delete(cq.lanes, lane)
			cq.mu.Unlock()
			return
		}
		record := ls.queue[0]
		ls.queue = ls.queue[1:]
		cq.mu.Unlock()

		record.done <- cq.executeTask(lane, record)
		close(record.done)
	}
}

// executeTask runs a single task, converting panics into errors
func (cq *CommandQueue) executeTask(lane string, record *taskRecord) (err error) {
	ctx, span := tracing.StartSpan(
		record.ctx,
		"commandqueue.execute_task",
		attribute.String("lane", lane),
		attribute.String("task_id", record.id),
	)
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, cq.logger)

	runCtx, cancel := context.WithCancel(ctx)
	stopCancel := context.AfterFunc(cq.ctx, cancel)
	defer func() {
		stopCancel()
		cancel()
	}()

	startTime := time.Now()
	waited := startTime.Sub(record.enqueuedAt)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}

		duration := time.Since(startTime)
		if cq.observer != nil {
			cq.observer.TaskFinished(lane, waited, duration, err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().
				Str("lane", lane).
				Str("task_id", record.id).
				Dur("duration", duration).
				Err(err).
				Msg("Task failed")
			return
		}
		logger.Debug().
			Str("lane", lane).
			Str("task_id", record.id).
			Dur("waited", waited).
			Dur("duration", duration).
			Msg("Task completed")
	}()

	return record.task(runCtx)
}

// GetQueueSize returns the number of tasks waiting in a lane, excluding the running one
func (cq *CommandQueue) GetQueueSize(lane string) int {
	cq.mu.Lock()
	defer cq.mu.Unlock()

	if ls, ok := cq.lanes[lane]; ok {
		return len(ls.queue)
	}
	return 0
}

// ActiveLanes returns the number of lanes with queued or running work
func (cq *CommandQueue) ActiveLanes() int {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	return len(cq.lanes)
}

// Shutdown stops accepting tasks and waits for accepted ones to finish. When
// ctx ends first, running tasks are cancelled and Shutdown returns ctx.Err()
// after they return.
func (cq *CommandQueue) Shutdown(ctx context.Context) error {
	cq.mu.Lock()
	cq.closed = true
	cq.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		cq.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		cq.cancel()
		cq.logger.Info().Msg("All queued tasks completed")
		return nil
	case <-ctx.Done():
		cq.logger.Warn().Msg("Shutdown deadline reached, cancelling running tasks")
		cq.cancel()
		<-drained
		return ctx.Err()
	}
}

// Close cancels running tasks and waits for every lane to drain
func (cq *CommandQueue) Close() error {
	cq.mu.Lock()
	cq.closed = true
	cq.mu.Unlock()

	cq.cancel()
	cq.wg.Wait()
	return nil
}
