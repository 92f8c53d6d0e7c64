package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the default executor queue capacity.
const DefaultQueueSize = 64

var (
	// ErrQueueFull is returned by Submit when the queue is at capacity.
	// The overflow policy is reject-new: the caller decides whether to retry.
	ErrQueueFull = errors.New("executor queue is full")

	// ErrStopped is returned by Submit after Stop has been called.
	ErrStopped = errors.New("executor stopped")
)

// Task is a unit of work run on the executor's worker goroutine.
// The context is cancelled when Stop gives up waiting; tasks still queued at
// that point are skipped.
type Task func(ctx context.Context) error

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// QueueSize bounds the number of pending tasks (default: DefaultQueueSize).
	QueueSize int
	// Logger receives task failures. Defaults to slog.Default().
	Logger *slog.Logger
}

type namedTask struct {
	name string
	run  Task

	// fence tasks run even after cancellation so waiters are released.
	fence bool
}

// ExecutorStats is a snapshot of executor counters.
type ExecutorStats struct {
	Pending   int    `json:"pending"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
	Skipped   uint64 `json:"skipped"`
}

// Executor runs tasks one at a time, strictly in submission order, on a
// single background goroutine.
//
// Submit never blocks. A task that fails or panics is logged and the worker
// moves on to the next one.
type Executor struct {
	logger *slog.Logger
	tasks  chan namedTask

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool

	running   atomic.Bool
	processed atomic.Uint64
	failed    atomic.Uint64
	skipped   atomic.Uint64
}

// NewExecutor creates an executor. Call Start to launch the worker.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		logger: logger,
		tasks:  make(chan namedTask, cfg.QueueSize),
		doneCh: make(chan struct{}),
	}
}

// Start launches the worker goroutine. It is non-blocking and idempotent.
// Cancelling ctx cancels the context handed to tasks and makes the worker
// skip queued tasks, but does not stop it; use Stop for that.
func (e *Executor) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running.Store(true)

	go e.run()
}

// Submit enqueues a task without blocking.
// Returns ErrQueueFull when the queue is at capacity and ErrStopped after Stop.
func (e *Executor) Submit(name string, task Task) error {
	return e.enqueue(namedTask{name: name, run: task})
}

func (e *Executor) enqueue(t namedTask) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}

	select {
	case e.tasks <- t:
		return nil
	default:
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, cap(e.tasks))
	}
}

// run is the worker loop.
func (e *Executor) run() {
	defer close(e.doneCh)
	defer e.running.Store(false)

	for t := range e.tasks {
		if e.ctx.Err() != nil && !t.fence {
			e.skipped.Add(1)
			e.logger.Debug("executor task skipped after cancellation", slog.String("task", t.name))
			continue
		}
		e.execute(t)
	}
}

// execute runs one task, containing errors and panics at the task boundary.
func (e *Executor) execute(t namedTask) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.failed.Add(1)
			e.logger.Error("executor task panicked",
				slog.String("task", t.name),
				slog.Any("panic", r))
		}
		e.processed.Add(1)
	}()

	if err := t.run(e.ctx); err != nil {
		e.failed.Add(1)
		e.logger.Error("executor task failed",
			slog.String("task", t.name),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

// Fence queues a marker and returns a channel closed once every task
// submitted before it has run or been skipped. It takes a queue slot.
func (e *Executor) Fence() (<-chan struct{}, error) {
	done := make(chan struct{})
	err := e.enqueue(namedTask{name: "barrier", fence: true, run: func(context.Context) error {
		close(done)
		return nil
	}})
	if err != nil {
		return nil, err
	}
	return done, nil
}

// Barrier blocks until every task submitted before it has run.
func (e *Executor) Barrier(ctx context.Context) error {
	done, err := e.Fence()
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue and waits for the worker to drain it.
// If ctx ends first, the running task sees its context cancelled, the tasks
// still queued are skipped, and Stop returns ctx.Err(). Safe to call multiple
// times.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.stopped {
		e.stopped = true
		close(e.tasks)
	}
	started := e.started
	e.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-e.doneCh:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.cancel()
		return ctx.Err()
	}
}

// Running reports whether the worker goroutine is alive.
func (e *Executor) Running() bool {
	return e.running.Load()
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	return len(e.tasks)
}

// Capacity returns the queue bound.
func (e *Executor) Capacity() int {
	return cap(e.tasks)
}

// Stats returns a snapshot of the executor's counters.
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Pending:   len(e.tasks),
		Processed: e.processed.Load(),
		Failed:    e.failed.Load(),
		Skipped:   e.skipped.Load(),
	}
}
