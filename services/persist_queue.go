package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"macrolog/logger"
)

// PersistTask carries the items of one resolution call to background
// persistence.
type PersistTask struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Items      []ResolvedItem
	EnqueuedAt time.Time
}

type TaskHandler interface {
	Handle(ctx context.Context, task PersistTask) error
}

type TaskHandlerFunc func(ctx context.Context, task PersistTask) error

func (f TaskHandlerFunc) Handle(ctx context.Context, task PersistTask) error { return f(ctx, task) }

// TaskQueue accepts work that must not delay the caller.
type TaskQueue interface {
	Enqueue(task PersistTask)
}

type QueueOptions struct {
	Workers     int
	MaxAttempts int
	RetryDelay  time.Duration
}

// PersistQueue runs tasks in the background, at most Workers at a time,
// retrying failures with a linear backoff. Handlers must be idempotent.
type PersistQueue struct {
	handler     TaskHandler
	log         *logger.Logger
	sem         *semaphore.Weighted
	maxAttempts int
	retryDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPersistQueue(handler TaskHandler, log *logger.Logger, opts QueueOptions) *PersistQueue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PersistQueue{
		handler:     handler,
		log:         log.With("component", "PersistQueue"),
		sem:         semaphore.NewWeighted(int64(opts.Workers)),
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (q *PersistQueue) Enqueue(task PersistTask) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now()
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.sem.Acquire(q.ctx, 1); err != nil {
			q.log.Warn("persist task dropped", "task_id", task.ID, "profile_id", task.ProfileID, "error", err)
			return
		}
		defer q.sem.Release(1)
		q.run(task)
	}()
}

func (q *PersistQueue) run(task PersistTask) {
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		err := q.handleOnce(task)
		if err == nil {
			q.log.Debug("persist task done", "task_id", task.ID, "attempt", attempt,
				"latency", time.Since(task.EnqueuedAt).String())
			return
		}
		if attempt == q.maxAttempts {
			q.log.Error("persist task failed", "task_id", task.ID, "profile_id", task.ProfileID,
				"attempts", attempt, "error", err)
			return
		}
		q.log.Warn("persist task retrying", "task_id", task.ID, "attempt", attempt, "error", err)
		select {
		case <-q.ctx.Done():
			q.log.Warn("persist task abandoned", "task_id", task.ID, "error", q.ctx.Err())
			return
		case <-time.After(time.Duration(attempt) * q.retryDelay):
		}
	}
}

func (q *PersistQueue) handleOnce(task PersistTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("persist handler panic", "task_id", task.ID, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return q.handler.Handle(q.ctx, task)
}

// Drain waits until every enqueued task has finished or ctx ends.
func (q *PersistQueue) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown lets running tasks finish until ctx ends, then cancels the rest.
func (q *PersistQueue) Shutdown(ctx context.Context) error {
	err := q.Drain(ctx)
	q.cancel()
	return err
}
