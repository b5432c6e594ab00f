package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrClosed    = errors.New("dispatcher is closed")
)

type Job func(ctx context.Context) error

type task struct {
	name string
	run  Job
}

// Dispatcher runs fire-and-forget jobs on a fixed pool of workers.
// Submit never blocks; a full queue is reported to the caller instead.
type Dispatcher struct {
	queue      chan task
	workers    int
	jobTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int, jobTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		queue:      make(chan task, queueSize),
		workers:    workers,
		jobTimeout: jobTimeout,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			for t := range d.queue {
				d.run(ctx, id, t)
			}
		}(i)
	}
}

func (d *Dispatcher) run(ctx context.Context, worker int, t task) {
	jobCtx := ctx
	if d.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, d.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("job", t.name).Int("worker", worker).Msg("job panicked")
		}
	}()

	if err := t.run(jobCtx); err != nil {
		log.Error().Err(err).Str("job", t.name).Int("worker", worker).Msg("job failed")
	}
}

func (d *Dispatcher) Submit(name string, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- task{name: name, run: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
