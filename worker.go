package waitsignal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/avast/retry-go/v3"
	"github.com/charmbracelet/log"
)

// Task is one unit of consumer work, run each time the signal is released.
type Task func(ctx context.Context) error

// Worker is the consumer half of the producer-pokes-consumer handshake: a
// loop that waits on a Signal, runs its task on each release, and exits
// when the signal is cancelled or disposed.
type Worker struct {
	signal  *Signal
	task    Task
	name    string
	retries uint
	onError func(error) error
	running atomic.Bool
	wg      sync.WaitGroup
}

type WorkerOption func(*Worker)

// WorkerWithName sets the name used in log output.
func WorkerWithName(name string) WorkerOption {
	return func(w *Worker) {
		w.name = name
	}
}

// WorkerWithRetries wraps each task run in retry.Do with the given number
// of attempts. Zero means a single attempt.
func WorkerWithRetries(retries uint) WorkerOption {
	return func(w *Worker) {
		w.retries = retries
	}
}

// WorkerWithOnError installs a filter for task errors; returning nil
// swallows the error, anything else is forwarded on the Run channel.
func WorkerWithOnError(handler func(error) error) WorkerOption {
	return func(w *Worker) {
		w.onError = handler
	}
}

func NewWorker(s *Signal, task Task, opts ...WorkerOption) *Worker {
	w := &Worker{
		signal: s,
		task:   task,
		name:   "worker",
		onError: func(err error) error {
			return err // Default: forward the error as-is
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the loop goroutine and returns its error channel, closed when
// the loop exits. Returns nil if the worker is already running.
func (w *Worker) Run(ctx context.Context) chan error {
	if !w.running.CompareAndSwap(false, true) {
		return nil // Already running
	}

	errChan := make(chan error, 100)

	w.wg.Add(1)
	go func() {
		defer func() {
			close(errChan)
			w.running.Store(false)
			w.wg.Done()
		}()
		log.Debug("[Worker] starting", "name", w.name)

		for {
			if err := w.signal.Wait(ctx); err != nil {
				if errors.Is(err, ErrCancelled) || errors.Is(err, ErrDisposed) {
					log.Debug("[Worker] signal finished", "name", w.name, "reason", err)
					return
				}
				// caller ctx expired
				errChan <- err
				return
			}
			if w.signal.IsCancelled() {
				log.Debug("[Worker] cancelled", "name", w.name)
				return
			}

			log.Debug("[Worker] released, running task", "name", w.name)
			var err error
			if w.retries == 0 {
				err = w.task(ctx)
			} else {
				err = retry.Do(func() error {
					return w.task(ctx)
				}, retry.Attempts(w.retries))
			}
			if err != nil {
				if handled := w.onError(err); handled != nil {
					log.Debug("[Worker] task error", "name", w.name, "error", handled)
					errChan <- handled
				}
			}
		}
	}()

	return errChan
}

// Wait blocks until the loop goroutine has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}
