// Package waitsignal provides a resettable, cancellable wait signal for
// pacing long-running worker loops: one goroutine blocks in Wait until a
// producer releases it with EndWait, over and over, until Cancel ends the
// signal for good.
package waitsignal

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrCancelled is returned when the terminal cancellation handle has
	// already fired: at construction, or by Wait before suspending.
	ErrCancelled = errors.New("wait signal cancelled")
	// ErrDisposed is returned when the signal's resources were released,
	// either before a call or by a concurrent Dispose during a Wait.
	ErrDisposed = errors.New("wait signal disposed")
)

// Wait re-checks its fired state on this interval as a defensive bound; the
// linked source wakes it promptly on fire, so the interval is never the
// wake-up latency.
const defaultPollInterval = 10 * time.Second

// Signal composes three cancellation handles: a terminal cancel source
// (optionally shared with external consumers), a per-cycle waiter source
// fired by EndWait, and a linked source derived from both that Wait blocks
// on. After a release the waiter/linked pair is rebuilt under the mutex so
// the next Wait starts unfired; after Cancel no rebuild ever happens again.
type Signal struct {
	cancelSource   *CancelSource
	cancelInternal bool

	// mu guards the waiter/linked pair; the two are always replaced
	// together so the linked source observes the current waiter source.
	mu           sync.Mutex
	waiterCtx    context.Context
	waiterCancel context.CancelFunc
	linkedCtx    context.Context
	linkedCancel context.CancelFunc
	stopRelay    func() bool

	pollInterval time.Duration
	disposed     atomic.Bool
	closer       func()
}

// New creates a ready Signal. Without WithCancelSource an internal terminal
// handle is created and owned by the signal. If an externally supplied
// handle has already fired, New returns ErrCancelled and leaves the handle
// untouched.
//
// Callers should release the signal with Dispose (a finalizer runs the same
// path as a safety net if they forget).
func New(opts ...Option) (*Signal, error) {
	s := &Signal{
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cancelSource == nil {
		s.cancelSource = NewCancelSource(context.Background())
		s.cancelInternal = true
	}
	if s.cancelSource.Cancelled() {
		return nil, ErrCancelled
	}
	s.rebuildPair()
	s.closer = sync.OnceFunc(s.teardown)
	runtime.SetFinalizer(s, (*Signal).Dispose)
	return s, nil
}

// Wait suspends the caller until EndWait or Cancel fires the linked source.
// Both wakes return nil; the caller tells them apart with IsCancelled. If
// the signal was cancelled before the call it returns ErrCancelled without
// waiting, and a concurrent Dispose surfaces as ErrDisposed. The caller ctx
// is the deadline/timeout race vehicle; its expiry returns ctx.Err().
//
// One logical waiter at a time is assumed.
func (s *Signal) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		return ErrDisposed
	}
	if s.cancelSource.Cancelled() {
		s.mu.Unlock()
		return ErrCancelled
	}
	if s.linkedCtx.Err() != nil {
		// previous cycle fired, rebuild so this wait starts unfired
		s.releasePair()
		s.rebuildPair()
	}
	linked := s.linkedCtx
	s.mu.Unlock()

	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()
	for {
		select {
		case <-linked.Done():
			if s.disposed.Load() {
				return ErrDisposed
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			// defensive bound, the linked source wakes us promptly on fire
			if s.disposed.Load() {
				return ErrDisposed
			}
			timer.Reset(s.pollInterval)
		}
	}
}

// EndWait fires the current waiter source, waking a blocked Wait. The
// signal stays reusable. Safe with no waiter: the next Wait consumes the
// release by rebuilding, and repeated calls before that collapse into one.
func (s *Signal) EndWait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed.Load() {
		return
	}
	s.waiterCancel()
}

// Cancel fires the terminal cancellation handle, waking a blocked Wait
// permanently and notifying every consumer sharing the handle. No Wait
// succeeds afterwards.
func (s *Signal) Cancel() {
	s.cancelSource.Cancel()
}

// IsCancelled reports whether the terminal cancellation handle has fired.
func (s *Signal) IsCancelled() bool {
	return s.cancelSource.Cancelled()
}

// Done returns the terminal handle's done channel, for select loops.
func (s *Signal) Done() <-chan struct{} {
	return s.cancelSource.Done()
}

// Dispose releases the waiter/linked pair and, when internally owned, the
// cancel source. Idempotent, and safe concurrently with Wait: a suspended
// Wait wakes and returns ErrDisposed instead of hanging.
func (s *Signal) Dispose() {
	s.closer()
}

func (s *Signal) teardown() {
	runtime.SetFinalizer(s, nil)
	s.mu.Lock()
	s.disposed.Store(true)
	s.releasePair()
	s.mu.Unlock()
	if s.cancelInternal {
		s.cancelSource.Cancel()
	}
}

// rebuildPair builds a fresh waiter source and derives the linked source
// from {cancelSource, waiterSource}. Callers hold mu (New excepted, where
// the signal is not shared yet).
func (s *Signal) rebuildPair() {
	s.waiterCtx, s.waiterCancel = context.WithCancel(context.Background())
	linkedCtx, linkedCancel := context.WithCancel(s.cancelSource.Context())
	s.stopRelay = context.AfterFunc(s.waiterCtx, linkedCancel)
	s.linkedCtx = linkedCtx
	s.linkedCancel = linkedCancel
}

// releasePair frees the current pair. Callers hold mu.
func (s *Signal) releasePair() {
	s.stopRelay()
	s.waiterCancel()
	s.linkedCancel()
}
