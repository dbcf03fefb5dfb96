package waitsignal

import "time"

type Option func(*Signal)

// WithCancelSource supplies an externally owned terminal handle, shared
// with other cancellable work. The signal fires it on Cancel but never
// disposes it.
func WithCancelSource(cs *CancelSource) Option {
	return func(s *Signal) {
		s.cancelSource = cs
		s.cancelInternal = false
	}
}

// WithPollInterval changes the bounded re-check interval of Wait. It does
// not affect wake-up latency, only how often a suspended Wait re-tests its
// fired state.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Signal) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}
