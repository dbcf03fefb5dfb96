package waitsignal

import "context"

type ctxKey string

var signalKey ctxKey = "waitsignal"

type signalContext struct {
	signal *Signal
}

// WithWaitSignal embeds a signal into the context so nested worker code can
// reach its pacing signal without threading it explicitly.
func WithWaitSignal(parent context.Context, s *Signal) context.Context {
	return context.WithValue(parent, signalKey, signalContext{
		signal: s,
	})
}

// UseWaitSignal retrieves the signal embedded by WithWaitSignal.
func UseWaitSignal(ctx context.Context) (*Signal, bool) {
	signalCtx, ok := ctx.Value(signalKey).(signalContext)
	if !ok {
		return nil, false
	}
	return signalCtx.signal, true
}
