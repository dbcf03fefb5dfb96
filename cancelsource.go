package waitsignal

import "context"

// CancelSource is a terminal cancellation handle. It fires exactly once and
// never un-fires; any number of consumers may share it and observe the same
// fire through Done or Cancelled.
type CancelSource struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelSource creates an unfired handle. A nil parent defaults to
// context.Background().
func NewCancelSource(parent context.Context) *CancelSource {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &CancelSource{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Cancel fires the handle. Subsequent calls are no-ops.
func (c *CancelSource) Cancel() {
	c.cancel()
}

// Cancelled reports whether the handle has fired.
func (c *CancelSource) Cancelled() bool {
	return c.ctx.Err() != nil
}

// Done returns a channel closed when the handle fires, for use in select
// loops by consumers sharing the handle.
func (c *CancelSource) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Context exposes the underlying context so derived work can be linked to
// the handle's lifetime.
func (c *CancelSource) Context() context.Context {
	return c.ctx
}
