package shutdown

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals cancels the returned context on SIGINT or SIGTERM.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// Drain returns a fresh context for cleanup work that must outlive the cancelled root.
func Drain(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Closer runs fns in reverse order, like stacked defers.
type Closer struct {
	fns []func(context.Context) error
}

func (c *Closer) Add(fn func(context.Context) error) {
	c.fns = append(c.fns, fn)
}

func (c *Closer) Close(ctx context.Context) error {
	var first error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
