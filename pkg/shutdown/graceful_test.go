package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloser_ReverseOrderFirstError(t *testing.T) {
	var order []string
	var c Closer
	c.Add(func(context.Context) error { order = append(order, "pool"); return errors.New("pool") })
	c.Add(func(context.Context) error { order = append(order, "writer"); return errors.New("writer") })
	c.Add(func(context.Context) error { order = append(order, "tracer"); return nil })

	err := c.Close(context.Background())

	assert.Equal(t, []string{"tracer", "writer", "pool"}, order)
	assert.EqualError(t, err, "writer")
}

func TestWithSignals_CancelledByParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignals(parent)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
