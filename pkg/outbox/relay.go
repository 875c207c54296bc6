package outbox

import (
	"context"
	"log/slog"
	"time"
)

const maxRetryBackoff = time.Minute

// Store leases outbox events to a relay. An event is only leased once every
// earlier event of the same aggregate is sent or dead, so consumers see one
// aggregate's events in the order they were written.
type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	// MarkFailed records a failed attempt. The event is leasable again after retryAfter.
	MarkFailed(ctx context.Context, id int64, errMsg string, retryAfter time.Duration) error
	MarkDead(ctx context.Context, id int64, errMsg string) error
	ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error
}

type Relay struct {
	log          *slog.Logger
	store        Store
	dispatch     *Dispatcher
	relayID      string
	batchSize    int
	interval     time.Duration
	lease        time.Duration
	maxAttempts  int
	retryBackoff time.Duration
	now          func() time.Time
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) { r.interval = d }
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) { r.batchSize = n }
}

func WithLease(d time.Duration) RelayOption {
	return func(r *Relay) { r.lease = d }
}

// WithMaxAttempts sets how many dispatches an event gets before it is marked dead.
func WithMaxAttempts(n int) RelayOption {
	return func(r *Relay) { r.maxAttempts = n }
}

// WithRetryBackoff sets the wait after the first failure. It doubles per
// attempt up to a minute.
func WithRetryBackoff(d time.Duration) RelayOption {
	return func(r *Relay) { r.retryBackoff = d }
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string, opts ...RelayOption) *Relay {
	r := &Relay{
		log:          log,
		store:        store,
		dispatch:     dispatch,
		relayID:      relayID,
		batchSize:    100,
		interval:     500 * time.Millisecond,
		lease:        5 * time.Second,
		maxAttempts:  10,
		retryBackoff: time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			if _, err := r.Flush(ctx); err != nil {
				r.log.Error("relay lock batch error", "err", err)
			}
		}
	}
}

// Flush dispatches one leased batch and returns how many events were sent.
// The lease on what is left of the batch is renewed once half of it is used up.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	leased := r.now()
	ids := make([]int64, 0, len(events))
	for i, e := range events {
		if r.now().Sub(leased) > r.lease/2 {
			r.extendLease(ctx, events[i:])
			leased = r.now()
		}
		if err := r.dispatch.Dispatch(ctx, e); err != nil {
			r.fail(ctx, e, err)
			continue
		}
		ids = append(ids, e.ID)
	}
	if len(ids) > 0 {
		if err := r.store.MarkSent(ctx, ids); err != nil {
			r.log.Error("relay mark sent error", "err", err)
			return 0, err
		}
	}
	return len(ids), nil
}

func (r *Relay) extendLease(ctx context.Context, rest []Event) {
	ids := make([]int64, 0, len(rest))
	for _, e := range rest {
		ids = append(ids, e.ID)
	}
	if err := r.store.ExtendLease(ctx, r.relayID, ids, r.lease); err != nil {
		r.log.Error("relay extend lease error", "relay_id", r.relayID, "err", err)
	}
}

func (r *Relay) fail(ctx context.Context, e Event, cause error) {
	attempt := e.RetryCount + 1
	log := r.log.With("event_id", e.ID, "type", e.Type, "attempt", attempt, "err", cause)
	if e.LastError != nil {
		log = log.With("previous_err", *e.LastError)
	}

	if attempt >= r.maxAttempts {
		log.Error("outbox event dead after max attempts")
		if err := r.store.MarkDead(ctx, e.ID, cause.Error()); err != nil {
			r.log.Error("relay mark dead error", "event_id", e.ID, "err", err)
		}
		return
	}

	wait := r.RetryAfter(attempt)
	log.Warn("outbox dispatch failed", "retry_in", wait)
	if err := r.store.MarkFailed(ctx, e.ID, cause.Error(), wait); err != nil {
		r.log.Error("relay mark failed error", "event_id", e.ID, "err", err)
	}
}

// RetryAfter is the wait before the next dispatch once attempt has failed.
func (r *Relay) RetryAfter(attempt int) time.Duration {
	d := r.retryBackoff
	for i := 1; i < attempt && d < maxRetryBackoff; i++ {
		d *= 2
	}
	return min(d, maxRetryBackoff)
}
