package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/outbox"
)

// Repository keeps checkout records and their outbox in process. It also
// serves as the relay's outbox.Store.
type Repository struct {
	mu      sync.Mutex
	records []domain.Record
	events  []outbox.Event
	leases  map[int64]time.Time
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{leases: make(map[int64]time.Time)}
}

func (r *Repository) SaveWithOutbox(_ context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	r.enqueue(rec.ID, eventType, payload, headers, traceparent)
	return nil
}

// Void marks a stored checkout rejected at rec's stage and queues the event.
func (r *Repository) Void(_ context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ID != rec.ID {
			continue
		}
		r.records[i].Status = domain.StatusRejected
		r.records[i].Stage = rec.Stage
		r.records[i].Reason = rec.Reason
		r.enqueue(rec.ID, eventType, payload, headers, traceparent)
		return nil
	}
	return domain.ErrNotFound
}

func (r *Repository) enqueue(aggregateID, eventType string, payload []byte, headers map[string]string, traceparent string) {
	r.nextID++
	r.events = append(r.events, outbox.Event{
		ID:            r.nextID,
		AggregateType: "checkout",
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       payload,
		Headers:       headers,
		Traceparent:   traceparent,
		CreatedAt:     time.Now().UTC(),
		Status:        outbox.StatusPending,
	})
}

func (r *Repository) Records() []domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Repository) Get(_ context.Context, id string) (domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.Record{}, domain.ErrNotFound
}

func (r *Repository) Events() []outbox.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]outbox.Event, len(r.events))
	copy(out, r.events)
	return out
}

// LockBatch leases pending events, failed events that are due and events
// whose lease ran out. An event waits while an earlier one of its checkout is
// still unsettled.
func (r *Repository) LockBatch(_ context.Context, relayID string, batchSize int, lease time.Duration) ([]outbox.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	blocked := make(map[string]bool)
	var batch []outbox.Event
	for i := range r.events {
		if len(batch) == batchSize {
			break
		}
		ev := &r.events[i]
		if blocked[ev.AggregateID] {
			continue
		}
		if !ev.Settled() {
			blocked[ev.AggregateID] = true
		}
		if !ev.Leasable(now, r.leases[ev.ID]) {
			continue
		}
		ev.Status = outbox.StatusInProgress
		ev.RelayID = relayID
		r.leases[ev.ID] = now.Add(lease)
		batch = append(batch, *ev)
	}
	return batch, nil
}

func (r *Repository) MarkSent(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if ev := r.find(id); ev != nil {
			ev.Status = outbox.StatusSent
			delete(r.leases, id)
		}
	}
	return nil
}

func (r *Repository) MarkFailed(_ context.Context, id int64, errMsg string, retryAfter time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev := r.find(id); ev != nil {
		ev.Status = outbox.StatusFailed
		ev.RetryCount++
		ev.LastError = &errMsg
		ev.NextAttemptAt = time.Now().Add(retryAfter)
		delete(r.leases, id)
	}
	return nil
}

func (r *Repository) MarkDead(_ context.Context, id int64, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev := r.find(id); ev != nil {
		ev.Status = outbox.StatusDead
		ev.RetryCount++
		ev.LastError = &errMsg
		delete(r.leases, id)
	}
	return nil
}

func (r *Repository) ExtendLease(_ context.Context, relayID string, ids []int64, lease time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(lease)
	for _, id := range ids {
		if ev := r.find(id); ev != nil && ev.RelayID == relayID && ev.Status == outbox.StatusInProgress {
			r.leases[id] = until
		}
	}
	return nil
}

func (r *Repository) find(id int64) *outbox.Event {
	for i := range r.events {
		if r.events[i].ID == id {
			return &r.events[i]
		}
	}
	return nil
}
