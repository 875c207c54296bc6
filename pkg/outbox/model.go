package outbox

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	// StatusFailed events are leased again once NextAttemptAt has passed.
	StatusFailed Status = "failed"
	// StatusDead events ran out of attempts and are left for an operator.
	StatusDead Status = "dead"
)

// Event is one outbox row. RetryCount counts failed dispatches so far and
// LastError holds the most recent one.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	CreatedAt     time.Time
	Status        Status
	RelayID       string
	RetryCount    int
	LastError     *string
	NextAttemptAt time.Time
}

// Leasable reports whether a relay may pick e up at now, given when the
// current lease on it ends.
func (e Event) Leasable(now, leaseUntil time.Time) bool {
	switch e.Status {
	case StatusPending:
		return true
	case StatusInProgress:
		return now.After(leaseUntil)
	case StatusFailed:
		return !now.Before(e.NextAttemptAt)
	default:
		return false
	}
}

// Settled reports whether e no longer holds back later events of its aggregate.
func (e Event) Settled() bool {
	return e.Status == StatusSent || e.Status == StatusDead
}
