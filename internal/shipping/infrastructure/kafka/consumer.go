package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/application"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/idempotency"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/outbox"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/tracing"
)

const (
	checkoutCompleted = "CheckoutCompleted"
	checkoutRejected  = "CheckoutRejected"

	maxRetryDelay = 30 * time.Second
)

type Scheduler interface {
	Schedule(ctx context.Context, ev application.CheckoutCompleted) (bool, error)
	Cancel(ctx context.Context, ev application.CheckoutRejected) (bool, error)
}

type Consumer struct {
	log        *slog.Logger
	reader     *kafka.Reader
	svc        Scheduler
	idem       *idempotency.Store
	tracer     trace.Tracer
	retryDelay time.Duration
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc Scheduler, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:        log,
		reader:     r,
		svc:        svc,
		idem:       idem,
		tracer:     otel.Tracer("shipping-consumer"),
		retryDelay: 200 * time.Millisecond,
	}
}

// Run commits each offset only after its message was handled. A message that
// fails is retried in place, so the partition never moves past it.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.Process(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// Process handles msg until it succeeds, backing off between attempts. It only
// returns an error when ctx is done.
func (c *Consumer) Process(ctx context.Context, msg kafka.Message) error {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		if c.Handle(ctx, msg) {
			return nil
		}
		c.log.Warn("message handling failed, retrying",
			"partition", msg.Partition, "offset", msg.Offset, "attempt", attempt, "retry_in", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

// Handle processes one message and reports whether it is done with. The
// idempotency claim is given back when handling fails so a retry of the same
// offset is not mistaken for a duplicate.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) bool {
	eventType := tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader)
	if eventType != checkoutCompleted && eventType != checkoutRejected {
		return true
	}

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "err", err)
		return false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return true
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+eventType)
	defer span.End()

	if err := c.apply(msgCtx, eventType, msg.Value); err != nil {
		span.RecordError(err)
		if err := c.idem.Release(ctx, key); err != nil {
			c.log.Error("idempotency release failed", "key", key, "err", err)
		}
		return false
	}
	return true
}

func (c *Consumer) apply(ctx context.Context, eventType string, value []byte) error {
	switch eventType {
	case checkoutCompleted:
		var ev application.CheckoutCompleted
		if err := json.Unmarshal(value, &ev); err != nil {
			c.log.Error("unmarshal failed", "type", eventType, "err", err)
			return nil
		}
		if _, err := c.svc.Schedule(ctx, ev); err != nil {
			c.log.Error("schedule failed", "checkout_id", ev.CheckoutID, "err", err)
			return retryable(err)
		}
	case checkoutRejected:
		var ev application.CheckoutRejected
		if err := json.Unmarshal(value, &ev); err != nil {
			c.log.Error("unmarshal failed", "type", eventType, "err", err)
			return nil
		}
		if _, err := c.svc.Cancel(ctx, ev); err != nil {
			c.log.Error("cancel failed", "checkout_id", ev.CheckoutID, "err", err)
			return retryable(err)
		}
	}
	return nil
}

// retryable drops errors that no retry can fix.
func retryable(err error) error {
	if errors.Is(err, application.ErrMissingCheckoutID) {
		return nil
	}
	return err
}
