package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/tracing"
)

type Service struct {
	log      *slog.Logger
	repo     CheckoutRepository
	notifier Notifier
	tracer   trace.Tracer
	source   string
}

type Completed struct {
	CheckoutID string
	domain.Result
}

func NewService(log *slog.Logger, repo CheckoutRepository, notifier Notifier, source string) *Service {
	return &Service{
		log:      log,
		repo:     repo,
		notifier: notifier,
		tracer:   otel.Tracer("checkout"),
		source:   source,
	}
}

// Checkout validates the cart against the customer, emits the shipment and
// receipt, records the outcome and only then debits the customer and clears
// the cart. The caller must serialize access to customer and cart. If the
// debit still fails, the recorded checkout is voided and a CheckoutRejected
// event follows the CheckoutCompleted one so consumers can undo their side.
func (s *Service) Checkout(ctx context.Context, customer *payment.Customer, c *cart.Cart) (*Completed, error) {
	id := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "Checkout", trace.WithAttributes(
		attribute.String("checkout.id", id),
		attribute.String("customer.id", customer.ID),
	))
	defer span.End()

	plan, err := domain.Prepare(customer, c)
	if err != nil {
		s.reject(ctx, id, customer.ID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout rejected")
		return nil, err
	}

	s.notifier.Shipment(ctx, plan.Manifest)
	plan.Advance(domain.StageEmitReceipt)
	s.notifier.Receipt(ctx, plan.Receipt)

	payload, err := json.Marshal(domain.NewCheckoutCompleted(id, customer.ID, plan))
	if err != nil {
		return nil, err
	}
	rec := domain.NewCompletedRecord(id, customer.ID, plan)
	if err := s.repo.SaveWithOutbox(ctx, rec, domain.EventCheckoutCompleted, payload, s.headers(), tracing.Traceparent(ctx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, fmt.Errorf("persist checkout %s: %w", id, err)
	}

	res, err := plan.Settle()
	if err != nil {
		s.void(ctx, id, customer.ID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement failed")
		return nil, err
	}
	s.notifier.Settled(ctx, id, res.Payment)

	s.log.Info("checkout completed",
		"checkout_id", id,
		"customer_id", customer.ID,
		"amount", res.Receipt.Amount.String(),
		"shipping_fee", res.Receipt.ShippingFee.String(),
		"balance", res.Payment.BalanceAfter.String(),
	)
	return &Completed{CheckoutID: id, Result: *res}, nil
}

func (s *Service) reject(ctx context.Context, id, customerID string, cause error) {
	rec := domain.NewRejectedRecord(id, customerID, cause)
	s.log.Warn("checkout rejected", "checkout_id", id, "customer_id", customerID, "stage", rec.Stage, "err", cause)
	s.recordRejection(ctx, rec, s.repo.SaveWithOutbox)
}

func (s *Service) void(ctx context.Context, id, customerID string, cause error) {
	rec := domain.NewRejectedRecord(id, customerID, cause)
	s.log.Error("settlement failed, voiding checkout", "checkout_id", id, "customer_id", customerID, "stage", rec.Stage, "err", cause)
	s.recordRejection(ctx, rec, s.repo.Void)
}

type persistFunc func(ctx context.Context, r domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error

func (s *Service) recordRejection(ctx context.Context, rec domain.Record, persist persistFunc) {
	payload, err := json.Marshal(domain.NewCheckoutRejected(rec))
	if err != nil {
		s.log.Error("marshal rejection failed", "checkout_id", rec.ID, "err", err)
		return
	}
	if err := persist(ctx, rec, domain.EventCheckoutRejected, payload, s.headers(), tracing.Traceparent(ctx)); err != nil {
		s.log.Error("persist rejection failed", "checkout_id", rec.ID, "err", err)
	}
}

func (s *Service) headers() map[string]string {
	return map[string]string{"source": s.source}
}
