package application

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

var ErrMissingCheckoutID = errors.New("checkout id is required")

// CheckoutCompleted is the part of the checkout event shipping cares about.
type CheckoutCompleted struct {
	CheckoutID string          `json:"checkout_id"`
	CustomerID string          `json:"customer_id"`
	Shipment   domain.Manifest `json:"shipment"`
}

// CheckoutRejected is the part of the rejection event shipping cares about.
type CheckoutRejected struct {
	CheckoutID string `json:"checkout_id"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

type Service struct {
	log    *slog.Logger
	repo   ShipmentRepository
	tracer trace.Tracer
}

func NewService(log *slog.Logger, repo ShipmentRepository) *Service {
	return &Service{log: log, repo: repo, tracer: otel.Tracer("shipping")}
}

// Schedule records a shipment for a completed checkout. It reports false
// when the checkout had nothing to ship.
func (s *Service) Schedule(ctx context.Context, ev CheckoutCompleted) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleShipment", trace.WithAttributes(
		attribute.String("checkout.id", ev.CheckoutID),
	))
	defer span.End()

	if ev.CheckoutID == "" {
		return false, ErrMissingCheckoutID
	}
	if ev.Shipment.NothingToShip() {
		s.log.Info("no items to ship", "checkout_id", ev.CheckoutID)
		return false, nil
	}

	shipment := domain.NewShipment(ev.CheckoutID, ev.CustomerID, ev.Shipment)
	if err := s.repo.Save(ctx, shipment); err != nil {
		span.RecordError(err)
		return false, err
	}
	s.log.Info("shipment scheduled",
		"checkout_id", ev.CheckoutID,
		"lines", len(ev.Shipment.Lines),
		"weight_kg", ev.Shipment.TotalKilograms(),
	)
	return true, nil
}

// Cancel withdraws the shipment of a checkout that was voided after it
// completed. Rejections of checkouts that never shipped are a no-op.
func (s *Service) Cancel(ctx context.Context, ev CheckoutRejected) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "CancelShipment", trace.WithAttributes(
		attribute.String("checkout.id", ev.CheckoutID),
	))
	defer span.End()

	if ev.CheckoutID == "" {
		return false, ErrMissingCheckoutID
	}
	cancelled, err := s.repo.Cancel(ctx, ev.CheckoutID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if cancelled {
		s.log.Warn("shipment cancelled", "checkout_id", ev.CheckoutID, "stage", ev.Stage, "reason", ev.Reason)
	}
	return cancelled, nil
}
