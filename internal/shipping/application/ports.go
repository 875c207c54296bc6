package application

import (
	"context"

	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

type ShipmentRepository interface {
	// Save is keyed on checkout id; saving the same checkout twice keeps one shipment.
	Save(ctx context.Context, s domain.Shipment) error
	Get(ctx context.Context, checkoutID string) (domain.Shipment, error)
	// Cancel reports false when there is no scheduled shipment for the checkout.
	Cancel(ctx context.Context, checkoutID string) (bool, error)
}
