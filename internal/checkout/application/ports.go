package application

import (
	"context"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

type CheckoutRepository interface {
	SaveWithOutbox(ctx context.Context, r domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error
	// Void turns an already saved checkout into a rejected one at r's stage
	// and queues eventType for it atomically.
	Void(ctx context.Context, r domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error
}

type CheckoutReader interface {
	Get(ctx context.Context, id string) (domain.Record, error)
}

// Notifier receives the checkout documents in order: shipment, receipt, settlement.
type Notifier interface {
	Shipment(ctx context.Context, m shipping.Manifest)
	Receipt(ctx context.Context, r domain.Receipt)
	Settled(ctx context.Context, checkoutID string, p payment.Payment)
}
