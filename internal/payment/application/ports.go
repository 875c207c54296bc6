package application

import (
	"context"

	"github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
)

type PaymentRepository interface {
	// Save is keyed on checkout id.
	Save(ctx context.Context, checkoutID string, p domain.Payment) error
}
