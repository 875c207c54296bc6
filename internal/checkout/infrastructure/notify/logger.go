package notify

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

// Logger emits checkout documents as structured log entries.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Shipment(ctx context.Context, m shipping.Manifest) {
	if m.NothingToShip() {
		l.log.InfoContext(ctx, "no items to ship")
		return
	}
	l.log.InfoContext(ctx, "shipment notice",
		"lines", len(m.Lines),
		"total_weight_grams", m.TotalWeight,
		"total_weight_kg", m.TotalKilograms(),
	)
}

func (l *Logger) Receipt(ctx context.Context, r domain.Receipt) {
	l.log.InfoContext(ctx, "checkout receipt",
		"lines", len(r.Lines),
		"subtotal", r.Subtotal.String(),
		"shipping_fee", r.ShippingFee.String(),
		"amount", r.Amount.String(),
	)
}

func (l *Logger) Settled(ctx context.Context, checkoutID string, p payment.Payment) {
	l.log.InfoContext(ctx, "payment settled",
		"checkout_id", checkoutID,
		"customer_id", p.CustomerID,
		"balance", p.BalanceAfter.String(),
	)
}
