package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
)

var ErrMissingCheckoutID = errors.New("checkout id is required")

// Ledger keeps a durable copy of every settled payment.
type Ledger struct {
	log  *slog.Logger
	repo PaymentRepository
}

func NewLedger(log *slog.Logger, repo PaymentRepository) *Ledger {
	return &Ledger{log: log, repo: repo}
}

func (l *Ledger) Record(ctx context.Context, checkoutID string, p domain.Payment) error {
	if checkoutID == "" {
		return ErrMissingCheckoutID
	}
	if err := l.repo.Save(ctx, checkoutID, p); err != nil {
		return fmt.Errorf("record payment for %s: %w", checkoutID, err)
	}
	l.log.Info("payment recorded",
		"checkout_id", checkoutID,
		"customer_id", p.CustomerID,
		"amount", p.Amount.String(),
		"status", p.Status,
	)
	return nil
}
