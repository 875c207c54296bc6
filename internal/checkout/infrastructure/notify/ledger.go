package notify

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
)

type PaymentRecorder interface {
	Record(ctx context.Context, checkoutID string, p payment.Payment) error
}

// Ledger forwards everything to the wrapped notifier and also records each
// settled payment. The debit has already happened by then, so a failed
// record is logged rather than returned.
type Ledger struct {
	application.Notifier
	log      *slog.Logger
	recorder PaymentRecorder
}

func WithLedger(next application.Notifier, log *slog.Logger, recorder PaymentRecorder) *Ledger {
	return &Ledger{Notifier: next, log: log, recorder: recorder}
}

func (l *Ledger) Settled(ctx context.Context, checkoutID string, p payment.Payment) {
	l.Notifier.Settled(ctx, checkoutID, p)
	if err := l.recorder.Record(ctx, checkoutID, p); err != nil {
		l.log.Error("payment ledger write failed", "checkout_id", checkoutID, "err", err)
	}
}
