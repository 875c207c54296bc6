package notify

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

// Printer renders checkout documents as plain console text.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Shipment(_ context.Context, m shipping.Manifest) {
	if m.NothingToShip() {
		fmt.Fprintln(p.w, "No items to ship")
		return
	}
	fmt.Fprintln(p.w, "** Shipment notice **")
	for _, l := range m.Lines {
		fmt.Fprintf(p.w, "%dx %s\t%dg\n", l.Quantity, l.Name, int64(math.Round(l.Weight)))
	}
	fmt.Fprintf(p.w, "Total package weight %.1fkg\n\n", m.TotalKilograms())
}

func (p *Printer) Receipt(_ context.Context, r domain.Receipt) {
	fmt.Fprintln(p.w, "** Checkout receipt **")
	for _, l := range r.Lines {
		fmt.Fprintf(p.w, "%dx %s\t%d\n", l.Quantity, l.Name, l.Total.Round(0).IntPart())
	}
	fmt.Fprintln(p.w, "-----------------------")
	fmt.Fprintf(p.w, "Subtotal\t%d\n", r.Subtotal.Round(0).IntPart())
	fmt.Fprintf(p.w, "Shipping\t%d\n", r.ShippingFee.Round(0).IntPart())
	fmt.Fprintf(p.w, "Amount\t\t%d\n\n", r.Amount.Round(0).IntPart())
}

func (p *Printer) Settled(_ context.Context, _ string, pay payment.Payment) {
	fmt.Fprintf(p.w, "Customer current balance after payment: %s\n", pay.BalanceAfter.StringFixed(1))
	fmt.Fprintln(p.w, "Checkout completed successfully!")
}
