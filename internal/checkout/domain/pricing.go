package domain

import (
	"github.com/shopspring/decimal"

	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

// FlatShippingFee is charged once whenever anything in the cart has shipping weight.
// It does not scale with weight.
var FlatShippingFee = decimal.NewFromInt(30)

func Subtotal(r shipping.Reservations) decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines() {
		it, ok := r.Item(l.ItemID)
		if !ok {
			continue
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func ShippableWeight(r shipping.Reservations) float64 {
	var w float64
	for _, l := range r.Lines() {
		it, ok := r.Item(l.ItemID)
		if !ok || !it.Ships() {
			continue
		}
		w += it.Weight * float64(l.Quantity)
	}
	return w
}

func ShippingFee(shippableWeight float64) decimal.Decimal {
	if shippableWeight > 0 {
		return FlatShippingFee
	}
	return decimal.Zero
}
