package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShelfLife is the expiry grace period given to perishable items built with NewItem.
const ShelfLife = 7 * 24 * time.Hour

type Item struct {
	Name             string
	UnitPrice        decimal.Decimal
	Stock            int
	Weight           float64 // grams; 0 means nothing to weigh
	ShippingEligible bool
	Perishable       bool
	ExpiresOn        *time.Time
}

// NewItem builds an item the normal way: perishable items expire ShelfLife after now.
func NewItem(name string, price decimal.Decimal, stock int, perishable bool, weight float64, shippingEligible bool, now time.Time) Item {
	it := Item{
		Name:             name,
		UnitPrice:        price,
		Stock:            stock,
		Weight:           weight,
		ShippingEligible: shippingEligible,
		Perishable:       perishable,
	}
	if perishable {
		d := Date(now.Add(ShelfLife))
		it.ExpiresOn = &d
	}
	return it
}

// NewItemWithExpiry stores expiresOn as given. It is how already-expired stock is built.
func NewItemWithExpiry(name string, price decimal.Decimal, stock int, perishable bool, weight float64, shippingEligible bool, expiresOn time.Time) Item {
	d := Date(expiresOn)
	return Item{
		Name:             name,
		UnitPrice:        price,
		Stock:            stock,
		Weight:           weight,
		ShippingEligible: shippingEligible,
		Perishable:       perishable,
		ExpiresOn:        &d,
	}
}

// IsExpired reports whether the calendar day of now is strictly after the expiry day.
func (it *Item) IsExpired(now time.Time) bool {
	return it.Perishable && it.ExpiresOn != nil && Date(now).After(*it.ExpiresOn)
}

// Ships reports whether the item contributes weight to a shipment.
func (it *Item) Ships() bool {
	return it.ShippingEligible && it.Weight > 0
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
