package domain

import (
	"math"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

// Reservations is the read side of a cart that a manifest is built from.
type Reservations interface {
	Lines() []cart.Line
	Item(id inventory.ItemID) (*inventory.Item, bool)
}

type ManifestLine struct {
	ItemID   inventory.ItemID `json:"item_id"`
	Name     string           `json:"name"`
	Quantity int              `json:"quantity"`
	Weight   float64          `json:"weight_grams"`
}

type Manifest struct {
	Lines       []ManifestLine `json:"lines"`
	TotalWeight float64        `json:"total_weight_grams"`
}

// BuildManifest collects the lines that ship, in reservation order. A cart with
// nothing to ship yields an empty manifest, not an error.
func BuildManifest(r Reservations) Manifest {
	var m Manifest
	for _, l := range r.Lines() {
		it, ok := r.Item(l.ItemID)
		if !ok || !it.Ships() {
			continue
		}
		w := it.Weight * float64(l.Quantity)
		m.Lines = append(m.Lines, ManifestLine{
			ItemID:   l.ItemID,
			Name:     it.Name,
			Quantity: l.Quantity,
			Weight:   w,
		})
		m.TotalWeight += w
	}
	return m
}

// NothingToShip is true when no reserved line has shipping weight.
func (m Manifest) NothingToShip() bool {
	return len(m.Lines) == 0
}

// TotalKilograms is the total weight in kilograms rounded to one decimal, for display.
func (m Manifest) TotalKilograms() float64 {
	return math.Round(m.TotalWeight/100) / 10
}
