package application

import (
	"time"

	"github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

// ItemSource yields catalog items. Perishables without an explicit expiry
// get one relative to now.
type ItemSource interface {
	Items(now time.Time) ([]domain.Item, error)
}

type Registrar interface {
	RegisterItem(it domain.Item) domain.ItemID
}
