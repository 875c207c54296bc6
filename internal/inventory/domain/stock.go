package domain

import "time"

// Reserve takes qty units out of stock for the item behind id. Guards run in
// order: expiry, then availability. A failed guard leaves stock unchanged.
// Reserved stock is never handed back.
func (it *Item) Reserve(id ItemID, qty int, now time.Time) error {
	if it.IsExpired(now) {
		return &ExpiredItemError{ItemID: id, Name: it.Name}
	}
	if it.Stock < qty {
		return &InsufficientStockError{ItemID: id, Name: it.Name, Available: it.Stock, Requested: qty}
	}
	it.Stock -= qty
	return nil
}
