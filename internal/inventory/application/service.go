package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

// Seed registers every item from src, in source order.
func Seed(log *slog.Logger, src ItemSource, reg Registrar, now time.Time) ([]domain.ItemID, error) {
	items, err := src.Items(now)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	ids := make([]domain.ItemID, 0, len(items))
	for _, it := range items {
		id := reg.RegisterItem(it)
		log.Debug("item registered", "item_id", id.String(), "name", it.Name, "stock", it.Stock)
		ids = append(ids, id)
	}
	log.Info("catalog seeded", "items", len(ids))
	return ids, nil
}
