package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

type Repository struct {
	mu        sync.RWMutex
	shipments map[string]domain.Shipment
}

func NewRepository() *Repository {
	return &Repository{shipments: make(map[string]domain.Shipment)}
}

func (r *Repository) Save(_ context.Context, s domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shipments[s.CheckoutID]; ok {
		return nil
	}
	r.shipments[s.CheckoutID] = s
	return nil
}

func (r *Repository) Get(_ context.Context, checkoutID string) (domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shipments[checkoutID]
	if !ok {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}
	return s, nil
}

func (r *Repository) Cancel(_ context.Context, checkoutID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[checkoutID]
	if !ok || s.Status != domain.ShipmentScheduled {
		return false, nil
	}
	s.Status = domain.ShipmentCancelled
	r.shipments[checkoutID] = s
	return true, nil
}

func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shipments)
}
