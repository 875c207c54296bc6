package domain

import (
	"errors"
	"time"
)

var ErrShipmentNotFound = errors.New("shipment not found")

type ShipmentStatus string

const (
	ShipmentScheduled ShipmentStatus = "scheduled"
	// ShipmentCancelled follows a checkout that was voided after it completed.
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// Shipment is a manifest scheduled for delivery after a completed checkout.
type Shipment struct {
	CheckoutID string
	CustomerID string
	Manifest   Manifest
	Status     ShipmentStatus
	CreatedAt  time.Time
}

func NewShipment(checkoutID, customerID string, m Manifest) Shipment {
	return Shipment{
		CheckoutID: checkoutID,
		CustomerID: customerID,
		Manifest:   m,
		Status:     ShipmentScheduled,
		CreatedAt:  time.Now().UTC(),
	}
}
