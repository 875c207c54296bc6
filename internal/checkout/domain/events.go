package domain

import (
	"github.com/shopspring/decimal"

	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

const (
	EventCheckoutCompleted = "CheckoutCompleted"
	EventCheckoutRejected  = "CheckoutRejected"
)

type CheckoutCompleted struct {
	CheckoutID  string            `json:"checkout_id"`
	CustomerID  string            `json:"customer_id"`
	Lines       []ReceiptLine     `json:"lines"`
	Shipment    shipping.Manifest `json:"shipment"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	ShippingFee decimal.Decimal   `json:"shipping_fee"`
	Amount      decimal.Decimal   `json:"amount"`
}

type CheckoutRejected struct {
	CheckoutID string `json:"checkout_id"`
	CustomerID string `json:"customer_id"`
	Stage      Stage  `json:"stage"`
	Reason     string `json:"reason"`
}

func NewCheckoutCompleted(id, customerID string, p *Plan) CheckoutCompleted {
	return CheckoutCompleted{
		CheckoutID:  id,
		CustomerID:  customerID,
		Lines:       p.Receipt.Lines,
		Shipment:    p.Manifest,
		Subtotal:    p.Receipt.Subtotal,
		ShippingFee: p.Receipt.ShippingFee,
		Amount:      p.Receipt.Amount,
	}
}

func NewCheckoutRejected(r Record) CheckoutRejected {
	return CheckoutRejected{
		CheckoutID: r.ID,
		CustomerID: r.CustomerID,
		Stage:      r.Stage,
		Reason:     r.Reason,
	}
}
