package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Record is what gets persisted for every checkout attempt.
type Record struct {
	ID          string
	CustomerID  string
	Status      Status
	Stage       Stage
	Reason      string
	Lines       []ReceiptLine
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Amount      decimal.Decimal
	TotalWeight float64
	CreatedAt   time.Time
}

func NewCompletedRecord(id, customerID string, p *Plan) Record {
	return Record{
		ID:          id,
		CustomerID:  customerID,
		Status:      StatusCompleted,
		Stage:       StageDone,
		Lines:       p.Receipt.Lines,
		Subtotal:    p.Receipt.Subtotal,
		ShippingFee: p.Receipt.ShippingFee,
		Amount:      p.Receipt.Amount,
		TotalWeight: p.Manifest.TotalWeight,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewRejectedRecord(id, customerID string, err error) Record {
	stage := StageStart
	var abort *AbortError
	if errors.As(err, &abort) {
		stage = abort.Stage
	}
	return Record{
		ID:          id,
		CustomerID:  customerID,
		Status:      StatusRejected,
		Stage:       stage,
		Reason:      err.Error(),
		Subtotal:    decimal.Zero,
		ShippingFee: decimal.Zero,
		Amount:      decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
}
