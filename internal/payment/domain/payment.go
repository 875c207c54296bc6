package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Payment is the outcome of a debit against a customer's balance.
type Payment struct {
	CustomerID    string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Status        Status
	CreatedAt     time.Time
}
