package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("customer's balance is insufficient: required %s, available %s", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

type Customer struct {
	ID      string
	Balance decimal.Decimal
}

func NewCustomer(id string, balance decimal.Decimal) *Customer {
	return &Customer{ID: id, Balance: balance}
}

func (c *Customer) CanAfford(amount decimal.Decimal) bool {
	return !c.Balance.LessThan(amount)
}

// Debit subtracts amount from the balance. The balance never goes negative.
func (c *Customer) Debit(amount decimal.Decimal) (Payment, error) {
	if !c.CanAfford(amount) {
		return Payment{
			CustomerID:    c.ID,
			Amount:        amount,
			BalanceBefore: c.Balance,
			BalanceAfter:  c.Balance,
			Status:        StatusFailed,
			CreatedAt:     time.Now().UTC(),
		}, &InsufficientBalanceError{Required: amount, Available: c.Balance}
	}
	before := c.Balance
	c.Balance = c.Balance.Sub(amount)
	return Payment{
		CustomerID:    c.ID,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  c.Balance,
		Status:        StatusProcessed,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
