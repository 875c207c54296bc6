package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebit(t *testing.T) {
	c := NewCustomer("c-1", decimal.NewFromInt(400))

	p, err := c.Debit(decimal.RequireFromString("150.5"))

	require.NoError(t, err)
	assert.Equal(t, StatusProcessed, p.Status)
	assert.True(t, p.BalanceBefore.Equal(decimal.NewFromInt(400)))
	assert.True(t, p.BalanceAfter.Equal(decimal.RequireFromString("249.5")))
	assert.True(t, c.Balance.Equal(decimal.RequireFromString("249.5")))
}

func TestDebit_ExactBalance(t *testing.T) {
	c := NewCustomer("c-1", decimal.NewFromInt(100))

	_, err := c.Debit(decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.True(t, c.Balance.IsZero())
}

func TestDebit_Insufficient(t *testing.T) {
	c := NewCustomer("c-1", decimal.NewFromInt(400))

	p, err := c.Debit(decimal.NewFromInt(630))

	var balErr *InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, balErr.Required.Equal(decimal.NewFromInt(630)))
	assert.True(t, balErr.Available.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, "customer's balance is insufficient: required 630, available 400", err.Error())
	assert.Equal(t, StatusFailed, p.Status)
	assert.True(t, c.Balance.Equal(decimal.NewFromInt(400)))
}
