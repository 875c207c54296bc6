package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	checkoutapp "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	checkout "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/memory"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/notify"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/storefront/application"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*application.Service, *memory.Repository) {
	t.Helper()
	log := logging.Discard()
	repo := memory.NewRepository()
	co := checkoutapp.NewService(log, repo, notify.NewLogger(log), "test")
	return application.NewService(log, co, application.WithClock(func() time.Time { return now })), repo
}

func TestOpenSessionAndAdd(t *testing.T) {
	store, _ := newStore(t)
	cheese := store.RegisterItem(inventory.NewItem("Cheese", decimal.NewFromInt(100), 10, true, 400, true, now))

	sess, err := store.OpenSession("Ahmed", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "Ahmed", sess.CustomerID)
	assert.Empty(t, sess.Lines)

	sess, err = store.AddToCart(sess.ID, cheese, 2)
	require.NoError(t, err)
	require.Len(t, sess.Lines, 1)
	assert.Equal(t, "Cheese", sess.Lines[0].Name)
	assert.Equal(t, 2, sess.Lines[0].Quantity)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Stock)
	assert.False(t, items[0].Expired)
}

func TestOpenSessionDefaultsCustomerID(t *testing.T) {
	store, _ := newStore(t)
	sess, err := store.OpenSession("", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, sess.CustomerID)

	_, err = store.OpenSession("x", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, application.ErrInvalidBalance)
}

func TestUnknownSession(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Session("nope")
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	_, err = store.AddToCart("nope", 0, 1)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
	_, err = store.Checkout(context.Background(), "nope")
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestAddToCartGuards(t *testing.T) {
	store, _ := newStore(t)
	tv := store.RegisterItem(inventory.NewItem("TV", decimal.NewFromInt(500), 1, false, 8000, true, now))
	milk := store.RegisterItem(inventory.NewItemWithExpiry("Milk", decimal.NewFromInt(10), 5, true, 1000, true, now.AddDate(0, 0, -1)))
	sess, err := store.OpenSession("Ahmed", decimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = store.AddToCart(sess.ID, tv, 2)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	_, err = store.AddToCart(sess.ID, milk, 1)
	assert.ErrorIs(t, err, inventory.ErrExpiredItem)
	_, err = store.AddToCart(sess.ID, 42, 1)
	assert.ErrorIs(t, err, inventory.ErrUnknownItem)
	_, err = store.AddToCart(sess.ID, tv, 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestCheckoutSession(t *testing.T) {
	store, repo := newStore(t)
	cheese := store.RegisterItem(inventory.NewItem("Cheese", decimal.NewFromInt(100), 10, true, 400, true, now))
	sess, err := store.OpenSession("Ahmed", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = store.AddToCart(sess.ID, cheese, 2)
	require.NoError(t, err)

	done, err := store.Checkout(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "230", done.Receipt.Amount.String())

	after, err := store.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "770", after.Balance.String())
	assert.Empty(t, after.Lines)
	require.Len(t, repo.Records(), 1)

	_, err = store.Checkout(context.Background(), sess.ID)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCheckoutInsufficientBalance(t *testing.T) {
	store, _ := newStore(t)
	tv := store.RegisterItem(inventory.NewItem("TV", decimal.NewFromInt(500), 3, false, 8000, true, now))
	sess, err := store.OpenSession("Ahmed", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = store.AddToCart(sess.ID, tv, 1)
	require.NoError(t, err)

	_, err = store.Checkout(context.Background(), sess.ID)
	assert.ErrorIs(t, err, payment.ErrInsufficientBalance)

	after, err := store.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", after.Balance.String())
	assert.Len(t, after.Lines, 1)
}

func TestConcurrentAddsShareStock(t *testing.T) {
	store, _ := newStore(t)
	tv := store.RegisterItem(inventory.NewItem("TV", decimal.NewFromInt(500), 5, false, 8000, true, now))

	const sessions = 20
	ids := make([]string, sessions)
	for i := range ids {
		sess, err := store.OpenSession("", decimal.NewFromInt(1000))
		require.NoError(t, err)
		ids[i] = sess.ID
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := store.AddToCart(id, tv, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Zero(t, store.Items()[0].Stock)
}
