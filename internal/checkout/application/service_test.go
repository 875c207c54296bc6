package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type saved struct {
	record    domain.Record
	eventType string
	payload   []byte
	headers   map[string]string
	voided    bool
}

type fakeRepo struct {
	calls *[]string
	saved []saved
	err   error
}

func (r *fakeRepo) SaveWithOutbox(_ context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, _ string) error {
	*r.calls = append(*r.calls, "save:"+eventType)
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, saved{record: rec, eventType: eventType, payload: payload, headers: headers})
	return nil
}

func (r *fakeRepo) Void(_ context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, _ string) error {
	*r.calls = append(*r.calls, "void:"+eventType)
	r.saved = append(r.saved, saved{record: rec, eventType: eventType, payload: payload, headers: headers, voided: true})
	return nil
}

type fakeNotifier struct {
	calls     *[]string
	onReceipt func()
}

func (n *fakeNotifier) Shipment(context.Context, shipping.Manifest) {
	*n.calls = append(*n.calls, "shipment")
}

func (n *fakeNotifier) Receipt(context.Context, domain.Receipt) {
	*n.calls = append(*n.calls, "receipt")
	if n.onReceipt != nil {
		n.onReceipt()
	}
}

func (n *fakeNotifier) Settled(context.Context, string, payment.Payment) {
	*n.calls = append(*n.calls, "settled")
}

type env struct {
	svc      *Service
	repo     *fakeRepo
	notifier *fakeNotifier
	calls    []string
	catalog  *inventory.Catalog
	cart     *cart.Cart
	tv       inventory.ItemID
	card     inventory.ItemID
}

func newEnv() *env {
	e := &env{catalog: inventory.NewCatalog()}
	e.repo = &fakeRepo{calls: &e.calls}
	e.notifier = &fakeNotifier{calls: &e.calls}
	e.svc = NewService(logging.Discard(), e.repo, e.notifier, "checkout-test")
	e.tv = e.catalog.Add(inventory.NewItem("TV", decimal.NewFromInt(200), 3, false, 700, true, now))
	e.card = e.catalog.Add(inventory.NewItem("ScratchCard", decimal.NewFromInt(50), 10, false, 0, false, now))
	e.cart = cart.New(e.catalog, cart.WithClock(func() time.Time { return now }))
	return e
}

func TestCheckout_EmitsBeforeSettling(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.cart.Add(e.tv, 1))
	customer := payment.NewCustomer("c-1", decimal.NewFromInt(500))

	done, err := e.svc.Checkout(context.Background(), customer, e.cart)

	require.NoError(t, err)
	assert.Equal(t, []string{"shipment", "receipt", "save:CheckoutCompleted", "settled"}, e.calls)
	assert.NotEmpty(t, done.CheckoutID)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(270)))
	assert.True(t, e.cart.IsEmpty())

	require.Len(t, e.repo.saved, 1)
	s := e.repo.saved[0]
	assert.Equal(t, done.CheckoutID, s.record.ID)
	assert.Equal(t, domain.StatusCompleted, s.record.Status)
	assert.Equal(t, "checkout-test", s.headers["source"])

	var ev domain.CheckoutCompleted
	require.NoError(t, json.Unmarshal(s.payload, &ev))
	assert.Equal(t, done.CheckoutID, ev.CheckoutID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(230)))
	assert.Len(t, ev.Shipment.Lines, 1)
}

func TestCheckout_RejectionIsRecordedWithoutMutation(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.cart.Add(e.tv, 1))
	customer := payment.NewCustomer("c-1", decimal.NewFromInt(50))

	done, err := e.svc.Checkout(context.Background(), customer, e.cart)

	require.Nil(t, done)
	assert.ErrorIs(t, err, payment.ErrInsufficientBalance)
	assert.Equal(t, []string{"save:CheckoutRejected"}, e.calls)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, e.cart.Quantity(e.tv))

	var ev domain.CheckoutRejected
	require.NoError(t, json.Unmarshal(e.repo.saved[0].payload, &ev))
	assert.Equal(t, domain.StageValidateBalance, ev.Stage)
	assert.Contains(t, ev.Reason, "required 230, available 50")
}

func TestCheckout_PersistFailureLeavesStateAlone(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.cart.Add(e.card, 1))
	e.repo.err = errors.New("db down")
	customer := payment.NewCustomer("c-1", decimal.NewFromInt(100))

	_, err := e.svc.Checkout(context.Background(), customer, e.cart)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, e.cart.Quantity(e.card))
	assert.NotContains(t, e.calls, "settled")
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv()
	customer := payment.NewCustomer("c-1", decimal.NewFromInt(100))

	_, err := e.svc.Checkout(context.Background(), customer, e.cart)

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Len(t, e.repo.saved, 1)
	assert.Equal(t, domain.StageValidateNotEmpty, e.repo.saved[0].record.Stage)
}

func TestCheckout_SettlementFailureVoidsRecordedCheckout(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.cart.Add(e.tv, 1))
	customer := payment.NewCustomer("c-1", decimal.NewFromInt(500))
	e.notifier.onReceipt = func() {
		_, err := customer.Debit(decimal.NewFromInt(400))
		require.NoError(t, err)
	}

	done, err := e.svc.Checkout(context.Background(), customer, e.cart)

	require.Nil(t, done)
	assert.ErrorIs(t, err, payment.ErrInsufficientBalance)
	assert.Equal(t, []string{"shipment", "receipt", "save:CheckoutCompleted", "void:CheckoutRejected"}, e.calls)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, e.cart.Quantity(e.tv))

	require.Len(t, e.repo.saved, 2)
	completed, voided := e.repo.saved[0], e.repo.saved[1]
	assert.True(t, voided.voided)
	assert.Equal(t, completed.record.ID, voided.record.ID)
	assert.Equal(t, domain.StatusRejected, voided.record.Status)
	assert.Equal(t, domain.StageSettle, voided.record.Stage)

	var ev domain.CheckoutRejected
	require.NoError(t, json.Unmarshal(voided.payload, &ev))
	assert.Equal(t, completed.record.ID, ev.CheckoutID)
	assert.Equal(t, domain.StageSettle, ev.Stage)
}
