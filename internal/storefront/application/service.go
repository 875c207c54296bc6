package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	checkoutapp "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidBalance  = errors.New("balance must not be negative")
)

type Checkouter interface {
	Checkout(ctx context.Context, customer *payment.Customer, c *cart.Cart) (*checkoutapp.Completed, error)
}

type session struct {
	customer *payment.Customer
	cart     *cart.Cart
}

type ItemView struct {
	ID         inventory.ItemID `json:"id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	Stock      int              `json:"stock"`
	Weight     float64          `json:"weight_grams"`
	Shipping   bool             `json:"shipping"`
	Perishable bool             `json:"perishable"`
	ExpiresOn  *time.Time       `json:"expires_on,omitempty"`
	Expired    bool             `json:"expired"`
}

type LineView struct {
	ItemID    inventory.ItemID `json:"item_id"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

type SessionView struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
	Lines      []LineView      `json:"lines"`
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service hosts many customer sessions over one shared catalog. Item stock is
// shared between carts, so every operation runs under a single store lock.
type Service struct {
	mu       sync.Mutex
	log      *slog.Logger
	catalog  *inventory.Catalog
	sessions map[string]*session
	checkout Checkouter
	now      func() time.Time
}

func NewService(log *slog.Logger, checkout Checkouter, opts ...Option) *Service {
	s := &Service{
		log:      log,
		catalog:  inventory.NewCatalog(),
		sessions: make(map[string]*session),
		checkout: checkout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) RegisterItem(it inventory.Item) inventory.ItemID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Add(it)
}

func (s *Service) Items() []ItemView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	views := make([]ItemView, 0, s.catalog.Len())
	for _, id := range s.catalog.Items() {
		it, _ := s.catalog.Get(id)
		views = append(views, ItemView{
			ID:         id,
			Name:       it.Name,
			Price:      it.UnitPrice,
			Stock:      it.Stock,
			Weight:     it.Weight,
			Shipping:   it.ShippingEligible,
			Perishable: it.Perishable,
			ExpiresOn:  it.ExpiresOn,
			Expired:    it.IsExpired(now),
		})
	}
	return views
}

// OpenSession starts a customer with an empty cart. An empty customerID
// defaults to the session id.
func (s *Service) OpenSession(customerID string, balance decimal.Decimal) (SessionView, error) {
	if balance.IsNegative() {
		return SessionView{}, ErrInvalidBalance
	}
	id := uuid.NewString()
	if customerID == "" {
		customerID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &session{
		customer: payment.NewCustomer(customerID, balance),
		cart:     cart.New(s.catalog, cart.WithClock(s.now)),
	}
	s.sessions[id] = sess
	s.log.Info("session opened", "session_id", id, "customer_id", customerID)
	return s.view(id, sess), nil
}

func (s *Service) Session(id string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	return s.view(id, sess), nil
}

func (s *Service) AddToCart(id string, itemID inventory.ItemID, qty int) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	if err := sess.cart.Add(itemID, qty); err != nil {
		s.log.Warn("add to cart rejected", "session_id", id, "item_id", itemID.String(), "quantity", qty, "err", err)
		return SessionView{}, err
	}
	return s.view(id, sess), nil
}

func (s *Service) Checkout(ctx context.Context, id string) (*checkoutapp.Completed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.checkout.Checkout(ctx, sess.customer, sess.cart)
}

func (s *Service) view(id string, sess *session) SessionView {
	lines := sess.cart.Lines()
	v := SessionView{
		ID:         id,
		CustomerID: sess.customer.ID,
		Balance:    sess.customer.Balance,
		Lines:      make([]LineView, 0, len(lines)),
	}
	for _, l := range lines {
		it, _ := sess.cart.Item(l.ItemID)
		v.Lines = append(v.Lines, LineView{
			ItemID:    l.ItemID,
			Name:      it.Name,
			Quantity:  l.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return v
}
