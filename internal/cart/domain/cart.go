package domain

import (
	"errors"
	"time"

	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Line is one reservation: a quantity already taken out of the item's stock.
type Line struct {
	ItemID   inventory.ItemID
	Quantity int
}

type Cart struct {
	catalog *inventory.Catalog
	now     func() time.Time
	lines   []Line
	index   map[inventory.ItemID]int
}

type Option func(*Cart)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

func New(catalog *inventory.Catalog, opts ...Option) *Cart {
	c := &Cart{
		catalog: catalog,
		now:     time.Now,
		index:   make(map[inventory.ItemID]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add reserves qty units of the item. On error neither the cart nor the stock changes.
func (c *Cart) Add(id inventory.ItemID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	it, ok := c.catalog.Get(id)
	if !ok {
		return inventory.ErrUnknownItem
	}
	if err := it.Reserve(id, qty, c.now()); err != nil {
		return err
	}
	if i, ok := c.index[id]; ok {
		c.lines[i].Quantity += qty
		return nil
	}
	c.index[id] = len(c.lines)
	c.lines = append(c.lines, Line{ItemID: id, Quantity: qty})
	return nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the reservations in first-insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Quantity(id inventory.ItemID) int {
	if i, ok := c.index[id]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Item resolves a handle against the cart's catalog.
func (c *Cart) Item(id inventory.ItemID) (*inventory.Item, bool) {
	return c.catalog.Get(id)
}

func (c *Cart) Now() time.Time {
	return c.now()
}

// Clear drops every reservation. Stock is not restored.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[inventory.ItemID]int)
}
