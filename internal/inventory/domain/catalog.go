package domain

import "fmt"

// ItemID is a handle into a Catalog. Two items with equal fields still get distinct handles.
type ItemID int

func (id ItemID) String() string { return fmt.Sprintf("item-%d", int(id)) }

// Catalog owns every Item; carts and checkouts refer to items by handle only.
type Catalog struct {
	items []*Item
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) Add(it Item) ItemID {
	c.items = append(c.items, &it)
	return ItemID(len(c.items) - 1)
}

func (c *Catalog) Get(id ItemID) (*Item, bool) {
	if id < 0 || int(id) >= len(c.items) {
		return nil, false
	}
	return c.items[id], true
}

func (c *Catalog) Len() int { return len(c.items) }

// Items returns handles in allocation order.
func (c *Catalog) Items() []ItemID {
	ids := make([]ItemID, len(c.items))
	for i := range c.items {
		ids[i] = ItemID(i)
	}
	return ids
}
