package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

const dateLayout = "2006-01-02"

var ErrInvalidItem = errors.New("invalid catalog item")

type file struct {
	Items []entry `yaml:"items"`
}

type entry struct {
	Name        string  `yaml:"name"`
	Price       string  `yaml:"price"`
	Stock       int     `yaml:"stock"`
	Perishable  bool    `yaml:"perishable"`
	WeightGrams float64 `yaml:"weight_grams"`
	Shipping    bool    `yaml:"shipping"`
	ExpiresOn   string  `yaml:"expires_on"`
}

// Loader reads a YAML catalog:
//
//	items:
//	  - name: Cheese
//	    price: "100"
//	    stock: 10
//	    perishable: true
//	    weight_grams: 200
//	    shipping: true
//	    expires_on: 2026-01-31
type Loader struct {
	open func() (io.ReadCloser, error)
}

func NewFileLoader(path string) *Loader {
	return &Loader{open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

func NewReaderLoader(r io.Reader) *Loader {
	return &Loader{open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

func (l *Loader) Items(now time.Time) ([]domain.Item, error) {
	rc, err := l.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var f file
	dec := yaml.NewDecoder(rc)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]domain.Item, 0, len(f.Items))
	for i, e := range f.Items {
		it, err := e.item(now)
		if err != nil {
			return nil, fmt.Errorf("item %d (%q): %w", i, e.Name, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func (e entry) item(now time.Time) (domain.Item, error) {
	if e.Name == "" {
		return domain.Item{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: price %q", ErrInvalidItem, e.Price)
	}
	if price.IsNegative() || e.Stock < 0 || e.WeightGrams < 0 {
		return domain.Item{}, fmt.Errorf("%w: negative price, stock or weight", ErrInvalidItem)
	}
	if e.ExpiresOn == "" {
		return domain.NewItem(e.Name, price, e.Stock, e.Perishable, e.WeightGrams, e.Shipping, now), nil
	}
	expires, err := time.Parse(dateLayout, e.ExpiresOn)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: expires_on %q", ErrInvalidItem, e.ExpiresOn)
	}
	return domain.NewItemWithExpiry(e.Name, price, e.Stock, e.Perishable, e.WeightGrams, e.Shipping, expires), nil
}
