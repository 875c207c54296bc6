package features

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/memory"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/notify"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
)

var errorKinds = map[string]error{
	"EmptyCart":           domain.ErrEmptyCart,
	"ExpiredItem":         inventory.ErrExpiredItem,
	"InsufficientStock":   inventory.ErrInsufficientStock,
	"InsufficientBalance": payment.ErrInsufficientBalance,
	"UnknownItem":         inventory.ErrUnknownItem,
	"InvalidQuantity":     cart.ErrInvalidQuantity,
}

type checkoutTestContext struct {
	now      time.Time
	catalog  *inventory.Catalog
	byName   map[string]inventory.ItemID
	customer *payment.Customer
	cart     *cart.Cart
	out      *bytes.Buffer
	svc      *application.Service
	result   *application.Completed
	err      error
}

func (c *checkoutTestContext) reset() {
	c.now = time.Now().UTC()
	c.catalog = inventory.NewCatalog()
	c.byName = make(map[string]inventory.ItemID)
	c.customer = nil
	c.cart = cart.New(c.catalog, cart.WithClock(func() time.Time { return c.now }))
	c.out = &bytes.Buffer{}
	c.svc = application.NewService(logging.Discard(), memory.NewRepository(), notify.NewPrinter(c.out), "features")
	c.result = nil
	c.err = nil
}

func (c *checkoutTestContext) todayIs(day string) error {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return err
	}
	c.now = t.Add(9 * time.Hour)
	return nil
}

func (c *checkoutTestContext) theCatalog(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("catalog table needs a header and at least one row")
	}
	cols := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		cols[cell.Value] = i
	}
	for _, row := range table.Rows[1:] {
		get := func(col string) string { return strings.TrimSpace(row.Cells[cols[col]].Value) }

		price, err := decimal.NewFromString(get("price"))
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(get("stock"))
		if err != nil {
			return err
		}
		weight, err := strconv.ParseFloat(get("weight"), 64)
		if err != nil {
			return err
		}
		name := get("name")
		ships := get("shipping") == "yes"
		perishable := get("perishable") == "yes"

		var it inventory.Item
		switch get("expires") {
		case "":
			it = inventory.NewItem(name, price, stock, perishable, weight, ships, c.now)
		case "yesterday":
			it = inventory.NewItemWithExpiry(name, price, stock, perishable, weight, ships, c.now.AddDate(0, 0, -1))
		default:
			return fmt.Errorf("unsupported expiry %q", get("expires"))
		}
		c.byName[name] = c.catalog.Add(it)
	}
	return nil
}

func (c *checkoutTestContext) aCustomerWithBalance(name string, balance int) error {
	c.customer = payment.NewCustomer(name, decimal.NewFromInt(int64(balance)))
	return nil
}

func (c *checkoutTestContext) item(name string) (inventory.ItemID, error) {
	id, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("no catalog item %q", name)
	}
	return id, nil
}

func (c *checkoutTestContext) iAddToTheCart(qty int, name string) error {
	id, err := c.item(name)
	if err != nil {
		return err
	}
	c.err = c.cart.Add(id, qty)
	return nil
}

func (c *checkoutTestContext) daysPass(days int) error {
	c.now = c.now.AddDate(0, 0, days)
	return nil
}

func (c *checkoutTestContext) iCheckOut() error {
	c.result, c.err = c.svc.Checkout(context.Background(), c.customer, c.cart)
	return nil
}

func (c *checkoutTestContext) failsWith(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if c.err == nil {
		return fmt.Errorf("expected %s but the operation succeeded", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected %s, got %v", kind, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsAtStage(kind, stage string) error {
	if err := c.failsWith(kind); err != nil {
		return err
	}
	var abort *domain.AbortError
	if !errors.As(c.err, &abort) {
		return fmt.Errorf("expected an abort, got %T", c.err)
	}
	if string(abort.Stage) != stage {
		return fmt.Errorf("expected stage %s, got %s", stage, abort.Stage)
	}
	return nil
}

func (c *checkoutTestContext) theErrorMessageIs(msg string) error {
	if c.err == nil {
		return errors.New("expected an error")
	}
	if c.err.Error() != msg {
		return fmt.Errorf("expected message %q, got %q", msg, c.err.Error())
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.result == nil {
		return errors.New("no checkout result")
	}
	return nil
}

func equalAmount(label string, got decimal.Decimal, want int) error {
	if !got.Equal(decimal.NewFromInt(int64(want))) {
		return fmt.Errorf("expected %s %d, got %s", label, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theSubtotalIs(want int) error {
	if err := c.theCheckoutSucceeds(); err != nil {
		return err
	}
	return equalAmount("subtotal", c.result.Receipt.Subtotal, want)
}

func (c *checkoutTestContext) theShippingFeeIs(want int) error {
	if err := c.theCheckoutSucceeds(); err != nil {
		return err
	}
	return equalAmount("shipping fee", c.result.Receipt.ShippingFee, want)
}

func (c *checkoutTestContext) theAmountIs(want int) error {
	if err := c.theCheckoutSucceeds(); err != nil {
		return err
	}
	return equalAmount("amount", c.result.Receipt.Amount, want)
}

func (c *checkoutTestContext) theCustomerBalanceIs(want int) error {
	return equalAmount("balance", c.customer.Balance, want)
}

func (c *checkoutTestContext) theCartHoldsLines(n int) error {
	if got := len(c.cart.Lines()); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if !c.cart.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", len(c.cart.Lines()))
	}
	return nil
}

func (c *checkoutTestContext) theStockOfIs(name string, want int) error {
	id, err := c.item(name)
	if err != nil {
		return err
	}
	it, _ := c.catalog.Get(id)
	if it.Stock != want {
		return fmt.Errorf("expected %s stock %d, got %d", name, want, it.Stock)
	}
	return nil
}

func (c *checkoutTestContext) theOutputShowsBefore(first, second string) error {
	out := c.out.String()
	i, j := strings.Index(out, first), strings.Index(out, second)
	if i < 0 || j < 0 {
		return fmt.Errorf("output is missing %q or %q:\n%s", first, second, out)
	}
	if i > j {
		return fmt.Errorf("expected %q before %q:\n%s", first, second, out)
	}
	return nil
}

func (c *checkoutTestContext) theOutputContains(s string) error {
	if !strings.Contains(c.out.String(), s) {
		return fmt.Errorf("output does not contain %q:\n%s", s, c.out.String())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^today is "([^"]*)"$`, tc.todayIs)
	ctx.Step(`^the catalog:$`, tc.theCatalog)
	ctx.Step(`^a customer "([^"]*)" with balance (\d+)$`, tc.aCustomerWithBalance)

	// When steps
	ctx.Step(`^I add (-?\d+) "([^"]*)" to the cart$`, tc.iAddToTheCart)
	ctx.Step(`^(\d+) days pass$`, tc.daysPass)
	ctx.Step(`^I check out$`, tc.iCheckOut)

	// Then steps
	ctx.Step(`^the checkout fails with "([^"]*)" at stage "([^"]*)"$`, tc.theCheckoutFailsAtStage)
	ctx.Step(`^adding fails with "([^"]*)"$`, tc.failsWith)
	ctx.Step(`^the error message is "([^"]*)"$`, tc.theErrorMessageIs)
	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the shipping fee is (\d+)$`, tc.theShippingFeeIs)
	ctx.Step(`^the amount is (\d+)$`, tc.theAmountIs)
	ctx.Step(`^the customer balance is (\d+)$`, tc.theCustomerBalanceIs)
	ctx.Step(`^the cart holds (\d+) lines$`, tc.theCartHoldsLines)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the output shows "([^"]*)" before "([^"]*)"$`, tc.theOutputShowsBefore)
	ctx.Step(`^the output contains "([^"]*)"$`, tc.theOutputContains)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
