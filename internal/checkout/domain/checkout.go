package domain

import (
	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	shipping "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

// Plan is a validated checkout that has not touched the customer or the cart yet.
// History lists every stage it has passed through, Stage being the last one.
type Plan struct {
	Manifest shipping.Manifest
	Receipt  Receipt
	Stage    Stage
	History  []Stage

	customer *payment.Customer
	cart     *cart.Cart
}

type Result struct {
	Manifest shipping.Manifest
	Receipt  Receipt
	Payment  payment.Payment
}

// Prepare runs every guard and computes totals. It never mutates its arguments;
// a failed guard comes back as an *AbortError wrapping the specific error.
func Prepare(customer *payment.Customer, c *cart.Cart) (*Plan, error) {
	history := []Stage{StageStart, StageValidateNotEmpty}
	if c.IsEmpty() {
		return nil, &AbortError{Stage: StageValidateNotEmpty, Err: ErrEmptyCart}
	}

	history = append(history, StageValidateNotExpired)
	now := c.Now()
	lines := c.Lines()
	for _, l := range lines {
		it, ok := c.Item(l.ItemID)
		if !ok {
			return nil, &AbortError{Stage: StageValidateNotExpired, Err: inventory.ErrUnknownItem}
		}
		if it.IsExpired(now) {
			return nil, &AbortError{Stage: StageValidateNotExpired, Err: &inventory.ExpiredItemError{ItemID: l.ItemID, Name: it.Name}}
		}
	}

	history = append(history, StageComputeTotals)
	subtotal := Subtotal(c)
	fee := ShippingFee(ShippableWeight(c))
	amount := subtotal.Add(fee)

	history = append(history, StageValidateBalance)
	if !customer.CanAfford(amount) {
		return nil, &AbortError{Stage: StageValidateBalance, Err: &payment.InsufficientBalanceError{Required: amount, Available: customer.Balance}}
	}

	rl := make([]ReceiptLine, 0, len(lines))
	for _, l := range lines {
		it, _ := c.Item(l.ItemID)
		rl = append(rl, ReceiptLine{
			ItemID:    l.ItemID,
			Name:      it.Name,
			Quantity:  l.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}

	return &Plan{
		Manifest: shipping.BuildManifest(c),
		Receipt: Receipt{
			Lines:         rl,
			Subtotal:      subtotal,
			ShippingFee:   fee,
			Amount:        amount,
			BalanceBefore: customer.Balance,
			BalanceAfter:  customer.Balance.Sub(amount),
		},
		Stage:    StageEmitShipment,
		History:  append(history, StageEmitShipment),
		customer: customer,
		cart:     c,
	}, nil
}

// Advance moves the plan to s.
func (p *Plan) Advance(s Stage) {
	p.Stage = s
	p.History = append(p.History, s)
}

// Settle debits the customer and then clears the cart.
func (p *Plan) Settle() (*Result, error) {
	if p.Stage == StageDone {
		return nil, ErrAlreadySettled
	}
	p.Advance(StageSettle)
	pay, err := p.customer.Debit(p.Receipt.Amount)
	if err != nil {
		return nil, &AbortError{Stage: StageSettle, Err: err}
	}
	p.cart.Clear()
	p.Receipt.BalanceAfter = pay.BalanceAfter
	p.Advance(StageDone)
	return &Result{Manifest: p.Manifest, Receipt: p.Receipt, Payment: pay}, nil
}

// Checkout validates and settles in one step.
func Checkout(customer *payment.Customer, c *cart.Cart) (*Result, error) {
	p, err := Prepare(customer, c)
	if err != nil {
		return nil, err
	}
	return p.Settle()
}
