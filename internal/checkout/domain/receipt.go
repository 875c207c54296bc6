package domain

import (
	"github.com/shopspring/decimal"

	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

type ReceiptLine struct {
	ItemID    inventory.ItemID `json:"item_id"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Total     decimal.Decimal  `json:"total"`
}

type Receipt struct {
	Lines         []ReceiptLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}
