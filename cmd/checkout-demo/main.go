package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/Retail-Checkout-System/internal/cart/domain"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/memory"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/notify"
	"github.com/dmehra2102/Retail-Checkout-System/internal/config"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
	payment "github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
)

// checkout-demo walks the reference scenarios and prints the shipment notice,
// receipt and errors to stdout. Structured logs go to stderr.
func main() {
	cfg := config.Load()
	log := logging.NewWithWriter(os.Stderr, cfg.LogLevel)

	ctx := context.Background()
	now := time.Now()
	catalog := inventory.NewCatalog()
	svc := application.NewService(log, memory.NewRepository(), notify.NewPrinter(os.Stdout), "checkout-demo")

	fmt.Println("=== E-COMMERCE SYSTEM TEST ===")
	fmt.Println()

	cheese := catalog.Add(inventory.NewItem("Cheese", decimal.NewFromInt(100), 10, true, 400, true, now))
	biscuits := catalog.Add(inventory.NewItem("Biscuits", decimal.NewFromInt(150), 5, true, 300, true, now))
	tv := catalog.Add(inventory.NewItem("TV", decimal.NewFromInt(200), 3, false, 700, true, now))
	scratchCard := catalog.Add(inventory.NewItem("ScratchCard", decimal.NewFromInt(50), 10, false, 0, false, now))

	fmt.Println("TEST 1: Normal Checkout")
	customer := payment.NewCustomer("customer", decimal.NewFromInt(400))
	c := cart.New(catalog)
	add(c, cheese, 2)
	add(c, biscuits, 1)
	add(c, tv, 1)
	add(c, scratchCard, 1)
	checkout(ctx, svc, customer, c)

	fmt.Println("\nTEST 2: Empty Cart")
	checkout(ctx, svc, customer, cart.New(catalog))

	fmt.Println("\nTEST 3: Insufficient Balance")
	poor := payment.NewCustomer("poor-customer", decimal.NewFromInt(50))
	expensive := cart.New(catalog)
	add(expensive, tv, 1)
	checkout(ctx, svc, poor, expensive)

	fmt.Println("\nTEST 4: Insufficient Stock")
	add(cart.New(catalog), tv, 5)

	fmt.Println("\nTEST 5: Expired Product")
	expired := catalog.Add(inventory.NewItemWithExpiry("Expired Cheese", decimal.NewFromInt(100), 5, true, 400, true, now.AddDate(0, 0, -1)))
	add(cart.New(catalog), expired, 1)

	fmt.Println("\nTEST 6: Digital Product Only")
	digital := payment.NewCustomer("digital-customer", decimal.NewFromInt(100))
	digitalCart := cart.New(catalog)
	add(digitalCart, scratchCard, 2)
	checkout(ctx, svc, digital, digitalCart)
}

func add(c *cart.Cart, id inventory.ItemID, qty int) {
	if err := c.Add(id, qty); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	it, _ := c.Item(id)
	fmt.Printf("Added %dx %s to cart\n", qty, it.Name)
}

func checkout(ctx context.Context, svc *application.Service, customer *payment.Customer, c *cart.Cart) {
	if _, err := svc.Checkout(ctx, customer, c); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}
