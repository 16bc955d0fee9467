package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/dmehra2102/chipstore/internal/cart/domain"
	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
)

type cartTestContext struct {
	catalog *catalog.Catalog
	cart    *domain.Cart
	err     error
}

func (c *cartTestContext) reset() {
	c.catalog = catalog.Default()
	c.cart = nil
	c.err = nil
}

func (c *cartTestContext) anEmptyCart() error {
	c.cart = domain.New()
	return nil
}

func (c *cartTestContext) iAddOfProduct(qty int, id string) error {
	p, ok := c.catalog.Get(id)
	if !ok {
		return fmt.Errorf("unknown product %q", id)
	}
	_, c.err = c.cart.Add(p, qty)
	return nil
}

func (c *cartTestContext) iSetProductToQuantity(id string, qty int) error {
	c.cart.UpdateQuantity(id, qty)
	return nil
}

func (c *cartTestContext) iRemoveProduct(id string) error {
	c.cart.Remove(id)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.cart.Clear()
	return nil
}

func (c *cartTestContext) theCartIsSavedAndReloaded() error {
	data, err := c.cart.MarshalJSON()
	if err != nil {
		return err
	}
	c.cart, err = domain.Decode(data)
	return err
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if c.cart.Len() != n {
		return fmt.Errorf("expected %d lines, got %d", n, c.cart.Len())
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id string, qty int) error {
	l, ok := c.cart.Line(id)
	if !ok {
		return fmt.Errorf("product %q not in cart", id)
	}
	if l.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, l.Quantity)
	}
	return nil
}

func (c *cartTestContext) theCartTotalsItemsCosting(items, price int) error {
	if c.cart.TotalItems() != items {
		return fmt.Errorf("expected %d items, got %d", items, c.cart.TotalItems())
	}
	if c.cart.TotalPrice() != int64(price) {
		return fmt.Errorf("expected total %d, got %d", price, c.cart.TotalPrice())
	}
	return nil
}

func (c *cartTestContext) theLineOrderIs(order string) error {
	var ids []string
	for _, l := range c.cart.Lines() {
		ids = append(ids, l.ID)
	}
	if got := strings.Join(ids, ","); got != order {
		return fmt.Errorf("expected order %q, got %q", order, got)
	}
	return nil
}

func (c *cartTestContext) theLastChangeIsRejected() error {
	if !errors.Is(c.err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("expected ErrInvalidQuantity, got %v", c.err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	ctx.Step(`^I add (-?\d+) of product "([^"]*)"$`, tc.iAddOfProduct)
	ctx.Step(`^I set product "([^"]*)" to quantity (-?\d+)$`, tc.iSetProductToQuantity)
	ctx.Step(`^I remove product "([^"]*)"$`, tc.iRemoveProduct)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^the cart is saved and reloaded$`, tc.theCartIsSavedAndReloaded)

	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product "([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the cart totals (\d+) items costing (\d+)$`, tc.theCartTotalsItemsCosting)
	ctx.Step(`^the line order is "([^"]*)"$`, tc.theLineOrderIs)
	ctx.Step(`^the last change is rejected$`, tc.theLastChangeIsRejected)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
