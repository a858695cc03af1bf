package features

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/venezia/venezia-pos/internal/pos/cart"
	"github.com/venezia/venezia-pos/internal/pos/domain"
	"github.com/venezia/venezia-pos/pkg/logger"
)

type cartTestContext struct {
	store *cart.Store
}

func (c *cartTestContext) reset() {
	c.store = cart.New(context.Background(), nil, logger.Discard())
}

func parseOptions(s string) domain.Meta {
	if s == "" {
		return nil
	}
	meta := domain.Meta{}
	for _, pair := range strings.Split(s, ";") {
		k, v, _ := strings.Cut(pair, "=")
		meta[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return meta
}

// Given steps

func (c *cartTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

// When steps

func (c *cartTestContext) iAddOfProductAtWithOptions(qty int, id int64, name string, price int, options string) error {
	_, err := c.store.AddItem(domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.NewFromInt(int64(price)),
		Type:  domain.TypeHelado,
	}, qty, parseOptions(options))
	return err
}

func (c *cartTestContext) iApplyPercentCode(code string, pct int) error {
	v := decimal.NewFromInt(int64(pct))
	c.store.ApplyCode(code, &domain.CodeInfo{Code: code, DiscountType: domain.DiscountPercent, DiscountValue: &v})
	return nil
}

func (c *cartTestContext) iApplyAmountCode(code string, amount int) error {
	v := decimal.NewFromInt(int64(amount))
	c.store.ApplyCode(code, &domain.CodeInfo{Code: code, DiscountType: domain.DiscountAmount, DiscountValue: &v})
	return nil
}

func (c *cartTestContext) iSetLineQuantityTo(line, qty int) error {
	snap := c.store.Snapshot()
	if line < 1 || line > len(snap.Items) {
		return fmt.Errorf("no line %d", line)
	}
	c.store.SetQty(snap.Items[line-1].ID, qty)
	return nil
}

func (c *cartTestContext) iRemoveTheCode() error {
	c.store.RemoveCode()
	return nil
}

func (c *cartTestContext) iResetTheSale() error {
	c.store.ResetSale()
	return nil
}

// Then steps

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.store.Snapshot().Items); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) lineHasQuantity(line, qty int) error {
	snap := c.store.Snapshot()
	if line < 1 || line > len(snap.Items) {
		return fmt.Errorf("no line %d", line)
	}
	if got := snap.Items[line-1].Qty; got != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, got)
	}
	return nil
}

func expectAmount(label string, got decimal.Decimal, want int) error {
	if !got.Equal(decimal.NewFromInt(int64(want))) {
		return fmt.Errorf("expected %s %d, got %s", label, want, got)
	}
	return nil
}

func (c *cartTestContext) theSubtotalIs(v int) error {
	return expectAmount("subtotal", c.store.Snapshot().Subtotal, v)
}

func (c *cartTestContext) theDiscountIs(v int) error {
	return expectAmount("discount", c.store.Snapshot().Discount, v)
}

func (c *cartTestContext) theTotalIs(v int) error {
	return expectAmount("total", c.store.Snapshot().Total, v)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	ctx.Step(`^I add (\d+) of product (\d+) "([^"]*)" at (\d+) with options "([^"]*)"$`, tc.iAddOfProductAtWithOptions)
	ctx.Step(`^I apply code "([^"]*)" worth (\d+) percent$`, tc.iApplyPercentCode)
	ctx.Step(`^I apply code "([^"]*)" worth (\d+) off$`, tc.iApplyAmountCode)
	ctx.Step(`^I set line (\d+) quantity to (\d+)$`, tc.iSetLineQuantityTo)
	ctx.Step(`^I remove the code$`, tc.iRemoveTheCode)
	ctx.Step(`^I reset the sale$`, tc.iResetTheSale)

	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line (\d+) has quantity (\d+)$`, tc.lineHasQuantity)
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the discount is (\d+)$`, tc.theDiscountIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
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
