package pricing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

func demoItems() []domain.CartItem {
	return []domain.CartItem{
		{LineID: "l1", ProductID: 1, Name: "Linen Shirt", UnitPriceCents: 7999, Quantity: 2},
		{LineID: "l2", ProductID: 2, Name: "Canvas Tote", UnitPriceCents: 6998, Quantity: 1},
	}
}

func TestCalculate_EmptyCart(t *testing.T) {
	calc := New(DefaultShippingFeeCents, decimal.Zero)
	got := calc.Calculate(nil, decimal.RequireFromString("0.15"))
	if got != (domain.Totals{}) {
		t.Fatalf("expected zero totals for empty cart, got %+v", got)
	}
}

func TestCalculate_DiscountScenario(t *testing.T) {
	calc := New(DefaultShippingFeeCents, decimal.Zero)
	got := calc.Calculate(demoItems(), decimal.RequireFromString("0.15"))
	if got.SubtotalCents != 22996 {
		t.Fatalf("expected subtotal 22996, got %d", got.SubtotalCents)
	}
	if got.DiscountCents != 3449 {
		t.Fatalf("expected discount 3449, got %d", got.DiscountCents)
	}
	if got.ShippingCents != 999 {
		t.Fatalf("expected shipping 999, got %d", got.ShippingCents)
	}
	if got.TotalCents != 22996-3449+999 {
		t.Fatalf("unexpected total %d", got.TotalCents)
	}
}

func TestCalculate_TaxOnDiscountedSubtotal(t *testing.T) {
	calc := New(500, decimal.RequireFromString("0.10"))
	items := []domain.CartItem{{UnitPriceCents: 1000, Quantity: 3}}
	got := calc.Calculate(items, decimal.RequireFromString("0.5"))
	if got.DiscountCents != 1500 || got.TaxCents != 150 || got.TotalCents != 3000-1500+500+150 {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestCalculate_RatesAreClamped(t *testing.T) {
	calc := New(-10, decimal.RequireFromString("-1"))
	if calc.ShippingFeeCents != 0 || !calc.TaxRate.IsZero() {
		t.Fatalf("expected clamped calculator, got %+v", calc)
	}
	got := calc.Calculate([]domain.CartItem{{UnitPriceCents: 100, Quantity: 1}}, decimal.RequireFromString("2"))
	if got.DiscountCents != 100 || got.TotalCents != 0 {
		t.Fatalf("expected full discount, got %+v", got)
	}
}

func TestCalculate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	calc := New(DefaultShippingFeeCents, decimal.Zero)

	properties.Property("subtotal is the sum of price times quantity", prop.ForAll(
		func(prices []int64, qty int) bool {
			var items []domain.CartItem
			var want int64
			for _, p := range prices {
				items = append(items, domain.CartItem{UnitPriceCents: p, Quantity: qty})
				want += p * int64(qty)
			}
			return Subtotal(items) == want
		},
		gen.SliceOf(gen.Int64Range(0, 1_000_000)),
		gen.IntRange(1, 100),
	))

	properties.Property("discount is bounded and grand total stays non-negative", prop.ForAll(
		func(prices []int64, permille int) bool {
			var items []domain.CartItem
			for _, p := range prices {
				items = append(items, domain.CartItem{UnitPriceCents: p, Quantity: 1})
			}
			rate := decimal.New(int64(permille), -3)
			totals := calc.Calculate(items, rate)
			want := decimal.NewFromInt(totals.SubtotalCents).Mul(rate).Round(0).IntPart()
			return totals.DiscountCents == want &&
				totals.DiscountCents <= totals.SubtotalCents &&
				totals.TotalCents >= 0
		},
		gen.SliceOf(gen.Int64Range(0, 1_000_000)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
