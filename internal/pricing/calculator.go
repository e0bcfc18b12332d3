// Package pricing derives cart totals from line items and a discount rate.
package pricing

import (
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// DefaultShippingFeeCents is the flat shipping fee applied to non-empty carts.
const DefaultShippingFeeCents int64 = 999

// Calculator holds the flat rates used when pricing a cart.
type Calculator struct {
	ShippingFeeCents int64
	TaxRate          decimal.Decimal
}

// New returns a Calculator with the given flat shipping fee and tax rate.
func New(shippingFeeCents int64, taxRate decimal.Decimal) Calculator {
	if shippingFeeCents < 0 {
		shippingFeeCents = 0
	}
	return Calculator{ShippingFeeCents: shippingFeeCents, TaxRate: ClampRate(taxRate)}
}

// Subtotal sums unit price times quantity over all lines.
func Subtotal(items []domain.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// Calculate returns subtotal, discount, shipping, tax and grand total.
func (c Calculator) Calculate(items []domain.CartItem, discountRate decimal.Decimal) domain.Totals {
	subtotal := Subtotal(items)
	discount := applyRate(subtotal, ClampRate(discountRate))

	var shipping int64
	if subtotal > 0 {
		shipping = c.ShippingFeeCents
	}
	tax := applyRate(subtotal-discount, ClampRate(c.TaxRate))

	return domain.Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal - discount + shipping + tax,
	}
}

// ClampRate bounds a rate to [0, 1].
func ClampRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		return decimal.Zero
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return rate
}

// applyRate multiplies cents by rate, rounding half away from zero.
func applyRate(cents int64, rate decimal.Decimal) int64 {
	if cents <= 0 || rate.IsZero() {
		return 0
	}
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}
