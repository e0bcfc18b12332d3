package woocommerce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// CouponSource resolves promo codes against store coupons. Only percent
// coupons map to a discount rate; other coupon types are ignored.
type CouponSource struct {
	client *Client
	now    func() time.Time
}

func NewCouponSource(client *Client) *CouponSource {
	return &CouponSource{client: client, now: time.Now}
}

func (s *CouponSource) Lookup(ctx context.Context, code string) (decimal.Decimal, bool, error) {
	coupons, err := s.client.ListCoupons(ctx, strings.ToLower(code))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	for _, c := range coupons {
		if !strings.EqualFold(c.Code, code) || c.DiscountType != "percent" || s.expired(c) {
			continue
		}
		amount, err := decimal.NewFromString(c.Amount)
		if err != nil {
			s.client.logger.Printf("woocommerce: coupon=%s bad amount %q", c.Code, c.Amount)
			continue
		}
		return amount.Div(decimal.NewFromInt(100)), true, nil
	}
	return decimal.Zero, false, nil
}

func (s *CouponSource) expired(c Coupon) bool {
	if c.DateExpires == "" {
		return false
	}
	t, err := time.Parse("2006-01-02T15:04:05", c.DateExpires)
	if err != nil {
		return false
	}
	return !s.now().UTC().Before(t)
}

// ToDomain converts a store product into a catalog product.
func (p Product) ToDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d price %q: %w", p.ID, p.Price, err)
	}
	key := p.Slug
	if key == "" {
		key = fmt.Sprintf("wc-%d", p.ID)
	}
	out := domain.Product{
		ID:          p.ID,
		Key:         key,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.ShortDescription,
		PriceCents:  price.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency:    "USD",
	}
	if len(p.Categories) > 0 {
		out.CategoryKey = p.Categories[0].Slug
	}
	if len(p.Images) > 0 {
		out.Image = p.Images[0].Src
	}
	return out, nil
}
