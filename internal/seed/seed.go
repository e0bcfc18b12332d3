package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type categoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type promoWriter interface {
	Upsert(ctx context.Context, code domain.PromoCode) error
}

// Targets are the stores seed data is written to. Promos may be nil.
type Targets struct {
	Products   productWriter
	Categories categoryWriter
	Promos     promoWriter
}

// Categories returns the demo categories.
func Categories() []domain.Category {
	return []domain.Category{
		{Key: "shirts", Name: "Shirts", Slug: "shirts"},
		{Key: "bags", Name: "Bags", Slug: "bags"},
		{Key: "home", Name: "Home", Slug: "home"},
	}
}

// Products returns the demo catalog. Ids follow slice order when loaded
// into an empty store.
func Products() []domain.Product {
	return []domain.Product{
		{
			Key:         "linen-shirt",
			SKU:         "SKU-LINEN-SHIRT",
			Name:        "Linen Shirt",
			Description: "Breathable linen shirt with a relaxed fit",
			PriceCents:  7999,
			Currency:    "USD",
			CategoryKey: "shirts",
			Image:       "/images/linen-shirt.jpg",
			Attributes:  map[string]interface{}{"colors": []string{"white", "sand"}, "sizes": []string{"S", "M", "L"}},
		},
		{
			Key:         "canvas-tote",
			SKU:         "SKU-CANVAS-TOTE",
			Name:        "Canvas Tote",
			Description: "Heavy canvas tote with leather handles",
			PriceCents:  6998,
			Currency:    "USD",
			CategoryKey: "bags",
			Image:       "/images/canvas-tote.jpg",
		},
		{
			Key:         "demo-shirt",
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
			CategoryKey: "shirts",
		},
		{
			Key:         "demo-mug",
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
			CategoryKey: "home",
		},
	}
}

// PromoCodes returns the demo promo codes.
func PromoCodes() []domain.PromoCode {
	return []domain.PromoCode{
		{Code: "SAVE15", Rate: decimal.RequireFromString("0.15"), Active: true},
		{Code: "WELCOME10", Rate: decimal.RequireFromString("0.10"), Active: true},
		{Code: "EXPIRED50", Rate: decimal.RequireFromString("0.50"), Active: false},
	}
}

// Apply upserts the demo data. It is idempotent.
func Apply(ctx context.Context, t Targets) error {
	for _, c := range Categories() {
		if _, err := t.Categories.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}
	for _, p := range Products() {
		if _, err := t.Products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	if t.Promos == nil {
		return nil
	}
	for _, code := range PromoCodes() {
		if err := t.Promos.Upsert(ctx, code); err != nil {
			return fmt.Errorf("upsert promo %s: %w", code.Code, err)
		}
	}
	return nil
}
