package seed

import (
	"context"
	"testing"

	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	products := productrepo.NewMemory()
	categories := categoryrepo.NewMemory()
	targets := Targets{Products: products, Categories: categories}

	for i := 0; i < 2; i++ {
		if err := Apply(ctx, targets); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}

	list, _ := products.List(ctx)
	if len(list) != len(Products()) {
		t.Fatalf("expected %d products, got %d", len(Products()), len(list))
	}
	if list[0].Name != "Linen Shirt" || list[0].ID != 1 || list[1].PriceCents != 6998 {
		t.Fatalf("unexpected demo catalog %+v", list[:2])
	}
	cats, _ := categories.List(ctx)
	if len(cats) != len(Categories()) {
		t.Fatalf("expected %d categories, got %d", len(Categories()), len(cats))
	}
}
