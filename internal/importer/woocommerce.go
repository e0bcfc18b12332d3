package importer

import (
	"context"
	"fmt"

	"storefront/internal/client/woocommerce"
	"storefront/internal/domain"
)

const wooPageSize = 50

type wooProductLister interface {
	ListProducts(ctx context.Context, page, perPage int) ([]woocommerce.Product, error)
}

// ImportWooCommerce pages through the store's products and upserts them and
// their first category. It returns the number of products imported.
func ImportWooCommerce(ctx context.Context, store wooProductLister, products ProductWriter, categories CategoryWriter) (int, error) {
	seen := make(map[string]bool)
	imported := 0
	for page := 1; ; page++ {
		batch, err := store.ListProducts(ctx, page, wooPageSize)
		if err != nil {
			return imported, fmt.Errorf("list products page %d: %w", page, err)
		}
		for _, wp := range batch {
			p, err := wp.ToDomain()
			if err != nil {
				return imported, err
			}
			if categories != nil && len(wp.Categories) > 0 && !seen[wp.Categories[0].Slug] {
				ref := wp.Categories[0]
				if _, err := categories.Upsert(ctx, domain.Category{Key: ref.Slug, Name: ref.Name, Slug: ref.Slug}); err != nil {
					return imported, fmt.Errorf("upsert category %q: %w", ref.Slug, err)
				}
				seen[ref.Slug] = true
			}
			// Catalog ids are assigned locally; the store id only keys the upsert.
			p.ID = 0
			if _, err := products.Upsert(ctx, p); err != nil {
				return imported, fmt.Errorf("upsert product %q: %w", p.Key, err)
			}
			imported++
		}
		if len(batch) < wooPageSize {
			return imported, nil
		}
	}
}
