package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"storefront/internal/client/woocommerce"
	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

type stubCategoryRepo struct {
	items []domain.Category
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `key,name.en,description.en,variants.sku,variants.prices.value.centAmount,variants.prices.value.currencyCode,categories,variants.images.url
prod-1,Prod One,Desc one,SKU-1,100,eur,cat-1;cat-2,https://example.com/img1.jpg
,,,,,,,https://example.com/img2.jpg
prod-2,Prod Two,Desc two,SKU-2,200,USD,cat-1,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	first := repo.items[0]
	if len(first.Attributes["images"].([]string)) != 2 || first.Image != "https://example.com/img1.jpg" {
		t.Fatalf("expected 2 images on first product, got %+v", first.Attributes)
	}
	if first.Key != "prod-1" || first.SKU != "SKU-1" || first.PriceCents != 100 || first.Currency != "EUR" || first.CategoryKey != "cat-1" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if len(catRepo.items) != 2 {
		t.Fatalf("expected categories upserted once each, got %+v", catRepo.items)
	}
	if catRepo.items[0].Name != "Cat 1" {
		t.Fatalf("unexpected category name %q", catRepo.items[0].Name)
	}
}

func TestCSVImporter_DecimalPriceColumns(t *testing.T) {
	csvData := `key,name,sku,price,currency,category,image
linen-shirt,Linen Shirt,LS-1,79.99,USD,Shirts,https://img.example/ls.png
`
	repo := &stubProductRepo{}
	count, err := NewCSVImporter(strings.NewReader(csvData), repo, nil).Run(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("expected 1 product, got %d err=%v", count, err)
	}
	if repo.items[0].PriceCents != 7999 || repo.items[0].CategoryKey != "shirts" {
		t.Fatalf("unexpected product %+v", repo.items[0])
	}
}

func TestCSVImporter_RejectsIncompleteRows(t *testing.T) {
	csvData := `key,name,sku,price,currency
broken,,SKU,1.00,USD
`
	if _, err := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing name")
	}
	csvData = `key,name,sku,price,currency
bad-price,Thing,SKU,abc,USD
`
	if _, err := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for malformed price")
	}
}

type stubStore struct {
	pages [][]woocommerce.Product
}

func (s *stubStore) ListProducts(_ context.Context, page, _ int) ([]woocommerce.Product, error) {
	if page > len(s.pages) {
		return nil, nil
	}
	return s.pages[page-1], nil
}

func TestImportWooCommerce_Pages(t *testing.T) {
	full := make([]woocommerce.Product, wooPageSize)
	for i := range full {
		full[i] = woocommerce.Product{ID: int64(i + 1), Slug: fmt.Sprintf("p-%d", i+1), SKU: "S", Name: "N", Price: "1.50",
			Categories: []woocommerce.CategoryRef{{Name: "Bags", Slug: "bags"}}}
	}
	store := &stubStore{pages: [][]woocommerce.Product{full, {{ID: 99, Slug: "last", Name: "Last", Price: "2"}}}}
	products := &stubProductRepo{}
	cats := &stubCategoryRepo{}

	count, err := ImportWooCommerce(context.Background(), store, products, cats)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != wooPageSize+1 || len(products.items) != wooPageSize+1 {
		t.Fatalf("expected %d products, got %d", wooPageSize+1, count)
	}
	if len(cats.items) != 1 {
		t.Fatalf("expected one category upsert, got %d", len(cats.items))
	}
	last := products.items[len(products.items)-1]
	if last.ID != 0 || last.PriceCents != 200 || last.Key != "last" {
		t.Fatalf("unexpected last product %+v", last)
	}
}
