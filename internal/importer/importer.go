package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads product CSV exports and inserts/updates products and the
// categories they reference.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryWriter
	seen         map[string]bool
}

// NewCSVImporter builds an importer. categories may be nil to skip category upserts.
func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:       csvr,
		productRepo:  products,
		categoryRepo: categories,
		seen:         make(map[string]bool),
	}
}

type csvRow struct {
	Key        string
	Name       string
	Desc       string
	SKU        string
	Cents      int64
	Currency   string
	Categories []string
	ImageURLs  []string
}

// Run parses CSV rows and upserts products grouped by product key. Rows
// without a key carry extra images for the preceding product.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.SKU == "" || row.Cents <= 0 || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}

	for _, key := range row.Categories {
		if err := i.ensureCategory(ctx, key); err != nil {
			return err
		}
	}

	p := domain.Product{
		Key:         row.Key,
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
		Attributes:  map[string]interface{}{},
	}
	if len(row.Categories) > 0 {
		p.CategoryKey = row.Categories[0]
	}
	if len(row.ImageURLs) > 0 {
		p.Image = row.ImageURLs[0]
		p.Attributes["images"] = row.ImageURLs
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func (i *CSVImporter) ensureCategory(ctx context.Context, key string) error {
	if i.categoryRepo == nil || i.seen[key] {
		return nil
	}
	name := strings.ReplaceAll(key, "-", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if _, err := i.categoryRepo.Upsert(ctx, domain.Category{Key: key, Name: name, Slug: key}); err != nil {
		return fmt.Errorf("upsert category %q: %w", key, err)
	}
	i.seen[key] = true
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "variants.images.url", "image")
	if key == "" && imageURL == "" {
		return nil, nil
	}

	row := &csvRow{
		Key:      key,
		Name:     pick(record, index, "name.en", "name"),
		Desc:     pick(record, index, "description.en", "description"),
		SKU:      pick(record, index, "variants.sku", "sku"),
		Currency: strings.ToUpper(pick(record, index, "variants.prices.value.currencyCode", "currency")),
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}

	if cents := pick(record, index, "variants.prices.value.centAmount"); cents != "" {
		d, err := decimal.NewFromString(cents)
		if err != nil {
			return nil, fmt.Errorf("centAmount %q: %w", cents, err)
		}
		row.Cents = d.IntPart()
	} else if price := pick(record, index, "price"); price != "" {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", price, err)
		}
		row.Cents = d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}

	for _, c := range strings.Split(pick(record, index, "categories", "category"), ";") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			row.Categories = append(row.Categories, c)
		}
	}
	return row, nil
}

// pick returns the first non-empty value among the given column names.
func pick(record []string, index map[string]int, keys ...string) string {
	for _, key := range keys {
		pos, ok := index[key]
		if !ok || pos >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[pos]); v != "" {
			return v
		}
	}
	return ""
}
