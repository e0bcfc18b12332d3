package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

// Source is the read side of a product catalog: Postgres, memory or a
// remote commerce API.
type Source interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	source Source
}

func New(source Source) *Service {
	return &Service{source: source}
}

// ListFilter narrows a product listing. Empty fields match everything.
type ListFilter struct {
	Category string
	Query    string
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Product, error) {
	products, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if f.Category == "" && f.Query == "" {
		return products, nil
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.CategoryKey, f.Category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.source.GetByID(ctx, id)
}
