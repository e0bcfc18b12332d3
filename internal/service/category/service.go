package category

import (
	"context"

	"storefront/internal/domain"
)

type Source interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type Service struct {
	source Source
}

func New(source Source) *Service {
	return &Service{source: source}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.source.List(ctx)
}

// SourceFunc adapts a listing function to Source.
type SourceFunc func(ctx context.Context) ([]domain.Category, error)

func (f SourceFunc) List(ctx context.Context) ([]domain.Category, error) { return f(ctx) }
