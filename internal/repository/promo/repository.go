package promo

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// GetByCode matches case-insensitively and returns domain.ErrNotFound for
	// unknown or inactive codes.
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	Upsert(ctx context.Context, code domain.PromoCode) error
}
