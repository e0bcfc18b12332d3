package promo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	const q = `
SELECT code, rate::text, active
FROM promo_codes
WHERE upper(code) = upper($1) AND active
`
	var (
		out  domain.PromoCode
		rate string
	)
	if err := r.pool.QueryRow(ctx, q, strings.TrimSpace(code)).Scan(&out.Code, &rate, &out.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("promo repo: get code=%s not found", code)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("promo repo: get code=%s error=%v", code, err)
		return nil, err
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("promo repo: parse rate for %s: %w", out.Code, err)
	}
	out.Rate = parsed
	return &out, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, code domain.PromoCode) error {
	const q = `
INSERT INTO promo_codes (code, rate, active)
VALUES ($1, $2::numeric, $3)
ON CONFLICT (code) DO UPDATE
SET rate = EXCLUDED.rate,
    active = EXCLUDED.active
`
	if _, err := r.pool.Exec(ctx, q, strings.ToUpper(strings.TrimSpace(code.Code)), code.Rate.String(), code.Active); err != nil {
		r.logger.Printf("promo repo: upsert code=%s error=%v", code.Code, err)
		return err
	}
	return nil
}
