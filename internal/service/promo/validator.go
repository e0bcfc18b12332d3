package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	promorepo "storefront/internal/repository/promo"
)

// ErrEmptyCode is returned for blank input; the promo state is left untouched.
var ErrEmptyCode = errors.New("promo code required")

// Source resolves a code to a discount rate. ok is false for unknown codes.
type Source interface {
	Lookup(ctx context.Context, code string) (rate decimal.Decimal, ok bool, err error)
}

// StaticSource is a fixed code table keyed by upper-cased code.
type StaticSource map[string]decimal.Decimal

func (s StaticSource) Lookup(_ context.Context, code string) (decimal.Decimal, bool, error) {
	rate, ok := s[strings.ToUpper(code)]
	return rate, ok, nil
}

// RepositorySource looks codes up in the promo_codes table.
type RepositorySource struct {
	Repo promorepo.Repository
}

func (s RepositorySource) Lookup(ctx context.Context, code string) (decimal.Decimal, bool, error) {
	p, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return p.Rate, true, nil
}

// Validator resolves codes against its sources in order; the first source
// that knows a code wins.
type Validator struct {
	sources []Source
	delay   time.Duration
}

// New builds a Validator. delay simulates the round trip of a remote check.
func New(delay time.Duration, sources ...Source) *Validator {
	return &Validator{sources: sources, delay: delay}
}

// Resolve looks code up after the configured delay.
func (v *Validator) Resolve(ctx context.Context, code string) (decimal.Decimal, bool, error) {
	if v.delay > 0 {
		timer := time.NewTimer(v.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return decimal.Zero, false, ctx.Err()
		case <-timer.C:
		}
	}
	for _, src := range v.sources {
		rate, ok, err := src.Lookup(ctx, code)
		if err != nil {
			return decimal.Zero, false, err
		}
		if ok {
			return pricing.ClampRate(rate), true, nil
		}
	}
	return decimal.Zero, false, nil
}

// Apply runs the whole pending -> success|failure transition on state.
// A lookup error returns the original state unchanged.
func (v *Validator) Apply(ctx context.Context, state domain.PromoState, code string) (domain.PromoState, error) {
	pending, err := Begin(state, code)
	if err != nil {
		return state, err
	}
	rate, ok, err := v.Resolve(ctx, pending.Code)
	if err != nil {
		return state, err
	}
	return Finish(pending, pending.Code, rate, ok), nil
}

// Begin marks state as applying the trimmed code.
func Begin(state domain.PromoState, code string) (domain.PromoState, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return state, ErrEmptyCode
	}
	state.Code = code
	state.Applying = true
	return state, nil
}

// Pending reports whether state is still waiting on a lookup of code.
// A result for any other code is stale and must be dropped.
func Pending(state domain.PromoState, code string) bool {
	return state.Applying && state.Code == code
}

// Finish settles state with the result resolved for code. A miss always
// zeroes the discount so the rate is never nonzero without a successful result.
func Finish(state domain.PromoState, code string, rate decimal.Decimal, ok bool) domain.PromoState {
	state.Code = code
	state.Applying = false
	if ok {
		state.LastResult = domain.PromoResultSuccess
		state.DiscountRate = pricing.ClampRate(rate)
		return state
	}
	state.LastResult = domain.PromoResultFailure
	state.DiscountRate = decimal.Zero
	return state
}
