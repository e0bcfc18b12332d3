package domain

import "github.com/shopspring/decimal"

// PromoResult is the outcome of the last promo code attempt.
type PromoResult string

const (
	PromoResultNone    PromoResult = "none"
	PromoResultSuccess PromoResult = "success"
	PromoResultFailure PromoResult = "failure"
)

// PromoState tracks the promo code entered on a cart. DiscountRate is
// nonzero only when LastResult is success.
type PromoState struct {
	Code         string          `json:"code,omitempty"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Applying     bool            `json:"applying"`
	LastResult   PromoResult     `json:"lastResult"`
}

// NewPromoState returns the zero state of a fresh cart.
func NewPromoState() PromoState {
	return PromoState{DiscountRate: decimal.Zero, LastResult: PromoResultNone}
}

// PromoCode is a code known to a lookup source.
type PromoCode struct {
	Code   string          `json:"code"`
	Rate   decimal.Decimal `json:"rate"`
	Active bool            `json:"active"`
}
