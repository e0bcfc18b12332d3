package domain

import "time"

// Totals is the monetary breakdown of a cart, in cents.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}

// CheckoutStep is one stage of the linear checkout flow.
type CheckoutStep string

const (
	StepShipping     CheckoutStep = "shipping"
	StepPayment      CheckoutStep = "payment"
	StepReview       CheckoutStep = "review"
	StepConfirmation CheckoutStep = "confirmation"
)

// ShippingInfo is collected on the first checkout step.
type ShippingInfo struct {
	FullName   string `json:"fullName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PaymentMethod selects which payment variant is in use.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "creditCard"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentApplePay   PaymentMethod = "applePay"
)

// Label is the human readable name shown on the confirmation.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentApplePay:
		return "Apple Pay"
	default:
		return string(m)
	}
}

// Payment is a tagged variant: Card is set only for the credit card method.
type Payment struct {
	Method PaymentMethod `json:"method"`
	Card   *CardDetails  `json:"card,omitempty"`
}

// CardDetails holds the credit card fields.
type CardDetails struct {
	CardNumber string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	ExpiryDate string `json:"expiryDate" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	NameOnCard string `json:"nameOnCard" validate:"required"`
}

// OrderDraft is the checkout-scoped snapshot carried through the steps.
type OrderDraft struct {
	CartID      string       `json:"cartId"`
	CartVersion int64        `json:"cartVersion"`
	Items       []CartItem   `json:"items"`
	PromoCode   string       `json:"promoCode,omitempty"`
	Totals      Totals       `json:"totals"`
	Shipping    ShippingInfo `json:"shipping"`
	Payment     *Payment     `json:"payment,omitempty"`
}

// Confirmation is synthesized when the review step is submitted.
type Confirmation struct {
	OrderNumber  string       `json:"orderNumber"`
	PlacedAt     time.Time    `json:"placedAt"`
	Items        []CartItem   `json:"items"`
	Totals       Totals       `json:"totals"`
	PaymentLabel string       `json:"paymentLabel"`
	Shipping     ShippingInfo `json:"shipping"`
}
