package checkout

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

var (
	// ErrInvalidTransition is returned for moves the current step does not allow.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrEmptyCart is returned when checkout starts from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStaleSnapshot is returned when the cart changed after the snapshot was taken.
	ErrStaleSnapshot = errors.New("cart changed since checkout started")
	// errSubmitRequired signals that leaving review needs a full submission.
	errSubmitRequired = errors.New("review step requires submit")
)

var stepOrder = []domain.CheckoutStep{
	domain.StepShipping,
	domain.StepPayment,
	domain.StepReview,
	domain.StepConfirmation,
}

func stepIndex(step domain.CheckoutStep) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// PaymentInput is the flat form posted by the payment step. Card fields are
// kept only when Method is creditCard.
type PaymentInput struct {
	Method     domain.PaymentMethod `json:"method"`
	CardNumber string               `json:"cardNumber,omitempty"`
	ExpiryDate string               `json:"expiryDate,omitempty"`
	CVV        string               `json:"cvv,omitempty"`
	NameOnCard string               `json:"nameOnCard,omitempty"`
}

// ToPayment converts the form into the tagged payment variant.
func (in PaymentInput) ToPayment() domain.Payment {
	p := domain.Payment{Method: in.Method}
	if in.Method == domain.PaymentCreditCard {
		p.Card = &domain.CardDetails{
			CardNumber: strings.NewReplacer(" ", "", "-", "").Replace(in.CardNumber),
			ExpiryDate: strings.TrimSpace(in.ExpiryDate),
			CVV:        strings.TrimSpace(in.CVV),
			NameOnCard: strings.TrimSpace(in.NameOnCard),
		}
	}
	return p
}

// Controller is one linear checkout flow. It is safe for concurrent use.
type Controller struct {
	mu           sync.Mutex
	id           string
	step         domain.CheckoutStep
	draft        domain.OrderDraft
	confirmation *domain.Confirmation
	createdAt    time.Time

	// Submission state. The order number is minted on the first submit and
	// reused by retries; placed holds the indexes of sinks that accepted it.
	submitting  bool
	orderNumber string
	placedAt    time.Time
	placed      map[int]bool
}

// submission is what a submit attempt hands to the order sinks.
type submission struct {
	draft  domain.OrderDraft
	conf   domain.Confirmation
	placed map[int]bool
}

// NewController starts a flow at the shipping step.
func NewController(id string, draft domain.OrderDraft, now time.Time) *Controller {
	return &Controller{id: id, step: domain.StepShipping, draft: draft, createdAt: now}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Step() domain.CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Draft() domain.OrderDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneDraft(c.draft)
}

func (c *Controller) SetShipping(info domain.ShippingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != domain.StepShipping {
		return fmt.Errorf("%w: shipping can only be edited on the shipping step (at %s)", ErrInvalidTransition, c.step)
	}
	c.draft.Shipping = trimShipping(info)
	return nil
}

// SetPayment replaces the payment variant; switching method drops card data.
func (c *Controller) SetPayment(in PaymentInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != domain.StepPayment {
		return fmt.Errorf("%w: payment can only be edited on the payment step (at %s)", ErrInvalidTransition, c.step)
	}
	p := in.ToPayment()
	c.draft.Payment = &p
	return nil
}

// Next validates the current step and advances. Review cannot advance here;
// it needs Submit.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.step {
	case domain.StepShipping, domain.StepPayment:
		if err := Validate(c.step, c.draft); err != nil {
			return err
		}
		c.step = stepOrder[stepIndex(c.step)+1]
		return nil
	case domain.StepReview:
		return errSubmitRequired
	default:
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, c.step)
	}
}

// Back returns to the previous step. It is a no-op on shipping.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.lockedForSubmit(); err != nil {
		return err
	}
	switch c.step {
	case domain.StepShipping:
		return nil
	case domain.StepPayment, domain.StepReview:
		c.step = stepOrder[stepIndex(c.step)-1]
		return nil
	default:
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, c.step)
	}
}

// Resnapshot replaces items, totals and cart version with a fresh snapshot.
func (c *Controller) Resnapshot(snapshot domain.OrderDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == domain.StepConfirmation {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, c.step)
	}
	if err := c.lockedForSubmit(); err != nil {
		return err
	}
	c.draft.CartVersion = snapshot.CartVersion
	c.draft.Items = snapshot.Items
	c.draft.PromoCode = snapshot.PromoCode
	c.draft.Totals = snapshot.Totals
	return nil
}

// lockedForSubmit refuses edits while sinks run or once any sink has accepted
// the order.
func (c *Controller) lockedForSubmit() error {
	if c.submitting {
		return fmt.Errorf("%w: order submission in progress", ErrInvalidTransition)
	}
	if len(c.placed) > 0 {
		return fmt.Errorf("%w: order %s already placed", ErrInvalidTransition, c.orderNumber)
	}
	return nil
}

// beginSubmit validates the review step and marks the flow as submitting.
// The lock is released before any sink runs.
func (c *Controller) beginSubmit(now time.Time) (submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return submission{}, fmt.Errorf("%w: order submission in progress", ErrInvalidTransition)
	}
	if c.step != domain.StepReview {
		return submission{}, fmt.Errorf("%w: submit is only allowed from review (at %s)", ErrInvalidTransition, c.step)
	}
	if err := Validate(domain.StepReview, c.draft); err != nil {
		return submission{}, err
	}
	if c.orderNumber == "" {
		c.orderNumber = newOrderNumber()
		c.placedAt = now
	}
	c.submitting = true

	draft := cloneDraft(c.draft)
	placed := make(map[int]bool, len(c.placed))
	for i := range c.placed {
		placed[i] = true
	}
	return submission{
		draft: draft,
		conf: domain.Confirmation{
			OrderNumber:  c.orderNumber,
			PlacedAt:     c.placedAt,
			Items:        draft.Items,
			Totals:       draft.Totals,
			PaymentLabel: paymentLabel(draft.Payment),
			Shipping:     draft.Shipping,
		},
		placed: placed,
	}, nil
}

// markPlaced records that sink i accepted the order.
func (c *Controller) markPlaced(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.placed == nil {
		c.placed = make(map[int]bool)
	}
	c.placed[i] = true
}

// finishSubmit ends a submit attempt. A nil conf leaves the flow on review.
func (c *Controller) finishSubmit(conf *domain.Confirmation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if conf != nil {
		c.confirmation = conf
		c.step = domain.StepConfirmation
	}
}

// View is the JSON shape of a flow with card data masked.
type View struct {
	ID           string               `json:"id"`
	Step         domain.CheckoutStep  `json:"step"`
	Submitting   bool                 `json:"submitting,omitempty"`
	Draft        domain.OrderDraft    `json:"draft"`
	Confirmation *domain.Confirmation `json:"confirmation,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft := cloneDraft(c.draft)
	if draft.Payment != nil && draft.Payment.Card != nil {
		card := *draft.Payment.Card
		card.CardNumber = maskCard(card.CardNumber)
		card.CVV = ""
		draft.Payment = &domain.Payment{Method: draft.Payment.Method, Card: &card}
	}
	return View{ID: c.id, Step: c.step, Submitting: c.submitting, Draft: draft, Confirmation: c.confirmation, CreatedAt: c.createdAt}
}

func cloneDraft(d domain.OrderDraft) domain.OrderDraft {
	out := d
	if d.Items != nil {
		out.Items = make([]domain.CartItem, len(d.Items))
		copy(out.Items, d.Items)
	}
	if d.Payment != nil {
		p := *d.Payment
		if d.Payment.Card != nil {
			card := *d.Payment.Card
			p.Card = &card
		}
		out.Payment = &p
	}
	return out
}

func trimShipping(in domain.ShippingInfo) domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
}

func maskCard(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

func paymentLabel(p *domain.Payment) string {
	if p == nil {
		return ""
	}
	label := p.Method.Label()
	if p.Card != nil && len(p.Card.CardNumber) >= 4 {
		label += " ending in " + p.Card.CardNumber[len(p.Card.CardNumber)-4:]
	}
	return label
}
