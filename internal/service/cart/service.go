package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	promosvc "storefront/internal/service/promo"
)

// Service is the cart store: it owns line items and promo state per cart and
// prices them on every read.
type Service struct {
	repo        cartrepo.Repository
	productRepo productRepo
	promos      promoResolver
	pricer      pricing.Calculator
	logger      *log.Logger
	recorder    promoRecorder
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type promoResolver interface {
	Resolve(ctx context.Context, code string) (decimal.Decimal, bool, error)
}

type promoRecorder interface {
	PromoAttempt(result domain.PromoResult)
}

type noopRecorder struct{}

func (noopRecorder) PromoAttempt(domain.PromoResult) {}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for cart events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the promo metrics sink.
func WithRecorder(r promoRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func New(repo cartrepo.Repository, productRepo productRepo, promos promoResolver, pricer pricing.Calculator, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		productRepo: productRepo,
		promos:      promos,
		pricer:      pricer,
		logger:      log.New(io.Discard, "", 0),
		recorder:    noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View is a cart together with its derived totals.
type View struct {
	domain.Cart
	Totals domain.Totals `json:"totals"`
}

type AddItemInput struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

type SetQuantityInput struct {
	Quantity int `json:"quantity"`
}

type ApplyPromoInput struct {
	Code string `json:"code"`
}

func (s *Service) Create(ctx context.Context) (*View, error) {
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, domain.Cart{
		ID:        uuid.NewString(),
		Promo:     domain.NewPromoState(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("cart: created id=%s", created.ID)
	return s.view(created), nil
}

func (s *Service) Get(ctx context.Context, cartID string) (*View, error) {
	c, err := s.repo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Totals prices a cart without wrapping it in a View.
func (s *Service) Totals(c domain.Cart) domain.Totals {
	return s.pricer.Calculate(c.Items, c.Promo.DiscountRate)
}

func (s *Service) AddItem(ctx context.Context, cartID string, in AddItemInput) (*View, error) {
	if in.ProductID <= 0 {
		return nil, ErrProductRequired
	}
	if s.productRepo == nil {
		return nil, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	color := strings.TrimSpace(in.Color)
	size := strings.TrimSpace(in.Size)
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		line := addLine(c, *product, in.Quantity, color, size)
		s.logger.Printf("cart: add id=%s product=%d line=%s qty=%d", cartID, product.ID, line.LineID, line.Quantity)
		return nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, cartID, lineID string, quantity int) (*View, error) {
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		return setQuantity(c, lineID, quantity)
	})
}

func (s *Service) Increment(ctx context.Context, cartID, lineID string) (*View, error) {
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		return increment(c, lineID)
	})
}

func (s *Service) Decrement(ctx context.Context, cartID, lineID string) (*View, error) {
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		removed, err := decrement(c, lineID)
		if removed {
			s.logger.Printf("cart: line removed on decrement id=%s line=%s", cartID, lineID)
		}
		return err
	})
}

func (s *Service) RemoveItem(ctx context.Context, cartID, lineID string) (*View, error) {
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		removeLine(c, lineID)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, cartID string) (*View, error) {
	return s.update(ctx, cartID, func(c *domain.Cart) error {
		clearCart(c)
		return nil
	})
}

// ApplyPromo marks the cart as applying, resolves the code and settles the
// result. Blank input is rejected before any state changes.
func (s *Service) ApplyPromo(ctx context.Context, cartID, code string) (*View, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, promosvc.ErrEmptyCode
	}

	var previous domain.PromoState
	if _, err := s.repo.Update(ctx, cartID, func(c *domain.Cart) error {
		previous = c.Promo
		pending, err := promosvc.Begin(c.Promo, code)
		c.Promo = pending
		return err
	}); err != nil {
		return nil, err
	}

	rate, ok, err := s.promos.Resolve(ctx, code)
	if err != nil {
		s.logger.Printf("cart: promo lookup id=%s code=%s error=%v", cartID, code, err)
		if _, rbErr := s.repo.Update(context.WithoutCancel(ctx), cartID, func(c *domain.Cart) error {
			if promosvc.Pending(c.Promo, code) {
				c.Promo = previous
			}
			return nil
		}); rbErr != nil {
			s.logger.Printf("cart: promo rollback id=%s error=%v", cartID, rbErr)
		}
		return nil, err
	}

	// A later apply may have replaced the code while this lookup ran; its
	// result then belongs to that request and this one is dropped.
	var superseded bool
	updated, err := s.repo.Update(ctx, cartID, func(c *domain.Cart) error {
		superseded = !promosvc.Pending(c.Promo, code)
		if !superseded {
			c.Promo = promosvc.Finish(c.Promo, code, rate, ok)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if superseded {
		s.logger.Printf("cart: promo id=%s code=%s superseded by code=%s", cartID, code, updated.Promo.Code)
		return s.view(updated), nil
	}
	s.recorder.PromoAttempt(updated.Promo.LastResult)
	s.logger.Printf("cart: promo id=%s code=%s result=%s", cartID, code, updated.Promo.LastResult)
	return s.view(updated), nil
}

func (s *Service) update(ctx context.Context, cartID string, fn cartrepo.MutateFunc) (*View, error) {
	updated, err := s.repo.Update(ctx, cartID, fn)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

func (s *Service) view(c *domain.Cart) *View {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &View{Cart: *c, Totals: s.Totals(*c)}
}
