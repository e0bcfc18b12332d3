package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

// OrderSink receives a confirmed order. It is the integration point where a
// real backend would create the order.
type OrderSink interface {
	Name() string
	PlaceOrder(ctx context.Context, conf domain.Confirmation, draft domain.OrderDraft) error
}

type cartStore interface {
	Get(ctx context.Context, cartID string) (*cartsvc.View, error)
	Clear(ctx context.Context, cartID string) (*cartsvc.View, error)
}

type stepRecorder interface {
	CheckoutStep(step domain.CheckoutStep)
	OrderSubmitted(totalCents int64)
}

type noopRecorder struct{}

func (noopRecorder) CheckoutStep(domain.CheckoutStep) {}
func (noopRecorder) OrderSubmitted(int64)             {}

// Service owns the checkout flows in progress, keyed by checkout id.
type Service struct {
	carts    cartStore
	sinks    []OrderSink
	logger   *log.Logger
	recorder stepRecorder
	now      func() time.Time

	mu    sync.RWMutex
	flows map[string]*Controller
}

type Option func(*Service)

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(r stepRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithSinks registers order sinks, called in order on submit.
func WithSinks(sinks ...OrderSink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

func New(carts cartStore, opts ...Option) *Service {
	s := &Service{
		carts:    carts,
		logger:   log.New(io.Discard, "", 0),
		recorder: noopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
		flows:    make(map[string]*Controller),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin snapshots the cart and opens a flow on the shipping step.
func (s *Service) Begin(ctx context.Context, cartID string) (View, error) {
	snapshot, err := s.snapshot(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	ctrl := NewController(uuid.NewString(), snapshot, s.now())
	s.mu.Lock()
	s.flows[ctrl.ID()] = ctrl
	s.mu.Unlock()
	s.recorder.CheckoutStep(domain.StepShipping)
	s.logger.Printf("checkout: begin id=%s cart=%s version=%d total=%d", ctrl.ID(), cartID, snapshot.CartVersion, snapshot.Totals.TotalCents)
	return ctrl.View(), nil
}

func (s *Service) Get(_ context.Context, id string) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

func (s *Service) SetShipping(_ context.Context, id string, info domain.ShippingInfo) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.SetShipping(info); err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

func (s *Service) SetPayment(_ context.Context, id string, in PaymentInput) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.SetPayment(in); err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

// Next advances one step. From review it submits the order.
func (s *Service) Next(ctx context.Context, id string) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.Next(); err != nil {
		if errors.Is(err, errSubmitRequired) {
			return s.submit(ctx, ctrl)
		}
		return View{}, err
	}
	s.recorder.CheckoutStep(ctrl.Step())
	return ctrl.View(), nil
}

func (s *Service) Back(_ context.Context, id string) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.Back(); err != nil {
		return View{}, err
	}
	return ctrl.View(), nil
}

func (s *Service) Submit(ctx context.Context, id string) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return s.submit(ctx, ctrl)
}

// Refresh re-snapshots items and totals from the live cart.
func (s *Service) Refresh(ctx context.Context, id string) (View, error) {
	ctrl, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	snapshot, err := s.snapshot(ctx, ctrl.Draft().CartID)
	if err != nil {
		return View{}, err
	}
	if err := ctrl.Resnapshot(snapshot); err != nil {
		return View{}, err
	}
	s.logger.Printf("checkout: refreshed id=%s version=%d total=%d", id, snapshot.CartVersion, snapshot.Totals.TotalCents)
	return ctrl.View(), nil
}

func (s *Service) submit(ctx context.Context, ctrl *Controller) (View, error) {
	sub, err := ctrl.beginSubmit(s.now())
	if err != nil {
		return View{}, err
	}
	conf, err := s.place(ctx, ctrl, sub)
	ctrl.finishSubmit(conf)
	if err != nil {
		return View{}, err
	}

	s.recorder.CheckoutStep(domain.StepConfirmation)
	s.recorder.OrderSubmitted(conf.Totals.TotalCents)
	s.logger.Printf("checkout: confirmed id=%s order=%s total=%d", ctrl.ID(), conf.OrderNumber, conf.Totals.TotalCents)

	cartID := sub.draft.CartID
	if _, err := s.carts.Clear(context.WithoutCancel(ctx), cartID); err != nil {
		s.logger.Printf("checkout: clear cart=%s after order=%s error=%v", cartID, conf.OrderNumber, err)
	}
	return ctrl.View(), nil
}

// place hands the order to every sink that has not accepted it yet. The
// snapshot is checked against the live cart only before the first sink runs;
// once the order exists somewhere a retry must finish the same order.
func (s *Service) place(ctx context.Context, ctrl *Controller, sub submission) (*domain.Confirmation, error) {
	draft := sub.draft
	if len(sub.placed) == 0 {
		live, err := s.carts.Get(ctx, draft.CartID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: cart %s no longer exists", ErrStaleSnapshot, draft.CartID)
			}
			return nil, err
		}
		if live.Version != draft.CartVersion {
			return nil, fmt.Errorf("%w: snapshot version %d, cart version %d", ErrStaleSnapshot, draft.CartVersion, live.Version)
		}
	}

	conf := sub.conf
	for i, sink := range s.sinks {
		if sub.placed[i] {
			continue
		}
		if err := sink.PlaceOrder(ctx, conf, draft); err != nil {
			s.logger.Printf("checkout: sink=%s order=%s error=%v", sink.Name(), conf.OrderNumber, err)
			return nil, fmt.Errorf("place order via %s: %w", sink.Name(), err)
		}
		ctrl.markPlaced(i)
	}
	return &conf, nil
}

func (s *Service) snapshot(ctx context.Context, cartID string) (domain.OrderDraft, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return domain.OrderDraft{}, err
	}
	if len(cart.Items) == 0 {
		return domain.OrderDraft{}, ErrEmptyCart
	}
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	draft := domain.OrderDraft{
		CartID:      cart.ID,
		CartVersion: cart.Version,
		Items:       items,
		Totals:      cart.Totals,
	}
	if cart.Promo.LastResult == domain.PromoResultSuccess {
		draft.PromoCode = strings.ToUpper(cart.Promo.Code)
	}
	return draft, nil
}

func (s *Service) lookup(id string) (*Controller, error) {
	s.mu.RLock()
	ctrl, ok := s.flows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ctrl, nil
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Prune drops flows older than maxAge and returns how many were removed.
func (s *Service) Prune(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, ctrl := range s.flows {
		if ctrl.createdAt.Before(cutoff) {
			delete(s.flows, id)
			removed++
		}
	}
	return removed
}
