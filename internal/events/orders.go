package events

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"storefront/internal/domain"
)

// OrderConfirmed is the event published when a checkout reaches confirmation.
type OrderConfirmed struct {
	Type         string              `json:"type"`
	OrderNumber  string              `json:"orderNumber"`
	CartID       string              `json:"cartId"`
	PlacedAt     time.Time           `json:"placedAt"`
	Items        []domain.CartItem   `json:"items"`
	PromoCode    string              `json:"promoCode,omitempty"`
	Totals       domain.Totals       `json:"totals"`
	PaymentLabel string              `json:"paymentLabel"`
	Shipping     domain.ShippingInfo `json:"shipping"`
}

// OrderPublisher is a checkout order sink that publishes OrderConfirmed
// events keyed by order number.
type OrderPublisher struct {
	writer messageWriter
	closer io.Closer
	logger *log.Logger
}

// NewOrderPublisher returns ErrDisabled when the client has no brokers.
func NewOrderPublisher(client *Client, topic string, logger *log.Logger) (*OrderPublisher, error) {
	if client == nil || !client.Enabled() {
		return nil, ErrDisabled
	}
	w := client.NewWriter(topic)
	return newOrderPublisher(w, w, logger), nil
}

func newOrderPublisher(w messageWriter, closer io.Closer, logger *log.Logger) *OrderPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &OrderPublisher{writer: w, closer: closer, logger: logger}
}

func (p *OrderPublisher) Name() string { return "kafka" }

// PlaceOrder publishes the confirmation. Card data never leaves the process.
func (p *OrderPublisher) PlaceOrder(ctx context.Context, conf domain.Confirmation, draft domain.OrderDraft) error {
	evt := OrderConfirmed{
		Type:         "order.confirmed",
		OrderNumber:  conf.OrderNumber,
		CartID:       draft.CartID,
		PlacedAt:     conf.PlacedAt,
		Items:        conf.Items,
		PromoCode:    draft.PromoCode,
		Totals:       conf.Totals,
		PaymentLabel: conf.PaymentLabel,
		Shipping:     conf.Shipping,
	}
	if err := PublishJSON(ctx, p.writer, conf.OrderNumber, evt); err != nil {
		return err
	}
	p.logger.Printf("events: published order=%s total=%d", conf.OrderNumber, conf.Totals.TotalCents)
	return nil
}

func (p *OrderPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

var _ messageWriter = (*kafka.Writer)(nil)
