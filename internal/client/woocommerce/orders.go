package woocommerce

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

// OrderSink creates a WooCommerce order for every confirmed checkout.
type OrderSink struct {
	client *Client
}

func NewOrderSink(client *Client) *OrderSink {
	return &OrderSink{client: client}
}

func (s *OrderSink) Name() string { return "woocommerce" }

func (s *OrderSink) PlaceOrder(ctx context.Context, conf domain.Confirmation, draft domain.OrderDraft) error {
	created, err := s.client.CreateOrder(ctx, OrderFromDraft(conf, draft))
	if err != nil {
		return err
	}
	s.client.logger.Printf("woocommerce: created order id=%d number=%s", created.ID, conf.OrderNumber)
	return nil
}

// OrderFromDraft maps a confirmed draft to a WooCommerce order. No card
// data is sent and the order is left unpaid.
func OrderFromDraft(conf domain.Confirmation, draft domain.OrderDraft) Order {
	addr := addressFrom(draft.Shipping)
	order := Order{
		PaymentMethodTitle: conf.PaymentLabel,
		Billing:            addr,
		Shipping:           addr,
		MetaData:           []MetaData{{Key: "storefront_order_number", Value: conf.OrderNumber}},
	}
	if draft.Payment != nil {
		order.PaymentMethod = string(draft.Payment.Method)
	}
	order.Shipping.Email, order.Shipping.Phone = "", ""
	for _, it := range draft.Items {
		line := centsString(it.UnitPriceCents * int64(it.Quantity))
		order.LineItems = append(order.LineItems, LineItem{ProductID: it.ProductID, Quantity: it.Quantity, Subtotal: line, Total: line})
	}
	if draft.Totals.ShippingCents > 0 {
		order.ShippingLines = []ShippingLine{{MethodID: "flat_rate", MethodTitle: "Flat rate", Total: centsString(draft.Totals.ShippingCents)}}
	}
	if draft.PromoCode != "" {
		order.CouponLines = []CouponLine{{Code: strings.ToLower(draft.PromoCode)}}
	}
	return order
}

func addressFrom(info domain.ShippingInfo) Address {
	first, last, _ := strings.Cut(strings.TrimSpace(info.FullName), " ")
	return Address{
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Address1:  info.Address,
		City:      info.City,
		Postcode:  info.PostalCode,
		Country:   info.Country,
		Email:     info.Email,
		Phone:     info.Phone,
	}
}

func centsString(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
