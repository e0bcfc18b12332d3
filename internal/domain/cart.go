package domain

import "time"

// Cart is one shopper's working basket. Version increments on every mutation
// so a checkout snapshot can detect that the cart moved underneath it.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"lineItems"`
	Promo     PromoState `json:"promo"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is a product plus its chosen variant attributes. Quantity is
// always >= 1 while the line is present.
type CartItem struct {
	LineID         string `json:"lineId"`
	ProductID      int64  `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Color          string `json:"color,omitempty"`
	Size           string `json:"size,omitempty"`
	Image          string `json:"image,omitempty"`
}

// SameVariant reports whether the line holds the given product variant.
func (i CartItem) SameVariant(productID int64, color, size string) bool {
	return i.ProductID == productID && i.Color == color && i.Size == size
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (c Cart) Clone() Cart {
	out := c
	if c.Items != nil {
		out.Items = make([]CartItem, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}
