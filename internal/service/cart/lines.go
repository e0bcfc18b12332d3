package cart

import (
	"github.com/google/uuid"
	"storefront/internal/domain"
)

// addLine merges into an existing line for the same product variant or
// appends a new one. quantity <= 0 counts as 1.
func addLine(c *domain.Cart, product domain.Product, quantity int, color, size string) domain.CartItem {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].SameVariant(product.ID, color, size) {
			c.Items[i].Quantity += quantity
			return c.Items[i]
		}
	}
	item := domain.CartItem{
		LineID:         uuid.NewString(),
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		Quantity:       quantity,
		Color:          color,
		Size:           size,
		Image:          product.Image,
	}
	c.Items = append(c.Items, item)
	return item
}

func lineIndex(c *domain.Cart, lineID string) int {
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// setQuantity never removes a line: values below 1 are clamped to 1.
func setQuantity(c *domain.Cart, lineID string, quantity int) error {
	idx := lineIndex(c, lineID)
	if idx < 0 {
		return domain.ErrNotFound
	}
	if quantity < 1 {
		quantity = 1
	}
	c.Items[idx].Quantity = quantity
	return nil
}

func increment(c *domain.Cart, lineID string) error {
	idx := lineIndex(c, lineID)
	if idx < 0 {
		return domain.ErrNotFound
	}
	c.Items[idx].Quantity++
	return nil
}

// decrement removes the line when it would drop below 1.
func decrement(c *domain.Cart, lineID string) (removed bool, err error) {
	idx := lineIndex(c, lineID)
	if idx < 0 {
		return false, domain.ErrNotFound
	}
	if c.Items[idx].Quantity <= 1 {
		removeLine(c, lineID)
		return true, nil
	}
	c.Items[idx].Quantity--
	return false, nil
}

// removeLine is a no-op for unknown lines.
func removeLine(c *domain.Cart, lineID string) {
	idx := lineIndex(c, lineID)
	if idx < 0 {
		return
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}

func clearCart(c *domain.Cart) {
	c.Items = nil
	c.Promo = domain.NewPromoState()
}
