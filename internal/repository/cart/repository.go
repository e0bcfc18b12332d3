package cart

import (
	"context"
	"errors"
	"reflect"

	"storefront/internal/domain"
)

// ErrAlreadyExists is returned when creating a cart whose id is taken.
var ErrAlreadyExists = errors.New("cart already exists")

// MutateFunc changes a cart in place. Returning an error aborts the write.
type MutateFunc func(cart *domain.Cart) error

// Repository is the persistence boundary the cart store writes through.
type Repository interface {
	Create(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// Update applies fn atomically and returns the stored cart. Version is
	// bumped only when fn actually changed the cart.
	Update(ctx context.Context, id string, fn MutateFunc) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}

// unchanged reports whether a mutation left the cart as it was.
func unchanged(before, after domain.Cart) bool {
	return reflect.DeepEqual(before, after)
}
