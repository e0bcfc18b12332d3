package cart

import "errors"

var (
	// ErrProductNotFound is returned when adding an unknown product id.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductRequired is returned when an add request carries no product id.
	ErrProductRequired = errors.New("productId required")
)
