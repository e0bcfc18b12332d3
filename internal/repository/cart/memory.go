package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewMemory returns a process-local repository. Carts vanish on restart.
func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]domain.Cart)}
}

func (r *memoryRepo) Create(_ context.Context, cart domain.Cart) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[cart.ID]; ok {
		return nil, ErrAlreadyExists
	}
	r.carts[cart.ID] = cart.Clone()
	out := cart.Clone()
	return &out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.RLock()
	cart, ok := r.carts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cart.Clone()
	return &out, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, fn MutateFunc) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	working := stored.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	if unchanged(stored, working) {
		out := stored.Clone()
		return &out, nil
	}
	working.Version = stored.Version + 1
	working.UpdatedAt = time.Now().UTC()
	r.carts[id] = working
	out := working.Clone()
	return &out, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.carts, id)
	r.mu.Unlock()
	return nil
}
