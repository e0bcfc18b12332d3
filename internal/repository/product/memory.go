package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu       sync.RWMutex
	nextID   int64
	products map[string]domain.Product
}

// NewMemory returns a catalog held in process memory, keyed by product key.
func NewMemory(seed ...domain.Product) Repository {
	r := &memoryRepo{products: make(map[string]domain.Product)}
	for _, p := range seed {
		_, _ = r.Upsert(context.Background(), p)
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.products[product.Key]; ok {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	} else {
		if product.ID == 0 {
			r.nextID++
			product.ID = r.nextID
		} else if product.ID > r.nextID {
			r.nextID = product.ID
		}
		product.CreatedAt = time.Now().UTC()
	}
	r.products[product.Key] = product
	out := product
	return &out, nil
}
