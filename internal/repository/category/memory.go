package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu         sync.RWMutex
	nextID     int64
	categories map[string]domain.Category
}

func NewMemory(seed ...domain.Category) Repository {
	r := &memoryRepo{categories: make(map[string]domain.Category)}
	for _, c := range seed {
		_, _ = r.Upsert(context.Background(), c)
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.categories[c.Key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if c.Slug == "" {
			c.Slug = existing.Slug
		}
	} else {
		r.nextID++
		c.ID = r.nextID
		c.CreatedAt = time.Now().UTC()
	}
	r.categories[c.Key] = c
	out := c
	return &out, nil
}
