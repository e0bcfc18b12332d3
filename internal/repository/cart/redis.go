package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront/internal/domain"
)

const (
	cartKeyPrefix    = "cart:"
	maxUpdateRetries = 5
)

// ErrConflict is returned when an optimistic update keeps losing races.
var ErrConflict = errors.New("cart update conflict")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores carts as JSON documents with a sliding TTL.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{client: client, ttl: ttl}
}

func (r *redisRepo) Create(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, err
	}
	ok, err := r.client.SetNX(ctx, cartKeyPrefix+cart.ID, data, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyExists
	}
	out := cart.Clone()
	return &out, nil
}

func (r *redisRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.load(ctx, r.client, id)
}

func (r *redisRepo) Update(ctx context.Context, id string, fn MutateFunc) (*domain.Cart, error) {
	key := cartKeyPrefix + id
	var updated *domain.Cart

	txf := func(tx *redis.Tx) error {
		cart, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		before := cart.Clone()
		if err := fn(cart); err != nil {
			return err
		}
		if unchanged(before, *cart) {
			updated = cart
			return nil
		}
		cart.Version++
		cart.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(cart)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			updated = cart
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update cart %s: %w", id, ErrConflict)
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, cartKeyPrefix+id).Err()
}

func (r *redisRepo) load(ctx context.Context, c getter, id string) (*domain.Cart, error) {
	data, err := c.Get(ctx, cartKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &cart, nil
}
