package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"storefront/internal/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedis_CreateUpdateGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	repo := NewRedis(client, time.Minute)
	id := uuid.NewString()
	defer repo.Delete(ctx, id)

	if _, err := repo.Create(ctx, domain.Cart{ID: id, Promo: domain.NewPromoState()}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Cart{ID: id}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	updated, err := repo.Update(ctx, id, func(c *domain.Cart) error {
		c.Items = append(c.Items, domain.CartItem{LineID: "l1", ProductID: 7, Quantity: 2, UnitPriceCents: 500})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("expected version 1, got %d", updated.Version)
	}

	fetched, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(fetched.Items) != 1 || fetched.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", fetched)
	}

	same, err := repo.Update(ctx, id, func(c *domain.Cart) error { return nil })
	if err != nil {
		t.Fatalf("noop Update: %v", err)
	}
	if same.Version != 1 {
		t.Fatalf("expected no-op to keep version 1, got %d", same.Version)
	}
}

func TestRedis_GetMissing(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	repo := NewRedis(client, time.Minute)
	if _, err := repo.GetByID(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
