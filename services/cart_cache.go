package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ecommerce-api/models"
)

// CartCache is a read-through cache for the per-user cart. It is an
// optimization only: a nil *CartCache is valid and every method becomes a
// no-op, so the service layer never branches on whether redis is configured.
type CartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartCache(client *redis.Client, ttl time.Duration) *CartCache {
	return &CartCache{client: client, ttl: ttl}
}

func (c *CartCache) key(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (c *CartCache) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *CartCache) Set(ctx context.Context, cart *models.Cart) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(cart.UserID), data, c.ttl).Err()
}

func (c *CartCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(userID)).Err()
}
