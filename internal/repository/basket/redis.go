package basket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/redis/go-redis/v9"
)

// deviceKeyPrefix is the single well-known key namespace for anonymous
// baskets.
const deviceKeyPrefix = "basket:device:"

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns the anonymous-mode backend: one TTL-bounded entry per
// device, serialized as JSON.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{client: client, ttl: ttl}
}

func deviceKey(deviceID string) string {
	return deviceKeyPrefix + deviceID
}

func (r *redisRepo) Load(ctx context.Context, deviceID string) (*domain.Basket, error) {
	raw, err := r.client.Get(ctx, deviceKey(deviceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var b domain.Basket
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *redisRepo) Save(ctx context.Context, deviceID string, b domain.Basket) error {
	if b.Items == nil {
		b.Items = []domain.BasketItem{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, deviceKey(deviceID), raw, r.ttl).Err()
}

func (r *redisRepo) Clear(ctx context.Context, deviceID string) error {
	return r.client.Del(ctx, deviceKey(deviceID)).Err()
}
