package selfhosted

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore holds short-lived secrets: one-time codes, password reset
// codes, PKCE verifiers awaiting their callback leg.
type CodeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns "" when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type RedisCodes struct {
	client *redis.Client
	prefix string
}

func NewRedisCodes(client *redis.Client) *RedisCodes {
	return &RedisCodes{
		client: client,
		prefix: "code:",
	}
}

func (r *RedisCodes) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisCodes) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisCodes) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
