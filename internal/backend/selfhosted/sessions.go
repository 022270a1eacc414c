package selfhosted

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/semtetteh/semsterapp/internal/authcore"

	"github.com/redis/go-redis/v9"
)

// SessionStore defines how issued sessions are persisted and
// revalidated. Implementations must remain stateless and opaque.
type SessionStore interface {
	Create(ctx context.Context, s authcore.Session) error
	Get(ctx context.Context, accessToken string) (*authcore.Session, error)
	Delete(ctx context.Context, accessToken string) error
}

type RedisSessions struct {
	client *redis.Client
	prefix string
}

// NewRedisSessions creates a Redis-backed session store.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisSessions) key(accessToken string) string {
	return r.prefix + accessToken
}

func (r *RedisSessions) Create(ctx context.Context, s authcore.Session) error {
	if s.AccessToken == "" || s.UserID == "" {
		return fmt.Errorf("selfhosted: missing access_token or user_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("selfhosted: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("selfhosted: failed to marshal session: %w", err)
	}

	return r.client.Set(ctx, r.key(s.AccessToken), data, ttl).Err()
}

func (r *RedisSessions) Get(ctx context.Context, accessToken string) (*authcore.Session, error) {
	val, err := r.client.Get(ctx, r.key(accessToken)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var s authcore.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("selfhosted: failed to unmarshal session: %w", err)
	}

	return &s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, accessToken string) error {
	return r.client.Del(ctx, r.key(accessToken)).Err()
}
