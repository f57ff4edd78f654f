package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/auth"

	"github.com/redis/go-redis/v9"
)

type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*auth.User, error)
}

// Directory maps user IDs to email addresses with a Redis read-through cache.
type Directory struct {
	users UserLookup
	redis *redis.Client
	ttl   time.Duration
}

func NewDirectory(users UserLookup, client *redis.Client, ttl time.Duration) *Directory {
	return &Directory{users: users, redis: client, ttl: ttl}
}

func (d *Directory) Email(ctx context.Context, userID string) (string, error) {
	key := "user:email:" + userID
	email, err := d.redis.Get(ctx, key).Result()
	if err == nil {
		return email, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	u, err := d.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Email == "" {
		return "", fmt.Errorf("%w: %s has no email", auth.ErrUserNotFound, userID)
	}
	// A failed cache write only costs a lookup next time.
	_ = d.redis.Set(ctx, key, u.Email, d.ttl).Err()
	return u.Email, nil
}
