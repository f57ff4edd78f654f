// Package session resolves bearer tokens into portal sessions and caches
// them in Redis.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/auth"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMissingToken     = errors.New("access token is required")
	ErrSessionRevoked   = errors.New("session was revoked")
	ErrCacheUnavailable = errors.New("session cache unavailable")
)

type User struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Scopes []string `json:"scopes"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Tokens    Tokens    `json:"tokens"`
	CreatedAt time.Time `json:"createdAt"`
}

// IdentityProvider exchanges an access token for the caller's claims.
type IdentityProvider interface {
	UserInfo(ctx context.Context, accessToken string) (*auth.UserInfo, error)
}

type Resolver struct {
	idp   IdentityProvider
	redis *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

func NewResolver(idp IdentityProvider, client *redis.Client, ttl time.Duration) *Resolver {
	return &Resolver{idp: idp, redis: client, ttl: ttl, now: time.Now}
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sessionKey(token string) string { return "session:token:" + tokenHash(token) }

func revokedKey(token string) string { return "token:revoked:" + tokenHash(token) }

// ResolveSession returns the cached session for accessToken or asks the
// identity provider and caches the answer for the resolver TTL.
func (r *Resolver) ResolveSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}

	n, err := r.redis.Exists(ctx, revokedKey(accessToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	if n > 0 {
		return nil, ErrSessionRevoked
	}

	raw, err := r.redis.Get(ctx, sessionKey(accessToken)).Bytes()
	switch {
	case err == nil:
		var s Session
		if jerr := json.Unmarshal(raw, &s); jerr == nil {
			return &s, nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	info, err := r.idp.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        uuid.NewString(),
		User:      User{ID: info.Subject, Email: info.Email, Scopes: info.RealmAccess.Roles},
		Tokens:    Tokens{AccessToken: accessToken, RefreshToken: refreshToken},
		CreatedAt: r.now().UTC(),
	}
	if s.User.Scopes == nil {
		s.User.Scopes = []string{}
	}

	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := r.redis.Set(ctx, sessionKey(accessToken), encoded, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return s, nil
}

// Revoke drops the cached session and blocks the token for the TTL.
func (r *Resolver) Revoke(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrMissingToken
	}
	_, err := r.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(accessToken))
		p.Set(ctx, revokedKey(accessToken), "1", r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
