package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrStateNotFound    = errors.New("wizard state not found")
	ErrStateConflict    = errors.New("wizard state was modified concurrently")
	ErrStateUnavailable = errors.New("wizard state store unavailable")
)

// Repository persists wizard instances. Save fails with ErrStateConflict
// unless s.Version matches the stored version, and bumps it on success.
type Repository interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, s *State) error
	Delete(ctx context.Context, id string) error
}

type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *RedisRepository) Load(ctx context.Context, id string) (State, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}
	if err != nil {
		return State{}, fmt.Errorf("%w: load %s: %v", ErrStateUnavailable, id, err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode wizard %s: %w", id, err)
	}
	return s, nil
}

func (r *RedisRepository) Save(ctx context.Context, s *State) error {
	key := r.key(s.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if s.Version != 0 {
				return fmt.Errorf("%w: %s expired or was deleted", ErrStateConflict, s.ID)
			}
		case err != nil:
			return err
		default:
			var cur struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(stored, &cur); err != nil {
				return fmt.Errorf("decode wizard %s: %w", s.ID, err)
			}
			if cur.Version != s.Version {
				return fmt.Errorf("%w: %s at version %d, have %d", ErrStateConflict, s.ID, cur.Version, s.Version)
			}
		}

		next := *s
		next.Version++
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		s.Version = next.Version
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", ErrStateConflict, s.ID)
	}
	if err != nil && !errors.Is(err, ErrStateConflict) {
		return fmt.Errorf("%w: save %s: %v", ErrStateUnavailable, s.ID, err)
	}
	return err
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStateUnavailable, id, err)
	}
	return nil
}
