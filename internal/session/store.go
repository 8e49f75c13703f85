package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sfms-app/sfms-api/internal/models"
)

const keyPrefix = "sfms:session:"

// Store holds authenticated identities keyed by opaque session id. The gate
// middleware loads from it on every request; login saves, logout destroys.
type Store interface {
	Load(ctx context.Context, sessionID string) (*models.Identity, error)
	Save(ctx context.Context, sessionID string, identity *models.Identity) error
	Destroy(ctx context.Context, sessionID string) error
}

// RedisStore is the redis-backed Store used in production.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore with the given session TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns the identity for a session id, or nil when the session does
// not exist or has expired.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*models.Identity, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &identity, nil
}

// Save persists the identity under the session id for the configured TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, identity *models.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy removes the session. Destroying a missing session is not an error.
func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Observer receives the outcome of every session lookup.
type Observer interface {
	ObserveSessionLookup(outcome string)
}

type instrumentedStore struct {
	next Store
	obs  Observer
}

// Instrument wraps a store so each Load reports its outcome (hit, miss or
// error) to the observer. Save and Destroy pass through untouched.
func Instrument(next Store, obs Observer) Store {
	if obs == nil {
		return next
	}
	return &instrumentedStore{next: next, obs: obs}
}

func (s *instrumentedStore) Load(ctx context.Context, sessionID string) (*models.Identity, error) {
	identity, err := s.next.Load(ctx, sessionID)
	switch {
	case err != nil:
		s.obs.ObserveSessionLookup("error")
	case identity == nil:
		s.obs.ObserveSessionLookup("miss")
	default:
		s.obs.ObserveSessionLookup("hit")
	}
	return identity, err
}

func (s *instrumentedStore) Save(ctx context.Context, sessionID string, identity *models.Identity) error {
	return s.next.Save(ctx, sessionID, identity)
}

func (s *instrumentedStore) Destroy(ctx context.Context, sessionID string) error {
	return s.next.Destroy(ctx, sessionID)
}

// NewSessionID returns an unguessable opaque session identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
