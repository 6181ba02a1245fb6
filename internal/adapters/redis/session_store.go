package redis

// Package redis provides the Redis-backed console session store.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/residence-console/internal/domain/auth"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "session:"

var (
	// ErrNotFound is returned when a session is absent or already expired.
	ErrNotFound = errors.New("session not found")

	errEmptySessionID = errors.New("session ID cannot be empty")
	errExpiredSession = errors.New("session is expired")
)

// SessionStore keeps one JSON document per browser session under {prefix}{id}.
// The key TTL tracks Session.ExpiresAt so Redis evicts sessions on its own.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix string
	// Now overrides the clock; tests only.
	Now func() time.Time
}

// NewSessionStore creates a Redis session store using DefaultKeyPrefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithOptions(client, SessionStoreOptions{})
}

// NewSessionStoreWithOptions creates a Redis session store with custom options.
func NewSessionStoreWithOptions(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{client: client, prefix: prefix, now: now}
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save writes the session with a TTL equal to its remaining lifetime.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errEmptySessionID
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errExpiredSession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads a session. Missing and expired sessions both yield ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domainauth.Session{}, ErrNotFound
	case err != nil:
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// TTL granularity can leave a key alive slightly past ExpiresAt.
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Each calls fn for every stored session, in no particular order.
// Keys that fail to decode are skipped. Returning an error from fn stops the walk.
func (s *SessionStore) Each(ctx context.Context, fn func(domainauth.Session) error) error {
	scan := func(ctx context.Context, c redis.UniversalClient) error {
		iter := c.Scan(ctx, 0, s.prefix+"*", 500).Iterator()
		for iter.Next(ctx) {
			data, err := c.Get(ctx, iter.Val()).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return fmt.Errorf("redis get: %w", err)
			}
			var sess domainauth.Session
			if json.Unmarshal(data, &sess) != nil || sess.ID == "" {
				continue
			}
			if err := fn(sess); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		return nil
	}

	if cluster, ok := s.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scan(ctx, node)
		})
	}
	return scan(ctx, s.client)
}
