// Package redis is a store.Store backed by Redis.
//
// Projects are stored as JSON values under "<prefix>project:{id}". The
// generation index "<prefix>generation:{generationId}" maps a generation to
// its project id and is claimed with SETNX, which makes creation idempotent
// across concurrent callers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/store"
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "artboard:"

// maxUpdateRetries bounds optimistic transaction retries in Update.
const maxUpdateRetries = 10

// Option configures a Store.
type Option func(*Store)

// WithTTL expires projects ttl after their last write. Zero keeps them
// forever, which is the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// Store is a Redis project store.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.Store = (*Store)(nil)

// New returns a Store using client.
func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the Redis server at addr and verifies the connection.
func Open(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store/redis: ping %s: %w", addr, err)
	}
	return New(client, opts...), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) projectKey(id string) string {
	return s.prefix + "project:" + id
}

func (s *Store) generationKey(generationID string) string {
	return s.prefix + "generation:" + generationID
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (*artboard.Project, error) {
	p, err := s.get(ctx, s.client, id)
	if !errors.Is(err, store.ErrNotFound) {
		return p, err
	}
	pid, gerr := s.client.Get(ctx, s.generationKey(id)).Result()
	if errors.Is(gerr, redis.Nil) {
		return nil, err
	}
	if gerr != nil {
		return nil, fmt.Errorf("store/redis: get generation %s: %w", id, gerr)
	}
	return s.get(ctx, s.client, pid)
}

func (s *Store) get(ctx context.Context, c redis.Cmdable, id string) (*artboard.Project, error) {
	data, err := c.Get(ctx, s.projectKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("store/redis: get %s: %w", id, err)
	}
	var p artboard.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("store/redis: decode %s: %w", id, err)
	}
	return &p, nil
}

// Create implements store.Store. The project document is written before
// the generation index is claimed; a caller that loses the claim deletes
// its document and returns the winner's project.
func (s *Store) Create(ctx context.Context, generationID string, initial *artboard.Project) (*artboard.Project, error) {
	if pid, err := s.client.Get(ctx, s.generationKey(generationID)).Result(); err == nil {
		return s.get(ctx, s.client, pid)
	}
	p, err := store.Prepare(generationID, initial)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("store/redis: encode %s: %w", p.ID, err)
	}

	ok, err := s.client.SetNX(ctx, s.projectKey(p.ID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("store/redis: create %s: %w", p.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("store/redis: create %s: project id already in use", p.ID)
	}

	claimed, err := s.client.SetNX(ctx, s.generationKey(generationID), p.ID, s.ttl).Result()
	if err != nil {
		s.client.Del(ctx, s.projectKey(p.ID))
		return nil, fmt.Errorf("store/redis: index generation %s: %w", generationID, err)
	}
	if !claimed {
		s.client.Del(ctx, s.projectKey(p.ID))
		return s.Get(ctx, generationID)
	}
	artboard.Logger().Info("store: project created", "project", p.ID, "generation", generationID)
	return p, nil
}

// Update implements store.Store. The read-modify-write runs in a WATCH
// transaction and is retried when a concurrent writer touches the key.
func (s *Store) Update(ctx context.Context, id string, patch artboard.Patch) (*artboard.Project, error) {
	key := s.projectKey(id)
	var out *artboard.Project
	txf := func(tx *redis.Tx) error {
		cur, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := cur.WithPatch(patch)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("store/redis: encode %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			if s.ttl > 0 && next.GenerationID != "" {
				pipe.Expire(ctx, s.generationKey(next.GenerationID), s.ttl)
			}
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("store/redis: update %s: too much contention", id)
}
