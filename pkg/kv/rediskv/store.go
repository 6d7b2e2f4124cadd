// Package rediskv implements kv.Store on Redis. Atomic updates use
// WATCH/MULTI so concurrent writers of one slot retry, with jittered backoff
// until their context ends, instead of clobbering each other.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dwikikusuma/epicerie/pkg/kv"
)

type Store struct {
	client    *redis.Client
	namespace string
}

// Open parses a redis:// URL and verifies the connection.
func Open(ctx context.Context, redisURL, namespace string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(client, namespace), nil
}

func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	full := s.key(key)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			cur = nil
		} else if err != nil {
			return fmt.Errorf("redis get %s: %w", key, err)
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, full)
				return nil
			}
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	delay := retryBase
	for {
		err := s.client.Watch(ctx, txf, full)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("update %s: %w: %w", key, kv.ErrConflict, ctx.Err())
		case <-time.After(jitter(delay)):
		}
		delay = min(delay*2, retryMax)
	}
}

const (
	retryBase = time.Millisecond
	retryMax  = 50 * time.Millisecond
)

// jitter picks a wait between d/2 and d so losing writers do not retry in lockstep.
func jitter(d time.Duration) time.Duration {
	half := d / 2
	return half + rand.N(half+1)
}
