package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/config"
)

// RedisStore keeps each board as a JSON string under <prefix><name>, with
// the set of names under <prefix>index.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gridtile:board:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }
func (s *RedisStore) indexKey() string       { return s.prefix + "index" }

func (s *RedisStore) Load(ctx context.Context, name string) (*board.Board, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get board %q: %w", name, err)
	}
	var b board.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board %q: %w", name, err)
	}
	return &b, nil
}

func (s *RedisStore) Save(ctx context.Context, b *board.Board) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	if err := board.ValidateName(b.Name); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(b.Name), data, 0)
		pipe.SAdd(ctx, s.indexKey(), b.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save board %q: %w", b.Name, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete board %q: %w", name, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list boards: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
