// Shelfsense - Retail Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfsense

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces every key written by the store.
	// Default: shelfsense
	KeyPrefix string
}

// RedisStore is a Store backed by Redis.
//
// Records are JSON(Item) strings under <prefix>:<table>:d:<key>. Table
// membership and secondary indexes are Redis SETs of record keys:
//
//	<prefix>:<table>:all
//	<prefix>:<table>:i:<index>:<value>
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "shelfsense"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Name implements Store.
func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) dataKey(table, key string) string {
	return r.prefix + ":" + table + ":d:" + key
}

func (r *RedisStore) allKey(table string) string {
	return r.prefix + ":" + table + ":all"
}

func (r *RedisStore) indexKey(table, index, value string) string {
	return r.prefix + ":" + table + ":i:" + index + ":" + value
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	defer observe(r.Name(), "get", time.Now())

	item, err := r.read(ctx, table, key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (r *RedisStore) read(ctx context.Context, table, key string) (Item, error) {
	var item Item
	raw, err := r.client.Get(ctx, r.dataKey(table, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}

// Put implements Store.
//
//nolint:gocritic // Item is passed by value to match the Store interface
func (r *RedisStore) Put(ctx context.Context, table string, item Item) error {
	defer observe(r.Name(), "put", time.Now())

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	old, err := r.read(ctx, table, item.Key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	pipe := r.client.TxPipeline()
	if err == nil {
		for name, value := range old.Indexes {
			if item.Indexes[name] != value {
				pipe.SRem(ctx, r.indexKey(table, name, value), item.Key)
			}
		}
	}
	pipe.Set(ctx, r.dataKey(table, item.Key), data, 0)
	pipe.SAdd(ctx, r.allKey(table), item.Key)
	for name, value := range item.Indexes {
		pipe.SAdd(ctx, r.indexKey(table, name, value), item.Key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Query implements Store.
func (r *RedisStore) Query(ctx context.Context, table string, cond Condition) ([]Item, error) {
	defer observe(r.Name(), "query", time.Now())

	setKey := r.allKey(table)
	if cond.Index != "" {
		setKey = r.indexKey(table, cond.Index, cond.Value)
	}

	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	dataKeys := make([]string, len(keys))
	for i, k := range keys {
		dataKeys[i] = r.dataKey(table, k)
	}
	vals, err := r.client.MGet(ctx, dataKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]Item, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Member outlived its record.
			continue
		}
		var item Item
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		if cond.Matches(&item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, table, key string) error {
	defer observe(r.Name(), "delete", time.Now())

	old, err := r.read(ctx, table, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	for name, value := range old.Indexes {
		pipe.SRem(ctx, r.indexKey(table, name, value), key)
	}
	pipe.SRem(ctx, r.allKey(table), key)
	pipe.Del(ctx, r.dataKey(table, key))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
