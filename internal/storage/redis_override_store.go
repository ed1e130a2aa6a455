package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultOverrideKeyPrefix namespaces override keys in a shared Redis.
const DefaultOverrideKeyPrefix = "nexus:override:"

// RedisOverrideStore implements OverrideStore on Redis so overrides survive
// restarts and are shared between replicas. Each override is one JSON string
// key; SET gives the same last-write-wins semantics as the in-memory store.
type RedisOverrideStore struct {
	client *redis.Client
	prefix string
}

// NewRedisOverrideStore creates a Redis-backed store. An empty prefix selects
// DefaultOverrideKeyPrefix.
func NewRedisOverrideStore(client *redis.Client, prefix string) *RedisOverrideStore {
	if prefix == "" {
		prefix = DefaultOverrideKeyPrefix
	}
	return &RedisOverrideStore{client: client, prefix: prefix}
}

func (s *RedisOverrideStore) key(campaignRun string) string {
	return s.prefix + campaignRun
}

func (s *RedisOverrideStore) Get(ctx context.Context, campaignRun string) (map[string]any, bool, error) {
	raw, err := s.client.Get(ctx, s.key(campaignRun)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get override: %w", err)
	}

	var o map[string]any
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false, fmt.Errorf("failed to decode override %q: %w", campaignRun, err)
	}
	return o, true, nil
}

func (s *RedisOverrideStore) Put(ctx context.Context, campaignRun string, override map[string]any) error {
	raw, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}
	if err := s.client.Set(ctx, s.key(campaignRun), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store override: %w", err)
	}
	return nil
}

// All scans the key space under the prefix. Keys that vanish between SCAN
// and GET are skipped.
func (s *RedisOverrideStore) All(ctx context.Context) (map[string]map[string]any, error) {
	res := make(map[string]map[string]any)

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		run := strings.TrimPrefix(iter.Val(), s.prefix)
		o, ok, err := s.Get(ctx, run)
		if err != nil {
			return nil, err
		}
		if ok {
			res[run] = o
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan overrides: %w", err)
	}

	return res, nil
}
