package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"embed-gateway/internal/embeddings"
)

// Key prefix for stored records
const recordKeyPrefix = "embedding:"

// RedisStore is the key-value store variant: create, retrieve and delete
// only. It intentionally does not implement Searcher, so deployments backed
// by it expose no /search route.
type RedisStore struct {
	client *redis.Client
}

type redisRecord struct {
	Vector   embeddings.Vector `json:"vector"`
	Metadata map[string]any    `json:"metadata"`
}

// NewRedisStore creates a new Redis-backed record store.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{
		client: client,
	}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, rec Record) error {
	data, err := json.Marshal(redisRecord{Vector: rec.Vector, Metadata: rec.Metadata})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	// Records never expire; deletion is explicit.
	return s.client.Set(ctx, recordKeyPrefix+rec.ID, data, 0).Err()
}

func (s *RedisStore) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var out []Record
	for i, v := range values {
		if v == nil {
			continue // missing id
		}
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected value type for %s", ids[i])
		}
		var rec redisRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record for %s: %w", ids[i], err)
		}
		out = append(out, Record{ID: ids[i], Vector: rec.Vector, Metadata: rec.Metadata})
	}
	return out, nil
}

func (s *RedisStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKeyPrefix + id
	}
	// DEL of a missing key succeeds; deletes stay idempotent.
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
