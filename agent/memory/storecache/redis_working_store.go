package storecache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/types"
)

// Config configures the Redis connection used by RedisWorkingStore.
type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	PoolSize  int
	KeyPrefix string
}

// RedisWorkingStore is a distributed memory.WorkingMemoryPort implementation
// backed by Redis: one JSON-encoded string key per item, plus a sorted set
// scored by creation time so GetConsolidationCandidates avoids a full key
// scan.
type RedisWorkingStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisWorkingStore dials Redis and verifies connectivity before
// returning, mirroring the fail-fast construction style used elsewhere for
// external-store adapters.
func NewRedisWorkingStore(ctx context.Context, cfg Config, logger *zap.Logger) (*RedisWorkingStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, types.Errorf(types.ErrStorage, "connect to redis: %v", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "cortex:working:"
	}
	return &RedisWorkingStore{client: client, prefix: prefix, logger: logger.With(zap.String("component", "redis_working_store"))}, nil
}

func (s *RedisWorkingStore) Close() error { return s.client.Close() }

func (s *RedisWorkingStore) itemKey(id string) string { return s.prefix + "item:" + id }
func (s *RedisWorkingStore) createdKey() string       { return s.prefix + "created" }

func (s *RedisWorkingStore) StoreItem(ctx context.Context, item *memory.WorkingMemoryItem) error {
	if item == nil {
		return types.NewError(types.ErrInvalidInput, "item is nil")
	}
	if item.ID == "" {
		return types.NewError(types.ErrInvalidInput, "item id is required")
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.DecayFactor == 0 {
		item.DecayFactor = 1.0
	}
	item.LastAccessedAt = now
	item.LastModifiedAt = now

	exists, err := s.client.Exists(ctx, s.itemKey(item.ID)).Result()
	if err != nil {
		return types.Errorf(types.ErrStorage, "check existing item: %v", err)
	}
	if exists == 1 {
		return types.Errorf(types.ErrConflict, "working item %q already exists", item.ID)
	}

	data, err := json.Marshal(item)
	if err != nil {
		return types.Errorf(types.ErrInternal, "marshal item: %v", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.itemKey(item.ID), data, 0)
	pipe.ZAdd(ctx, s.createdKey(), redis.Z{Score: float64(item.CreatedAt.UnixNano()), Member: item.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return types.Errorf(types.ErrStorage, "store item: %v", err)
	}
	return nil
}

func (s *RedisWorkingStore) load(ctx context.Context, id string) (*memory.WorkingMemoryItem, error) {
	data, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if err == redis.Nil {
		return nil, types.Errorf(types.ErrNotFound, "working item %q not found", id)
	}
	if err != nil {
		return nil, types.Errorf(types.ErrStorage, "get item: %v", err)
	}
	var item memory.WorkingMemoryItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, types.Errorf(types.ErrInternal, "unmarshal item: %v", err)
	}
	return &item, nil
}

func (s *RedisWorkingStore) save(ctx context.Context, item *memory.WorkingMemoryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return types.Errorf(types.ErrInternal, "marshal item: %v", err)
	}
	if err := s.client.Set(ctx, s.itemKey(item.ID), data, 0).Err(); err != nil {
		return types.Errorf(types.ErrStorage, "save item: %v", err)
	}
	return nil
}

func (s *RedisWorkingStore) GetItem(ctx context.Context, id string) (*memory.WorkingMemoryItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Touch(time.Now())
	if err := s.save(ctx, item); err != nil {
		s.logger.Warn("failed to persist touched item", zap.Error(err))
	}
	cp := *item
	return &cp, nil
}

func (s *RedisWorkingStore) UpdateItem(ctx context.Context, item *memory.WorkingMemoryItem) error {
	if item == nil || item.ID == "" {
		return types.NewError(types.ErrInvalidInput, "item id is required")
	}
	if _, err := s.load(ctx, item.ID); err != nil {
		return err
	}
	item.LastModifiedAt = time.Now()
	return s.save(ctx, item)
}

func (s *RedisWorkingStore) RemoveItem(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.itemKey(id))
	pipe.ZRem(ctx, s.createdKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return types.Errorf(types.ErrStorage, "remove item: %v", err)
	}
	return nil
}

func (s *RedisWorkingStore) allIDs(ctx context.Context) ([]string, error) {
	return s.client.ZRange(ctx, s.createdKey(), 0, -1).Result()
}

func (s *RedisWorkingStore) QueryItems(ctx context.Context, q memory.ItemQuery) ([]*memory.WorkingMemoryItem, error) {
	ids, err := s.allIDs(ctx)
	if err != nil {
		return nil, types.Errorf(types.ErrStorage, "list items: %v", err)
	}
	results := make([]*memory.WorkingMemoryItem, 0)
	for _, id := range ids {
		item, err := s.load(ctx, id)
		if err != nil {
			continue
		}
		if q.Pattern != "" && !strings.Contains(strings.ToLower(item.Content), strings.ToLower(q.Pattern)) {
			continue
		}
		if q.MinImportance > 0 && item.Importance() < q.MinImportance {
			continue
		}
		results = append(results, item)
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	return results, nil
}

func (s *RedisWorkingStore) GetConsolidationCandidates(ctx context.Context, ageThreshold time.Duration) ([]*memory.WorkingMemoryItem, error) {
	cutoff := time.Now().Add(-ageThreshold).UnixNano()
	ids, err := s.client.ZRangeByScore(ctx, s.createdKey(), &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", cutoff)}).Result()
	if err != nil {
		return nil, types.Errorf(types.ErrStorage, "scan candidates: %v", err)
	}
	candidates := make([]*memory.WorkingMemoryItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.load(ctx, id)
		if err != nil {
			continue
		}
		candidates = append(candidates, item)
	}
	return candidates, nil
}

func (s *RedisWorkingStore) PruneLowImportance(ctx context.Context, threshold float64) ([]string, error) {
	ids, err := s.allIDs(ctx)
	if err != nil {
		return nil, types.Errorf(types.ErrStorage, "list items: %v", err)
	}
	removed := make([]string, 0)
	for _, id := range ids {
		item, err := s.load(ctx, id)
		if err != nil {
			continue
		}
		if item.Importance() < threshold {
			if err := s.RemoveItem(ctx, id); err == nil {
				removed = append(removed, id)
			}
		}
	}
	return removed, nil
}

func (s *RedisWorkingStore) Stats(ctx context.Context) (memory.Stats, error) {
	count, err := s.client.ZCard(ctx, s.createdKey()).Result()
	if err != nil {
		return memory.Stats{}, types.Errorf(types.ErrStorage, "count items: %v", err)
	}
	return memory.Stats{TotalItems: int(count)}, nil
}

var _ memory.WorkingMemoryPort = (*RedisWorkingStore)(nil)
