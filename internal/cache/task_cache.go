package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	dom "taskmanager/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix = "tasks:list:"
	keyGeneration = keyListPrefix + "gen"

	defaultTTL = time.Minute
)

// TaskCache caches list results in Redis, keyed by list generation and the
// normalized query. Writes bump the generation, so a list computed before a
// write can never be read after it.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache. Entries always expire; a ttl <= 0
// means one minute.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current list generation, 0 before the first write.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func listKey(gen int64, q dom.ListQuery) string {
	return keyListPrefix + strconv.FormatInt(gen, 10) + ":" + q.Key()
}

// GetList returns the cached result for q in generation gen. ok is false on a miss.
func (c *TaskCache) GetList(ctx context.Context, gen int64, q dom.ListQuery) (list []dom.Task, ok bool, err error) {
	b, err := c.rdb.Get(ctx, listKey(gen, q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, false, err
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, true, nil
}

// SetList stores the result for q under generation gen.
func (c *TaskCache) SetList(ctx context.Context, gen int64, q dom.ListQuery, list []dom.Task) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(gen, q), b, c.ttl).Err()
}

// InvalidateAll starts a new generation and sweeps entries of older ones.
func (c *TaskCache) InvalidateAll(ctx context.Context) error {
	gen, err := c.rdb.Incr(ctx, keyGeneration).Result()
	if err != nil {
		return err
	}

	iter := c.rdb.Scan(ctx, 0, keyListPrefix+"*", 100).Iterator()
	var stale []string
	for iter.Next(ctx) {
		key := iter.Val()
		if key == keyGeneration {
			continue
		}
		raw, _, _ := strings.Cut(strings.TrimPrefix(key, keyListPrefix), ":")
		if g, err := strconv.ParseInt(raw, 10, 64); err == nil && g < gen {
			stale = append(stale, key)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, stale...).Err()
}
