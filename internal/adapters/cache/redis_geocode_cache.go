package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPrefix = "geocode:"

type redisEntry struct {
	Resolved bool    `json:"resolved"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
}

// RedisGeocodeCache shares geocode results between processes. Entries never
// expire; they are removed only by Clear.
type RedisGeocodeCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisGeocodeCache(client *redis.Client, prefix string, logger *zap.Logger) *RedisGeocodeCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisGeocodeCache{client: client, prefix: prefix, logger: logger}
}

// Connect parses redisURL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: ping: %w", err)
	}
	return client, nil
}

func (c *RedisGeocodeCache) Get(ctx context.Context, key string) (_ ports.GeocodeEntry, _ bool, err error) {
	defer obs.Time(ctx, c.logger, "geocode.cache.Get")(&err)

	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.GeocodeEntry{}, false, nil
	}
	if err != nil {
		return ports.GeocodeEntry{}, false, fmt.Errorf("get geocode cache %q: %w", key, err)
	}

	var e redisEntry
	if err := json.Unmarshal(val, &e); err != nil {
		return ports.GeocodeEntry{}, false, fmt.Errorf("get geocode cache %q: decode: %w", key, err)
	}

	c.logger.Debug("redis geocode cache hit", zap.String("key", key))
	return ports.GeocodeEntry{
		Resolved: e.Resolved,
		Coord:    domain.Coordinates{Lat: e.Lat, Lon: e.Lon},
	}, true, nil
}

func (c *RedisGeocodeCache) Set(ctx context.Context, key string, entry ports.GeocodeEntry) error {
	e := redisEntry{Resolved: entry.Resolved}
	if entry.Resolved {
		e.Lat = entry.Coord.Lat
		e.Lon = entry.Coord.Lon
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("set geocode cache %q: encode: %w", key, err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("set geocode cache %q: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the cache prefix.
func (c *RedisGeocodeCache) Clear(ctx context.Context) error {
	var deleted int
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear geocode cache: delete keys: %w", err)
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("clear geocode cache: scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear geocode cache: delete keys: %w", err)
		}
		deleted += len(batch)
	}

	c.logger.Info("redis geocode cache cleared", zap.Int("keys_deleted", deleted))
	return nil
}
