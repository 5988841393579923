package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/hydrotrack-bot/server/internal/core/error"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

// Cached keeps successful lookups in Redis. The cache is advisory: Redis
// failures are logged and the upstream lookup is used instead.
type Cached struct {
	next model.NutritionLookup
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewCached(next model.NutritionLookup, rdb redis.Cmdable, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func (c *Cached) foodKey(productName string) string {
	return fmt.Sprintf("nutrition:food:%s", normalizeName(productName))
}

func (c *Cached) Query(ctx context.Context, productName string) (model.FoodInfo, error) {
	key := c.foodKey(productName)

	info, err := c.load(ctx, key)
	switch {
	case err == nil:
		logx.Debug().Str("key", key).Msg("nutrition cache hit")
		return info, nil
	case errx.IsKind(err, errx.KindNotFound):
	default:
		logx.Warn().Err(err).Str("key", key).Msg("nutrition cache read failed")
	}

	info, err = c.next.Query(ctx, productName)
	if err != nil {
		return model.FoodInfo{}, err
	}
	if info.Usable() {
		c.store(ctx, key, info)
	}
	return info, nil
}

func (c *Cached) load(ctx context.Context, key string) (model.FoodInfo, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return model.FoodInfo{}, errx.WrapRedis(err)
	}
	var info model.FoodInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return model.FoodInfo{}, fmt.Errorf("unmarshal cached food: %w", err)
	}
	if !info.Usable() {
		return model.FoodInfo{}, errx.New(errx.KindNotFound, "cached food unusable", nil)
	}
	return info, nil
}

func (c *Cached) store(ctx context.Context, key string, info model.FoodInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to marshal food info")
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Dur("ttl", c.ttl).Msg("failed to cache food info")
	}
}

var _ model.NutritionLookup = (*Cached)(nil)
