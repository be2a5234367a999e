package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"weather-app/internal/metrics"
)

// KV：CachedFetcher 使用的字符串存储
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisKV：将 go-redis 客户端适配为 KV；redis.Nil 视为未命中
type RedisKV struct {
	rc *redis.Client
}

func NewRedisKV(rc *redis.Client) *RedisKV { return &RedisKV{rc: rc} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := r.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rc.Set(ctx, key, value, ttl).Err()
}

// 文档注释：按规范化地名缓存已校验的预报
// 约束：只缓存成功结果；存储读写失败时降级为直接请求，不影响返回。
type CachedFetcher struct {
	next   Fetcher
	kv     KV
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFetcher(next Fetcher, kv KV, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, kv: kv, ttl: ttl, logger: logger.With("component", "forecast-cache")}
}

// CacheKey 合并空白并转小写（"Tel Aviv" 与 " tel  aviv " 共用一个条目）
func CacheKey(place string) string {
	return "forecast:" + strings.ToLower(strings.Join(strings.Fields(place), " "))
}

func (c *CachedFetcher) Fetch(ctx context.Context, place string) (*Report, error) {
	key := CacheKey(place)
	if s, ok, err := c.kv.Get(ctx, key); err != nil {
		c.logger.Warn("forecast_cache_get_error", "key", key, "err", err)
	} else if ok {
		var rep Report
		if err := json.Unmarshal([]byte(s), &rep); err == nil {
			metrics.ForecastCacheHitsTotal.Inc()
			return &rep, nil
		}
		c.logger.Warn("forecast_cache_decode_error", "key", key)
	}
	metrics.ForecastCacheMissesTotal.Inc()

	rep, err := c.next.Fetch(ctx, place)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rep); err == nil {
		if err := c.kv.Set(ctx, key, string(b), c.ttl); err != nil {
			c.logger.Warn("forecast_cache_set_error", "key", key, "err", err)
		}
	}
	return rep, nil
}
