package forecast

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// 文档注释：出站请求令牌桶
// 约束：调用方阻塞到取得令牌或 ctx 结束；等待被取消时返回 network 类 FetchError。
type RateLimitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher 每秒 rps 次，突发 burst（<1 时取 1）
func NewRateLimitedFetcher(next Fetcher, rps float64, burst int) *RateLimitedFetcher {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedFetcher{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimitedFetcher) Fetch(ctx context.Context, place string) (*Report, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Place: place, Kind: KindNetwork, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.next.Fetch(ctx, place)
}

var (
	_ Fetcher = (*Client)(nil)
	_ Fetcher = (*RateLimitedFetcher)(nil)
	_ Fetcher = (*CachedFetcher)(nil)
)
