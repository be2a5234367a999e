package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"weather-app/internal/logger"
	"weather-app/internal/metrics"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：在流量峰值时对入口进行限速，避免上游天气接口额度被打满。
// 约束：不做队列排队，仅丢弃并返回 429；桶容量等于每秒速率。
type Limiter struct {
	tb *rate.Limiter
}

func NewLimiter(qps int) *Limiter {
	if qps <= 0 {
		qps = 200
	}
	return &Limiter{tb: rate.NewLimiter(rate.Limit(qps), qps)}
}

func (l *Limiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.tb.Allow() {
			metrics.RateLimitedTotal.Inc()
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap 按开关决定是否限流；/metrics 与 /healthz 也计入同一个桶
func Wrap(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled {
		return next
	}
	return NewLimiter(qps).Wrap(next)
}
