// 包 utils：Redis/PostgreSQL 连接与证书工具
package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"weather-app/internal/logger"
)

// OpenRedis：使用地址、密码与 DB 编号打开 Redis 客户端
// 约束：未配置地址时返回 nil
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_open", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// PingRedis：启动期探活，超时 2 秒
func PingRedis(ctx context.Context, rc *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rc.Ping(ctx).Err()
}
