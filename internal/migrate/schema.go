package migrate

import (
	"database/sql"

	"weather-app/internal/logger"
)

// 背景：首次运行自动创建查询日志与统计表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；可重复执行
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _weather_searches (
            id BIGSERIAL PRIMARY KEY,
            city TEXT NOT NULL,
            city_key TEXT NOT NULL,
            country TEXT NOT NULL DEFAULT '',
            ok BOOLEAN NOT NULL,
            searched_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_weather_searches_key ON _weather_searches(city_key) WHERE ok`,
		`CREATE INDEX IF NOT EXISTS idx_weather_searches_time ON _weather_searches(searched_at)`,
		`CREATE TABLE IF NOT EXISTS _weather_stats_total (
            id INT PRIMARY KEY,
            total_searches BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _weather_stats_daily (
            day DATE PRIMARY KEY,
            searches BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _weather_stats_total(id, total_searches)
         VALUES(1, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
