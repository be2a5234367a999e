// 包 store: 提供与 PostgreSQL 的数据访问层，记录城市查询并读取热门城市与统计
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/lib/pq"

	"weather-app/internal/logger"
)

// Store: 数据库访问入口，持有连接池并提供写入/统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Search: 一次城市查询的记录
type Search struct {
	City    string
	Country string
	OK      bool
}

// normalizeCity: 合并空白并转小写，作为统计键
func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// 文档注释：记录一次查询并累加统计
// 约束：城市名为空时静默跳过；统计表更新失败不影响明细写入结果。
func (s *Store) RecordSearch(ctx context.Context, q Search) error {
	key := normalizeCity(q.City)
	if key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO _weather_searches(city, city_key, country, ok, searched_at)
        VALUES($1, $2, $3, $4, now())`, strings.TrimSpace(q.City), key, q.Country, q.OK)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE _weather_stats_total SET total_searches=total_searches+1 WHERE id=1"); err != nil {
		logger.L().Debug("stats_total_update_failed", "err", err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO _weather_stats_daily(day, searches) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET searches=_weather_stats_daily.searches+1"); err != nil {
		logger.L().Debug("stats_daily_update_failed", "err", err)
	}
	logger.L().Debug("search_recorded", "city", key, "country", q.Country, "ok", q.OK)
	return nil
}

// CityCount: 热门城市条目，Name 取该城市最近一次成功查询时的原始写法
type CityCount struct {
	Name    string
	Country string
	Count   int64
}

// 文档注释：按成功查询次数返回前 limit 个城市
// 参数：limit<=0 时取 5。
func (s *Store) TopCities(ctx context.Context, limit int) ([]CityCount, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT (ARRAY_AGG(city ORDER BY searched_at DESC))[1],
               (ARRAY_AGG(country ORDER BY searched_at DESC))[1],
               COUNT(*)
        FROM _weather_searches
        WHERE ok = TRUE
        GROUP BY city_key
        ORDER BY COUNT(*) DESC, city_key ASC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CityCount
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.Name, &c.Country, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Totals: 统计返回结构，包含累计与当日查询次数
type Totals struct {
	Total int64
	Today int64
}

// GetTotals: 读取累计与当日查询次数
// 约束：统计行不存在时按 0 返回；其余数据库错误原样返回
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, "SELECT total_searches FROM _weather_stats_total WHERE id=1").Scan(&t.Total)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT searches FROM _weather_stats_daily WHERE day=current_date").Scan(&t.Today)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today)
	return &t, nil
}
