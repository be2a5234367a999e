// 包 config：从 .env 文件与环境变量加载进程配置
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 文档注释：服务与命令行工具启动时读取的全部配置
// 约束：键名为环境变量名的小写形式（ADDR → addr）。
type Config struct {
	Addr   string `mapstructure:"addr"`
	APIKey string `mapstructure:"api_key"`

	WeatherBaseURL    string  `mapstructure:"weather_base_url"`
	ForecastDays      int     `mapstructure:"forecast_days"`
	ProviderTimeoutMs int     `mapstructure:"provider_timeout_ms"`
	ProviderRPS       float64 `mapstructure:"provider_rps"`
	ProviderBurst     int     `mapstructure:"provider_burst"`

	BoundaryPath      string `mapstructure:"boundary_path"`
	BoundaryNameField string `mapstructure:"boundary_name_field"`
	LocateCacheSize   int    `mapstructure:"locate_cache_size"`

	RateLimitEnabled bool `mapstructure:"rate_limit_enabled"`
	RateLimitQPS     int  `mapstructure:"rate_limit_qps"`

	ForecastCacheTTLSeconds int    `mapstructure:"forecast_cache_ttl_s"`
	RedisEnabled            bool   `mapstructure:"redis_enabled"`
	RedisHost               string `mapstructure:"redis_host"`
	RedisPort               string `mapstructure:"redis_port"`
	RedisPass               string `mapstructure:"redis_pass"`
	RedisDB                 int    `mapstructure:"redis_db"`

	SearchLogEnabled bool   `mapstructure:"search_log_enabled"`
	PGHost           string `mapstructure:"pg_host"`
	PGPort           string `mapstructure:"pg_port"`
	PGUser           string `mapstructure:"pg_user"`
	PGPassword       string `mapstructure:"pg_password"`
	PGDB             string `mapstructure:"pg_db"`
	PGSSLMode        string `mapstructure:"pg_sslmode"`

	GeoIPCityDB string `mapstructure:"geoip_city_db"`

	TLSEnable   bool   `mapstructure:"tls_enable"`
	TLSCertPath string `mapstructure:"tls_cert_path"`
	TLSKeyPath  string `mapstructure:"tls_key_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"addr":                 ":5000",
	"api_key":              "",
	"weather_base_url":     "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
	"forecast_days":        7,
	"provider_timeout_ms":  0,
	"provider_rps":         0.0,
	"provider_burst":       1,
	"boundary_path":        filepath.Join("countries_data", "ne_110m_admin_0_countries.shp"),
	"boundary_name_field":  "ADMIN",
	"locate_cache_size":    4096,
	"rate_limit_enabled":   false,
	"rate_limit_qps":       200,
	"forecast_cache_ttl_s": 0,
	"redis_enabled":        false,
	"redis_host":           "127.0.0.1",
	"redis_port":           "6379",
	"redis_pass":           "",
	"redis_db":             0,
	"search_log_enabled":   false,
	"pg_host":              "localhost",
	"pg_port":              "5432",
	"pg_user":              "postgres",
	"pg_password":          "",
	"pg_db":                "weather",
	"pg_sslmode":           "disable",
	"geoip_city_db":        "",
	"tls_enable":           false,
	"tls_cert_path":        filepath.Join("data", "certs", "server.crt"),
	"tls_key_path":         filepath.Join("data", "certs", "server.key"),
	"log_level":            "info",
	"log_format":           "text",
}

// 文档注释：加载配置
// 流程：.env 文件写入进程环境（已存在的环境变量优先）→ viper 按默认值与环境变量解析 → Validate
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", filepath.Join("data", "env", ".env")}
	}
	for _, f := range envFiles {
		// 文件缺失忽略
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 拒绝无法启动的配置
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: ADDR must not be empty")
	}
	if c.BoundaryPath == "" {
		return fmt.Errorf("config: BOUNDARY_PATH must not be empty")
	}
	if c.ForecastDays <= 0 {
		return fmt.Errorf("config: FORECAST_DAYS must be positive, got %d", c.ForecastDays)
	}
	if c.ProviderRPS < 0 {
		return fmt.Errorf("config: PROVIDER_RPS must not be negative")
	}
	return nil
}

// ProviderTimeout：出站请求超时；0 表示不设超时
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMs) * time.Millisecond
}

// ForecastCacheTTL：预报缓存有效期；0 表示关闭缓存
func (c *Config) ForecastCacheTTL() time.Duration {
	return time.Duration(c.ForecastCacheTTLSeconds) * time.Second
}

// RedisAddr 返回 host:port
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// PostgresDSN 由 PG_* 配置拼出 lib/pq URL 形式的 DSN
func (c *Config) PostgresDSN() string {
	dsn := "postgres://" + c.PGUser
	if c.PGPassword != "" {
		dsn += ":" + c.PGPassword
	}
	dsn += "@" + c.PGHost + ":" + c.PGPort + "/" + c.PGDB + "?sslmode=" + c.PGSSLMode
	return dsn
}
