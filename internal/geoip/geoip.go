// 包 geoip：基于 MaxMind City 库将访客 IP 解析为城市名，用于首页预填
package geoip

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"weather-app/internal/logger"
)

// Resolver：GeoIP2/GeoLite2 City 读取器；nil 接收者始终返回空串
type Resolver struct {
	db *geoip2.Reader
}

// Open 打开 path 处的 .mmdb 文件
func Open(path string) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", db.Metadata().DatabaseType)
	return &Resolver{db: db}, nil
}

func (r *Resolver) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// City 返回英文城市名；私有、回环、无效或库中不存在的地址返回空串
func (r *Resolver) City(ip string) string {
	if r == nil || r.db == nil {
		return ""
	}
	parsed := parseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return ""
	}
	rec, err := r.db.City(parsed)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", ip, "err", err)
		return ""
	}
	return rec.City.Names["en"]
}

// parseIP 同时接受裸地址与 host:port
func parseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return net.ParseIP(strings.Trim(host, "[]"))
	}
	return nil
}
