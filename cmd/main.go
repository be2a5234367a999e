// 程序入口：读取配置、加载国家边界、初始化可选依赖并启动页面服务
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-app/internal/api"
	"weather-app/internal/config"
	"weather-app/internal/forecast"
	"weather-app/internal/geoip"
	"weather-app/internal/logger"
	"weather-app/internal/middleware"
	"weather-app/internal/migrate"
	"weather-app/internal/revgeo"
	"weather-app/internal/store"
	"weather-app/internal/utils"
	"weather-app/internal/version"
	"weather-app/internal/web"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run 完成全部初始化并阻塞到服务退出；错误已在返回前记录日志，延迟关闭的连接在返回时释放
func run() error {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		return err
	}
	// 日志初始化
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	l.Debug("log_init_ok", "commit", version.Commit)
	if cfg.APIKey == "" {
		l.Warn("api_key_missing", "hint", "set API_KEY in the environment or .env")
	}

	// 边界数据加载失败视为致命错误
	ix, err := revgeo.Load(cfg.BoundaryPath, cfg.BoundaryNameField, "NAME")
	if err != nil {
		l.Error("boundary_load_error", "err", err)
		return err
	}
	geo := revgeo.NewGeocoder(ix, cfg.LocateCacheSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fetcher forecast.Fetcher = forecast.NewClient(cfg.APIKey, cfg.WeatherBaseURL, cfg.ProviderTimeout(), l)
	if cfg.ProviderRPS > 0 {
		fetcher = forecast.NewRateLimitedFetcher(fetcher, cfg.ProviderRPS, cfg.ProviderBurst)
		l.Info("provider_rate_limit", "rps", cfg.ProviderRPS, "burst", cfg.ProviderBurst)
	}
	if cfg.RedisEnabled && cfg.ForecastCacheTTL() > 0 {
		rc := utils.OpenRedis(cfg.RedisAddr(), cfg.RedisPass, cfg.RedisDB)
		if err := utils.PingRedis(ctx, rc); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = rc.Close()
		} else {
			l.Info("redis_ping_ok", "addr", cfg.RedisAddr())
			defer rc.Close()
			fetcher = forecast.NewCachedFetcher(fetcher, forecast.NewRedisKV(rc), cfg.ForecastCacheTTL(), l)
		}
	} else {
		l.Info("redis_disabled")
	}

	deps := web.Deps{
		Fetcher: fetcher,
		Locator: geo,
		Days:    cfg.ForecastDays,
		Logger:  l,
		Health: func() string {
			return fmt.Sprintf("boundaries=%d commit=%s", ix.Len(), version.Commit)
		},
	}

	if cfg.SearchLogEnabled {
		db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN())
		if err != nil {
			l.Error("db_open_error", "err", err)
		} else if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			_ = db.Close()
		} else {
			l.Info("db_open_ok")
			defer db.Close()
			deps.SearchLog = store.AttachDB(db)
		}
	}

	if cfg.GeoIPCityDB != "" {
		if r, err := geoip.Open(cfg.GeoIPCityDB); err != nil {
			l.Error("geoip_open_error", "path", cfg.GeoIPCityDB, "err", err)
		} else {
			defer r.Close()
			deps.Visitors = r
		}
	}

	h, err := web.New(deps)
	if err != nil {
		l.Error("web_init_error", "err", err)
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/", h.Routes())
	mux.Handle("/api/", http.StripPrefix("/api", api.BuildRoutes(geo, fetcher, cfg.ForecastDays)))
	handler := logger.AccessMiddleware(l, web.ClientIP)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimitEnabled, cfg.RateLimitQPS)
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnable {
			if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "weather-app.local"); err != nil {
				errCh <- err
				return
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
			errCh <- s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		l.Info("listening", "addr", cfg.Addr)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			return err
		}
	case <-ctx.Done():
		l.Info("shutdown_begin")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
		l.Info("shutdown_done")
	}
	return nil
}
