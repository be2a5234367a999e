// 包 web：页面路由（首页、查询、指标、健康检查）与模板渲染
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"weather-app/internal/forecast"
	"weather-app/internal/metrics"
	"weather-app/internal/revgeo"
	"weather-app/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Locator 将坐标解析为国家名，并在未命中时给出最近国家
type Locator interface {
	Locate(c revgeo.Coordinate) string
	Nearest(c revgeo.Coordinate) (string, float64, bool)
}

// SearchLog 记录查询并提供热门城市；可为空
type SearchLog interface {
	RecordSearch(ctx context.Context, q store.Search) error
	TopCities(ctx context.Context, limit int) ([]store.CityCount, error)
}

// VisitorCity 由访问者 IP 推断城市，用于预填查询框；可为空
type VisitorCity interface {
	City(ip string) string
}

// Deps 为 Handler 的依赖；Fetcher 与 Locator 必填
type Deps struct {
	Fetcher   forecast.Fetcher
	Locator   Locator
	Days      int
	SearchLog SearchLog
	Visitors  VisitorCity
	Health    func() string
	Logger    *slog.Logger
}

const popularLimit = 5

// CityInfo 为查询的城市及其解析出的国家
type CityInfo struct {
	Name    string
	Country string
}

// ForecastRow 为页面上的一天
type ForecastRow struct {
	Date      string
	DayTemp   float64
	NightTemp float64
	Humidity  float64
}

type nearestHint struct {
	Country    string
	DistanceKm float64
}

type page struct {
	Title    string
	Prefill  string
	Error    string
	City     *CityInfo
	Forecast []ForecastRow
	Nearest  *nearestHint
	Popular  []store.CityCount
}

type Handler struct {
	d    Deps
	tmpl *template.Template
	l    *slog.Logger
}

// 文档注释：构建页面处理器并解析内嵌模板
// 约束：Days<=0 时取 7；模板解析失败返回 error（启动期致命）
func New(d Deps) (*Handler, error) {
	if d.Fetcher == nil || d.Locator == nil {
		return nil, fmt.Errorf("web: fetcher and locator are required")
	}
	if d.Days <= 0 {
		d.Days = 7
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Handler{d: d, tmpl: t, l: d.Logger.With("component", "web")}, nil
}

// 构建并返回页面路由
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.home)
	mux.HandleFunc("/search", h.search)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", h.healthz)
	return mux
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	defer metrics.ObserveRequest("/")()
	p := page{Title: "Weather App"}
	if h.d.Visitors != nil {
		p.Prefill = h.d.Visitors.City(ClientIP(r))
	}
	if h.d.SearchLog != nil {
		top, err := h.d.SearchLog.TopCities(r.Context(), popularLimit)
		if err != nil {
			h.l.Warn("top_cities_error", "err", err)
		}
		p.Popular = top
	}
	h.render(w, http.StatusOK, "index.html", p)
}

// 文档注释：查询城市天气
// 背景：一次上游请求 → 坐标反查国家 → 取前 N 天组装页面；上游失败渲染错误页且不含预报列表。
// 约束：不重试；空查询重定向回首页。
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	defer metrics.ObserveRequest("/search")()
	city := strings.Join(strings.Fields(r.URL.Query().Get("query")), " ")
	if city == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	metrics.CitySearchCount.WithLabelValues(city).Inc()
	p := page{Title: "Weather in " + city, Prefill: city}

	start := time.Now()
	rep, err := h.d.Fetcher.Fetch(r.Context(), city)
	if err != nil {
		h.l.Warn("search_fetch_failed", "city", city, "err", err)
		h.record(r.Context(), store.Search{City: city, OK: false})
		p.Error = fmt.Sprintf("Failed to fetch data for '%s'. Please try again.", city)
		h.render(w, http.StatusOK, "weather.html", p)
		return
	}

	coord := revgeo.Coordinate{Latitude: rep.Latitude, Longitude: rep.Longitude}
	country := h.d.Locator.Locate(coord)
	if country == revgeo.NotFound {
		metrics.NotFoundTotal.Inc()
		if name, km, ok := h.d.Locator.Nearest(coord); ok {
			p.Nearest = &nearestHint{Country: name, DistanceKm: km}
		}
	}
	p.City = &CityInfo{Name: city, Country: country}
	for _, d := range forecast.FirstDays(rep.Days, h.d.Days) {
		p.Forecast = append(p.Forecast, ForecastRow{
			Date:      d.Date.Format("2006-01-02"),
			DayTemp:   d.TempMax,
			NightTemp: d.TempMin,
			Humidity:  d.Humidity,
		})
	}
	h.record(r.Context(), store.Search{City: city, Country: country, OK: true})
	h.l.Debug("search_ok",
		"city", city,
		"country", country,
		"lat", rep.Latitude,
		"lon", rep.Longitude,
		"days", len(p.Forecast),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	h.render(w, http.StatusOK, "weather.html", p)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	msg := "ok"
	if h.d.Health != nil {
		msg += " " + h.d.Health()
	}
	_, _ = w.Write([]byte(msg + "\n"))
}

func (h *Handler) record(ctx context.Context, q store.Search) {
	if h.d.SearchLog == nil {
		return
	}
	if err := h.d.SearchLog.RecordSearch(ctx, q); err != nil {
		h.l.Warn("search_log_error", "city", q.City, "err", err)
	}
}

// render 先写入缓冲区，模板出错时返回 500 而不是半截页面
func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		h.l.Error("template_render_error", "template", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
