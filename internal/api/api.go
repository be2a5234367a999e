// 包 api：JSON 接口（坐标反查国家、城市预报），与页面路由分开注册，挂载到 /api 前缀
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"weather-app/internal/forecast"
	"weather-app/internal/logger"
	"weather-app/internal/metrics"
	"weather-app/internal/revgeo"
)

// Locator 与页面处理器使用同一个反地理编码器
type Locator interface {
	Locate(c revgeo.Coordinate) string
	Nearest(c revgeo.Coordinate) (string, float64, bool)
}

// 坐标反查结果：仅包含对外返回必要字段
type locateResult struct {
	Latitude   float64  `json:"lat"`
	Longitude  float64  `json:"lon"`
	Geohash    string   `json:"geohash"`
	Country    string   `json:"country"`
	Nearest    string   `json:"nearest,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type forecastDay struct {
	Date      string  `json:"datetime"`
	DayTemp   float64 `json:"day_temp"`
	NightTemp float64 `json:"night_temp"`
	Humidity  float64 `json:"humidity"`
}

type cityInfo struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type forecastResult struct {
	City     cityInfo      `json:"city_info"`
	Forecast []forecastDay `json:"forecast"`
}

type errorResult struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseCoord(r *http.Request) (revgeo.Coordinate, bool) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	c := revgeo.Coordinate{Latitude: lat, Longitude: lon}
	if err1 != nil || err2 != nil || !c.Valid() {
		return c, false
	}
	return c, true
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
// 约束：days<=0 时取 7
func BuildRoutes(geo Locator, fetcher forecast.Fetcher, days int) *http.ServeMux {
	if days <= 0 {
		days = 7
	}
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/locate", func(w http.ResponseWriter, r *http.Request) {
		defer metrics.ObserveRequest("/api/locate")()
		c, ok := parseCoord(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "lat and lon must be numbers within [-90,90] and [-180,180]"})
			return
		}
		res := locateResult{Latitude: c.Latitude, Longitude: c.Longitude, Geohash: c.Geohash(), Country: geo.Locate(c)}
		if res.Country == revgeo.NotFound {
			metrics.NotFoundTotal.Inc()
			if name, km, ok := geo.Nearest(c); ok {
				res.Nearest = name
				res.DistanceKm = &km
			}
		}
		logger.L().Debug("api_locate", "lat", c.Latitude, "lon", c.Longitude, "country", res.Country)
		writeJSON(w, http.StatusOK, res)
	})

	apiMux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		defer metrics.ObserveRequest("/api/forecast")()
		city := strings.Join(strings.Fields(r.URL.Query().Get("query")), " ")
		if city == "" {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "query is required"})
			return
		}
		metrics.CitySearchCount.WithLabelValues(city).Inc()
		rep, err := fetcher.Fetch(r.Context(), city)
		if err != nil {
			logger.L().Warn("api_forecast_failed", "city", city, "err", err)
			writeJSON(w, http.StatusBadGateway, errorResult{Error: "Failed to fetch data for '" + city + "'. Please try again."})
			return
		}
		out := forecastResult{City: cityInfo{
			Name:    city,
			Country: geo.Locate(revgeo.Coordinate{Latitude: rep.Latitude, Longitude: rep.Longitude}),
		}}
		out.Forecast = make([]forecastDay, 0, days)
		for _, d := range forecast.FirstDays(rep.Days, days) {
			out.Forecast = append(out.Forecast, forecastDay{
				Date:      d.Date.Format("2006-01-02"),
				DayTemp:   d.TempMax,
				NightTemp: d.TempMin,
				Humidity:  d.Humidity,
			})
		}
		writeJSON(w, http.StatusOK, out)
	})

	return apiMux
}
