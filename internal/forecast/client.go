package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-app/internal/metrics"
)

// 接口文档：https://www.visualcrossing.com/resources/documentation/weather-api/timeline-weather-api/
// 请求示例：https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline/Tel%20Aviv/next7days?unitGroup=metric&elements=datetime,tempmax,tempmin,humidity&include=days&key=KEY&contentType=json
const (
	DefaultBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"
	period         = "next7days"
)

// 文档注释：Visual Crossing timeline 接口客户端
// 约束：只读请求、不重试；单位固定为 metric，只请求日期/最高温/最低温/湿度。
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient 构造客户端；timeout 为 0 时不设超时
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.With("component", "forecast-client"),
	}
}

func (c *Client) requestURL(place string) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + url.PathEscape(place) + "/" + period)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("unitGroup", "metric")
	q.Set("elements", "datetime,tempmax,tempmin,humidity")
	q.Set("include", "days")
	q.Set("key", c.apiKey)
	q.Set("contentType", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch 请求地名的预报；所有失败均以 *FetchError 返回
func (c *Client) Fetch(ctx context.Context, place string) (*Report, error) {
	start := time.Now()
	metrics.ProviderRequestsTotal.Inc()
	defer func() {
		metrics.ProviderDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	rep, err := c.fetch(ctx, place)
	if err != nil {
		metrics.ProviderFailTotal.Inc()
		c.logger.Warn("forecast_fetch_error", "place", place, "err", err)
		return nil, err
	}
	c.logger.Debug("forecast_fetch_ok",
		"place", place,
		"lat", rep.Latitude,
		"lon", rep.Longitude,
		"days", len(rep.Days),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

func (c *Client) fetch(ctx context.Context, place string) (*Report, error) {
	if strings.TrimSpace(place) == "" {
		return nil, &FetchError{Place: place, Kind: KindPayload, Err: fmt.Errorf("empty place name")}
	}
	u, err := c.requestURL(place)
	if err != nil {
		return nil, &FetchError{Place: place, Kind: KindNetwork, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Place: place, Kind: KindNetwork, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Place: place, Kind: KindNetwork, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Place:      place,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &FetchError{Place: place, Kind: KindPayload, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	rep, err := raw.toReport()
	if err != nil {
		return nil, &FetchError{Place: place, Kind: KindPayload, Err: err}
	}
	return rep, nil
}
