package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Day：预报中的一个自然日
type Day struct {
	Date     time.Time `json:"date"`
	TempMax  float64   `json:"tempmax"`
	TempMin  float64   `json:"tempmin"`
	Humidity float64   `json:"humidity"`
}

// 文档注释：经过校验的服务商响应
// 约束：Days 保持服务商返回顺序；经纬度已校验范围。
type Report struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	ResolvedAddress string  `json:"resolvedAddress,omitempty"`
	Timezone        string  `json:"timezone,omitempty"`
	Days            []Day   `json:"days"`
}

// Fetcher：按地名获取预报；客户端、限流与缓存包装均实现该接口
type Fetcher interface {
	Fetch(ctx context.Context, place string) (*Report, error)
}

// FirstDays 按原顺序返回前 n 天的副本；n<0 视为 0
func FirstDays(days []Day, n int) []Day {
	if n < 0 {
		n = 0
	}
	if len(days) > n {
		days = days[:n]
	}
	out := make([]Day, len(days))
	copy(out, days)
	return out
}

// FetchError 的失败类别
const (
	KindStatus  = "status"
	KindNetwork = "network"
	KindPayload = "payload"
)

// 文档注释：某地名的预报获取失败
// 约束：Kind 为 status（非 2xx，StatusCode 有效）、network（传输失败）或 payload（解码或校验失败）。
type FetchError struct {
	Place      string
	Kind       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch forecast for %q: provider returned status %d: %v", e.Place, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch forecast for %q: %s: %v", e.Place, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError 判断 err 是否为（或包装了）*FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// apiResponse 对应 timeline 接口请求的字段
// 约束：使用指针区分字段缺失与零值
type apiResponse struct {
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ResolvedAddress string   `json:"resolvedAddress"`
	Timezone        string   `json:"timezone"`
	Days            []apiDay `json:"days"`
}

type apiDay struct {
	Datetime *string  `json:"datetime"`
	TempMax  *float64 `json:"tempmax"`
	TempMin  *float64 `json:"tempmin"`
	Humidity *float64 `json:"humidity"`
}

const dateLayout = "2006-01-02"

// toReport 校验解码结果并转换为 Report
func (a *apiResponse) toReport() (*Report, error) {
	if a.Latitude == nil || a.Longitude == nil {
		return nil, errors.New("missing latitude/longitude")
	}
	if *a.Latitude < -90 || *a.Latitude > 90 || *a.Longitude < -180 || *a.Longitude > 180 {
		return nil, fmt.Errorf("coordinates out of range: %f,%f", *a.Latitude, *a.Longitude)
	}
	if a.Days == nil {
		return nil, errors.New("missing days")
	}
	r := &Report{
		Latitude:        *a.Latitude,
		Longitude:       *a.Longitude,
		ResolvedAddress: a.ResolvedAddress,
		Timezone:        a.Timezone,
		Days:            make([]Day, 0, len(a.Days)),
	}
	for i, d := range a.Days {
		if d.Datetime == nil || d.TempMax == nil || d.TempMin == nil || d.Humidity == nil {
			return nil, fmt.Errorf("day %d: missing datetime/tempmax/tempmin/humidity", i)
		}
		date, err := time.Parse(dateLayout, *d.Datetime)
		if err != nil {
			return nil, fmt.Errorf("day %d: bad datetime %q: %w", i, *d.Datetime, err)
		}
		if *d.Humidity < 0 || *d.Humidity > 100 {
			return nil, fmt.Errorf("day %d: humidity %f out of range", i, *d.Humidity)
		}
		r.Days = append(r.Days, Day{Date: date, TempMax: *d.TempMax, TempMin: *d.TempMin, Humidity: *d.Humidity})
	}
	return r, nil
}
