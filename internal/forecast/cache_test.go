package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"weather-app/internal/metrics"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

type countingFetcher struct {
	calls int
	rep   *Report
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, place string) (*Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rep, nil
}

func sampleReport() *Report {
	return &Report{
		Latitude:  48.8566,
		Longitude: 2.3522,
		Days:      []Day{{Date: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), TempMax: 18, TempMin: 9, Humidity: 70}},
	}
}

func TestCachedFetcherHit(t *testing.T) {
	next := &countingFetcher{rep: sampleReport()}
	kv := newMemKV()
	c := NewCachedFetcher(next, kv, time.Minute, discardLogger())

	hits := testutil.ToFloat64(metrics.ForecastCacheHitsTotal)
	if _, err := c.Fetch(context.Background(), "Paris"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	rep, err := c.Fetch(context.Background(), "  paris ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.calls)
	}
	if rep.Latitude != 48.8566 || len(rep.Days) != 1 || !rep.Days[0].Date.Equal(sampleReport().Days[0].Date) {
		t.Errorf("unexpected cached report %+v", rep)
	}
	if got := testutil.ToFloat64(metrics.ForecastCacheHitsTotal) - hits; got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if kv.ttls[CacheKey("Paris")] != time.Minute {
		t.Errorf("expected ttl 1m, got %v", kv.ttls[CacheKey("Paris")])
	}
}

func TestCachedFetcherDoesNotCacheFailures(t *testing.T) {
	next := &countingFetcher{err: &FetchError{Place: "not", Kind: KindStatus, StatusCode: 400, Err: errors.New("bad")}}
	kv := newMemKV()
	c := NewCachedFetcher(next, kv, time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), "not"); !IsFetchError(err) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	}
	if next.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", next.calls)
	}
	if len(kv.data) != 0 {
		t.Errorf("expected empty cache, got %v", kv.data)
	}
}

func TestCachedFetcherStoreDown(t *testing.T) {
	next := &countingFetcher{rep: sampleReport()}
	kv := newMemKV()
	kv.err = errors.New("connection refused")
	c := NewCachedFetcher(next, kv, time.Minute, discardLogger())

	if _, err := c.Fetch(context.Background(), "Paris"); err != nil {
		t.Fatalf("expected fallback to upstream, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.calls)
	}
}

func TestCacheKey(t *testing.T) {
	tests := map[string]string{
		"Tel Aviv":     "forecast:tel aviv",
		"  TEL   aviv": "forecast:tel aviv",
		"London":       "forecast:london",
	}
	for in, want := range tests {
		if got := CacheKey(in); got != want {
			t.Errorf("CacheKey(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestRateLimitedFetcher(t *testing.T) {
	next := &countingFetcher{rep: sampleReport()}
	f := NewRateLimitedFetcher(next, 1, 1)

	if _, err := f.Fetch(context.Background(), "Paris"); err != nil {
		t.Fatalf("expected first call to pass, got %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, "Paris")
	if !IsFetchError(err) {
		t.Fatalf("expected FetchError when the wait exceeds the deadline, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.calls)
	}
}
