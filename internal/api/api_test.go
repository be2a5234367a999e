package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"weather-app/internal/forecast"
	"weather-app/internal/revgeo"
)

type stubFetcher struct {
	rep *forecast.Report
	err error
}

func (s stubFetcher) Fetch(context.Context, string) (*forecast.Report, error) {
	return s.rep, s.err
}

func tenDays(lat, lon float64) *forecast.Report {
	rep := &forecast.Report{Latitude: lat, Longitude: lon}
	for i := 0; i < 10; i++ {
		rep.Days = append(rep.Days, forecast.Day{
			Date:     time.Date(2026, 10, 17+i, 0, 0, 0, 0, time.UTC),
			TempMax:  float64(25 + i),
			TempMin:  float64(15 + i),
			Humidity: 50,
		})
	}
	return rep
}

func newServer(t *testing.T, f forecast.Fetcher) *httptest.Server {
	t.Helper()
	ix, err := revgeo.Load(filepath.Join("..", "revgeo", "testdata", "countries.geojson"))
	if err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", BuildRoutes(revgeo.NewGeocoder(ix, 0), f, 7)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode
}

func TestLocate(t *testing.T) {
	srv := newServer(t, stubFetcher{})
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantCountry string
		wantNearest string
	}{
		{"tel aviv", "lat=32.0853&lon=34.7818", http.StatusOK, "Israel", ""},
		{"sea with hint", "lat=33&lon=33.5", http.StatusOK, revgeo.NotFound, "Israel"},
		{"open ocean", "lat=30&lon=-30", http.StatusOK, revgeo.NotFound, ""},
		{"missing lon", "lat=30", http.StatusBadRequest, "", ""},
		{"out of range", "lat=95&lon=0", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res locateResult
			code := getJSON(t, srv.URL+"/api/locate?"+tt.query, &res)
			if code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, code)
			}
			if res.Country != tt.wantCountry {
				t.Errorf("expected country %q, got %q", tt.wantCountry, res.Country)
			}
			if res.Nearest != tt.wantNearest {
				t.Errorf("expected nearest %q, got %q", tt.wantNearest, res.Nearest)
			}
			if tt.wantStatus == http.StatusOK && len(res.Geohash) != revgeo.GeohashPrecision {
				t.Errorf("expected %d-char geohash, got %q", revgeo.GeohashPrecision, res.Geohash)
			}
		})
	}
}

func TestForecast(t *testing.T) {
	srv := newServer(t, stubFetcher{rep: tenDays(32.0853, 34.7818)})
	var res forecastResult
	if code := getJSON(t, srv.URL+"/api/forecast?query=Tel+Aviv", &res); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if res.City.Name != "Tel Aviv" || res.City.Country != "Israel" {
		t.Errorf("unexpected city %+v", res.City)
	}
	if len(res.Forecast) != 7 {
		t.Fatalf("expected 7 days, got %d", len(res.Forecast))
	}
	if res.Forecast[0].Date != "2026-10-17" || res.Forecast[6].Date != "2026-10-23" {
		t.Errorf("unexpected date range %s..%s", res.Forecast[0].Date, res.Forecast[6].Date)
	}
	if res.Forecast[0].DayTemp != 25 || res.Forecast[0].NightTemp != 15 {
		t.Errorf("unexpected first day %+v", res.Forecast[0])
	}
}

func TestForecastErrors(t *testing.T) {
	srv := newServer(t, stubFetcher{err: &forecast.FetchError{Place: "not", Kind: forecast.KindStatus, StatusCode: 400, Err: errors.New("bad")}})

	var res errorResult
	if code := getJSON(t, srv.URL+"/api/forecast?query=not", &res); code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", code)
	}
	if res.Error != "Failed to fetch data for 'not'. Please try again." {
		t.Errorf("unexpected error %q", res.Error)
	}
	if code := getJSON(t, srv.URL+"/api/forecast", &res); code != http.StatusBadRequest {
		t.Errorf("expected 400 without query, got %d", code)
	}
}
