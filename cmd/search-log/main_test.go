package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"weather-app/internal/store"
)

type fakeStats struct {
	top []store.CityCount
	err error
}

func (f fakeStats) TopCities(_ context.Context, limit int) ([]store.CityCount, error) {
	if len(f.top) > limit {
		return f.top[:limit], f.err
	}
	return f.top, f.err
}

func (f fakeStats) GetTotals(context.Context) (*store.Totals, error) {
	return &store.Totals{Total: 12, Today: 3}, f.err
}

func TestExec(t *testing.T) {
	st := fakeStats{top: []store.CityCount{
		{Name: "Tel Aviv", Country: "Israel", Count: 9},
		{Name: "Paris", Country: "France", Count: 3},
	}}
	tests := []struct {
		line     string
		want     string
		wantCont bool
	}{
		{"top", " 1. Tel Aviv | Israel | 9", true},
		{"top 1", " 1. Tel Aviv | Israel | 9\n", true},
		{"top zero", "usage: top", true},
		{"totals", "total=12 today=3", true},
		{"bogus", "unknown command", true},
		{"", "", true},
		{"exit", "", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		cont := exec(context.Background(), st, &out, tt.line)
		if cont != tt.wantCont {
			t.Errorf("%q: expected continue=%v, got %v", tt.line, tt.wantCont, cont)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%q: expected output to contain %q, got %q", tt.line, tt.want, out.String())
		}
	}
}

func TestExecStoreError(t *testing.T) {
	var out bytes.Buffer
	exec(context.Background(), fakeStats{err: errors.New("db down")}, &out, "top")
	if !strings.Contains(out.String(), "error: db down") {
		t.Errorf("expected the error to be printed, got %q", out.String())
	}
}
