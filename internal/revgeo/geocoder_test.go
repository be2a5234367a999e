package revgeo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"weather-app/internal/metrics"
)

func TestGeocoderCache(t *testing.T) {
	g := NewGeocoder(loadFixture(t), 16)
	c := Coordinate{32.0853, 34.7818}

	hits := testutil.ToFloat64(metrics.LocateCacheHitsTotal)
	misses := testutil.ToFloat64(metrics.LocateCacheMissesTotal)
	if got := g.Locate(c); got != "Israel" {
		t.Fatalf("expected Israel, got %q", got)
	}
	if got := g.Locate(c); got != "Israel" {
		t.Fatalf("expected Israel from cache, got %q", got)
	}
	if got := testutil.ToFloat64(metrics.LocateCacheMissesTotal) - misses; got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LocateCacheHitsTotal) - hits; got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
}

func TestGeocoderCacheBorderNeighbours(t *testing.T) {
	sq := orb.MultiPolygon{{{{10, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 0}}}}
	ix := NewIndex("mem", []CountryBoundary{NewCountryBoundary("Square", sq)})
	g := NewGeocoder(ix, 16)
	outside := Coordinate{Latitude: 5, Longitude: 10 - 1e-9}
	inside := Coordinate{Latitude: 5, Longitude: 10 + 1e-9}
	if got := g.Locate(outside); got != NotFound {
		t.Fatalf("expected %q outside, got %q", NotFound, got)
	}
	if got := g.Locate(inside); got != "Square" {
		t.Errorf("expected Square inside after neighbour lookup, got %q", got)
	}
	if got := g.Locate(outside); got != NotFound {
		t.Errorf("expected %q outside from cache, got %q", NotFound, got)
	}
}

func TestCoordinateGeohash(t *testing.T) {
	got := Coordinate{Latitude: 32.0853, Longitude: 34.7818}.Geohash()
	if len(got) != GeohashPrecision || got[:4] != "sv8w" {
		t.Errorf("expected sv8w-prefixed %d-char geohash, got %q", GeohashPrecision, got)
	}
}

func TestGeocoderWithoutCacheMatchesIndex(t *testing.T) {
	ix := loadFixture(t)
	cached := NewGeocoder(ix, 8)
	plain := NewGeocoder(ix, 0)
	points := []Coordinate{
		{32.0853, 34.7818}, {48.8566, 2.3522}, {-29.3151, 27.4869}, {0, 0}, {33.0, 33.5},
	}
	for _, c := range points {
		want := ix.Locate(c)
		for i := 0; i < 2; i++ {
			if got := cached.Locate(c); got != want {
				t.Errorf("cached Locate(%v): expected %q, got %q", c, want, got)
			}
			if got := plain.Locate(c); got != want {
				t.Errorf("plain Locate(%v): expected %q, got %q", c, want, got)
			}
		}
	}
}

func TestGeocoderNilIndex(t *testing.T) {
	g := NewGeocoder(nil, 8)
	if got := g.Locate(Coordinate{1, 1}); got != NotFound {
		t.Errorf("expected %q, got %q", NotFound, got)
	}
	if _, _, ok := g.Nearest(Coordinate{1, 1}); ok {
		t.Error("expected no nearest country without an index")
	}
}

func TestGeocoderNearest(t *testing.T) {
	g := NewGeocoder(loadFixture(t), 0)

	name, km, ok := g.Nearest(Coordinate{Latitude: 33.0, Longitude: 33.5})
	if !ok {
		t.Fatal("expected a nearest country off the Levant coast")
	}
	if name != "Israel" {
		t.Errorf("expected Israel, got %q", name)
	}
	if km <= 0 || km > 400 {
		t.Errorf("expected a distance under 400km, got %.1f", km)
	}

	if _, _, ok := g.Nearest(Coordinate{Latitude: 30, Longitude: -30}); ok {
		t.Error("expected no country within range of the mid Atlantic")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2)
	c.Set("a", "A")
	c.Set("b", "B")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", "C")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted as least recently used")
	}
	if v, ok := c.Get("a"); !ok || v != "A" {
		t.Errorf("expected a=A, got %q %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}
