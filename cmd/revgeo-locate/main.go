// 反地理编码命令行：加载国家边界并输出坐标所在国家
//
//	revgeo-locate -lat 32.0853 -lon 34.7818
//	printf '32.0853,34.7818\n48.8566 2.3522\n' | revgeo-locate
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"weather-app/internal/config"
	"weather-app/internal/logger"
	"weather-app/internal/revgeo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	data := flag.String("data", cfg.BoundaryPath, "Boundary dataset (.shp or .geojson)")
	field := flag.String("field", cfg.BoundaryNameField, "Attribute holding the country name")
	lat := flag.Float64("lat", math.NaN(), "Latitude")
	lon := flag.Float64("lon", math.NaN(), "Longitude")
	nearest := flag.Bool("nearest", false, "Also print the nearest country when not found")
	flag.Parse()

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ix, err := revgeo.Load(*data, *field, "NAME")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	g := revgeo.NewGeocoder(ix, 0)

	if !math.IsNaN(*lat) && !math.IsNaN(*lon) {
		fmt.Println(describe(g, revgeo.Coordinate{Latitude: *lat, Longitude: *lon}, *nearest))
		return
	}
	if err := locateLines(os.Stdin, os.Stdout, g, *nearest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func describe(g *revgeo.Geocoder, c revgeo.Coordinate, withNearest bool) string {
	name := g.Locate(c)
	if name != revgeo.NotFound || !withNearest {
		return name
	}
	if n, km, ok := g.Nearest(c); ok {
		return fmt.Sprintf("%s (nearest: %s, %.0f km)", name, n, km)
	}
	return name
}

// locateLines 每行读取 "lat,lon" 或 "lat lon"，输出 "lat,lon<TAB>country"
func locateLines(r io.Reader, w io.Writer, g *revgeo.Geocoder, withNearest bool) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parseCoordinate(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		fmt.Fprintf(w, "%g,%g\t%s\n", c.Latitude, c.Longitude, describe(g, c, withNearest))
	}
	return sc.Err()
}

func parseCoordinate(s string) (revgeo.Coordinate, error) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(f) != 2 {
		return revgeo.Coordinate{}, fmt.Errorf("want \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return revgeo.Coordinate{}, fmt.Errorf("bad latitude %q", f[0])
	}
	lon, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return revgeo.Coordinate{}, fmt.Errorf("bad longitude %q", f[1])
	}
	c := revgeo.Coordinate{Latitude: lat, Longitude: lon}
	if !c.Valid() {
		return revgeo.Coordinate{}, fmt.Errorf("coordinate out of range: %s", s)
	}
	return c, nil
}
