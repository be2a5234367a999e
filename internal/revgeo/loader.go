package revgeo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"weather-app/internal/logger"
)

// DefaultNameFields 是国家名属性的查找顺序（Natural Earth 的 ADMIN，其次 NAME）
var DefaultNameFields = []string{"ADMIN", "NAME"}

// 文档注释：从数据文件加载国家边界索引
// 约束：按扩展名选择解析器（.shp 为 ESRI Shapefile，.geojson/.json 为 FeatureCollection）；
// 文件缺失、无可用要素、要素缺少名称时返回 *LoadError。nameFields 为空时使用 DefaultNameFields。
func Load(source string, nameFields ...string) (*Index, error) {
	if len(nameFields) == 0 {
		nameFields = DefaultNameFields
	}
	if _, err := os.Stat(source); err != nil {
		return nil, &LoadError{Source: source, Reason: "dataset not readable", Err: err}
	}
	var (
		bs  []CountryBoundary
		err error
	)
	switch strings.ToLower(filepath.Ext(source)) {
	case ".shp":
		bs, err = loadShapefile(source, nameFields)
	case ".geojson", ".json":
		bs, err = loadGeoJSON(source, nameFields)
	default:
		return nil, &LoadError{Source: source, Reason: "unsupported dataset format " + filepath.Ext(source)}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, le
		}
		return nil, &LoadError{Source: source, Reason: "malformed dataset", Err: err}
	}
	if len(bs) == 0 {
		return nil, &LoadError{Source: source, Reason: "no polygon features"}
	}
	ix := NewIndex(source, bs)
	logger.L().Info("boundary_load_ok", "source", source, "count", ix.Len())
	return ix, nil
}

func loadGeoJSON(path string, nameFields []string) ([]CountryBoundary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, err
	}
	out := make([]CountryBoundary, 0, len(fc.Features))
	skipped := 0
	for i, f := range fc.Features {
		shape, ok := toMultiPolygon(f.Geometry)
		if !ok {
			skipped++
			continue
		}
		name := propertyName(f.Properties, nameFields)
		if name == "" {
			return nil, &LoadError{Source: path, Reason: fmt.Sprintf("feature %d has no name in %s", i, strings.Join(nameFields, "/"))}
		}
		out = append(out, NewCountryBoundary(name, shape))
	}
	if skipped > 0 {
		logger.L().Warn("boundary_features_skipped", "source", path, "skipped", skipped)
	}
	return out, nil
}

// toMultiPolygon 仅接受 Polygon/MultiPolygon
func toMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch v := g.(type) {
	case orb.MultiPolygon:
		return v, len(v) > 0
	case orb.Polygon:
		return orb.MultiPolygon{v}, len(v) > 0
	default:
		return nil, false
	}
}

func propertyName(p geojson.Properties, fields []string) string {
	for _, k := range fields {
		if s, ok := p[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		for pk, pv := range p {
			if strings.EqualFold(pk, k) {
				if s, ok := pv.(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return ""
}
