package revgeo

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"weather-app/internal/logger"
)

// 文档注释：读取 ESRI Shapefile（.shp + 同名 .dbf）
// 约束：仅接受 Polygon 记录；顺时针环视为外环，逆时针环归入前一个外环作为洞；名称取第一个存在的属性字段。
func loadShapefile(path string, nameFields []string) ([]CountryBoundary, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	field := -1
	fields := r.Fields()
	for _, want := range nameFields {
		for i, f := range fields {
			if strings.EqualFold(f.String(), want) {
				field = i
				break
			}
		}
		if field >= 0 {
			break
		}
	}
	if field < 0 {
		return nil, &LoadError{Source: path, Reason: "no name attribute " + strings.Join(nameFields, "/")}
	}

	var out []CountryBoundary
	skipped := 0
	for r.Next() {
		n, s := r.Shape()
		poly, ok := s.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		name := strings.TrimSpace(strings.Trim(r.ReadAttribute(n, field), "\x00"))
		if name == "" {
			return nil, &LoadError{Source: path, Reason: fmt.Sprintf("record %d has an empty name", n)}
		}
		shape := shpPolygonToOrb(poly)
		if len(shape) == 0 {
			skipped++
			continue
		}
		out = append(out, NewCountryBoundary(name, shape))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		logger.L().Warn("boundary_records_skipped", "source", path, "skipped", skipped)
	}
	return out, nil
}

func shpPolygonToOrb(p *shp.Polygon) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for i := 0; i < len(p.Parts); i++ {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}
		if start < 0 || end > len(p.Points) || end-start < 4 {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if ring.Orientation() == orb.CCW && len(mp) > 0 {
			last := len(mp) - 1
			mp[last] = append(mp[last], ring)
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}
