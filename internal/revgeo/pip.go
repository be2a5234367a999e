package revgeo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：点入多边形判定
// 约束：先做包围盒过滤，再交给 orb/planar 判定；边界上的点遵循 planar.MultiPolygonContains 的定义。
func (b *CountryBoundary) Contains(pt orb.Point) bool {
	if !b.Bound.Contains(pt) {
		return false
	}
	return planar.MultiPolygonContains(b.Shape, pt)
}

// Lookup 按存储顺序线性扫描，返回第一个包含该点的边界
func (ix *Index) Lookup(c Coordinate) (CountryBoundary, bool) {
	pt := c.Point()
	for i := range ix.boundaries {
		if ix.boundaries[i].Contains(pt) {
			return ix.boundaries[i], true
		}
	}
	return CountryBoundary{}, false
}

// Locate 返回包含坐标的国家名；无命中时返回 NotFound
func (ix *Index) Locate(c Coordinate) string {
	if b, ok := ix.Lookup(c); ok {
		return b.Name
	}
	return NotFound
}
