package revgeo

import (
	"weather-app/internal/metrics"
)

// DefaultNearestRadiusKm 限制"最近国家"提示的最大距离
const DefaultNearestRadiusKm = 1500.0

// 文档注释：反地理编码器（缓存 → 线性 PIP 扫描；未命中时可查询最近国家质心）
// 约束：Locate 的结果只取决于 Index，缓存只保存 Index 已给出的结果；cacheSize<=0 时不缓存。
type Geocoder struct {
	index       *Index
	cache       *LRU
	kd          *kdNode
	maxRadiusKm float64
}

func NewGeocoder(ix *Index, cacheSize int) *Geocoder {
	g := &Geocoder{index: ix, maxRadiusKm: DefaultNearestRadiusKm}
	if cacheSize > 0 {
		g.cache = NewLRU(cacheSize)
	}
	if ix != nil {
		g.kd = buildKD(centroidsOf(ix.boundaries), 0)
	}
	return g
}

func (g *Geocoder) Index() *Index { return g.index }

// Locate 返回坐标所在国家名或 NotFound
func (g *Geocoder) Locate(c Coordinate) string {
	if g.index == nil {
		return NotFound
	}
	if g.cache == nil {
		return g.index.Locate(c)
	}
	key := cacheKey(c)
	if v, ok := g.cache.Get(key); ok {
		metrics.LocateCacheHitsTotal.Inc()
		return v
	}
	metrics.LocateCacheMissesTotal.Inc()
	v := g.index.Locate(c)
	g.cache.Set(key, v)
	return v
}

// Nearest 返回质心距离最近的国家及距离（千米）；超出半径或索引为空时 ok=false
func (g *Geocoder) Nearest(c Coordinate) (string, float64, bool) {
	if g.kd == nil {
		return "", 0, false
	}
	best, d := nearest(g.kd, c.Point())
	if d > g.maxRadiusKm {
		return "", 0, false
	}
	return best.name, d, true
}
