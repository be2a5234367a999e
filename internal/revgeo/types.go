package revgeo

import (
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
)

// NotFound 是坐标不落在任何国家边界内时的返回值
const NotFound = "Not Found"

// Coordinate 为 WGS84 经纬度
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid 报告纬度在 [-90,90]、经度在 [-180,180] 内
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Point 按 (经度, 纬度) 构造平面点
func (c Coordinate) Point() orb.Point { return orb.Point{c.Longitude, c.Latitude} }

// GeohashPrecision 为对外返回的网格精度（9 位约 5 米）
const GeohashPrecision = 9

// Geohash 返回坐标所在网格编码，仅用于展示与客户端分桶，不参与定位
func (c Coordinate) Geohash() string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, GeohashPrecision)
}

// 文档注释：国家边界
// 约束：加载后只读；Shape 为一个或多个多边形（首环外环，其后为洞）；Bound 为 Shape 的包围盒。
type CountryBoundary struct {
	Name  string
	Shape orb.MultiPolygon
	Bound orb.Bound
}

// NewCountryBoundary 计算包围盒并返回边界
func NewCountryBoundary(name string, shape orb.MultiPolygon) CountryBoundary {
	return CountryBoundary{Name: name, Shape: shape, Bound: shape.Bound()}
}

// LoadError 表示边界数据源缺失或格式错误；启动期致命
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load boundaries from %q: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load boundaries from %q: %s", e.Source, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// 文档注释：边界索引（只读快照）
// 约束：构造后不再修改，可被多个请求并发读取；边界顺序即加载顺序，决定重叠时的命中优先级。
type Index struct {
	boundaries []CountryBoundary
	source     string
	loadedAt   time.Time
}

// NewIndex 复制边界切片构造索引
func NewIndex(source string, bs []CountryBoundary) *Index {
	cp := make([]CountryBoundary, len(bs))
	copy(cp, bs)
	return &Index{boundaries: cp, source: source, loadedAt: time.Now()}
}

func (ix *Index) Len() int            { return len(ix.boundaries) }
func (ix *Index) Source() string      { return ix.source }
func (ix *Index) LoadedAt() time.Time { return ix.loadedAt }

// Names 按存储顺序返回国家名
func (ix *Index) Names() []string {
	out := make([]string, 0, len(ix.boundaries))
	for _, b := range ix.boundaries {
		out = append(out, b.Name)
	}
	return out
}
