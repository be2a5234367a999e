package revgeo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// 文档注释：国家质心 KD-Tree（二维经纬）
// 约束：仅用于未命中时给出"最近国家"提示，不改变定位结果；经度/纬度交替分割；不处理跨日期变更线。
type centroid struct {
	name string
	pt   orb.Point // lon, lat
}

type kdNode struct {
	c  centroid
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

const kmPerDegree = 111.195

func centroidsOf(bs []CountryBoundary) []centroid {
	out := make([]centroid, 0, len(bs))
	for _, b := range bs {
		pt, area := planar.CentroidArea(b.Shape)
		if area == 0 {
			continue
		}
		out = append(out, centroid{name: b.Name, pt: pt})
	}
	return out
}

func buildKD(cs []centroid, depth int) *kdNode {
	if len(cs) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(cs) / 2
	selectNth(cs, mid, ax)
	node := &kdNode{c: cs[mid], ax: ax}
	node.l = buildKD(cs[:mid], depth+1)
	node.r = buildKD(cs[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []centroid, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []centroid, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j].pt[ax] < pv.pt[ax] {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// nearest 返回距查询点最近的质心与距离（千米）
func nearest(node *kdNode, pt orb.Point) (centroid, float64) {
	best := centroid{}
	bestD := math.MaxFloat64
	cosLat := math.Cos(pt.Lat() * math.Pi / 180)
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		d := geo.DistanceHaversine(pt, n.c.pt) / 1000
		if d < bestD {
			bestD = d
			best = n.c
		}
		key, q := pt[n.ax], n.c.pt[n.ax]
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		plane := math.Abs(key-q) * kmPerDegree
		if n.ax == 0 {
			// 到子午线的最短大圆距离
			dl := math.Abs(key-q) * math.Pi / 180
			if dl >= math.Pi/2 {
				plane = 0
			} else {
				plane = math.Asin(math.Min(1, math.Sin(dl)*cosLat)) * 180 / math.Pi * kmPerDegree
			}
		}
		if plane < bestD {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD
}
