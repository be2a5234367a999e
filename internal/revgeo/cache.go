package revgeo

import (
	"container/list"
	"strconv"
	"sync"
)

// 文档注释：定位结果 LRU 缓存
// 约束：键为精确坐标（不做网格化，边界两侧的点不会共享条目），值为国家名；边界只读，条目无需过期，仅按容量淘汰。
type LRU struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k string
	v string
}

func NewLRU(capacity int) *LRU {
	return &LRU{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element)}
}

func cacheKey(c Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'g', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'g', -1, 64)
}

func (c *LRU) Get(k string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		c.lst.MoveToFront(e)
		return e.Value.(entry).v, true
	}
	return "", false
}

func (c *LRU) Set(k, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		e.Value = entry{k: k, v: v}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(entry{k: k, v: v})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
