package containers

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// IncludeCache caches the contents of /include/d files by resolved
// path, so a file included more than once during one preprocessing run
// is read from disk only once. Includes are expanded a single time,
// before Pass A, so both passes see the same expanded text.
type IncludeCache struct {
	initOnce sync.Once
	inner    *lru.ARCCache
}

func (c *IncludeCache) init() {
	c.initOnce.Do(func() {
		c.inner, _ = lru.NewARC(32)
	})
}

func (c *IncludeCache) Get(path string) ([]byte, bool) {
	c.init()
	val, ok := c.inner.Get(path)
	if !ok {
		return nil, false
	}
	return val.([]byte), true
}

func (c *IncludeCache) Add(path string, data []byte) {
	c.init()
	c.inner.Add(path, data)
}
