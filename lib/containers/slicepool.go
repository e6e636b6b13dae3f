package containers

import (
	"git.lukeshu.com/go/typedsync"
)

// SlicePool recycles the byte buffers the DTB generator uses to build
// padded token payloads, so a large conversion doesn't re-allocate one
// slice per property.
type SlicePool[T any] struct {
	inner typedsync.Pool[[]T]
}

func (p *SlicePool[T]) Get(size int) []T {
	if size == 0 {
		return nil
	}
	ret, ok := p.inner.Get()
	if ok && cap(ret) >= size {
		ret = ret[:size]
	} else {
		ret = make([]T, size)
	}
	return ret
}

func (p *SlicePool[T]) Put(slice []T) {
	if slice == nil {
		return
	}
	p.inner.Put(slice)
}
