package csm

import (
	"errors"
	"fmt"
)

// rasterItem is a projected triangle waiting for the raster stage together
// with what the fragment stage needs to know about it.
type rasterItem struct {
	tri        Triangle
	material   *Material
	triangleID int
	instanceID int
}

const arenaChunkLen = 256

// chunkPool hands out fixed length chunks and keeps released chunks for
// reuse. Chunks are never freed so pointers into them stay valid.
type chunkPool[T any] struct {
	_ins      [][]T
	_acquired []bool
}

func (cp *chunkPool[T]) acquire(minLength int) []T {
	for i, locked := range cp._acquired {
		if !locked && len(cp._ins[i]) >= minLength {
			cp._acquired[i] = true
			return cp._ins[i]
		}
	}
	newSlice := make([]T, minLength)
	newSlice = newSlice[:cap(newSlice)]
	cp._ins = append(cp._ins, newSlice)
	cp._acquired = append(cp._acquired, true)
	return newSlice
}

func (cp *chunkPool[T]) release(buf []T) error {
	for i, instance := range cp._ins {
		if &instance[0] == &buf[0] {
			if !cp._acquired[i] {
				return errors.New("release of unacquired chunk")
			}
			cp._acquired[i] = false
			return nil
		}
	}
	return errors.New("release of nonexistent chunk")
}

func (cp *chunkPool[T]) assertAllReleased() error {
	for _, locked := range cp._acquired {
		if locked {
			return fmt.Errorf("locked %T chunk found in chunkPool.assertAllReleased, leak?", *new(T))
		}
	}
	return nil
}

// triArena is a bump allocator of raster items scoped to a single draw.
// It is reset at the start of every draw and is owned by one DrawContext.
type triArena struct {
	pool   chunkPool[rasterItem]
	chunks [][]rasterItem
	n      int // items used in the last chunk.
	count  int
}

// reset releases every chunk back to the pool. Items from the previous
// draw must not be used afterwards.
func (a *triArena) reset() {
	for _, c := range a.chunks {
		if err := a.pool.release(c); err != nil {
			fatalf("arena reset: %v", err)
		}
	}
	a.chunks = a.chunks[:0]
	a.n = 0
	a.count = 0
}

// alloc returns a zeroed item valid until the next reset.
func (a *triArena) alloc() *rasterItem {
	if len(a.chunks) == 0 || a.n == len(a.chunks[len(a.chunks)-1]) {
		a.chunks = append(a.chunks, a.pool.acquire(arenaChunkLen))
		a.n = 0
	}
	item := &a.chunks[len(a.chunks)-1][a.n]
	*item = rasterItem{}
	a.n++
	a.count++
	return item
}

// Len returns the number of items allocated since the last reset.
func (a *triArena) Len() int { return a.count }

// each calls fn for every allocated item in allocation order.
func (a *triArena) each(fn func(*rasterItem)) {
	for i, c := range a.chunks {
		if i == len(a.chunks)-1 {
			c = c[:a.n]
		}
		for j := range c {
			fn(&c[j])
		}
	}
}
