// Package mempool provides fixed-size slab allocation for symbol records.
// Symbols are created and destroyed at working-memory rates, so record
// allocation must not hit the general heap per call. Records are carved out
// of slabs and recycled through a LIFO free list.
package mempool

import "fmt"

// defaultSlabLen is the number of records carved per slab growth.
const defaultSlabLen = 1024

// Pool is a slab allocator for records of type T. It is not safe for
// concurrent use; each agent owns its pools and runs single-threaded.
type Pool[T any] struct {
	name    string
	slabLen int

	slabs [][]T
	free  []*T

	used      uint64
	allocated uint64
}

// New creates a pool named name. slabLen is the number of records added per
// slab growth; values < 1 use the default.
func New[T any](name string, slabLen int) *Pool[T] {
	if slabLen < 1 {
		slabLen = defaultSlabLen
	}
	return &Pool[T]{name: name, slabLen: slabLen}
}

// Allocate returns a record in O(1). The record is NOT zeroed: it may carry
// the field values it had when it was freed, exactly like a raw pool block.
// Callers must initialize every field before use.
func (p *Pool[T]) Allocate() *T {
	if len(p.free) == 0 {
		p.grow()
	}
	rec := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.used++
	return rec
}

// Free returns rec to the free list in O(1). The record may be handed back
// out by the very next Allocate.
func (p *Pool[T]) Free(rec *T) {
	if rec == nil {
		panic(fmt.Sprintf("mempool: free of nil record in pool %q", p.name))
	}
	p.free = append(p.free, rec)
	if p.used == 0 {
		panic(fmt.Sprintf("mempool: free without matching allocate in pool %q", p.name))
	}
	p.used--
}

func (p *Pool[T]) grow() {
	slab := make([]T, p.slabLen)
	p.slabs = append(p.slabs, slab)
	for i := p.slabLen - 1; i >= 0; i-- {
		p.free = append(p.free, &slab[i])
	}
	p.allocated += uint64(p.slabLen)
}

// Name returns the pool's name.
func (p *Pool[T]) Name() string { return p.name }

// Used returns the number of records currently handed out.
func (p *Pool[T]) Used() uint64 { return p.used }

// Allocated returns the total number of records carved from slabs.
func (p *Pool[T]) Allocated() uint64 { return p.allocated }

// FreeLen returns the current free-list length.
func (p *Pool[T]) FreeLen() int { return len(p.free) }
