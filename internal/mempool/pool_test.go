package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	value int
	name  string
}

func TestAllocateFree(t *testing.T) {
	p := New[record]("record", 4)

	r := p.Allocate()
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), p.Used())

	p.Free(r)
	assert.Equal(t, uint64(0), p.Used())
}

func TestRecycleIsLIFO(t *testing.T) {
	p := New[record]("record", 4)

	a := p.Allocate()
	p.Free(a)
	b := p.Allocate()

	// The freed record comes straight back.
	assert.Same(t, a, b)
}

func TestAllocateFreeRestoresFreeList(t *testing.T) {
	p := New[record]("record", 8)

	// Prime the pool so the slab exists.
	warm := p.Allocate()
	p.Free(warm)
	before := p.FreeLen()

	r := p.Allocate()
	p.Free(r)

	assert.Equal(t, before, p.FreeLen())
	assert.Same(t, warm, r)
}

func TestGrowth(t *testing.T) {
	p := New[record]("record", 2)

	var recs []*record
	for i := 0; i < 5; i++ {
		recs = append(recs, p.Allocate())
	}
	assert.Equal(t, uint64(5), p.Used())
	assert.Equal(t, uint64(6), p.Allocated()) // three slabs of two

	// All records are distinct.
	seen := map[*record]bool{}
	for _, r := range recs {
		assert.False(t, seen[r])
		seen[r] = true
	}
}

func TestRecordsAreNotZeroed(t *testing.T) {
	p := New[record]("record", 2)

	r := p.Allocate()
	r.value = 42
	r.name = "stale"
	p.Free(r)

	again := p.Allocate()
	require.Same(t, r, again)
	assert.Equal(t, 42, again.value)
	assert.Equal(t, "stale", again.name)
}

func TestFreeWithoutAllocatePanics(t *testing.T) {
	p := New[record]("record", 2)
	assert.Panics(t, func() { p.Free(&record{}) })
}
