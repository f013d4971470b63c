// Package hashtable implements the open-chained, power-of-two bucket tables
// that back the symbol interner. The chain link lives inside each item so
// insertion never allocates, and every table folds full 32-bit hashes down
// to its bucket width with the same XOR compression.
package hashtable

// Link is the intrusive chain link embedded in every table item. It caches
// the item's full 32-bit hash so resizes rehash without recomputing keys.
type Link struct {
	next Item
	hash uint32
}

// Item is anything that can live in a Table. Implementations embed a Link
// and return its address.
type Item interface {
	HashLink() *Link
}

// HashFunc produces the full 32-bit hash for an item. The table folds it to
// the current bucket width itself.
type HashFunc func(Item) uint32

// Table is an open-chained hash table with 1<<log2size buckets. It resizes
// by doubling when the item count exceeds twice the bucket count.
type Table struct {
	log2size uint
	buckets  []Item
	count    int
	hash     HashFunc
}

// New creates a table with 1<<log2size buckets. log2size values < 1 are
// clamped to 1.
func New(log2size uint, hash HashFunc) *Table {
	if log2size < 1 {
		log2size = 1
	}
	return &Table{
		log2size: log2size,
		buckets:  make([]Item, 1<<log2size),
		hash:     hash,
	}
}

// Fold compresses a 32-bit hash h down to bits bits by XOR-ing successive
// bits-wide chunks, so no input bit is dropped.
func Fold(h uint32, bits uint) uint32 {
	if bits == 0 {
		return 0
	}
	if bits < 16 {
		h = (h & 0xFFFF) ^ (h >> 16)
	}
	if bits < 8 {
		h = (h & 0xFF) ^ (h >> 8)
	}
	mask := uint32(1)<<bits - 1
	var result uint32
	for h != 0 {
		result ^= h & mask
		h >>= bits
	}
	return result
}

// HashString produces a 32-bit hash for a string by rotate-XOR over its
// bytes.
func HashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = ((h << 8) | (h >> 24)) ^ uint32(s[i])
	}
	return h
}

// Lookup scans the bucket for the full hash rawHash and returns the first
// item for which eq is true, or nil. It never mutates the table.
func (t *Table) Lookup(rawHash uint32, eq func(Item) bool) Item {
	for item := t.buckets[Fold(rawHash, t.log2size)]; item != nil; item = item.HashLink().next {
		if eq(item) {
			return item
		}
	}
	return nil
}

// Insert adds item to the table. The caller guarantees no duplicate is
// present. The item's hash is computed once and cached in its link.
func (t *Table) Insert(item Item) {
	if t.count >= 2<<t.log2size {
		t.resize()
	}
	link := item.HashLink()
	link.hash = t.hash(item)
	bucket := Fold(link.hash, t.log2size)
	link.next = t.buckets[bucket]
	t.buckets[bucket] = item
	t.count++
}

// Remove unlinks item from its chain. The item must be present.
func (t *Table) Remove(item Item) {
	bucket := Fold(item.HashLink().hash, t.log2size)
	cur := t.buckets[bucket]
	if cur == item {
		t.buckets[bucket] = item.HashLink().next
	} else {
		for cur != nil && cur.HashLink().next != item {
			cur = cur.HashLink().next
		}
		if cur == nil {
			panic("hashtable: remove of item not in table")
		}
		cur.HashLink().next = item.HashLink().next
	}
	item.HashLink().next = nil
	t.count--
}

// ForEach calls visitor for every item. A true return from visitor stops the
// iteration; ForEach reports whether it was stopped. Iteration order is
// unspecified but stable across a pass that does not mutate the table.
func (t *Table) ForEach(visitor func(Item) bool) bool {
	for _, head := range t.buckets {
		for item := head; item != nil; item = item.HashLink().next {
			if visitor(item) {
				return true
			}
		}
	}
	return false
}

// Count returns the number of items in the table.
func (t *Table) Count() int { return t.count }

// Log2Size returns the current bucket width in bits.
func (t *Table) Log2Size() uint { return t.log2size }

// resize doubles the bucket count, refolding the hashes cached in each
// item's link rather than recomputing them from the keys.
func (t *Table) resize() {
	t.log2size++
	old := t.buckets
	t.buckets = make([]Item, 1<<t.log2size)
	for _, head := range old {
		for item := head; item != nil; {
			next := item.HashLink().next
			bucket := Fold(item.HashLink().hash, t.log2size)
			item.HashLink().next = t.buckets[bucket]
			t.buckets[bucket] = item
			item = next
		}
	}
}
