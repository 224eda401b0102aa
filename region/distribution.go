package region

import "github.com/emirpasic/gods/trees/redblacktree"

// DistributionCounts is the ordered map<StoreKey, int> that a
// distribution read reports sampled key counts in, backed by a
// red-black tree so callers can iterate in key order (Keys, Each) and
// read the smallest key (First); no floor/ceiling lookup is exposed.
type DistributionCounts struct {
	tree *redblacktree.Tree
}

func keyComparator(a, b interface{}) int {
	return a.(Key).Compare(b.(Key))
}

func NewDistributionCounts() *DistributionCounts {
	return &DistributionCounts{tree: redblacktree.NewWith(keyComparator)}
}

func (d *DistributionCounts) Put(k Key, count int) {
	d.tree.Put(k, count)
}

func (d *DistributionCounts) Get(k Key) (int, bool) {
	v, ok := d.tree.Get(k)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func (d *DistributionCounts) Len() int {
	return d.tree.Size()
}

// Keys returns the sampled keys in ascending order.
func (d *DistributionCounts) Keys() []Key {
	keys := make([]Key, 0, d.tree.Size())
	for _, k := range d.tree.Keys() {
		keys = append(keys, k.(Key))
	}
	return keys
}

// Each calls fn for every (key, count) pair in ascending key order.
func (d *DistributionCounts) Each(fn func(k Key, count int)) {
	it := d.tree.Iterator()
	for it.Next() {
		fn(it.Key().(Key), it.Value().(int))
	}
}

// Sum totals every count in the map.
func (d *DistributionCounts) Sum() int {
	total := 0
	d.Each(func(_ Key, count int) { total += count })
	return total
}

// First returns the smallest sampled key, used by hash-unshard to
// assert that two distribution responses were sampled from the same
// key range (i.e. are genuinely hash-sharded, not key-sharded).
func (d *DistributionCounts) First() (Key, bool) {
	it := d.tree.Iterator()
	if !it.Next() {
		return nil, false
	}
	return it.Key().(Key), true
}
