// Package region implements the hash-band x key-range region algebra that
// the dispatch and backfill packages shard and merge operations over.
package region

import "bytes"

// HashSize is the width of the hash space that hash bands are carved out
// of. It mirrors the fixed 64-bit unsigned hash space from the protocol
// this package implements.
const HashSize uint64 = 1 << 63

// HashFunc is the process-wide hash function over store keys. It is
// replaceable only for tests; production code uses fnvHash.
var HashFunc = fnvHash

// Key is an opaque, totally ordered (lexicographic) store key.
type Key []byte

// Compare orders keys lexicographically.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k, other)
}

func (k Key) Equal(other Key) bool {
	return bytes.Equal(k, other)
}

// HashBand is a half-open interval [Beg, End) over the hash space.
type HashBand struct {
	Beg, End uint64
}

func (b HashBand) IsEmpty() bool {
	return b.Beg >= b.End
}

func (b HashBand) Contains(h uint64) bool {
	return h >= b.Beg && h < b.End
}

func (b HashBand) Intersect(other HashBand) HashBand {
	beg := b.Beg
	if other.Beg > beg {
		beg = other.Beg
	}
	end := b.End
	if other.End < end {
		end = other.End
	}
	if end < beg {
		end = beg
	}
	return HashBand{beg, end}
}

// Union returns the smallest hash band covering both bands. Bands
// produced by CPUShardingSubspace are contiguous, so in practice this
// is exact; for non-contiguous bands it is a conservative superset.
func (b HashBand) Union(other HashBand) HashBand {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	beg := b.Beg
	if other.Beg < beg {
		beg = other.Beg
	}
	end := b.End
	if other.End > end {
		end = other.End
	}
	return HashBand{beg, end}
}

func (b HashBand) IsSuperset(other HashBand) bool {
	if other.IsEmpty() {
		return true
	}
	return b.Beg <= other.Beg && other.End <= b.End
}

// FullHashBand spans the entire hash space.
func FullHashBand() HashBand {
	return HashBand{0, HashSize}
}

// KeyRange is a store-key interval. LeftOpen/RightOpen independently make
// each endpoint open; Unbounded{Left,Right} represent -infinity/+infinity
// (the "universe" range when both are set).
type KeyRange struct {
	Left, Right           Key
	LeftOpen, RightOpen    bool
	UnboundedLeft          bool
	UnboundedRight         bool
}

// FullKeyRange spans every possible store key.
func FullKeyRange() KeyRange {
	return KeyRange{UnboundedLeft: true, UnboundedRight: true}
}

// PointKeyRange is the closed, single-key range [k, k].
func PointKeyRange(k Key) KeyRange {
	return KeyRange{Left: k, Right: k}
}

func (r KeyRange) IsEmpty() bool {
	if r.UnboundedLeft || r.UnboundedRight {
		return false
	}
	cmp := r.Left.Compare(r.Right)
	if cmp > 0 {
		return true
	}
	if cmp == 0 {
		return r.LeftOpen || r.RightOpen
	}
	return false
}

func (r KeyRange) ContainsKey(k Key) bool {
	if !r.UnboundedLeft {
		cmp := k.Compare(r.Left)
		if cmp < 0 || (cmp == 0 && r.LeftOpen) {
			return false
		}
	}
	if !r.UnboundedRight {
		cmp := k.Compare(r.Right)
		if cmp > 0 || (cmp == 0 && r.RightOpen) {
			return false
		}
	}
	return true
}

// LastKey returns the effective upper watermark of the range: Right if
// bounded, or nil if unbounded (callers treat nil as "no upper bound").
func (r KeyRange) LastKey() Key {
	if r.UnboundedRight {
		return nil
	}
	return r.Right
}

// Intersect returns the intersection of two key ranges. Ties favor the
// tighter (more restrictive) openness.
func (r KeyRange) Intersect(other KeyRange) KeyRange {
	out := KeyRange{}

	switch {
	case r.UnboundedLeft && other.UnboundedLeft:
		out.UnboundedLeft = true
	case r.UnboundedLeft:
		out.Left, out.LeftOpen = other.Left, other.LeftOpen
	case other.UnboundedLeft:
		out.Left, out.LeftOpen = r.Left, r.LeftOpen
	default:
		cmp := r.Left.Compare(other.Left)
		switch {
		case cmp > 0:
			out.Left, out.LeftOpen = r.Left, r.LeftOpen
		case cmp < 0:
			out.Left, out.LeftOpen = other.Left, other.LeftOpen
		default:
			out.Left, out.LeftOpen = r.Left, r.LeftOpen || other.LeftOpen
		}
	}

	switch {
	case r.UnboundedRight && other.UnboundedRight:
		out.UnboundedRight = true
	case r.UnboundedRight:
		out.Right, out.RightOpen = other.Right, other.RightOpen
	case other.UnboundedRight:
		out.Right, out.RightOpen = r.Right, r.RightOpen
	default:
		cmp := r.Right.Compare(other.Right)
		switch {
		case cmp < 0:
			out.Right, out.RightOpen = r.Right, r.RightOpen
		case cmp > 0:
			out.Right, out.RightOpen = other.Right, other.RightOpen
		default:
			out.Right, out.RightOpen = r.Right, r.RightOpen || other.RightOpen
		}
	}

	return out
}

// Union returns the smallest key range covering both r and other. It
// is used to report the key dimension of a merged region after
// unsharding along the key dimension.
func (r KeyRange) Union(other KeyRange) KeyRange {
	out := KeyRange{}

	switch {
	case r.UnboundedLeft || other.UnboundedLeft:
		out.UnboundedLeft = true
	default:
		cmp := r.Left.Compare(other.Left)
		switch {
		case cmp < 0:
			out.Left, out.LeftOpen = r.Left, r.LeftOpen
		case cmp > 0:
			out.Left, out.LeftOpen = other.Left, other.LeftOpen
		default:
			out.Left, out.LeftOpen = r.Left, r.LeftOpen && other.LeftOpen
		}
	}

	switch {
	case r.UnboundedRight || other.UnboundedRight:
		out.UnboundedRight = true
	default:
		cmp := r.Right.Compare(other.Right)
		switch {
		case cmp > 0:
			out.Right, out.RightOpen = r.Right, r.RightOpen
		case cmp < 0:
			out.Right, out.RightOpen = other.Right, other.RightOpen
		default:
			out.Right, out.RightOpen = r.Right, r.RightOpen && other.RightOpen
		}
	}

	return out
}

func (r KeyRange) IsSuperset(other KeyRange) bool {
	if other.IsEmpty() {
		return true
	}
	if !r.UnboundedLeft {
		if other.UnboundedLeft {
			return false
		}
		cmp := r.Left.Compare(other.Left)
		if cmp > 0 || (cmp == 0 && other.LeftOpen && !r.LeftOpen) {
			return false
		}
	}
	if !r.UnboundedRight {
		if other.UnboundedRight {
			return false
		}
		cmp := r.Right.Compare(other.Right)
		if cmp < 0 || (cmp == 0 && other.RightOpen && !r.RightOpen) {
			return false
		}
	}
	return true
}

// Less gives KeyRange a total order for sorting, by left endpoint then
// right endpoint (unbounded sorts before any bounded endpoint on the
// left, and after any bounded endpoint on the right).
func (r KeyRange) Less(other KeyRange) bool {
	lc := compareLeft(r, other)
	if lc != 0 {
		return lc < 0
	}
	return compareRight(r, other) < 0
}

func compareLeft(a, b KeyRange) int {
	if a.UnboundedLeft && b.UnboundedLeft {
		return 0
	}
	if a.UnboundedLeft {
		return -1
	}
	if b.UnboundedLeft {
		return 1
	}
	if c := a.Left.Compare(b.Left); c != 0 {
		return c
	}
	if a.LeftOpen == b.LeftOpen {
		return 0
	}
	if a.LeftOpen {
		return 1
	}
	return -1
}

func compareRight(a, b KeyRange) int {
	if a.UnboundedRight && b.UnboundedRight {
		return 0
	}
	if a.UnboundedRight {
		return 1
	}
	if b.UnboundedRight {
		return -1
	}
	if c := a.Right.Compare(b.Right); c != 0 {
		return c
	}
	if a.RightOpen == b.RightOpen {
		return 0
	}
	if a.RightOpen {
		return -1
	}
	return 1
}

// Region is a hash-band x key-range rectangle.
type Region struct {
	Hash HashBand
	Keys KeyRange
}

func (r Region) IsEmpty() bool {
	return r.Hash.IsEmpty() || r.Keys.IsEmpty()
}

func (r Region) Intersection(other Region) Region {
	return Region{
		Hash: r.Hash.Intersect(other.Hash),
		Keys: r.Keys.Intersect(other.Keys),
	}
}

// Union returns the smallest region covering both r and other. Used to
// report a merged response's region after unsharding.
func (r Region) Union(other Region) Region {
	return Region{
		Hash: r.Hash.Union(other.Hash),
		Keys: r.Keys.Union(other.Keys),
	}
}

func (r Region) IsSuperset(other Region) bool {
	if other.IsEmpty() {
		return true
	}
	return r.Hash.IsSuperset(other.Hash) && r.Keys.IsSuperset(other.Keys)
}

func (r Region) ContainsKey(k Key) bool {
	h := HashFunc(k)
	return r.Hash.Contains(h) && r.Keys.ContainsKey(k)
}

// Universe is the region spanning every hash and every key.
func Universe() Region {
	return Region{Hash: FullHashBand(), Keys: FullKeyRange()}
}

// MonokeyRegion is the single-hash-cell, single-key region owned
// exclusively by one key: ([h(k), h(k)+1), [k, k]).
func MonokeyRegion(k Key) Region {
	h := HashFunc(k)
	return Region{
		Hash: HashBand{h, h + 1},
		Keys: PointKeyRange(k),
	}
}

// CPUShardingSubspace partitions the hash dimension into n contiguous
// bands whose union is the whole universe; band i is
// [i*floor(HashSize/n), (i+1)*floor(HashSize/n)) with the last band
// extended to HashSize so the division's remainder is not lost.
func CPUShardingSubspace(i, n int) Region {
	if i < 0 || n <= 0 || i >= n {
		panic("region: CPUShardingSubspace precondition violated: need 0 <= i < n")
	}
	width := HashSize / uint64(n)
	beg := uint64(i) * width
	var end uint64
	if i == n-1 {
		end = HashSize
	} else {
		end = beg + width
	}
	return Region{Hash: HashBand{beg, end}, Keys: FullKeyRange()}
}

func fnvHash(k Key) uint64 {
	// FNV-1a, the same hash family the cluster token-hashing code uses
	// (hash/hash.go). The raw FNV-1a digest spans the full uint64
	// range, but HashBand/CPUShardingSubspace only address [0,
	// HashSize); reduce modulo HashSize so every key's hash actually
	// falls inside Universe() and therefore inside exactly one
	// CPUShardingSubspace band.
	var h uint64 = 14695981039346656037
	for _, b := range k {
		h ^= uint64(b)
		h *= 1099511628211
	}
	return h % HashSize
}
