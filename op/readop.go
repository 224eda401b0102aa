package op

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/region"
)

// ReadOp is the closed set of read-operation variants. It is sealed
// (read only implements it) so ReadRegion/ShardRead can be free
// functions doing structural pattern matching instead of virtual
// methods spread across a type hierarchy.
type ReadOp interface {
	read()
}

// PointRead looks up a single key.
type PointRead struct {
	Key region.Key
}

func (PointRead) read() {}

// SortOrder selects the scan order Engine.RgetSlice returns rows in.
// It does not affect unshard semantics: dispatch.UnshardSingleDim
// concatenates shard responses in the order the caller partitioned
// key_range into, independent of how any one shard scanned internally.
type SortOrder int

const (
	SortUnordered SortOrder = iota
	SortAscending
	SortDescending
)

// RangeRead scans a key range, optionally transforming and folding the
// results.
type RangeRead struct {
	KeyRange  region.KeyRange
	Scopes    *eval.Scope
	Transform []eval.Term
	Terminal  *Terminal
	Maximum   int
	Sorting   SortOrder
}

func (RangeRead) read() {}

// DistributionRead asks the engine for an approximate key histogram.
type DistributionRead struct {
	Range    region.Region
	MaxDepth int
}

func (DistributionRead) read() {}

// ReadRegion extracts the region a read op is defined over. Point reads
// own a single hash cell; range reads are sharded along the key
// dimension only (their hash band is the full universe); distribution
// reads carry their region explicitly.
func ReadRegion(r ReadOp) region.Region {
	switch v := r.(type) {
	case PointRead:
		return region.MonokeyRegion(v.Key)
	case RangeRead:
		return region.Region{Hash: region.FullHashBand(), Keys: v.KeyRange}
	case DistributionRead:
		return v.Range
	default:
		panic("op: unknown ReadOp variant")
	}
}

// ShardRead restricts r to sub-region target. target must be a subset
// of ReadRegion(r); violating that precondition is a programmer error.
func ShardRead(r ReadOp, target region.Region) ReadOp {
	full := ReadRegion(r)
	if !full.IsSuperset(target) {
		panic("op: Shard precondition violated: target is not a subset of the op's region")
	}
	switch v := r.(type) {
	case PointRead:
		// Point ops never shard into more than one piece; their region
		// is already a single hash cell of width 1.
		return v
	case RangeRead:
		shard := v
		shard.KeyRange = target.Keys
		return shard
	case DistributionRead:
		shard := v
		shard.Range = target
		return shard
	default:
		panic("op: unknown ReadOp variant")
	}
}
