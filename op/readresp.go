package op

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/region"
)

// ReadResp mirrors ReadOp: one variant per read-op kind.
type ReadResp interface {
	readResp()
}

// PointReadResp carries the value for a key, or nil if absent.
type PointReadResp struct {
	Value interface{}
	Found bool
}

func (PointReadResp) readResp() {}

// RangeResultKind discriminates RangeReadResp.Result.
type RangeResultKind int

const (
	RangeResultStream RangeResultKind = iota
	RangeResultGroups
	RangeResultAtom
	RangeResultLength
	RangeResultInserted
	RangeResultError
)

// RangeResult is the sum type a range read's terminal shape produces.
type RangeResult struct {
	Kind   RangeResultKind
	Stream []eval.Value
	Groups map[interface{}]eval.Value
	Atom   eval.Value
	Length int
	Inserted int
	Err    *eval.RuntimeError
}

func StreamResult(rows []eval.Value) RangeResult {
	return RangeResult{Kind: RangeResultStream, Stream: rows}
}

func GroupsResult(groups map[interface{}]eval.Value) RangeResult {
	return RangeResult{Kind: RangeResultGroups, Groups: groups}
}

func AtomResult(v eval.Value) RangeResult {
	return RangeResult{Kind: RangeResultAtom, Atom: v}
}

func LengthResult(n int) RangeResult {
	return RangeResult{Kind: RangeResultLength, Length: n}
}

func InsertedResult(n int) RangeResult {
	return RangeResult{Kind: RangeResultInserted, Inserted: n}
}

func ErrorResult(err *eval.RuntimeError) RangeResult {
	return RangeResult{Kind: RangeResultError, Err: err}
}

// RangeReadResp is the response to a RangeRead.
type RangeReadResp struct {
	KeyRange          region.KeyRange
	LastConsideredKey region.Key
	Truncated         bool
	Result            RangeResult
}

func (RangeReadResp) readResp() {}

// DistributionResp reports a sampled key histogram.
type DistributionResp struct {
	KeyCounts *region.DistributionCounts
}

func (DistributionResp) readResp() {}

// A merged response's reported region is the union of the per-shard
// regions it was folded from; dispatch computes it at unshard time
// (mergedKeyRange) rather than through a GetRegion helper here, since
// only RangeReadResp needs it.
