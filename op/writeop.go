package op

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/region"
)

// ModifyOp discriminates what PointModify does once mapping has been
// evaluated, matching the original protocol's point_modify_op_t: upsert
// writes mapping's result, replace writes it only when the primary key
// already holds a value, and delete removes the key. The mode alone
// decides which of these happens; the value mapping returns does not
// change it.
type ModifyOp int

const (
	ModifyUpsert ModifyOp = iota
	ModifyReplace
	ModifyDelete
)

// WriteOp is the closed set of write-operation variants.
type WriteOp interface {
	write()
}

// PointWrite sets key to data unconditionally.
type PointWrite struct {
	Key  region.Key
	Data interface{}
}

func (PointWrite) write() {}

// PointModify evaluates mapping against the current value of key (read
// through primary_key) and applies the result.
type PointModify struct {
	PrimaryKey region.Key
	Key        region.Key
	Op         ModifyOp
	Scopes     *eval.Scope
	Mapping    eval.Term
}

func (PointModify) write() {}

// PointDelete removes key.
type PointDelete struct {
	Key region.Key
}

func (PointDelete) write() {}

// WriteRegion reports the (always monokey) region a write op affects.
func WriteRegion(w WriteOp) region.Region {
	switch v := w.(type) {
	case PointWrite:
		return region.MonokeyRegion(v.Key)
	case PointModify:
		return region.MonokeyRegion(v.Key)
	case PointDelete:
		return region.MonokeyRegion(v.Key)
	default:
		panic("op: unknown WriteOp variant")
	}
}

// ShardWrite restricts w to target. Writes always have a single-hash-cell
// region already, so shard is an identity as long as the precondition
// holds.
func ShardWrite(w WriteOp, target region.Region) WriteOp {
	if !WriteRegion(w).IsSuperset(target) {
		panic("op: ShardWrite precondition violated: target is not a subset of the op's region")
	}
	return w
}

// WriteResp is the response to any WriteOp. It is intentionally a
// single flat type — unlike reads, writes never produce a variant-rich
// result shape, they either applied or failed.
type WriteResp struct {
	Inserted int
	Error    error
}
