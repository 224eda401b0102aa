// Package dispatch implements the shard/unshard dispatcher (C3): it
// restricts an operation to a sub-region and merges per-shard
// responses back into one client-visible response.
package dispatch

import (
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// ShardReadAcross applies op.ShardRead to r for every target region,
// in order, returning one op per target. It is the entry point callers
// use when fanning a read out across CPU shards or key-range shards.
// Every target must be a subset of op.ReadRegion(r): op.ShardRead
// panics otherwise, so callers pass targets already intersected with
// the op's region.
func ShardReadAcross(r op.ReadOp, targets []region.Region) []op.ReadOp {
	out := make([]op.ReadOp, len(targets))
	for i, t := range targets {
		out[i] = op.ShardRead(r, t)
	}
	return out
}

// ShardWriteAcross is ShardReadAcross for writes. Writes are always
// monokey, and op.ShardWrite panics for any target that is not a
// subset of op.WriteRegion(w), so a CPU-shard band or any other wider
// target panics — callers should resolve the owning shard directly
// rather than broadcasting a write to every CPU shard.
func ShardWriteAcross(w op.WriteOp, targets []region.Region) []op.WriteOp {
	out := make([]op.WriteOp, len(targets))
	for i, t := range targets {
		out[i] = op.ShardWrite(w, t)
	}
	return out
}
