// Package exec is the local executor (C4): it runs a single read or
// write op against an Engine inside a caller-provided transaction.
package exec

import (
	"context"
	"sync/atomic"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// Txn is a caller-provided transaction handle. It is opaque to exec —
// callers construct one from storage/boltstore (or any other Engine
// implementation) and pass it through unexamined, the way the
// evaluator's Term is opaque to core code.
type Txn interface{}

// Superblock is the transaction's reference to the tree root a
// backfill traverses. Opaque for the same reason as Txn.
type Superblock interface{}

// Engine is the ordered key/value store contract every read and write
// op ultimately executes against. Implementations suspend only at I/O;
// ctx cancellation is how an in-flight call is interrupted.
type Engine interface {
	Get(ctx context.Context, txn Txn, key region.Key) (value interface{}, found bool, err error)
	Set(ctx context.Context, txn Txn, key region.Key, value interface{}, timestamp int64) error
	Delete(ctx context.Context, txn Txn, key region.Key, timestamp int64) error

	// Modify loads the current value at primaryKey (if any), evaluates
	// mapping against it in env, and applies the result according to
	// modifyOp.
	Modify(ctx context.Context, txn Txn, primaryKey, key region.Key, modifyOp op.ModifyOp, env *eval.Env, evaluator eval.Evaluator, mapping eval.Term, timestamp int64) (inserted int, err error)

	// RgetSlice scans keyRange in sorting order, transforming each row
	// through transform and folding through terminal, stopping after
	// maxRows rows. lastConsidered is the key of the last row examined
	// (whether or not it was returned, e.g. after a filter); truncated
	// reports whether maxRows was hit before the range was exhausted.
	RgetSlice(ctx context.Context, txn Txn, keyRange region.KeyRange, maxRows int, env *eval.Env, evaluator eval.Evaluator, transform []eval.Term, terminal *op.Terminal, sorting op.SortOrder) (result op.RangeResult, lastConsidered region.Key, truncated bool, err error)

	// DistributionGet samples up to 2^maxDepth buckets starting at
	// leftKey. The engine may return buckets outside the caller's
	// intended range; ExecuteRead filters them back down to it.
	DistributionGet(ctx context.Context, txn Txn, maxDepth int, leftKey region.Key) (*region.DistributionCounts, error)

	// EraseRange deletes every key for which tester returns true.
	EraseRange(ctx context.Context, txn Txn, tester func(region.Key) bool, r region.Region) error

	// Backfill streams everything in r at or above recencyFloor to
	// callback, using sb as the (possibly shared, refcounted) tree
	// root. progress receives periodic progress updates so the caller
	// can report traversal status across parallel workers.
	Backfill(ctx context.Context, txn Txn, sb Superblock, r region.Region, recencyFloor int64, callback ChunkCallback, progress *Progress) error
}

// ChunkCallback receives the three backfill message kinds a producer
// emits while traversing a sub-region.
type ChunkCallback interface {
	OnDeleteRange(r region.Region) error
	OnDeletion(key region.Key, recency int64) error
	OnKeyValue(atom op.Atom) error
}

// Progress is a shared, concurrency-safe counter that every backfill
// worker of one producer (C5) call adds to directly; there is no
// per-worker sub-progress tracker.
type Progress struct {
	rowsScanned int64
}

func (p *Progress) Add(n int64) {
	atomic.AddInt64(&p.rowsScanned, n)
}

func (p *Progress) RowsScanned() int64 {
	return atomic.LoadInt64(&p.rowsScanned)
}
