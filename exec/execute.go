package exec

import (
	"context"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// DefaultMaxRows is the row cap RgetSlice is called with when a
// RangeRead's own Maximum is unset or exceeds it.
const DefaultMaxRows = 1000

// ExecuteRead runs r against engine inside txn. threadEnv is the
// per-shard environment built by env.Cache (C7); a read op's own
// Scopes, when set, become the evaluation scope in place of
// threadEnv's, mirroring how the evaluator environment a range read
// runs under is seeded from the op's own scopes when it carries any.
//
// Range-read evaluator failures are captured as a RuntimeError inside
// the returned RangeReadResp rather than as a Go error; the scan stops
// at the failing row and the response's Result is that error. Engine
// I/O failures always propagate as a Go error.
func ExecuteRead(ctx context.Context, engine Engine, txn Txn, threadEnv *eval.Env, evaluator eval.Evaluator, r op.ReadOp) (op.ReadResp, error) {
	switch v := r.(type) {
	case op.PointRead:
		value, found, err := engine.Get(ctx, txn, v.Key)
		if err != nil {
			return nil, err
		}
		return op.PointReadResp{Value: value, Found: found}, nil

	case op.RangeRead:
		return executeRangeRead(ctx, engine, txn, threadEnv, evaluator, v)

	case op.DistributionRead:
		return executeDistributionRead(ctx, engine, txn, v)

	default:
		return nil, nil
	}
}

func executeRangeRead(ctx context.Context, engine Engine, txn Txn, threadEnv *eval.Env, evaluator eval.Evaluator, v op.RangeRead) (op.ReadResp, error) {
	maxRows := v.Maximum
	if maxRows <= 0 || maxRows > DefaultMaxRows {
		maxRows = DefaultMaxRows
	}
	env := rangeEnv(threadEnv, v.Scopes)

	result, lastConsidered, truncated, err := engine.RgetSlice(ctx, txn, v.KeyRange, maxRows, env, evaluator, v.Transform, v.Terminal, v.Sorting)
	if err != nil {
		if rerr, ok := err.(*eval.RuntimeError); ok {
			return op.RangeReadResp{KeyRange: v.KeyRange, Result: op.ErrorResult(rerr)}, nil
		}
		return nil, err
	}
	return op.RangeReadResp{
		KeyRange:          v.KeyRange,
		LastConsideredKey: lastConsidered,
		Truncated:         truncated,
		Result:            result,
	}, nil
}

func executeDistributionRead(ctx context.Context, engine Engine, txn Txn, v op.DistributionRead) (op.ReadResp, error) {
	counts, err := engine.DistributionGet(ctx, txn, v.MaxDepth, v.Range.Keys.Left)
	if err != nil {
		return nil, err
	}
	filtered := region.NewDistributionCounts()
	counts.Each(func(k region.Key, count int) {
		if v.Range.ContainsKey(k) {
			filtered.Put(k, count)
		}
	})
	return op.DistributionResp{KeyCounts: filtered}, nil
}

// rangeEnv builds the evaluation environment a RangeRead or
// PointModify runs with: opScopes, when set, take the place of the
// thread env's own lexical scope; the thread env's backtrace sink is
// always reused so a failure is reported against the same request.
func rangeEnv(threadEnv *eval.Env, opScopes *eval.Scope) *eval.Env {
	scopes := opScopes
	if scopes == nil {
		scopes = threadEnv.Scopes
	}
	return &eval.Env{Scopes: scopes, Backtrace: threadEnv.Backtrace}
}

// ExecuteWrite runs w against engine inside txn at timestamp, the
// transactional write time the caller (not the op) supplies, so writes
// serialize per key by a caller-provided timestamp rather than one
// baked into the op itself.
func ExecuteWrite(ctx context.Context, engine Engine, txn Txn, threadEnv *eval.Env, evaluator eval.Evaluator, w op.WriteOp, timestamp int64) (op.WriteResp, error) {
	switch v := w.(type) {
	case op.PointWrite:
		if err := engine.Set(ctx, txn, v.Key, v.Data, timestamp); err != nil {
			return op.WriteResp{}, err
		}
		return op.WriteResp{Inserted: 1}, nil

	case op.PointModify:
		env := rangeEnv(threadEnv, v.Scopes)
		inserted, err := engine.Modify(ctx, txn, v.PrimaryKey, v.Key, v.Op, env, evaluator, v.Mapping, timestamp)
		if err != nil {
			return op.WriteResp{}, err
		}
		return op.WriteResp{Inserted: inserted}, nil

	case op.PointDelete:
		if err := engine.Delete(ctx, txn, v.Key, timestamp); err != nil {
			return op.WriteResp{}, err
		}
		return op.WriteResp{Inserted: 1}, nil

	default:
		return op.WriteResp{}, nil
	}
}
