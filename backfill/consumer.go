package backfill

import (
	"context"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// Consumer applies received chunks to a local Engine, tracking the
// last recency seen per key so it can assert per-key recency
// monotonicity as chunks arrive.
type Consumer struct {
	engine      exec.Engine
	lastRecency map[string]int64
}

func NewConsumer(engine exec.Engine) *Consumer {
	return &Consumer{engine: engine, lastRecency: make(map[string]int64)}
}

// Consume applies chunk against txn. Chunks from different sub-regions
// of the same backfill may arrive interleaved; Consume does not assume
// any global order across keys, only per-key recency monotonicity.
func (c *Consumer) Consume(ctx context.Context, txn exec.Txn, chunk op.Chunk) error {
	switch v := chunk.(type) {
	case op.DeleteKey:
		if err := c.checkRecency(v.Key, v.Recency); err != nil {
			return err
		}
		return c.engine.Delete(ctx, txn, v.Key, v.Recency)

	case op.DeleteRange:
		return c.engine.EraseRange(ctx, txn, rangeTester(v.Range), v.Range)

	case op.KeyValuePair:
		atom := v.AtomVal
		if err := c.checkRecency(atom.Key, atom.Recency); err != nil {
			return err
		}
		return c.engine.Set(ctx, txn, atom.Key, atom.Value, atom.Recency)

	default:
		return nil
	}
}

func (c *Consumer) checkRecency(key region.Key, recency int64) error {
	k := string(key)
	if prev, ok := c.lastRecency[k]; ok && recency < prev {
		return &RecencyViolation{Key: k, Previous: prev, Got: recency}
	}
	c.lastRecency[k] = recency
	return nil
}

// rangeTester builds the hash-band + key-range membership test used by
// DeleteRange and ResetData. The hash check is redundant with
// r.ContainsKey today, but kept explicit so a future re-hashing of the
// key space can't silently leave residual entries behind a deletion
// that only checked key range.
func rangeTester(r region.Region) func(region.Key) bool {
	return func(k region.Key) bool {
		return r.Hash.Contains(region.HashFunc(k)) && r.Keys.ContainsKey(k) && r.ContainsKey(k)
	}
}

// ResetData is the degenerate consumer-side primitive that erases
// everything within subRegion using an always-true tester.
func ResetData(ctx context.Context, engine exec.Engine, txn exec.Txn, subRegion region.Region) error {
	return engine.EraseRange(ctx, txn, func(region.Key) bool { return true }, subRegion)
}
