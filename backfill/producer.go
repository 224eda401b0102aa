// Package backfill implements the backfill producer (C5) and consumer
// (C6): parallel snapshot streaming of sub-regions through a
// chunk-sink, and replaying received chunks against a local Engine.
package backfill

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// SubRegion is one entry of the map from sub-regions to state
// timestamps that Produce takes as input. region.Region is not itself
// comparable (it embeds byte-slice keys), so the map is represented as
// a slice rather than map[region.Region]int64.
type SubRegion struct {
	Region         region.Region
	StateTimestamp int64
}

// ChunkSink receives chunks as the producer traverses sub-regions. Send
// must block until the downstream consumer is ready to accept chunk or
// ctx is done, giving the producer its backpressure.
type ChunkSink interface {
	Send(ctx context.Context, chunk op.Chunk) error
}

// Produce streams a snapshot of every sub-region in subRegions through
// sink, running one worker per sub-region concurrently. It returns
// ErrInterrupted if ctx is cancelled, even if every worker itself
// swallowed the cancellation and returned nil: workers are designed to
// exit quietly on interruption, so Produce is the one place that
// re-raises it.
func Produce(ctx context.Context, engine exec.Engine, txn exec.Txn, sb exec.Superblock, subRegions []SubRegion, sink ChunkSink, progress *exec.Progress) error {
	shared := newSharedSuperblock(sb)

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subRegions {
		sub := sub
		g.Go(func() error {
			workerSB := shared.acquire()
			defer shared.release()

			callback := &sinkCallback{ctx: gctx, sink: sink, region: sub.Region}
			err := engine.Backfill(gctx, txn, workerSB, sub.Region, sub.StateTimestamp, callback, progress)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return err
}

// sinkCallback adapts the engine's three backfill message kinds into
// Chunk values delivered to the sink.
type sinkCallback struct {
	ctx    context.Context
	sink   ChunkSink
	region region.Region
}

func (c *sinkCallback) OnDeleteRange(r region.Region) error {
	return c.sink.Send(c.ctx, op.DeleteRange{Range: r})
}

func (c *sinkCallback) OnDeletion(key region.Key, recency int64) error {
	return c.sink.Send(c.ctx, op.DeleteKey{Key: key, Recency: recency})
}

func (c *sinkCallback) OnKeyValue(atom op.Atom) error {
	return c.sink.Send(c.ctx, op.KeyValuePair{AtomVal: atom})
}
