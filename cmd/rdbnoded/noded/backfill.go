package noded

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/rdbshard/core/backfill"
	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/replication"
	"github.com/rdbshard/core/storage/boltstore"
)

// loopbackSink feeds chunks a Produce call emits straight into a
// Consumer inside the same transaction, the in-process stand-in for
// the network hop a real cross-node backfill would take. It exists so
// a single node can exercise the full produce/consume pipeline — e.g.
// to repopulate one shard's store from another after a local resharding
// — without requiring a transport layer, which this module treats as
// an out-of-scope external collaborator.
type loopbackSink struct {
	ctx      context.Context
	consumer *backfill.Consumer
	txn      exec.Txn
}

func (s *loopbackSink) Send(ctx context.Context, chunk op.Chunk) error {
	return s.consumer.Consume(ctx, s.txn, chunk)
}

// makeHandler builds the replication.Handler driving shardIdx's
// worker. A request whose Source names this node runs entirely
// in-process: it streams req.Region out of whichever local shard owns
// that hash band and applies it to shardIdx's store. A request naming
// a remote Source cannot be served here — fetching chunks from another
// node requires a transport implementation outside this module's
// scope — so it is reported as an error and left queued for a future
// worker (e.g. one built against a real RPC client) to pick up.
func (n *Node) makeHandler(shardIdx int) replication.Handler {
	target := n.stores[shardIdx]
	return func(ctx context.Context, req replication.BackfillRequest, checkpoint interface{}) (interface{}, bool, error) {
		if req.Source != n.cfg.Name {
			return checkpoint, false, fmt.Errorf("noded: backfill source %q is remote; no transport wired to reach it", req.Source)
		}

		source := n.localStoreForRegion(req.Region)
		if source == nil {
			return checkpoint, false, fmt.Errorf("noded: no local shard owns region %+v", req.Region.Hash)
		}

		return nil, true, n.runLocalBackfill(ctx, source, target, req)
	}
}

func (n *Node) runLocalBackfill(ctx context.Context, source, target *boltstore.Store, req replication.BackfillRequest) error {
	srcTxn, err := source.Begin(false)
	if err != nil {
		return err
	}
	srcBolt := srcTxn.(*bolt.Tx)
	defer srcBolt.Rollback()

	dstTxn, err := target.Begin(true)
	if err != nil {
		return err
	}
	dstBolt := dstTxn.(*bolt.Tx)

	consumer := backfill.NewConsumer(target)
	sink := &loopbackSink{ctx: ctx, consumer: consumer, txn: dstTxn}
	progress := &exec.Progress{}
	subRegions := []backfill.SubRegion{{Region: req.Region, StateTimestamp: req.StateTimestamp}}

	if err := backfill.Produce(ctx, source, srcTxn, nil, subRegions, sink, progress); err != nil {
		dstBolt.Rollback()
		return err
	}
	return dstBolt.Commit()
}
