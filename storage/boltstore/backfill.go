package boltstore

import (
	"context"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// Backfill streams every key in r whose recency is at or above
// recencyFloor to callback, in ascending key order. sb is accepted to
// satisfy exec.Engine but is otherwise unused here: bolt's own B+tree
// root is reached through txn, so the shared superblock handle
// backfill.Produce refcounts exists only to coordinate multiple
// concurrent sub-region scans against the same transaction, not to
// address a tree root this Store needs handed to it explicitly.
func (s *Store) Backfill(ctx context.Context, txn exec.Txn, sb exec.Superblock, r region.Region, recencyFloor int64, callback exec.ChunkCallback, progress *exec.Progress) error {
	tx, err := txOf(txn)
	if err != nil {
		return err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return err
	}

	c := b.Cursor()
	var k, raw []byte
	if r.Keys.UnboundedLeft {
		k, raw = c.First()
	} else {
		k, raw = c.Seek(r.Keys.Left)
	}

	for k != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !r.Keys.UnboundedRight {
			cmp := region.Key(k).Compare(r.Keys.Right)
			if cmp > 0 || (cmp == 0 && r.Keys.RightOpen) {
				break
			}
		}

		key := cloneKey(k)
		if !r.ContainsKey(key) {
			k, raw = c.Next()
			continue
		}

		e, err := decodeEntry(raw)
		if err != nil {
			return err
		}
		if e.Recency >= recencyFloor {
			if err := callback.OnKeyValue(op.Atom{Key: key, Value: e.Value, Recency: e.Recency}); err != nil {
				return err
			}
			if progress != nil {
				progress.Add(1)
			}
		}

		k, raw = c.Next()
	}
	return nil
}
