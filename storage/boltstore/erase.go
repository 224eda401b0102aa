package boltstore

import (
	"context"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/region"
)

// EraseRange deletes every key inside r's key range for which tester
// returns true. It is the engine primitive both Consumer.Consume's
// DeleteRange chunk handling and ResetData reduce to: ResetData just
// passes a tester that always answers true.
func (s *Store) EraseRange(ctx context.Context, txn exec.Txn, tester func(region.Key) bool, r region.Region) error {
	tx, err := txOf(txn)
	if err != nil {
		return err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return err
	}

	c := b.Cursor()
	var k []byte
	if r.Keys.UnboundedLeft {
		k, _ = c.First()
	} else {
		k, _ = c.Seek(r.Keys.Left)
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
		if !r.Keys.ContainsKey(key) || !tester(key) {
			k, _ = c.Next()
			continue
		}
		if err := c.Delete(); err != nil {
			return err
		}
		// Re-seek past the deleted key instead of calling Next, which can
		// skip the key that follows a cursor deletion.
		k, _ = c.Seek(key)
	}
	return nil
}
