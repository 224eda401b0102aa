package boltstore

import (
	"context"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/region"
)

// DistributionGet samples up to 2^maxDepth buckets starting at
// leftKey. Each of the first 2^maxDepth-1 distinct keys becomes its
// own single-key bucket; everything after that folds into one final
// bucket keyed at the last key seen, so the bucket count never exceeds
// the caller's requested depth regardless of how many keys exist past
// leftKey.
func (s *Store) DistributionGet(ctx context.Context, txn exec.Txn, maxDepth int, leftKey region.Key) (*region.DistributionCounts, error) {
	tx, err := txOf(txn)
	if err != nil {
		return nil, err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return nil, err
	}

	numBuckets := 1
	if maxDepth > 0 {
		numBuckets = 1 << uint(maxDepth)
	}

	counts := region.NewDistributionCounts()
	c := b.Cursor()
	var k []byte
	if leftKey == nil {
		k, _ = c.First()
	} else {
		k, _ = c.Seek(leftKey)
	}

	bucketsUsed := 0
	var overflowKey region.Key
	overflowCount := 0

	for ; k != nil; k, _ = c.Next() {
		if bucketsUsed < numBuckets-1 {
			counts.Put(cloneKey(k), 1)
			bucketsUsed++
			continue
		}
		overflowKey = cloneKey(k)
		overflowCount++
	}
	if overflowCount > 0 {
		counts.Put(overflowKey, overflowCount)
	}
	return counts, nil
}
