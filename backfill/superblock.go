package backfill

import (
	"sync/atomic"

	"github.com/rdbshard/core/exec"
)

// sharedSuperblock wraps the caller's superblock in a refcount holder
// so each parallel sub-region worker can hold an independent logical
// reference without the producer needing to know how the underlying
// engine represents a superblock.
type sharedSuperblock struct {
	inner exec.Superblock
	refs  int32
}

func newSharedSuperblock(inner exec.Superblock) *sharedSuperblock {
	return &sharedSuperblock{inner: inner}
}

func (s *sharedSuperblock) acquire() exec.Superblock {
	atomic.AddInt32(&s.refs, 1)
	return s
}

func (s *sharedSuperblock) release() int32 {
	return atomic.AddInt32(&s.refs, -1)
}
