// Package env implements the per-thread environment cache (C7): one
// eval.Env per shard, bundling the collaborators a request handler
// needs — a process-pool handle, a namespace-repository handle,
// per-shard cluster-metadata watchables, a per-shard interrupt signal,
// a fresh expression-runner handle per request, and the local machine
// id.
package env

import (
	"context"

	"github.com/rdbshard/core/clustermeta"
	"github.com/rdbshard/core/eval"
)

// ProcessPool stands in for an external-process pool handle; core code
// never calls into it, it is only threaded through so a real
// implementation has somewhere to plug in.
type ProcessPool interface{}

// NamespaceRepo stands in for the namespace-repository handle the same
// way ProcessPool does.
type NamespaceRepo interface{}

// Shard is the environment one executor shard is pinned to. It is
// built once per shard at startup; NewRequestEnv derives a fresh
// *eval.Env from it per incoming request.
type Shard struct {
	MachineID string
	Processes ProcessPool
	Namespace NamespaceRepo
	Metadata  *clustermeta.Directory

	// ctx carries the shard's interrupt signal: cancelling it pulses
	// every in-flight operation pinned to this shard at once. It is
	// precomputed once at shard construction, not per request, so a
	// request never pays synchronization to observe it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewShard builds a shard environment pinned to machineID, deriving
// its interrupt signal from parent.
func NewShard(parent context.Context, machineID string, processes ProcessPool, namespace NamespaceRepo, metadata *clustermeta.Directory) *Shard {
	ctx, cancel := context.WithCancel(parent)
	return &Shard{
		MachineID: machineID,
		Processes: processes,
		Namespace: namespace,
		Metadata:  metadata,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Interrupt returns the shard's interrupt signal. Engine and evaluator
// calls made on behalf of this shard should select on ctx.Done() at
// every suspension point.
func (s *Shard) Interrupt() context.Context {
	return s.ctx
}

// Pulse fires the shard's interrupt signal, cancelling every
// in-flight operation pinned to it.
func (s *Shard) Pulse() {
	s.cancel()
}

// NewRequestEnv builds a fresh, per-request eval.Env: a new top-level
// lexical scope enclosing nothing, and a fresh backtrace sink. Building
// one per request rather than reusing the shard's keeps one request's
// scope bindings from leaking into another's.
func (s *Shard) NewRequestEnv() *eval.Env {
	return eval.NewEnv(eval.NewScope(nil))
}
