package replication

import (
	"context"

	"github.com/rdbshard/core/region"
)

// BackfillRequest is the payload one replication task carries: stream
// everything in Region at or above StateTimestamp from Source.
type BackfillRequest struct {
	Source         string
	Region         region.Region
	StateTimestamp int64
}

// Scheduler pushes backfill work for one target shard onto a queue.
type Scheduler struct {
	queue  WorkQueue
	target string
}

func NewScheduler(queue WorkQueue, target string) *Scheduler {
	return &Scheduler{queue: queue, target: target}
}

// Schedule enqueues req as a new task for the target shard's queue.
func (s *Scheduler) Schedule(req BackfillRequest) {
	s.queue.Push(s.target, req)
}

// Handler runs one backfill task, returning the checkpoint reached
// when it stops so Worker can persist it.
// done signals the task is finished and should be removed from the
// queue; otherwise the returned checkpoint is saved and the task stays
// pending for the next Subscribe cycle to pick back up.
type Handler func(ctx context.Context, req BackfillRequest, checkpoint interface{}) (nextCheckpoint interface{}, done bool, err error)

// Worker drains one queue, running every task it emits through handle.
type Worker struct {
	queue WorkQueue
}

func NewWorker(queue WorkQueue) *Worker {
	return &Worker{queue: queue}
}

// Run subscribes to the queue and processes tasks until ctx is done or
// the queue is unsubscribed. Errors from handle are swallowed after
// being checkpointed back as-is, the way backfill.Produce swallows
// interruption-induced worker errors: a failed task is left pending
// for the next run rather than dropped.
func (w *Worker) Run(ctx context.Context, handle Handler) error {
	tasks := w.queue.Subscribe()
	defer w.queue.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-tasks:
			if !ok {
				return nil
			}
			if err := w.process(ctx, data, handle); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, data TaskData, handle Handler) error {
	var req BackfillRequest
	var checkpoint interface{}
	if err := data.Unmarshal(&req, &checkpoint); err != nil {
		return err
	}

	next, done, err := handle(ctx, req, checkpoint)
	task := Task{ID: data.ID, Payload: req, Checkpoint: next}
	if err != nil {
		w.queue.CheckIn(task)
		return nil
	}
	if done {
		w.queue.Complete(task)
		return nil
	}
	w.queue.CheckIn(task)
	return nil
}
