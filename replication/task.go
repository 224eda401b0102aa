// Package replication schedules and tracks backfill work across the
// cluster: an etcd-backed work queue (grounded in
// cluster/work_queue.go's EtcdWorkQueue) carries one task per
// sub-region backfill, checkpointed so a worker that dies mid-stream
// can be picked up by another without restarting from scratch.
package replication

import "encoding/json"

// Task is a stateful unit of backfill work.
type Task struct {
	ID         string      `json:"ID"`
	Checkpoint interface{} `json:"Checkpoint"`
	Payload    interface{} `json:"Payload"`
}

// TaskData is the wire form a task round-trips through the queue as:
// Payload/Checkpoint stay as raw JSON until the caller knows what
// concrete type to decode them into.
type TaskData struct {
	ID         string          `json:"ID"`
	Checkpoint json.RawMessage `json:"Checkpoint"`
	Payload    json.RawMessage `json:"Payload"`
}

// Unmarshal decodes TaskData's raw payload and checkpoint into the
// caller-supplied out pointers. Either may be nil on the wire, in
// which case the corresponding out value is left untouched.
func (t *TaskData) Unmarshal(payload, checkpoint interface{}) error {
	if t.Payload != nil {
		if err := json.Unmarshal(t.Payload, payload); err != nil {
			return err
		}
	}
	if t.Checkpoint != nil {
		if err := json.Unmarshal(t.Checkpoint, checkpoint); err != nil {
			return err
		}
	}
	return nil
}

// WorkQueue is the reliable work-distribution contract a Worker
// consumes and a Scheduler produces onto.
type WorkQueue interface {
	Push(target string, payload interface{})
	Subscribe() <-chan TaskData
	Unsubscribe()
	CheckIn(task Task)
	Complete(task Task)
}
