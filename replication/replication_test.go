package replication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rdbshard/core/region"
)

func TestSchedulerPushesRequest(t *testing.T) {
	q := NewMemoryWorkQueue()
	s := NewScheduler(q, "shard-0")
	s.Schedule(BackfillRequest{Source: "node-a", Region: region.Universe(), StateTimestamp: 5})

	data := <-q.tasks
	var req BackfillRequest
	var checkpoint interface{}
	assert.NoError(t, data.Unmarshal(&req, &checkpoint))
	assert.Equal(t, "node-a", req.Source)
	assert.Equal(t, int64(5), req.StateTimestamp)
}

func TestWorkerCompletesFinishedTask(t *testing.T) {
	q := NewMemoryWorkQueue()
	s := NewScheduler(q, "shard-0")
	s.Schedule(BackfillRequest{Source: "node-a", StateTimestamp: 1})

	w := NewWorker(q)
	ctx, cancel := context.WithCancel(context.Background())
	handle := func(ctx context.Context, req BackfillRequest, checkpoint interface{}) (interface{}, bool, error) {
		cancel()
		return nil, true, nil
	}
	err := w.Run(ctx, handle)
	assert.Equal(t, context.Canceled, err)
}

func TestWorkerRequeuesUnfinishedTaskWithCheckpoint(t *testing.T) {
	q := NewMemoryWorkQueue()
	s := NewScheduler(q, "shard-0")
	s.Schedule(BackfillRequest{Source: "node-a", StateTimestamp: 1})

	w := NewWorker(q)
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	handle := func(ctx context.Context, req BackfillRequest, checkpoint interface{}) (interface{}, bool, error) {
		calls++
		if calls == 1 {
			return "partial", false, nil
		}
		assert.Equal(t, "partial", checkpoint)
		cancel()
		return nil, true, nil
	}
	err := w.Run(ctx, handle)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 2, calls)
}
