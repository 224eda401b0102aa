package replication

import "encoding/json"

// MemoryWorkQueue is an in-process WorkQueue for tests, mirroring the
// shape of cluster/work_queue.go's MockedWorkQueue.
type MemoryWorkQueue struct {
	tasks chan TaskData
}

func NewMemoryWorkQueue() *MemoryWorkQueue {
	return &MemoryWorkQueue{tasks: make(chan TaskData, 128)}
}

func (q *MemoryWorkQueue) Push(target string, payload interface{}) {
	task := Task{Payload: payload}
	raw, _ := json.Marshal(task)
	var data TaskData
	json.Unmarshal(raw, &data)
	q.tasks <- data
}

func (q *MemoryWorkQueue) Subscribe() <-chan TaskData {
	return q.tasks
}

func (q *MemoryWorkQueue) Unsubscribe() {
	close(q.tasks)
}

func (q *MemoryWorkQueue) CheckIn(task Task) {
	raw, _ := json.Marshal(task)
	var data TaskData
	json.Unmarshal(raw, &data)
	q.tasks <- data
}

func (q *MemoryWorkQueue) Complete(task Task) {}
