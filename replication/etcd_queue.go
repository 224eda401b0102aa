package replication

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/coreos/etcd/clientv3"
	"github.com/coreos/etcd/clientv3/concurrency"
	"github.com/coreos/etcd/mvcc/mvccpb"
	uuid "github.com/satori/go.uuid"
)

const etcdBaseDir = "rdbshard/replication"

// EtcdWorkQueue is an etcd-backed WorkQueue: pending tasks for one
// target shard live under a single key prefix, and Subscribe both
// replays whatever is already pending and watches for more. Only one
// subscriber per target is supported, enforced with an etcd mutex so
// two worker processes never both claim the same shard's queue.
type EtcdWorkQueue struct {
	Client *clientv3.Client
	Target string

	busy     bool
	stopChan chan struct{}
	mtx      *concurrency.Mutex
}

func NewEtcdWorkQueue(client *clientv3.Client, target string) *EtcdWorkQueue {
	return &EtcdWorkQueue{Client: client, Target: target, stopChan: make(chan struct{})}
}

func (q *EtcdWorkQueue) path(parts ...string) string {
	return etcdBaseDir + "/" + strings.Join(parts, "/")
}

func (q *EtcdWorkQueue) targetPath(target string) string {
	return q.path("pending", target)
}

func (q *EtcdWorkQueue) taskPath(target, id string) string {
	return q.targetPath(target) + "/" + id
}

func (q *EtcdWorkQueue) Push(target string, payload interface{}) {
	task := Task{ID: uuid.NewV4().String(), Payload: payload}
	q.put(task, target)
}

func (q *EtcdWorkQueue) put(task Task, target string) {
	data, err := json.Marshal(task)
	if err != nil {
		panic(err)
	}
	if _, err := q.Client.Put(context.Background(), q.taskPath(target, task.ID), string(data)); err != nil {
		panic(err)
	}
}

func (q *EtcdWorkQueue) lock() error {
	session, err := concurrency.NewSession(q.Client)
	if err != nil {
		return err
	}
	mtx := concurrency.NewMutex(session, q.path("lock", q.Target))
	if err := mtx.Lock(context.Background()); err != nil {
		return err
	}
	q.mtx = mtx
	return nil
}

func (q *EtcdWorkQueue) unlock() {
	if q.mtx != nil {
		q.mtx.Unlock(context.Background())
	}
}

// Subscribe replays every pending task for Target, then watches for
// new ones until Unsubscribe is called.
func (q *EtcdWorkQueue) Subscribe() <-chan TaskData {
	if q.busy {
		panic("replication: only one subscriber per queue")
	}
	q.busy = true
	if err := q.lock(); err != nil {
		panic(err)
	}

	tasks := make(chan TaskData, 1024)
	resp, err := q.Client.Get(context.Background(), q.targetPath(q.Target), clientv3.WithPrefix())
	if err != nil {
		panic(err)
	}
	for _, kv := range resp.Kvs {
		tasks <- q.unmarshal(kv.Value)
	}

	watch := q.Client.Watch(context.Background(), q.targetPath(q.Target), clientv3.WithPrefix())
	go func() {
		for {
			select {
			case resp := <-watch:
				for _, ev := range resp.Events {
					if ev.Type == mvccpb.PUT && ev.IsCreate() {
						tasks <- q.unmarshal(ev.Kv.Value)
					}
				}
			case <-q.stopChan:
				q.unlock()
				return
			}
		}
	}()
	return tasks
}

func (q *EtcdWorkQueue) unmarshal(data []byte) TaskData {
	var t TaskData
	if err := json.Unmarshal(data, &t); err != nil {
		panic(err)
	}
	return t
}

func (q *EtcdWorkQueue) Unsubscribe() {
	close(q.stopChan)
}

// CheckIn persists task's updated Checkpoint so a worker picking this
// task back up after a crash resumes from it instead of from scratch.
func (q *EtcdWorkQueue) CheckIn(task Task) {
	q.put(task, q.Target)
}

// Complete removes a finished task from the pending set.
func (q *EtcdWorkQueue) Complete(task Task) {
	q.Client.Delete(context.Background(), q.taskPath(q.Target, task.ID))
}
