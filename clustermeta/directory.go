// Package clustermeta watches the etcd-backed region-ownership map and
// hands each shard its own read-only snapshot, grounded in
// cluster/resolver.go's ResolverSyncer/trackUpdates watch loop and
// cluster/token_storage.go's key layout under a common base directory.
package clustermeta

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/coreos/etcd/clientv3"
	"github.com/coreos/etcd/mvcc/mvccpb"
)

const baseDir = "rdbshard/regions"

// Ownership is an immutable snapshot of region -> owning shard id.
type Ownership map[string]string

// Directory watches baseDir and keeps an in-memory Ownership snapshot
// current. Snapshot takes a read lock on the same RWMutex the watch
// goroutine write-locks while applying an update, so a read can wait
// for an update in progress. Each update installs a fresh map, so a map
// returned by Snapshot is never mutated afterwards.
type Directory struct {
	client *clientv3.Client

	mu   sync.RWMutex
	snap Ownership

	closeCh chan struct{}
}

func Open(endpoints []string) (*Directory, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return OpenWithClient(client)
}

func OpenWithClient(client *clientv3.Client) (*Directory, error) {
	d := &Directory{client: client, snap: Ownership{}, closeCh: make(chan struct{})}
	if err := d.loadSnapshot(context.Background()); err != nil {
		return nil, err
	}
	go d.trackUpdates()
	return d, nil
}

func (d *Directory) loadSnapshot(ctx context.Context) error {
	resp, err := d.client.Get(ctx, baseDir+"/", clientv3.WithPrefix())
	if err != nil {
		return err
	}
	snap := Ownership{}
	for _, kv := range resp.Kvs {
		snap[regionKey(string(kv.Key))] = string(kv.Value)
	}
	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()
	return nil
}

func (d *Directory) trackUpdates() {
	watch := d.client.Watch(context.Background(), baseDir+"/", clientv3.WithPrefix())
	for {
		select {
		case update := <-watch:
			d.applyUpdate(update)
		case <-d.closeCh:
			return
		}
	}
}

func (d *Directory) applyUpdate(update clientv3.WatchResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := make(Ownership, len(d.snap))
	for k, v := range d.snap {
		next[k] = v
	}
	for _, event := range update.Events {
		key := regionKey(string(event.Kv.Key))
		switch event.Type {
		case mvccpb.PUT:
			next[key] = string(event.Kv.Value)
		case mvccpb.DELETE:
			delete(next, key)
		}
	}
	d.snap = next
}

// Snapshot returns the current ownership map. The returned map must
// not be mutated by the caller.
func (d *Directory) Snapshot() Ownership {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

func (d *Directory) Close() {
	close(d.closeCh)
	if err := d.client.Close(); err != nil {
		log.Printf("clustermeta: error closing etcd client: %v", err)
	}
}

func regionKey(etcdKey string) string {
	parts := strings.SplitN(etcdKey, baseDir+"/", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return etcdKey
}
