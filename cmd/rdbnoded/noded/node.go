// Package noded wires the core packages into a runnable process, the
// way a launcher package wires a resolver, partitioner, and importer
// together behind a constructor plus a Run method. Node owns
// one storage/boltstore.Store per configured CPU shard, a clustermeta
// watch of region ownership, a membership.Directory for peer
// discovery, and one replication worker per shard that drains queued
// backfill tasks.
package noded

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/coreos/etcd/clientv3"
	"golang.org/x/sync/errgroup"

	"github.com/rdbshard/core/clustermeta"
	"github.com/rdbshard/core/config"
	"github.com/rdbshard/core/env"
	"github.com/rdbshard/core/membership"
	"github.com/rdbshard/core/rdblog"
	"github.com/rdbshard/core/region"
	"github.com/rdbshard/core/replication"
	"github.com/rdbshard/core/storage/boltstore"
)

var log = rdblog.For("noded")

// Node is one running rdbshard process.
type Node struct {
	cfg config.NodeConfig

	etcd     *clientv3.Client
	metadata *clustermeta.Directory
	members  *membership.Directory

	stores []*boltstore.Store
	shards *env.Cache

	schedulers []*replication.Scheduler
	workers    []*replication.Worker
}

// New opens every collaborator a node needs (etcd client, per-shard
// bolt stores, cluster metadata watch, membership gossip). The metadata
// watch and the gossip start running here; no replication worker runs
// until Run is called.
func New(cfg config.NodeConfig) (*Node, error) {
	etcdClient, err := clientv3.New(clientv3.Config{Endpoints: cfg.EtcdEndpoints})
	if err != nil {
		return nil, fmt.Errorf("noded: etcd connect: %w", err)
	}

	metadata, err := clustermeta.OpenWithClient(etcdClient)
	if err != nil {
		return nil, fmt.Errorf("noded: open cluster metadata: %w", err)
	}

	members, err := membership.Open(membership.Config{
		BindAddr: cfg.BindAddr,
		BindPort: cfg.BindPort,
		Name:     cfg.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("noded: open membership: %w", err)
	}

	n := &Node{cfg: cfg, etcd: etcdClient, metadata: metadata, members: members, shards: env.NewCache()}
	members.Delegate = n

	for i := 0; i < cfg.ShardCount; i++ {
		path := filepath.Join(cfg.DataDir, fmt.Sprintf("shard-%d.db", i))
		store, err := boltstore.Open(path)
		if err != nil {
			n.Close()
			return nil, fmt.Errorf("noded: open shard %d store: %w", i, err)
		}
		n.stores = append(n.stores, store)
		n.shards.Put(i, env.NewShard(context.Background(), shardMachineID(cfg.Name, i), nil, nil, metadata))

		target := shardTarget(cfg.Name, i)
		queue := replication.NewEtcdWorkQueue(etcdClient, target)
		n.schedulers = append(n.schedulers, replication.NewScheduler(queue, target))
		n.workers = append(n.workers, replication.NewWorker(queue))
	}

	return n, nil
}

func shardTarget(name string, shard int) string {
	return fmt.Sprintf("%s/shard-%d", name, shard)
}

func shardMachineID(name string, shard int) string {
	return fmt.Sprintf("%s-%d", name, shard)
}

// Join connects this node's membership gossip to an existing cluster
// and announces the shards it owns, mirroring launcher.Join's
// "announce, then pull missing data" shape minus the InfluxDB-specific
// token dance.
func (n *Node) Join(existing []string) error {
	if len(existing) == 0 {
		return nil
	}
	if err := n.members.Join(existing); err != nil {
		return err
	}
	return n.announceShards()
}

func (n *Node) announceShards() error {
	shards := make([]int, len(n.stores))
	for i := range n.stores {
		shards[i] = i
	}
	return n.members.BroadcastShards(shards)
}

// Run starts one replication worker per shard and blocks until ctx is
// cancelled or a worker returns a non-cancellation error.
func (n *Node) Run(ctx context.Context) error {
	if err := n.announceShards(); err != nil {
		log.Warnf("failed to announce shard ownership: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range n.workers {
		i, w := i, w
		g.Go(func() error {
			err := w.Run(gctx, n.makeHandler(i))
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Close pulses every shard's interrupt signal and closes the shard
// stores, the cluster metadata watch and the etcd client; membership
// gossip is not shut down. Safe to call after a partially-failed New.
func (n *Node) Close() {
	if n.shards != nil {
		n.shards.PulseAll()
	}
	for _, s := range n.stores {
		if s != nil {
			if err := s.Close(); err != nil {
				log.Warnf("error closing store: %v", err)
			}
		}
	}
	if n.metadata != nil {
		n.metadata.Close()
	}
	if n.etcd != nil {
		n.etcd.Close()
	}
}

// NotifyShardAdded implements membership.ShardDelegate: a peer now
// advertises owning shard, making it a candidate backfill source the
// next time this node needs to (re)populate that shard's data.
func (n *Node) NotifyShardAdded(shard int, member *membership.Member) {
	log.WithField("shard", shard).Infof("peer %s now owns shard %d", member.Name, shard)
}

// NotifyShardRemoved implements membership.ShardDelegate.
func (n *Node) NotifyShardRemoved(shard int, member *membership.Member) {
	log.WithField("shard", shard).Infof("peer %s no longer owns shard %d", member.Name, shard)
}

// localStoreForRegion returns the store backing the first CPU shard
// whose hash-band subspace intersects r, or nil if no shard's subspace
// does.
func (n *Node) localStoreForRegion(r region.Region) *boltstore.Store {
	for i := range n.stores {
		subspace := region.CPUShardingSubspace(i, n.cfg.ShardCount)
		if !subspace.Intersection(r).IsEmpty() {
			return n.stores[i]
		}
	}
	return nil
}
