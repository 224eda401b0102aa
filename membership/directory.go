// Package membership is the gossip-backed node directory replication
// uses to find backfill peers: which machines are alive, and which
// CPU shards each one currently owns. It is grounded directly in
// cluster/handle.go's use of hashicorp/memberlist, with token
// ownership swapped out for shard ownership.
package membership

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/hashicorp/memberlist"
)

// ShardDelegate is notified when a remote member starts or stops
// owning a shard, the way cluster.TokenDelegate was notified of token
// moves.
type ShardDelegate interface {
	NotifyShardAdded(shard int, member *Member)
	NotifyShardRemoved(shard int, member *Member)
}

type Config struct {
	BindAddr string
	BindPort int
	Name     string
}

func (c *Config) setDefaults() {
	if c.BindPort == 0 {
		c.BindPort = 8084
	}
}

// Member is one node in the cluster's view of another (or its own)
// membership state: address plus the shards it currently owns.
type Member struct {
	Name   string
	Addr   string
	Shards []int
}

// Directory is the live, gossip-maintained view of cluster membership.
type Directory struct {
	list   *memberlist.Memberlist
	Delegate ShardDelegate

	mu      sync.RWMutex
	members map[string]*Member
	local   string
}

// Open starts gossiping and returns a Directory seeded with only the
// local node. Call Join to connect to existing cluster members.
func Open(config Config) (*Directory, error) {
	config.setDefaults()
	d := &Directory{members: make(map[string]*Member)}

	conf := memberlist.DefaultWANConfig()
	conf.Events = eventDelegate{d}
	conf.Delegate = nodeDelegate{d}
	conf.BindAddr = config.BindAddr
	conf.BindPort = config.BindPort
	if config.Name != "" {
		conf.Name = config.Name
	}

	list, err := memberlist.Create(conf)
	if err != nil {
		return nil, err
	}
	d.list = list
	d.local = list.LocalNode().Name
	d.addMember(list.LocalNode())
	log.Printf("[Membership] listening on %s:%d as %s", conf.BindAddr, conf.BindPort, d.local)
	return d, nil
}

// Join connects to one or more seed addresses already in the cluster.
func (d *Directory) Join(existing []string) error {
	if _, err := d.list.Join(existing); err != nil {
		return err
	}
	for _, m := range d.list.Members() {
		d.addMember(m)
	}
	return nil
}

// BroadcastShards announces the local node now owns shards, reliably
// pushing the update to every known peer.
func (d *Directory) BroadcastShards(shards []int) error {
	local := d.list.LocalNode()
	d.mu.Lock()
	if m, ok := d.members[local.Name]; ok {
		m.Shards = shards
	}
	d.mu.Unlock()

	data, err := json.Marshal(memberUpdate{Name: local.Name, Shards: shards})
	if err != nil {
		return err
	}
	var sendErr error
	for _, member := range d.list.Members() {
		if member.Name == local.Name {
			continue
		}
		if err := d.list.SendReliable(member, data); err != nil {
			log.Printf("[Membership] failed to send shard update to %s: %v", member.Name, err)
			sendErr = err
		}
	}
	return sendErr
}

// Members returns a snapshot of every known cluster member.
func (d *Directory) Members() []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Member, 0, len(d.members))
	for _, m := range d.members {
		out = append(out, *m)
	}
	return out
}

// PeersForShard returns every non-local member currently advertising
// ownership of shard, the candidate pool replication's scheduler picks
// a backfill source or destination from.
func (d *Directory) PeersForShard(shard int) []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Member
	for name, m := range d.members {
		if name == d.local {
			continue
		}
		for _, s := range m.Shards {
			if s == shard {
				out = append(out, *m)
				break
			}
		}
	}
	return out
}

func (d *Directory) addMember(node *memberlist.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.members[node.Name]; ok {
		return
	}
	m := &Member{Name: node.Name, Addr: node.Addr.String()}
	d.members[node.Name] = m
	log.Printf("[Membership] added cluster member %s", node.Name)
}
