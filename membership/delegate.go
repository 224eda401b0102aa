package membership

import (
	"encoding/json"
	"log"

	"github.com/hashicorp/memberlist"
)

type memberUpdate struct {
	Name   string
	Shards []int
}

type eventDelegate struct {
	dir *Directory
}

func (e eventDelegate) NotifyJoin(node *memberlist.Node) {
	e.dir.addMember(node)
}

func (e eventDelegate) NotifyLeave(node *memberlist.Node) {
	e.dir.mu.Lock()
	m, ok := e.dir.members[node.Name]
	if ok {
		delete(e.dir.members, node.Name)
	}
	e.dir.mu.Unlock()
	if !ok {
		return
	}
	log.Printf("[Membership] member left %s", node.Name)
	if e.dir.Delegate != nil {
		for _, s := range m.Shards {
			e.dir.Delegate.NotifyShardRemoved(s, m)
		}
	}
}

func (e eventDelegate) NotifyUpdate(node *memberlist.Node) {}

type nodeDelegate struct {
	dir *Directory
}

func (d nodeDelegate) NodeMeta(limit int) []byte {
	return []byte{}
}

// NotifyMsg applies a shard-ownership update broadcast by a remote
// member, diffing against the previously known shard set so
// Directory.Delegate only hears about what actually changed.
func (d nodeDelegate) NotifyMsg(msg []byte) {
	var update memberUpdate
	if err := json.Unmarshal(msg, &update); err != nil {
		log.Printf("[Membership] malformed shard update: %v", err)
		return
	}

	d.dir.mu.Lock()
	m, ok := d.dir.members[update.Name]
	if !ok {
		m = &Member{Name: update.Name}
		d.dir.members[update.Name] = m
	}
	removed, added := diffShards(m.Shards, update.Shards)
	m.Shards = update.Shards
	d.dir.mu.Unlock()

	if d.dir.Delegate == nil {
		return
	}
	for _, s := range removed {
		d.dir.Delegate.NotifyShardRemoved(s, m)
	}
	for _, s := range added {
		d.dir.Delegate.NotifyShardAdded(s, m)
	}
}

func (d nodeDelegate) GetBroadcasts(overhead, limit int) [][]byte {
	return [][]byte{}
}

func (d nodeDelegate) LocalState(join bool) []byte {
	return []byte{}
}

func (d nodeDelegate) MergeRemoteState(buf []byte, join bool) {}

func diffShards(old, new []int) (removed, added []int) {
	oldSet := make(map[int]bool, len(old))
	for _, s := range old {
		oldSet[s] = true
	}
	newSet := make(map[int]bool, len(new))
	for _, s := range new {
		newSet[s] = true
	}
	for _, s := range old {
		if !newSet[s] {
			removed = append(removed, s)
		}
	}
	for _, s := range new {
		if !oldSet[s] {
			added = append(added, s)
		}
	}
	return removed, added
}
