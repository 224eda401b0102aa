package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_diffShards(t *testing.T) {
	removed, added := diffShards([]int{1, 2}, []int{2, 3})
	assert.Contains(t, removed, 1)
	assert.Contains(t, added, 3)
	assert.NotContains(t, removed, 2)
	assert.NotContains(t, added, 2)
}

func TestPeersForShardSkipsLocal(t *testing.T) {
	d := &Directory{
		local: "local",
		members: map[string]*Member{
			"local":  {Name: "local", Shards: []int{0}},
			"remote": {Name: "remote", Shards: []int{0, 1}},
			"other":  {Name: "other", Shards: []int{1}},
		},
	}

	peers := d.PeersForShard(0)
	assert.Equal(t, 1, len(peers))
	assert.Equal(t, "remote", peers[0].Name)
}

func TestMembersReturnsSnapshot(t *testing.T) {
	d := &Directory{
		local: "local",
		members: map[string]*Member{
			"local": {Name: "local", Shards: []int{0}},
		},
	}
	members := d.Members()
	assert.Equal(t, 1, len(members))
	members[0].Shards = append(members[0].Shards, 9)
	assert.Equal(t, []int{0}, d.members["local"].Shards)
}
