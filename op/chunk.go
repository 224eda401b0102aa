package op

import "github.com/rdbshard/core/region"

// Chunk is the closed set of backfill-chunk variants streamed from a
// producer to a consumer.
type Chunk interface {
	chunk()
}

// DeleteKey asks the consumer to delete a single key at recency.
type DeleteKey struct {
	Key     region.Key
	Recency int64
}

func (DeleteKey) chunk() {}

// DeleteRange asks the consumer to erase everything inside Range.
type DeleteRange struct {
	Range region.Region
}

func (DeleteRange) chunk() {}

// Atom is a single key/value/recency triple, the payload of a
// KeyValuePair chunk.
type Atom struct {
	Key     region.Key
	Value   interface{}
	Recency int64
}

// KeyValuePair delivers one key/value pair.
type KeyValuePair struct {
	AtomVal Atom
}

func (KeyValuePair) chunk() {}

// ChunkRegion reports the region a backfill chunk affects: delete-key
// and key-value chunks are monokey; delete-range carries its own
// region.
func ChunkRegion(c Chunk) region.Region {
	switch v := c.(type) {
	case DeleteKey:
		return region.MonokeyRegion(v.Key)
	case DeleteRange:
		return v.Range
	case KeyValuePair:
		return region.MonokeyRegion(v.AtomVal.Key)
	default:
		panic("op: unknown Chunk variant")
	}
}
