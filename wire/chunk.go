package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

type deleteKeyWire struct {
	Key     region.Key
	Recency int64
}

type deleteRangeWire struct{ Range region.Region }

type keyValuePairWire struct {
	Key     region.Key
	Value   interface{}
	Recency int64
}

// EncodeChunk serializes a single backfill chunk. A KeyValuePair's
// document value must have had its concrete type passed to
// RegisterValueType beforehand.
func EncodeChunk(c op.Chunk) ([]byte, error) {
	var w interface{}
	switch v := c.(type) {
	case op.DeleteKey:
		w = deleteKeyWire{Key: v.Key, Recency: v.Recency}
	case op.DeleteRange:
		w = deleteRangeWire{Range: v.Range}
	case op.KeyValuePair:
		w = keyValuePairWire{Key: v.AtomVal.Key, Value: v.AtomVal.Value, Recency: v.AtomVal.Recency}
	default:
		return nil, fmt.Errorf("wire: unknown Chunk %T", c)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeChunk is the inverse of EncodeChunk.
func DecodeChunk(data []byte) (op.Chunk, error) {
	var w interface{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	switch v := w.(type) {
	case deleteKeyWire:
		return op.DeleteKey{Key: v.Key, Recency: v.Recency}, nil
	case deleteRangeWire:
		return op.DeleteRange{Range: v.Range}, nil
	case keyValuePairWire:
		return op.KeyValuePair{AtomVal: op.Atom{Key: v.Key, Value: v.Value, Recency: v.Recency}}, nil
	default:
		return nil, fmt.Errorf("wire: decoded unexpected type %T", w)
	}
}
