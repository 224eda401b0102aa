package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

type pointReadWire struct{ Key region.Key }

type rangeReadWire struct {
	KeyRange region.KeyRange
	Maximum  int
	Sorting  op.SortOrder
}

type distributionReadWire struct {
	Range    region.Region
	MaxDepth int
}

// EncodeReadOp serializes r. A RangeRead encodes only when it carries
// no compiled term (no Scopes, no Transform, no Terminal) — see
// ErrNotWireSafe.
func EncodeReadOp(r op.ReadOp) ([]byte, error) {
	var w interface{}
	switch v := r.(type) {
	case op.PointRead:
		w = pointReadWire{Key: v.Key}
	case op.RangeRead:
		if v.Scopes != nil || len(v.Transform) > 0 || v.Terminal != nil {
			return nil, ErrNotWireSafe
		}
		w = rangeReadWire{KeyRange: v.KeyRange, Maximum: v.Maximum, Sorting: v.Sorting}
	case op.DistributionRead:
		w = distributionReadWire{Range: v.Range, MaxDepth: v.MaxDepth}
	default:
		return nil, fmt.Errorf("wire: unknown ReadOp %T", r)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeReadOp is the inverse of EncodeReadOp.
func DecodeReadOp(data []byte) (op.ReadOp, error) {
	var w interface{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	switch v := w.(type) {
	case pointReadWire:
		return op.PointRead{Key: v.Key}, nil
	case rangeReadWire:
		return op.RangeRead{KeyRange: v.KeyRange, Maximum: v.Maximum, Sorting: v.Sorting}, nil
	case distributionReadWire:
		return op.DistributionRead{Range: v.Range, MaxDepth: v.MaxDepth}, nil
	default:
		return nil, fmt.Errorf("wire: decoded unexpected type %T", w)
	}
}
