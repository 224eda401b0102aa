package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// distributionRespWire flattens region.DistributionCounts into a plain
// ordered slice pair: the real type wraps an emirpasic/gods red-black
// tree whose fields are all unexported, so gob would silently encode it
// as empty rather than error.
type distributionRespWire struct {
	Keys   []region.Key
	Counts []int
}

func init() {
	gob.Register(distributionRespWire{})
}

// EncodeReadResp serializes r. A RangeReadResp's Result can carry
// arbitrary document values inside Stream/Groups/Atom (eval.Value is
// interface{}); encoding one whose concrete element types were never
// passed to RegisterValueType fails the way any unregistered gob
// interface payload does.
func EncodeReadResp(r op.ReadResp) ([]byte, error) {
	var w interface{}
	switch v := r.(type) {
	case op.DistributionResp:
		wire := distributionRespWire{}
		if v.KeyCounts != nil {
			v.KeyCounts.Each(func(k region.Key, count int) {
				wire.Keys = append(wire.Keys, k)
				wire.Counts = append(wire.Counts, count)
			})
		}
		w = wire
	default:
		w = r
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeReadResp is the inverse of EncodeReadResp.
func DecodeReadResp(data []byte) (op.ReadResp, error) {
	var w interface{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	if dw, ok := w.(distributionRespWire); ok {
		counts := region.NewDistributionCounts()
		for i, k := range dw.Keys {
			counts.Put(k, dw.Counts[i])
		}
		return op.DistributionResp{KeyCounts: counts}, nil
	}
	r, ok := w.(op.ReadResp)
	if !ok {
		return nil, fmt.Errorf("wire: decoded %T does not implement op.ReadResp", w)
	}
	return r, nil
}
