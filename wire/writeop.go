package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

type pointWriteWire struct {
	Key  region.Key
	Data interface{}
}

type pointDeleteWire struct{ Key region.Key }

// EncodeWriteOp serializes w. PointModify is never wire-safe — it
// always carries a Mapping term — and returns ErrNotWireSafe.
func EncodeWriteOp(w op.WriteOp) ([]byte, error) {
	var wv interface{}
	switch v := w.(type) {
	case op.PointWrite:
		wv = pointWriteWire{Key: v.Key, Data: v.Data}
	case op.PointModify:
		return nil, ErrNotWireSafe
	case op.PointDelete:
		wv = pointDeleteWire{Key: v.Key}
	default:
		return nil, fmt.Errorf("wire: unknown WriteOp %T", w)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&wv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeWriteOp is the inverse of EncodeWriteOp.
func DecodeWriteOp(data []byte) (op.WriteOp, error) {
	var wv interface{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wv); err != nil {
		return nil, err
	}
	switch v := wv.(type) {
	case pointWriteWire:
		return op.PointWrite{Key: v.Key, Data: v.Data}, nil
	case pointDeleteWire:
		return op.PointDelete{Key: v.Key}, nil
	default:
		return nil, fmt.Errorf("wire: decoded unexpected type %T", wv)
	}
}

// WriteResp's wire form swaps the Go error value for a message string:
// error is an interface, and an arbitrary concrete error type (e.g. one
// wrapping a file path or a pointer) is exactly the kind of unregistered
// payload gob.Register can't anticipate.
type writeRespWire struct {
	Inserted int
	ErrMsg   string
	HasError bool
}

// EncodeWriteResp serializes r.
func EncodeWriteResp(r op.WriteResp) ([]byte, error) {
	w := writeRespWire{Inserted: r.Inserted}
	if r.Error != nil {
		w.HasError = true
		w.ErrMsg = r.Error.Error()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeWriteResp is the inverse of EncodeWriteResp.
func DecodeWriteResp(data []byte) (op.WriteResp, error) {
	var w writeRespWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return op.WriteResp{}, err
	}
	resp := op.WriteResp{Inserted: w.Inserted}
	if w.HasError {
		resp.Error = fmt.Errorf("%s", w.ErrMsg)
	}
	return resp, nil
}
