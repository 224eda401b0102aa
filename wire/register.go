// Package wire encodes the data-only slice of op's read/write/chunk
// variants for transport between nodes, the way cluster/node.go gob-
// encodes nodeMeta and cluster/work_queue.go JSON-encodes task
// payloads. It deliberately does not attempt to serialize a compiled
// expression term (eval.Term): that package models a query body as a
// Go closure (eval.FuncTerm), and a closure can never cross a gob
// wire. A RangeRead that carries a populated term (Scopes, a Transform
// or a Terminal) and every PointModify return ErrNotWireSafe;
// everything else — point reads/writes/deletes, distribution reads,
// backfill chunks — round-trips.
package wire

import (
	"encoding/gob"

	"github.com/rdbshard/core/op"
)

func init() {
	gob.Register(pointReadWire{})
	gob.Register(rangeReadWire{})
	gob.Register(distributionReadWire{})
	gob.Register(pointWriteWire{})
	gob.Register(pointDeleteWire{})
	gob.Register(deleteKeyWire{})
	gob.Register(deleteRangeWire{})
	gob.Register(keyValuePairWire{})

	gob.Register(op.PointReadResp{})
	gob.Register(op.RangeReadResp{})
	gob.Register(op.DistributionResp{})
}

// RegisterValueType makes v's concrete type safe to appear as document
// data inside a PointWrite, a KeyValuePair chunk, or a streamed range
// result — gob requires every concrete type behind an interface{} to be
// registered before it can be decoded back out of one. Callers holding
// a concrete document type should call this once at startup.
func RegisterValueType(v interface{}) {
	gob.Register(v)
}
