package wire

import "errors"

// ErrNotWireSafe is returned when encoding an op that carries a
// compiled expression term: eval.Term here stands in for whatever a
// real expression runtime compiles queries down to, and a Go closure
// (eval.FuncTerm) can never be gob-encoded. A RangeRead that carries
// no populated term (no scopes, no transform, no terminal) encodes
// fine; a PointModify is always rejected, with or without a Mapping.
var ErrNotWireSafe = errors.New("wire: op carries a compiled term that cannot be serialized")
