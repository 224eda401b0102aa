package op

import "github.com/rdbshard/core/eval"

// TerminalKind selects how a RangeRead's results are folded before they
// leave the shard (and how they are re-folded across shards at unshard
// time).
type TerminalKind int

const (
	// TerminalNone streams rows as-is (the "vanilla stream" case).
	TerminalNone TerminalKind = iota
	TerminalGroupedMapReduce
	TerminalReduction
	TerminalLength
	TerminalForEach
)

func (k TerminalKind) String() string {
	switch k {
	case TerminalNone:
		return "none"
	case TerminalGroupedMapReduce:
		return "grouped_map_reduce"
	case TerminalReduction:
		return "reduction"
	case TerminalLength:
		return "length"
	case TerminalForEach:
		return "for_each"
	default:
		return "unknown"
	}
}

// ReductionSpec is the base/body pair shared by Reduction and
// GroupedMapReduce terminals: Base seeds an accumulator, Body combines
// an accumulator with one more value. Var1/Var2 name the bindings Body
// expects in its enclosing scope. Group is only meaningful for
// TerminalGroupedMapReduce: evaluated per row (with the row bound under
// Var2) to produce the key the row's reduction accumulates under.
type ReductionSpec struct {
	Base  eval.Term
	Body  eval.Term
	Group eval.Term
	Var1  string
	Var2  string
}

// Terminal attaches a fold to a RangeRead. Only the field matching Kind
// is meaningful.
type Terminal struct {
	Kind      TerminalKind
	Reduction *ReductionSpec // used by both TerminalReduction and TerminalGroupedMapReduce
}

func NoTerminal() *Terminal {
	return nil
}
