package boltstore

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
)

// terminalFolder accumulates one shard's worth of rows into the
// RangeResult shape terminal calls for. It is deliberately local to
// boltstore rather than shared with dispatch's mergeTerminal: this
// folder runs over raw rows from a single shard's cursor scan, while
// dispatch's fold runs over already-folded RangeReadResp values from
// many shards. Both walk the same terminal.Kind switch because the
// shapes are associative, but the inputs differ enough that sharing
// one implementation would mean threading a row/response union through
// every case.
type terminalFolder struct {
	terminal  *op.Terminal
	env       *eval.Env
	evaluator eval.Evaluator

	stream   []eval.Value
	length   int
	inserted int
	haveAcc  bool
	acc      eval.Value
	groups   map[interface{}]eval.Value
}

func newTerminalFolder(terminal *op.Terminal, env *eval.Env, evaluator eval.Evaluator) *terminalFolder {
	f := &terminalFolder{terminal: terminal, env: env, evaluator: evaluator}
	if terminal != nil && terminal.Kind == op.TerminalGroupedMapReduce {
		f.groups = make(map[interface{}]eval.Value)
	}
	return f
}

func (f *terminalFolder) add(row eval.Value) error {
	if f.terminal == nil {
		f.stream = append(f.stream, row)
		return nil
	}

	switch f.terminal.Kind {
	case op.TerminalNone:
		f.stream = append(f.stream, row)
		return nil

	case op.TerminalLength:
		f.length++
		return nil

	case op.TerminalForEach:
		f.inserted++
		return nil

	case op.TerminalReduction:
		spec := f.terminal.Reduction
		if !f.haveAcc {
			acc, err := f.evalBase(spec)
			if err != nil {
				return err
			}
			f.acc = acc
			f.haveAcc = true
		}
		acc, err := f.applyBody(spec, f.acc, row)
		if err != nil {
			return err
		}
		f.acc = acc
		return nil

	case op.TerminalGroupedMapReduce:
		spec := f.terminal.Reduction
		group, err := f.evalGroup(spec, row)
		if err != nil {
			return err
		}
		acc, ok := f.groups[group]
		if !ok {
			acc, err = f.evalBase(spec)
			if err != nil {
				return err
			}
		}
		combined, err := f.applyBody(spec, acc, row)
		if err != nil {
			return err
		}
		f.groups[group] = combined
		return nil

	default:
		return eval.NewRuntimeError("boltstore: unsupported terminal kind %v", f.terminal.Kind)
	}
}

func (f *terminalFolder) result() op.RangeResult {
	if f.terminal == nil {
		return op.StreamResult(f.stream)
	}
	switch f.terminal.Kind {
	case op.TerminalLength:
		return op.LengthResult(f.length)
	case op.TerminalForEach:
		return op.InsertedResult(f.inserted)
	case op.TerminalReduction:
		return op.AtomResult(f.acc)
	case op.TerminalGroupedMapReduce:
		return op.GroupsResult(f.groups)
	default:
		return op.StreamResult(f.stream)
	}
}

func (f *terminalFolder) evalBase(spec *op.ReductionSpec) (eval.Value, error) {
	return f.evaluator.Eval(spec.Base, f.env, f.env.Backtrace)
}

func (f *terminalFolder) applyBody(spec *op.ReductionSpec, acc, v eval.Value) (eval.Value, error) {
	g1 := f.env.Scopes.PutInScope(spec.Var1, acc)
	defer g1.Close()
	g2 := f.env.Scopes.PutInScope(spec.Var2, v)
	defer g2.Close()
	return f.evaluator.Eval(spec.Body, f.env, f.env.Backtrace)
}

func (f *terminalFolder) evalGroup(spec *op.ReductionSpec, row eval.Value) (interface{}, error) {
	if spec.Group == nil {
		return nil, nil
	}
	g := f.env.Scopes.PutInScope(spec.Var2, row)
	defer g.Close()
	v, err := f.evaluator.Eval(spec.Group, f.env, f.env.Backtrace)
	if err != nil {
		return nil, err
	}
	return v, nil
}
