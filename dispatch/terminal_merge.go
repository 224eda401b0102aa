package dispatch

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
)

// firstError scans resps in order and returns the first RuntimeError
// result, if any. Error dominance applies identically to both
// single-dimension and hash-sharded unshard: a RuntimeError in any
// shard's range response must surface as a RuntimeError in the merged
// response, before any other merge logic runs.
func firstError(resps []op.RangeReadResp) *eval.RuntimeError {
	for _, r := range resps {
		if r.Result.Kind == op.RangeResultError {
			return r.Result.Err
		}
	}
	return nil
}

// mergeTerminal folds every non-stream terminal shape (GroupedMapReduce,
// Reduction, Length, ForEach) across shard responses. Terminal
// reductions are associative over shard partition, so this same logic
// serves both the single-dimension and the hash-sharded unshard paths.
func mergeTerminal(terminal *op.Terminal, scopes *eval.Scope, resps []op.RangeReadResp, ev eval.Evaluator) (op.RangeResult, error) {
	switch terminal.Kind {
	case op.TerminalLength:
		total := 0
		for _, r := range resps {
			total += r.Result.Length
		}
		return op.LengthResult(total), nil

	case op.TerminalForEach:
		total := 0
		for _, r := range resps {
			total += r.Result.Inserted
		}
		return op.InsertedResult(total), nil

	case op.TerminalReduction:
		spec := terminal.Reduction
		acc, err := evalBase(spec, scopes, ev)
		if err != nil {
			return op.RangeResult{}, err
		}
		for _, r := range resps {
			acc, err = applyBody(spec, scopes, ev, acc, r.Result.Atom)
			if err != nil {
				return op.RangeResult{}, err
			}
		}
		return op.AtomResult(acc), nil

	case op.TerminalGroupedMapReduce:
		spec := terminal.Reduction
		merged := make(map[interface{}]eval.Value)
		for _, r := range resps {
			for g, v := range r.Result.Groups {
				acc, ok := merged[g]
				if !ok {
					var err error
					acc, err = evalBase(spec, scopes, ev)
					if err != nil {
						return op.RangeResult{}, err
					}
				}
				combined, err := applyBody(spec, scopes, ev, acc, v)
				if err != nil {
					return op.RangeResult{}, err
				}
				merged[g] = combined
			}
		}
		return op.GroupsResult(merged), nil

	default:
		return op.RangeResult{}, assertionViolation("unsupported terminal kind %v in mergeTerminal", terminal.Kind)
	}
}

// evalBase evaluates a reduction spec's Base term in a fresh lexical
// scope enclosed by the range read's scopes.
func evalBase(spec *op.ReductionSpec, scopes *eval.Scope, ev eval.Evaluator) (eval.Value, error) {
	env := eval.NewEnv(eval.NewScope(scopes))
	return ev.Eval(spec.Base, env, env.Backtrace)
}

// applyBody evaluates a reduction spec's Body term in a fresh scope
// binding Var1 <- acc, Var2 <- v, so the terminal evaluation cannot
// observe or mutate state from other shards beyond the accumulator.
func applyBody(spec *op.ReductionSpec, scopes *eval.Scope, ev eval.Evaluator, acc, v eval.Value) (eval.Value, error) {
	fresh := eval.NewScope(scopes)
	g1 := fresh.PutInScope(spec.Var1, acc)
	defer g1.Close()
	g2 := fresh.PutInScope(spec.Var2, v)
	defer g2.Close()
	env := eval.NewEnv(fresh)
	return ev.Eval(spec.Body, env, env.Backtrace)
}
