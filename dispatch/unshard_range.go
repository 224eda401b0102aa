package dispatch

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// UnshardSingleDim merges the per-shard responses of a range read that
// was sharded purely along the key dimension. Shards are disjoint,
// contiguous key ranges and resps must be supplied in that same
// left-to-right order; the merged key range is the union of every
// shard's range.
func UnshardSingleDim(terminal *op.Terminal, scopes *eval.Scope, resps []op.RangeReadResp, ev eval.Evaluator) (op.RangeReadResp, error) {
	if len(resps) == 0 {
		return op.RangeReadResp{}, assertionViolation("single-dimension unshard expects at least one response")
	}

	if rerr := firstError(resps); rerr != nil {
		merged := mergedKeyRange(resps)
		return op.RangeReadResp{KeyRange: merged, Result: op.ErrorResult(rerr)}, nil
	}

	merged := mergedKeyRange(resps)

	if terminal == nil || terminal.Kind == op.TerminalNone {
		var rows []eval.Value
		var truncated bool
		var lastConsidered region.Key
		for _, r := range resps {
			rows = append(rows, r.Result.Stream...)
			if r.Truncated {
				truncated = true
			}
			if r.LastConsideredKey != nil && (lastConsidered == nil || r.LastConsideredKey.Compare(lastConsidered) > 0) {
				lastConsidered = r.LastConsideredKey
			}
		}
		return op.RangeReadResp{
			KeyRange:          merged,
			Truncated:         truncated,
			LastConsideredKey: lastConsidered,
			Result:            op.StreamResult(rows),
		}, nil
	}

	result, err := mergeTerminal(terminal, scopes, resps, ev)
	if err != nil {
		return op.RangeReadResp{}, err
	}
	return op.RangeReadResp{KeyRange: merged, Result: result}, nil
}

func mergedKeyRange(resps []op.RangeReadResp) region.KeyRange {
	merged := resps[0].KeyRange
	for _, r := range resps[1:] {
		merged = merged.Union(r.KeyRange)
	}
	return merged
}
