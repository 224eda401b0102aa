package dispatch

import (
	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// UnshardHashSharded merges the per-shard responses of a range read
// that was sharded across CPU hash bands. Every shard covers the same
// key range but only the keys that hash into its own band, so rows
// from different shards interleave arbitrarily in key order and cannot
// simply be concatenated in resps order the way UnshardSingleDim does.
//
// If any shard was capped (Truncated), the merged response can only
// promise completeness up to the MINIMUM of the truncated shards'
// LastConsideredKey: a shard that ran to completion may hold keys past
// that watermark, but a shard that hit its cap first might also have
// unseen keys below it, so the merged cursor must restart no later
// than the earliest cap of any saturated shard.
func UnshardHashSharded(terminal *op.Terminal, scopes *eval.Scope, resps []op.RangeReadResp, ev eval.Evaluator) (op.RangeReadResp, error) {
	if len(resps) == 0 {
		return op.RangeReadResp{}, assertionViolation("hash-sharded unshard expects at least one response")
	}

	if rerr := firstError(resps); rerr != nil {
		return op.RangeReadResp{KeyRange: resps[0].KeyRange, Result: op.ErrorResult(rerr)}, nil
	}

	watermark, truncated := hashWatermark(resps)

	if terminal == nil || terminal.Kind == op.TerminalNone {
		var rows []eval.Value
		for _, r := range resps {
			rows = append(rows, r.Result.Stream...)
		}
		return op.RangeReadResp{
			KeyRange:          resps[0].KeyRange,
			Truncated:         truncated,
			LastConsideredKey: watermark,
			Result:            op.StreamResult(rows),
		}, nil
	}

	result, err := mergeTerminal(terminal, scopes, resps, ev)
	if err != nil {
		return op.RangeReadResp{}, err
	}
	return op.RangeReadResp{
		KeyRange:          resps[0].KeyRange,
		Truncated:         truncated,
		LastConsideredKey: watermark,
		Result:            result,
	}, nil
}

// hashWatermark computes the minimum LastConsideredKey over every
// saturated (truncated) shard. It returns truncated=false, a nil key
// when no shard saturated.
func hashWatermark(resps []op.RangeReadResp) (region.Key, bool) {
	var watermark region.Key
	saturated := false
	for _, r := range resps {
		if !r.Truncated {
			continue
		}
		if !saturated || r.LastConsideredKey.Compare(watermark) < 0 {
			watermark = r.LastConsideredKey
			saturated = true
		}
	}
	return watermark, saturated
}
