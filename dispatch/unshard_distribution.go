package dispatch

import (
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// UnshardDistributionSingleDim merges key-distribution counts gathered
// from contiguous key-range shards as a union of their histograms. A
// key reported by more than one response gets the sum of its counts;
// the responses are not checked for disjointness.
func UnshardDistributionSingleDim(resps []op.DistributionResp) (op.DistributionResp, error) {
	if len(resps) == 0 {
		return op.DistributionResp{}, assertionViolation("distribution unshard expects at least one response")
	}
	if len(resps) == 1 {
		return resps[0], nil
	}

	merged := region.NewDistributionCounts()
	for _, r := range resps {
		r.KeyCounts.Each(func(k region.Key, count int) {
			existing, _ := merged.Get(k)
			merged.Put(k, existing+count)
		})
	}
	return op.DistributionResp{KeyCounts: merged}, nil
}

// UnshardDistributionHashSharded merges key-distribution counts
// gathered from CPU hash-band shards: each shard sampled the same key
// range but only counted keys hashing into its own band, so no single
// shard's histogram can be trusted as an absolute count. The response
// with the largest key_counts cardinality is taken as the template;
// its buckets are scaled by total_num_keys / total_keys_in_template
// (truncated toward zero) so the merged histogram's shape comes from
// the best-sampled shard while its scale matches the true total.
//
// A single response is returned verbatim, unscaled: scaling a single
// sample against itself is a no-op, and the len(resps) > 1
// precondition the scaled merge relies on (the smallest sampled keys
// across responses must coincide, asserting genuine hash-sharding)
// never has to be checked in that case.
func UnshardDistributionHashSharded(resps []op.DistributionResp) (op.DistributionResp, error) {
	if len(resps) == 0 {
		return op.DistributionResp{}, assertionViolation("distribution unshard expects at least one response")
	}
	if len(resps) == 1 {
		return resps[0], nil
	}

	first, ok := resps[0].KeyCounts.First()
	if ok {
		for _, r := range resps[1:] {
			k, ok := r.KeyCounts.First()
			if ok && k.Compare(first) != 0 {
				return op.DistributionResp{}, assertionViolation("hash-sharded distribution unshard requires every response's smallest sampled key to coincide")
			}
		}
	}

	totalNumKeys := 0
	template := resps[0].KeyCounts
	templateCardinality := template.Len()
	for _, r := range resps {
		totalNumKeys += r.KeyCounts.Sum()
		if r.KeyCounts.Len() > templateCardinality {
			template = r.KeyCounts
			templateCardinality = r.KeyCounts.Len()
		}
	}

	totalKeysInTemplate := template.Sum()
	merged := region.NewDistributionCounts()
	if totalKeysInTemplate == 0 {
		return op.DistributionResp{KeyCounts: merged}, nil
	}
	template.Each(func(k region.Key, count int) {
		merged.Put(k, (count*totalNumKeys)/totalKeysInTemplate)
	})
	return op.DistributionResp{KeyCounts: merged}, nil
}
