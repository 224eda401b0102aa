package dispatch

import (
	"testing"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

func intBase(n int) eval.Term {
	return eval.FuncTerm(func(env *eval.Env) (eval.Value, error) { return n, nil })
}

func sumBody() eval.Term {
	return eval.FuncTerm(func(env *eval.Env) (eval.Value, error) {
		acc, _ := env.Scopes.Get("acc")
		v, _ := env.Scopes.Get("v")
		return acc.(int) + v.(int), nil
	})
}

func TestUnshardPointReadRequiresExactlyOne(t *testing.T) {
	if _, err := UnshardPointRead(nil); err == nil {
		t.Fatalf("expected an error for zero responses")
	}
	resp := op.PointReadResp{Value: 7, Found: true}
	got, err := UnshardPointRead([]op.PointReadResp{resp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != 7 || !got.Found {
		t.Fatalf("got %+v, want pass-through of the single response", got)
	}
	if _, err := UnshardPointRead([]op.PointReadResp{resp, resp}); err == nil {
		t.Fatalf("expected an error for more than one response")
	}
}

func TestUnshardWriteRequiresExactlyOne(t *testing.T) {
	resp := op.WriteResp{Inserted: 1}
	if _, err := UnshardWrite([]op.WriteResp{}); err == nil {
		t.Fatalf("expected an error for zero responses")
	}
	got, err := UnshardWrite([]op.WriteResp{resp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Inserted != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestUnshardSingleDimConcatenatesInOrder(t *testing.T) {
	left := op.RangeReadResp{
		KeyRange: region.KeyRange{Left: region.Key("a"), Right: region.Key("m"), RightOpen: true},
		Result:   op.StreamResult([]eval.Value{1, 2}),
	}
	right := op.RangeReadResp{
		KeyRange: region.KeyRange{Left: region.Key("m"), Right: region.Key("z")},
		Result:   op.StreamResult([]eval.Value{3, 4}),
	}
	merged, err := UnshardSingleDim(op.NoTerminal(), nil, []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := merged.Result.Stream
	if len(rows) != 4 || rows[0] != 1 || rows[3] != 4 {
		t.Fatalf("expected in-order concatenation, got %v", rows)
	}
	if merged.Truncated {
		t.Fatalf("expected Truncated=false when no shard truncated")
	}
}

func TestUnshardSingleDimErrorDominance(t *testing.T) {
	rerr := eval.NewRuntimeError("boom")
	left := op.RangeReadResp{Result: op.StreamResult([]eval.Value{1})}
	mid := op.RangeReadResp{Result: op.ErrorResult(rerr)}
	right := op.RangeReadResp{Result: op.StreamResult([]eval.Value{2})}
	merged, err := UnshardSingleDim(op.NoTerminal(), nil, []op.RangeReadResp{left, mid, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if merged.Result.Kind != op.RangeResultError || merged.Result.Err != rerr {
		t.Fatalf("expected the error result to dominate, got %+v", merged.Result)
	}
}

func TestUnshardSingleDimPropagatesTruncation(t *testing.T) {
	left := op.RangeReadResp{Result: op.StreamResult([]eval.Value{1}), Truncated: false}
	right := op.RangeReadResp{Result: op.StreamResult([]eval.Value{2}), Truncated: true, LastConsideredKey: region.Key("n")}
	merged, err := UnshardSingleDim(op.NoTerminal(), nil, []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !merged.Truncated || merged.LastConsideredKey.Compare(region.Key("n")) != 0 {
		t.Fatalf("expected truncation to propagate with its watermark, got %+v", merged)
	}
}

func TestUnshardSingleDimReduction(t *testing.T) {
	spec := &op.ReductionSpec{Base: intBase(0), Body: sumBody(), Var1: "acc", Var2: "v"}
	terminal := &op.Terminal{Kind: op.TerminalReduction, Reduction: spec}
	scopes := eval.NewScope(nil)
	left := op.RangeReadResp{Result: op.AtomResult(3)}
	right := op.RangeReadResp{Result: op.AtomResult(4)}
	merged, err := UnshardSingleDim(terminal, scopes, []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Result.Atom.(int) != 7 {
		t.Fatalf("expected reduction to sum shard atoms to 7, got %v", merged.Result.Atom)
	}
}

func TestUnshardSingleDimLengthAndForEach(t *testing.T) {
	lenTerminal := &op.Terminal{Kind: op.TerminalLength}
	left := op.RangeReadResp{Result: op.LengthResult(3)}
	right := op.RangeReadResp{Result: op.LengthResult(5)}
	merged, err := UnshardSingleDim(lenTerminal, nil, []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Result.Length != 8 {
		t.Fatalf("expected summed length 8, got %d", merged.Result.Length)
	}

	feTerminal := &op.Terminal{Kind: op.TerminalForEach}
	left = op.RangeReadResp{Result: op.InsertedResult(1)}
	right = op.RangeReadResp{Result: op.InsertedResult(2)}
	merged, err = UnshardSingleDim(feTerminal, nil, []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Result.Inserted != 3 {
		t.Fatalf("expected summed inserted count 3, got %d", merged.Result.Inserted)
	}
}

func TestUnshardSingleDimGroupedMapReduce(t *testing.T) {
	spec := &op.ReductionSpec{Base: intBase(0), Body: sumBody(), Var1: "acc", Var2: "v"}
	terminal := &op.Terminal{Kind: op.TerminalGroupedMapReduce, Reduction: spec}
	left := op.RangeReadResp{Result: op.GroupsResult(map[interface{}]eval.Value{"a": 1, "b": 2})}
	right := op.RangeReadResp{Result: op.GroupsResult(map[interface{}]eval.Value{"a": 3})}
	merged, err := UnshardSingleDim(terminal, eval.NewScope(nil), []op.RangeReadResp{left, right}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	groups := merged.Result.Groups
	if groups["a"].(int) != 4 || groups["b"].(int) != 2 {
		t.Fatalf("expected per-group sums a=4 b=2, got %+v", groups)
	}
}

func TestUnshardHashShardedWatermarkIsMinimumOfSaturated(t *testing.T) {
	notSaturated := op.RangeReadResp{Result: op.StreamResult([]eval.Value{1}), Truncated: false}
	saturatedLate := op.RangeReadResp{Result: op.StreamResult([]eval.Value{2}), Truncated: true, LastConsideredKey: region.Key("p")}
	saturatedEarly := op.RangeReadResp{Result: op.StreamResult([]eval.Value{3}), Truncated: true, LastConsideredKey: region.Key("f")}
	merged, err := UnshardHashSharded(op.NoTerminal(), nil, []op.RangeReadResp{notSaturated, saturatedLate, saturatedEarly}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !merged.Truncated || merged.LastConsideredKey.Compare(region.Key("f")) != 0 {
		t.Fatalf("expected watermark to be the minimum saturated cut 'f', got %+v", merged)
	}
	if len(merged.Result.Stream) != 3 {
		t.Fatalf("expected all rows merged regardless of interleaving, got %v", merged.Result.Stream)
	}
}

func TestUnshardHashShardedNoSaturation(t *testing.T) {
	a := op.RangeReadResp{Result: op.StreamResult([]eval.Value{1})}
	b := op.RangeReadResp{Result: op.StreamResult([]eval.Value{2})}
	merged, err := UnshardHashSharded(op.NoTerminal(), nil, []op.RangeReadResp{a, b}, eval.FuncEvaluator{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Truncated {
		t.Fatalf("expected no truncation when no shard saturated")
	}
}

func TestUnshardDistributionSingleDimSumsCountsPerKey(t *testing.T) {
	left := region.NewDistributionCounts()
	left.Put(region.Key("a"), 2)
	right := region.NewDistributionCounts()
	right.Put(region.Key("a"), 3)
	right.Put(region.Key("z"), 1)

	merged, err := UnshardDistributionSingleDim([]op.DistributionResp{
		{KeyCounts: left},
		{KeyCounts: right},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := merged.KeyCounts.Get(region.Key("a")); got != 5 {
		t.Fatalf("expected merged count for 'a' to be 5, got %d", got)
	}
	if got, _ := merged.KeyCounts.Get(region.Key("z")); got != 1 {
		t.Fatalf("expected merged count for 'z' to be 1, got %d", got)
	}
}

func TestUnshardDistributionHashShardedSingleResponseIsUnscaled(t *testing.T) {
	one := region.NewDistributionCounts()
	one.Put(region.Key("a"), 10)

	merged, err := UnshardDistributionHashSharded([]op.DistributionResp{{KeyCounts: one}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := merged.KeyCounts.Get(region.Key("a")); got != 10 {
		t.Fatalf("expected a single response to short-circuit unscaled, got %d", got)
	}
}

func TestUnshardDistributionHashShardedScalesTemplateByTotal(t *testing.T) {
	a := region.NewDistributionCounts()
	a.Put(region.Key("a"), 3)
	a.Put(region.Key("b"), 2)
	b := region.NewDistributionCounts()
	b.Put(region.Key("a"), 4)

	merged, err := UnshardDistributionHashSharded([]op.DistributionResp{{KeyCounts: a}, {KeyCounts: b}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a is the larger-cardinality template (2 buckets vs 1); total_num_keys=9,
	// total_keys_in_template=5, so a's buckets scale by 9/5 truncated toward zero.
	if got, _ := merged.KeyCounts.Get(region.Key("a")); got != 5 {
		t.Fatalf("expected template bucket 'a' scaled to 5, got %d", got)
	}
	if got, _ := merged.KeyCounts.Get(region.Key("b")); got != 3 {
		t.Fatalf("expected template bucket 'b' scaled to 3, got %d", got)
	}
}

func TestUnshardDistributionHashShardedRequiresCoincidingSmallestKeys(t *testing.T) {
	a := region.NewDistributionCounts()
	a.Put(region.Key("a"), 3)
	b := region.NewDistributionCounts()
	b.Put(region.Key("z"), 4)

	if _, err := UnshardDistributionHashSharded([]op.DistributionResp{{KeyCounts: a}, {KeyCounts: b}}); err == nil {
		t.Fatalf("expected an assertion violation when smallest sampled keys diverge")
	}
}

func TestUnshardDistributionHashShardedIdenticalBucketsSumCounts(t *testing.T) {
	a := region.NewDistributionCounts()
	a.Put(region.Key("a"), 5)
	b := region.NewDistributionCounts()
	b.Put(region.Key("a"), 7)

	// Both responses hold the same single bucket, so a is the template and
	// its 5 scales by 12/5 to the plain sum of both counts.
	merged, err := UnshardDistributionHashSharded([]op.DistributionResp{{KeyCounts: a}, {KeyCounts: b}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := merged.KeyCounts.Get(region.Key("a")); got != 12 {
		t.Fatalf("expected identical buckets to merge to the summed count 12, got %d", got)
	}
}
