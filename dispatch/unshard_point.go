package dispatch

import "github.com/rdbshard/core/op"

// UnshardPointRead passes through the single response a point read
// produces. Point ops never shard into more than one piece, so exactly
// one response is expected.
func UnshardPointRead(resps []op.PointReadResp) (op.PointReadResp, error) {
	if len(resps) != 1 {
		return op.PointReadResp{}, assertionViolation("point read unshard expects exactly one response, got %d", len(resps))
	}
	return resps[0], nil
}

// UnshardWrite passes through the single response a write produces.
// Writes target a single hash cell via MonokeyRegion, so both
// single-dimension and hash-sharded write unshard require exactly one
// response.
func UnshardWrite(resps []op.WriteResp) (op.WriteResp, error) {
	if len(resps) != 1 {
		return op.WriteResp{}, assertionViolation("write unshard expects exactly one response, got %d", len(resps))
	}
	return resps[0], nil
}
