package wire

import (
	"testing"

	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
	"github.com/stretchr/testify/assert"
)

func TestPointReadRoundTrips(t *testing.T) {
	want := op.PointRead{Key: region.Key("users/42")}
	data, err := EncodeReadOp(want)
	assert.NoError(t, err)

	got, err := DecodeReadOp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRangeReadWithoutTermRoundTrips(t *testing.T) {
	want := op.RangeRead{
		KeyRange: region.KeyRange{Left: region.Key("a"), Right: region.Key("z")},
		Maximum:  100,
		Sorting:  op.SortAscending,
	}
	data, err := EncodeReadOp(want)
	assert.NoError(t, err)

	got, err := DecodeReadOp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRangeReadWithTerminalRejected(t *testing.T) {
	withTerminal := op.RangeRead{
		KeyRange: region.FullKeyRange(),
		Terminal: &op.Terminal{Kind: op.TerminalLength},
	}
	_, err := EncodeReadOp(withTerminal)
	assert.Equal(t, ErrNotWireSafe, err)
}

func TestDistributionReadRoundTrips(t *testing.T) {
	want := op.DistributionRead{Range: region.Universe(), MaxDepth: 4}
	data, err := EncodeReadOp(want)
	assert.NoError(t, err)

	got, err := DecodeReadOp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPointWriteRoundTrips(t *testing.T) {
	RegisterValueType(map[string]interface{}{})
	want := op.PointWrite{Key: region.Key("users/42"), Data: map[string]interface{}{"name": "ada"}}
	data, err := EncodeWriteOp(want)
	assert.NoError(t, err)

	got, err := DecodeWriteOp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPointDeleteRoundTrips(t *testing.T) {
	want := op.PointDelete{Key: region.Key("users/42")}
	data, err := EncodeWriteOp(want)
	assert.NoError(t, err)

	got, err := DecodeWriteOp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPointModifyRejected(t *testing.T) {
	_, err := EncodeWriteOp(op.PointModify{Key: region.Key("x")})
	assert.Equal(t, ErrNotWireSafe, err)
}

func TestWriteRespRoundTripsWithError(t *testing.T) {
	want := op.WriteResp{Inserted: 0, Error: assert.AnError}
	data, err := EncodeWriteResp(want)
	assert.NoError(t, err)

	got, err := DecodeWriteResp(data)
	assert.NoError(t, err)
	assert.Equal(t, 0, got.Inserted)
	assert.EqualError(t, got.Error, assert.AnError.Error())
}

func TestWriteRespRoundTripsWithoutError(t *testing.T) {
	want := op.WriteResp{Inserted: 1}
	data, err := EncodeWriteResp(want)
	assert.NoError(t, err)

	got, err := DecodeWriteResp(data)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.Inserted)
	assert.NoError(t, got.Error)
}

func TestPointReadRespRoundTrips(t *testing.T) {
	RegisterValueType(map[string]interface{}{})
	want := op.PointReadResp{Value: map[string]interface{}{"name": "ada"}, Found: true}
	data, err := EncodeReadResp(want)
	assert.NoError(t, err)

	got, err := DecodeReadResp(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDistributionRespRoundTrips(t *testing.T) {
	counts := region.NewDistributionCounts()
	counts.Put(region.Key("a"), 10)
	counts.Put(region.Key("m"), 20)
	want := op.DistributionResp{KeyCounts: counts}

	data, err := EncodeReadResp(want)
	assert.NoError(t, err)

	got, err := DecodeReadResp(data)
	assert.NoError(t, err)
	gotResp := got.(op.DistributionResp)
	assert.Equal(t, 2, gotResp.KeyCounts.Len())
	n, ok := gotResp.KeyCounts.Get(region.Key("m"))
	assert.True(t, ok)
	assert.Equal(t, 20, n)
}

func TestDeleteKeyChunkRoundTrips(t *testing.T) {
	want := op.DeleteKey{Key: region.Key("users/42"), Recency: 7}
	data, err := EncodeChunk(want)
	assert.NoError(t, err)

	got, err := DecodeChunk(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeleteRangeChunkRoundTrips(t *testing.T) {
	want := op.DeleteRange{Range: region.Universe()}
	data, err := EncodeChunk(want)
	assert.NoError(t, err)

	got, err := DecodeChunk(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKeyValuePairChunkRoundTrips(t *testing.T) {
	RegisterValueType(map[string]interface{}{})
	want := op.KeyValuePair{AtomVal: op.Atom{
		Key:     region.Key("users/42"),
		Value:   map[string]interface{}{"name": "ada"},
		Recency: 3,
	}}
	data, err := EncodeChunk(want)
	assert.NoError(t, err)

	got, err := DecodeChunk(data)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
