package boltstore

import (
	"context"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

func seedRows(t *testing.T, s *Store, rows map[string]string) *bolt.Tx {
	txn, err := s.Begin(true)
	assert.NoError(t, err)
	for k, v := range rows {
		assert.NoError(t, s.Set(context.Background(), txn, region.Key(k), v, 1))
	}
	return txn.(*bolt.Tx)
}

func TestRgetSliceStreamsAscending(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "2", "c": "3"})

	env := eval.NewEnv(eval.NewScope(nil))
	result, last, truncated, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 100, env, eval.FuncEvaluator{}, nil, nil, op.SortAscending)
	assert.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, region.Key("c"), last)
	assert.Equal(t, op.RangeResultStream, result.Kind)
	assert.Equal(t, 3, len(result.Stream))
	assert.Equal(t, op.Atom{Key: region.Key("a"), Value: "1"}, result.Stream[0])
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceStreamsDescending(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "2", "c": "3"})

	env := eval.NewEnv(eval.NewScope(nil))
	result, last, _, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 100, env, eval.FuncEvaluator{}, nil, nil, op.SortDescending)
	assert.NoError(t, err)
	assert.Equal(t, region.Key("a"), last)
	assert.Equal(t, op.Atom{Key: region.Key("c"), Value: "3"}, result.Stream[0])
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceTruncatesAtMaxRows(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "2", "c": "3"})

	env := eval.NewEnv(eval.NewScope(nil))
	result, last, truncated, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 2, env, eval.FuncEvaluator{}, nil, nil, op.SortAscending)
	assert.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, region.Key("b"), last)
	assert.Equal(t, 2, len(result.Stream))
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceRespectsKeyRangeBounds(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"})

	kr := region.KeyRange{Left: region.Key("b"), Right: region.Key("c")}
	env := eval.NewEnv(eval.NewScope(nil))
	result, _, _, err := s.RgetSlice(context.Background(), tx, kr, 100, env, eval.FuncEvaluator{}, nil, nil, op.SortAscending)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result.Stream))
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceLengthTerminal(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "2"})

	env := eval.NewEnv(eval.NewScope(nil))
	terminal := &op.Terminal{Kind: op.TerminalLength}
	result, _, _, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 100, env, eval.FuncEvaluator{}, nil, terminal, op.SortAscending)
	assert.NoError(t, err)
	assert.Equal(t, op.RangeResultLength, result.Kind)
	assert.Equal(t, 2, result.Length)
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceReductionTerminal(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "1", "b": "1", "c": "1"})

	env := eval.NewEnv(eval.NewScope(nil))
	spec := &op.ReductionSpec{
		Base: eval.FuncTerm(func(e *eval.Env) (eval.Value, error) { return 0, nil }),
		Body: eval.FuncTerm(func(e *eval.Env) (eval.Value, error) {
			acc, _ := e.Scopes.Get("acc")
			row, _ := e.Scopes.Get("v")
			atom := row.(op.Atom)
			return acc.(int) + len(atom.Value.(string)), nil
		}),
		Var1: "acc",
		Var2: "v",
	}
	terminal := &op.Terminal{Kind: op.TerminalReduction, Reduction: spec}
	result, _, _, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 100, env, eval.FuncEvaluator{}, nil, terminal, op.SortAscending)
	assert.NoError(t, err)
	assert.Equal(t, op.RangeResultAtom, result.Kind)
	assert.Equal(t, 3, result.Atom)
	assert.NoError(t, tx.Commit())
}

func TestRgetSliceTransformFiltersRows(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	tx := seedRows(t, s, map[string]string{"a": "keep", "b": "drop"})

	env := eval.NewEnv(eval.NewScope(nil))
	filter := eval.FuncTerm(func(e *eval.Env) (eval.Value, error) {
		row, _ := e.Scopes.Get("row")
		atom := row.(op.Atom)
		if atom.Value == "drop" {
			return skipRow, nil
		}
		return row, nil
	})
	result, _, _, err := s.RgetSlice(context.Background(), tx, region.FullKeyRange(), 100, env, eval.FuncEvaluator{}, []eval.Term{filter}, nil, op.SortAscending)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Stream))
	assert.NoError(t, tx.Commit())
}
