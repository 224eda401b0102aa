package boltstore

import (
	"context"

	"github.com/boltdb/bolt"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

// RgetSlice walks keyRange with a bolt cursor in the requested order,
// runs each row through transform (bound into env.Scopes as "row"),
// and folds whatever survives through terminal. It stops after maxRows
// rows have been examined, whether or not they passed transform.
func (s *Store) RgetSlice(ctx context.Context, txn exec.Txn, keyRange region.KeyRange, maxRows int, env *eval.Env, evaluator eval.Evaluator, transform []eval.Term, terminal *op.Terminal, sorting op.SortOrder) (op.RangeResult, region.Key, bool, error) {
	tx, err := txOf(txn)
	if err != nil {
		return op.RangeResult{}, nil, false, err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return op.RangeResult{}, nil, false, err
	}

	c := b.Cursor()
	descending := sorting == op.SortDescending

	var k, raw []byte
	if descending {
		k, raw = seekDescendingStart(c, keyRange)
	} else {
		k, raw = seekAscendingStart(c, keyRange)
	}

	folder := newTerminalFolder(terminal, env, evaluator)
	var lastConsidered region.Key
	truncated := false
	examined := 0

	for k != nil {
		if !keyRange.ContainsKey(k) {
			if descending && belowLeft(keyRange, k) {
				break
			}
			if !descending && aboveRight(keyRange, k) {
				break
			}
			if descending {
				k, raw = c.Prev()
			} else {
				k, raw = c.Next()
			}
			continue
		}

		if examined >= maxRows {
			truncated = true
			break
		}
		examined++
		lastConsidered = cloneKey(k)

		e, err := decodeEntry(raw)
		if err != nil {
			return op.RangeResult{}, nil, false, err
		}

		row, keep, err := applyTransform(transform, env, evaluator, lastConsidered, e.Value)
		if err != nil {
			if rerr, ok := err.(*eval.RuntimeError); ok {
				return op.ErrorResult(rerr), lastConsidered, truncated, nil
			}
			return op.RangeResult{}, nil, false, err
		}
		if keep {
			if err := folder.add(row); err != nil {
				if rerr, ok := err.(*eval.RuntimeError); ok {
					return op.ErrorResult(rerr), lastConsidered, truncated, nil
				}
				return op.RangeResult{}, nil, false, err
			}
		}

		if descending {
			k, raw = c.Prev()
		} else {
			k, raw = c.Next()
		}
	}

	return folder.result(), lastConsidered, truncated, nil
}

func seekAscendingStart(c *bolt.Cursor, kr region.KeyRange) ([]byte, []byte) {
	if kr.UnboundedLeft {
		return c.First()
	}
	k, raw := c.Seek(kr.Left)
	if k != nil && kr.LeftOpen && string(k) == string(kr.Left) {
		return c.Next()
	}
	return k, raw
}

func seekDescendingStart(c *bolt.Cursor, kr region.KeyRange) ([]byte, []byte) {
	if kr.UnboundedRight {
		return c.Last()
	}
	k, raw := c.Seek(kr.Right)
	if k == nil {
		return c.Last()
	}
	if string(k) != string(kr.Right) || kr.RightOpen {
		return c.Prev()
	}
	return k, raw
}

func aboveRight(kr region.KeyRange, k []byte) bool {
	if kr.UnboundedRight {
		return false
	}
	cmp := region.Key(k).Compare(kr.Right)
	return cmp > 0 || (cmp == 0 && kr.RightOpen)
}

func belowLeft(kr region.KeyRange, k []byte) bool {
	if kr.UnboundedLeft {
		return false
	}
	cmp := region.Key(k).Compare(kr.Left)
	return cmp < 0 || (cmp == 0 && kr.LeftOpen)
}

// applyTransform threads row through each transform term in sequence,
// binding the current value into env.Scopes as "row" before evaluating
// each step. A step returning skipRow drops the row from the scan.
func applyTransform(transform []eval.Term, env *eval.Env, evaluator eval.Evaluator, key region.Key, value interface{}) (interface{}, bool, error) {
	row := interface{}(op.Atom{Key: key, Value: value})
	for _, term := range transform {
		guard := env.Scopes.PutInScope("row", row)
		v, err := evaluator.Eval(term, env, env.Backtrace)
		guard.Close()
		if err != nil {
			return nil, false, err
		}
		if v == skipRow {
			return nil, false, nil
		}
		row = v
	}
	return row, true, nil
}

// skipRow is the sentinel a transform term returns to filter a row out
// of the scan entirely.
var skipRow = struct{ skip bool }{skip: true}
