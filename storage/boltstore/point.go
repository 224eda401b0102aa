package boltstore

import (
	"context"

	"github.com/rdbshard/core/eval"
	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/op"
	"github.com/rdbshard/core/region"
)

func (s *Store) Get(ctx context.Context, txn exec.Txn, key region.Key) (interface{}, bool, error) {
	tx, err := txOf(txn)
	if err != nil {
		return nil, false, err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return nil, false, err
	}
	raw := b.Get(key)
	if raw == nil {
		return nil, false, nil
	}
	e, err := decodeEntry(raw)
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *Store) Set(ctx context.Context, txn exec.Txn, key region.Key, value interface{}, timestamp int64) error {
	tx, err := txOf(txn)
	if err != nil {
		return err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return err
	}
	raw, err := encodeEntry(entry{Value: value, Recency: timestamp})
	if err != nil {
		return err
	}
	return b.Put(key, raw)
}

func (s *Store) Delete(ctx context.Context, txn exec.Txn, key region.Key, timestamp int64) error {
	tx, err := txOf(txn)
	if err != nil {
		return err
	}
	b, err := bucketOf(tx)
	if err != nil {
		return err
	}
	return b.Delete(key)
}

// Modify loads the current value at primaryKey (binding it into env as
// "val"), evaluates mapping, and applies the result to key according
// to modifyOp: Upsert always writes the result, Replace only writes it
// when primaryKey already existed, Delete removes key instead of
// writing.
func (s *Store) Modify(ctx context.Context, txn exec.Txn, primaryKey, key region.Key, modifyOp op.ModifyOp, env *eval.Env, evaluator eval.Evaluator, mapping eval.Term, timestamp int64) (int, error) {
	cur, found, err := s.Get(ctx, txn, primaryKey)
	if err != nil {
		return 0, err
	}

	guard := env.Scopes.PutInScope("val", cur)
	defer guard.Close()
	result, err := evaluator.Eval(mapping, env, env.Backtrace)
	if err != nil {
		return 0, err
	}

	switch modifyOp {
	case op.ModifyDelete:
		if err := s.Delete(ctx, txn, key, timestamp); err != nil {
			return 0, err
		}
		return 1, nil
	case op.ModifyReplace:
		if !found {
			return 0, nil
		}
		if err := s.Set(ctx, txn, key, result, timestamp); err != nil {
			return 0, err
		}
		return 1, nil
	default: // ModifyUpsert
		if err := s.Set(ctx, txn, key, result, timestamp); err != nil {
			return 0, err
		}
		return 1, nil
	}
}
