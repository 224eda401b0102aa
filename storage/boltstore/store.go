// Package boltstore implements the exec.Engine / backfill Engine
// contract over github.com/boltdb/bolt. Bolt's single sorted bucket of
// byte keys is exactly the "opaque byte string with a total ordering"
// store-key model the core packages assume: a Cursor.Seek plus
// forward/backward iteration gives range scans and backfill traversal
// directly.
package boltstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"

	"github.com/rdbshard/core/exec"
	"github.com/rdbshard/core/region"
)

const bucketName = "rdbshard"

// entry is the {value, recency} pair stored under each key, so a
// recency floor can be applied during backfill traversal.
type entry struct {
	Value   interface{}
	Recency int64
}

// Store is the local ordered key/value engine. One Store is opened per
// CPU shard's data directory; the hash-band partitioning a shard owns
// is enforced upstream by dispatch, not inside Store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bolt database at path and
// ensures its single bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return fmt.Errorf("boltstore: create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Begin starts a transaction, the exec.Txn this engine's methods
// expect. writable must match whether the caller intends to call any
// of Set/Delete/Modify/EraseRange during this transaction.
func (s *Store) Begin(writable bool) (exec.Txn, error) {
	return s.db.Begin(writable)
}

func txOf(txn exec.Txn) (*bolt.Tx, error) {
	tx, ok := txn.(*bolt.Tx)
	if !ok {
		return nil, fmt.Errorf("boltstore: expected a *bolt.Tx, got %T", txn)
	}
	return tx, nil
}

func bucketOf(tx *bolt.Tx) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(bucketName))
	if b == nil {
		return nil, fmt.Errorf("boltstore: bucket %q missing", bucketName)
	}
	return b, nil
}

func encodeEntry(e entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(raw []byte) (entry, error) {
	var e entry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&e); err != nil {
		return entry{}, err
	}
	return e, nil
}

func cloneKey(k []byte) region.Key {
	out := make(region.Key, len(k))
	copy(out, k)
	return out
}
