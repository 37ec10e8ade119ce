// Package bbolt provides a BoltDB-backed implementation of store.Store.
package bbolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/xtding233/casino-core/internal/store"
)

const recordBucket = "casino"

// Store keeps every record in one bucket keyed by store composite keys.
type Store struct {
	db *bbolt.DB
}

var _ store.Store = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return fn(&boltTx{b: b})
	})
}

// Update runs fn in a read-write transaction. Bolt rolls back when fn fails.
func (s *Store) Update(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return fn(&boltTx{b: b, writable: true})
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		if err != nil {
			return fmt.Errorf("create %s bucket: %w", recordBucket, err)
		}
		return nil
	})
}

func bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(recordBucket))
	if b == nil {
		return nil, fmt.Errorf("%s bucket is missing", recordBucket)
	}
	return b, nil
}

type boltTx struct {
	b        *bbolt.Bucket
	writable bool
}

// Get copies the value out; bolt memory is only valid for the transaction.
func (t *boltTx) Get(key string) ([]byte, error) {
	v := t.b.Get([]byte(key))
	if v == nil {
		return nil, store.NotFound(key)
	}
	return append([]byte(nil), v...), nil
}

func (t *boltTx) Put(key string, value []byte) error {
	if !t.writable {
		return store.ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	return t.b.Put([]byte(key), value)
}

func (t *boltTx) Delete(key string) error {
	if !t.writable {
		return store.ErrReadOnly
	}
	return t.b.Delete([]byte(key))
}
