// Package store defines the key-value contract every game record is kept
// behind. A command runs inside one Update transaction; either every write
// lands or none does.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xtding233/casino-core/internal/apperr"
)

// ErrNotFound is returned by Tx.Get for a missing key.
var ErrNotFound = apperr.ErrNotFound

// ErrReadOnly is returned by writes inside a View transaction.
var ErrReadOnly = errors.New("store: transaction is read-only")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("store: closed")

// Tx is a handle to the records visible inside one transaction.
type Tx interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Store runs functions inside read-only or read-write transactions.
// Update commits only when fn returns nil.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// GetJSON loads key into v.
func GetJSON(tx Tx, key string, v any) error {
	raw, err := tx.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// PutJSON stores v under key.
func PutJSON(tx Tx, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return tx.Put(key, raw)
}

// Exists reports whether key is present.
func Exists(tx Tx, key string) (bool, error) {
	_, err := tx.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// NotFound annotates ErrNotFound with the missing key.
func NotFound(key string) error {
	return apperr.ErrNotFound.With("key", key)
}
