package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xtding233/casino-core/internal/store"
)

type poolRecord struct {
	Slug   string `json:"slug"`
	Escrow uint64 `json:"escrow"`
}

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "casino.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, path
}

func TestStorePutGetAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx store.Tx) error {
		return store.PutJSON(tx, store.PoolKey("flip"), poolRecord{Slug: "flip", Escrow: 500})
	})
	if err != nil {
		t.Fatalf("put pool: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var loaded poolRecord
	err = reopened.View(ctx, func(tx store.Tx) error {
		return store.GetJSON(tx, store.PoolKey("flip"), &loaded)
	})
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loaded.Slug != "flip" || loaded.Escrow != 500 {
		t.Fatalf("unexpected record %+v", loaded)
	}
}

func TestStoreGetMissing(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	err := s.View(context.Background(), func(tx store.Tx) error {
		_, err := tx.Get("missing")
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreUpdateRollsBack(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Put("k", []byte("v")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		ok, err := store.Exists(tx, "k")
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("write from failed transaction persisted")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestStoreDeleteAndReadOnly(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.Update(ctx, func(tx store.Tx) error { return tx.Put("k", []byte("v")) }); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, func(tx store.Tx) error { return tx.Delete("k") }); err != nil {
		t.Fatal(err)
	}
	err := s.View(ctx, func(tx store.Tx) error {
		if _, err := tx.Get("k"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected deleted key to be gone, got %v", err)
		}
		return tx.Put("k", []byte("v"))
	})
	if !errors.Is(err, store.ErrReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
