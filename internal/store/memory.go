package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Writers are serialized; an Update works on
// an overlay that is merged into the map only when fn succeeds.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(&memTx{base: m.data})
}

func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	tx := &memTx{
		base:     m.data,
		writable: true,
		writes:   make(map[string][]byte),
		deletes:  make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	for k := range tx.deletes {
		delete(m.data, k)
	}
	for k, v := range tx.writes {
		m.data[k] = v
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memTx struct {
	base     map[string][]byte
	writable bool
	writes   map[string][]byte
	deletes  map[string]struct{}
}

func (t *memTx) Get(key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return clone(v), nil
	}
	if _, ok := t.deletes[key]; ok {
		return nil, NotFound(key)
	}
	v, ok := t.base[key]
	if !ok {
		return nil, NotFound(key)
	}
	return clone(v), nil
}

func (t *memTx) Put(key string, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	delete(t.deletes, key)
	t.writes[key] = clone(value)
	return nil
}

func (t *memTx) Delete(key string) error {
	if !t.writable {
		return ErrReadOnly
	}
	delete(t.writes, key)
	t.deletes[key] = struct{}{}
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
