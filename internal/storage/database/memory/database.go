package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/itemledger/itemd/internal/storage/database"
)

// DB is an in-memory database.DB implementation used by tests and by the
// standalone mode when no storage path is configured.
type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, database.ErrDBClosed
	}
	val, ok := m.data[string(key)]
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	return valCopy, nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return database.ErrDBClosed
	}
	valCopy := make([]byte, len(value))
	copy(valCopy, value)
	m.data[string(key)] = valCopy
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return database.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			valCopy := make([]byte, len(op.Value))
			copy(valCopy, op.Value)
			m.data[string(op.Key)] = valCopy
		case database.BatchDelete:
			delete(m.data, string(op.Key))
		default:
			return database.ErrBatchOperationFailed
		}
	}
	return nil
}

// Iterator walks a sorted snapshot of the keys taken at creation time.
type Iterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, database.ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if start != nil && strings.Compare(k, string(start)) < 0 {
			continue
		}
		if end != nil && strings.Compare(k, string(end)) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		val := m.data[k]
		valCopy := make([]byte, len(val))
		copy(valCopy, val)
		values[i] = valCopy
	}

	return &Iterator{keys: keys, values: values, pos: -1}, nil
}

func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *Iterator) Key() []byte {
	return []byte(it.keys[it.pos])
}

func (it *Iterator) Value() []byte {
	return it.values[it.pos]
}

func (it *Iterator) Error() error { return nil }

func (it *Iterator) Close() error { return nil }

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
