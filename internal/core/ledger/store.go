package ledger

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/itemledger/itemd/internal/storage/compression"
	"github.com/itemledger/itemd/internal/storage/database"
)

// StoreOptions configure the state store.
type StoreOptions struct {
	// CacheSize is the number of decoded values kept in the read cache.
	// Zero disables caching.
	CacheSize int

	// Compression names the value compressor ("none" or "lz4").
	Compression string
}

// Store is the committed state, backed by a key-value database. It serves
// reads for queries and as the base of StateTables; writes reach it only
// through ApplyChanges with the change set of a committed operation.
type Store struct {
	db         database.DB
	cache      *lru.Cache[string, []byte]
	compressor compression.Compressor
}

// NewStore creates a state store over db.
func NewStore(db database.DB, opts StoreOptions) (*Store, error) {
	compressor, err := compression.ForName(opts.Compression)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, compressor: compressor}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Store) Read(key []byte) ([]byte, error) {
	if s.cache != nil {
		if val, ok := s.cache.Get(string(key)); ok {
			return val, nil
		}
	}

	raw, err := s.db.Read(context.Background(), key)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	val, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	if s.cache != nil {
		s.cache.Add(string(key), val)
	}
	return val, nil
}

func (s *Store) Exists(key []byte) (bool, error) {
	if s.cache != nil {
		if _, ok := s.cache.Get(string(key)); ok {
			return true, nil
		}
	}
	_, err := s.db.Read(context.Background(), key)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	iter, err := s.db.Iterator(context.Background(), prefix, PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		val, err := s.compressor.Decompress(iter.Value())
		if err != nil {
			return fmt.Errorf("failed to decode entry: %w", err)
		}
		if !fn(iter.Key(), val) {
			break
		}
	}
	return iter.Error()
}

// ApplyChanges writes the change set of a committed operation in a single
// database batch.
func (s *Store) ApplyChanges(changes []Change) error {
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, ch := range changes {
		switch ch.Action {
		case ActionInsert, ActionModify:
			val, err := s.compressor.Compress(ch.After)
			if err != nil {
				return err
			}
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: ch.Key, Value: val})
		case ActionErase:
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: ch.Key})
		}
	}

	if err := s.db.Batch(context.Background(), ops); err != nil {
		return err
	}

	if s.cache != nil {
		for _, ch := range changes {
			if ch.Action == ActionErase {
				s.cache.Remove(string(ch.Key))
			} else {
				s.cache.Add(string(ch.Key), ch.After)
			}
		}
	}
	return nil
}
