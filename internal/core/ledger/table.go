package ledger

import (
	"bytes"
	"fmt"
	"sort"
)

// Action classifies how a tracked entry was touched.
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// Change describes one committed entry mutation.
type Change struct {
	Action Action
	Key    []byte
	Before []byte // nil for inserts
	After  []byte // nil for erases
}

type trackedEntry struct {
	action   Action
	original []byte
	current  []byte
}

// StateTable wraps a base Reader and buffers every mutation of one
// operation. Nothing reaches the base until Changes() is taken and applied;
// dropping the table discards all buffered writes. This is what makes a
// settlement's item movement and currency debit all-or-nothing.
type StateTable struct {
	base  Reader
	items map[string]*trackedEntry
}

// NewStateTable creates a state table over the given base.
func NewStateTable(base Reader) *StateTable {
	return &StateTable{
		base:  base,
		items: make(map[string]*trackedEntry),
	}
}

func (t *StateTable) Read(key []byte) ([]byte, error) {
	if entry, ok := t.items[string(key)]; ok {
		if entry.action == ActionErase {
			return nil, nil
		}
		return entry.current, nil
	}

	data, err := t.base.Read(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.items[string(key)] = &trackedEntry{
			action:   ActionCache,
			original: data,
			current:  data,
		}
	}
	return data, nil
}

func (t *StateTable) Exists(key []byte) (bool, error) {
	if entry, ok := t.items[string(key)]; ok {
		return entry.action != ActionErase, nil
	}
	return t.base.Exists(key)
}

func (t *StateTable) Insert(key, data []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		if entry.action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.action = ActionModify
		entry.current = data
		return nil
	}

	exists, err := t.base.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[string(key)] = &trackedEntry{
		action:  ActionInsert,
		current: data,
	}
	return nil
}

func (t *StateTable) Update(key, data []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		switch entry.action {
		case ActionErase:
			return fmt.Errorf("entry does not exist")
		case ActionInsert:
			entry.current = data
		default:
			entry.action = ActionModify
			entry.current = data
		}
		return nil
	}

	data0, err := t.base.Read(key)
	if err != nil {
		return err
	}
	if data0 == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[string(key)] = &trackedEntry{
		action:   ActionModify,
		original: data0,
		current:  data,
	}
	return nil
}

func (t *StateTable) Erase(key []byte) error {
	if entry, ok := t.items[string(key)]; ok {
		switch entry.action {
		case ActionErase:
			return fmt.Errorf("entry does not exist")
		case ActionInsert:
			// Created and deleted within the same operation: drop all trace
			delete(t.items, string(key))
		default:
			entry.action = ActionErase
			entry.current = nil
		}
		return nil
	}

	data, err := t.base.Read(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[string(key)] = &trackedEntry{
		action:   ActionErase,
		original: data,
	}
	return nil
}

// ForEachPrefix merges buffered writes over the base iteration.
func (t *StateTable) ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	// Collect buffered keys under the prefix
	overlay := make(map[string]*trackedEntry)
	for k, entry := range t.items {
		if bytes.HasPrefix([]byte(k), prefix) && entry.action != ActionCache {
			overlay[k] = entry
		}
	}

	if len(overlay) == 0 {
		return t.base.ForEachPrefix(prefix, fn)
	}

	// Merge: base entries shadowed by the overlay, plus overlay-only inserts
	merged := make(map[string][]byte)
	err := t.base.ForEachPrefix(prefix, func(key, value []byte) bool {
		merged[string(key)] = value
		return true
	})
	if err != nil {
		return err
	}
	for k, entry := range overlay {
		if entry.action == ActionErase {
			delete(merged, k)
		} else {
			merged[k] = entry.current
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !fn([]byte(k), merged[k]) {
			break
		}
	}
	return nil
}

// Changes returns the mutations buffered by this table, in key order.
// Read-only entries are not included.
func (t *StateTable) Changes() []Change {
	keys := make([]string, 0, len(t.items))
	for k, entry := range t.items {
		if entry.action != ActionCache {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	changes := make([]Change, 0, len(keys))
	for _, k := range keys {
		entry := t.items[k]
		changes = append(changes, Change{
			Action: entry.action,
			Key:    []byte(k),
			Before: entry.original,
			After:  entry.current,
		})
	}
	return changes
}
