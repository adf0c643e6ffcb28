package ledger

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapReader is a map-backed Reader for table tests.
type mapReader map[string][]byte

func (m mapReader) Read(key []byte) ([]byte, error) {
	data, ok := m[string(key)]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (m mapReader) Exists(key []byte) (bool, error) {
	_, ok := m[string(key)]
	return ok, nil
}

func (m mapReader) ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(k) < len(prefix) || k[:len(prefix)] != string(prefix) {
			continue
		}
		if !fn([]byte(k), m[k]) {
			break
		}
	}
	return nil
}

func TestStateTableInsertAndRead(t *testing.T) {
	table := NewStateTable(mapReader{})

	require.NoError(t, table.Insert([]byte("k1"), []byte("v1")))

	data, err := table.Read([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	exists, err := table.Exists([]byte("k1"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStateTableInsertExisting(t *testing.T) {
	base := mapReader{"k1": []byte("v1")}
	table := NewStateTable(base)

	err := table.Insert([]byte("k1"), []byte("v2"))
	assert.Error(t, err)
}

func TestStateTableUpdateMissing(t *testing.T) {
	table := NewStateTable(mapReader{})
	assert.Error(t, table.Update([]byte("nope"), []byte("v")))
}

func TestStateTableEraseThenInsertIsModify(t *testing.T) {
	base := mapReader{"k1": []byte("old")}
	table := NewStateTable(base)

	require.NoError(t, table.Erase([]byte("k1")))

	exists, err := table.Exists([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, table.Insert([]byte("k1"), []byte("new")))

	changes := table.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, ActionModify, changes[0].Action)
	assert.Equal(t, []byte("old"), changes[0].Before)
	assert.Equal(t, []byte("new"), changes[0].After)
}

func TestStateTableInsertThenEraseLeavesNoTrace(t *testing.T) {
	table := NewStateTable(mapReader{})

	require.NoError(t, table.Insert([]byte("tmp"), []byte("v")))
	require.NoError(t, table.Erase([]byte("tmp")))

	assert.Empty(t, table.Changes())
}

func TestStateTableReadsAreNotChanges(t *testing.T) {
	base := mapReader{"k1": []byte("v1")}
	table := NewStateTable(base)

	_, err := table.Read([]byte("k1"))
	require.NoError(t, err)

	assert.Empty(t, table.Changes())
}

func TestStateTableChangesSortedByKey(t *testing.T) {
	table := NewStateTable(mapReader{})

	require.NoError(t, table.Insert([]byte("b"), []byte("2")))
	require.NoError(t, table.Insert([]byte("a"), []byte("1")))
	require.NoError(t, table.Insert([]byte("c"), []byte("3")))

	changes := table.Changes()
	require.Len(t, changes, 3)
	assert.Equal(t, []byte("a"), changes[0].Key)
	assert.Equal(t, []byte("b"), changes[1].Key)
	assert.Equal(t, []byte("c"), changes[2].Key)
}

func TestStateTableForEachPrefixMergesOverlay(t *testing.T) {
	base := mapReader{
		"p/a": []byte("base-a"),
		"p/b": []byte("base-b"),
		"q/z": []byte("other"),
	}
	table := NewStateTable(base)

	require.NoError(t, table.Update([]byte("p/a"), []byte("new-a")))
	require.NoError(t, table.Erase([]byte("p/b")))
	require.NoError(t, table.Insert([]byte("p/c"), []byte("new-c")))

	seen := make(map[string]string)
	err := table.ForEachPrefix([]byte("p/"), func(key, value []byte) bool {
		seen[string(key)] = string(value)
		return true
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"p/a": "new-a",
		"p/c": "new-c",
	}, seen)
}

func TestStateTableDiscard(t *testing.T) {
	base := mapReader{"k1": []byte("v1")}
	table := NewStateTable(base)

	require.NoError(t, table.Update([]byte("k1"), []byte("changed")))

	// Dropping the table leaves the base untouched.
	table = NewStateTable(base)
	data, err := table.Read([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
}
