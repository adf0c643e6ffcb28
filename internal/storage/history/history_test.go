package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func appendRecord(t *testing.T, idx *Index, opType, account string, items ...ItemRef) int64 {
	t.Helper()
	seq, err := idx.Append(context.Background(), Record{
		Type:      opType,
		Account:   account,
		Result:    "Success",
		Operation: json.RawMessage(`{"OperationType":"` + opType + `"}`),
		AppliedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}, items)
	require.NoError(t, err)
	return seq
}

func TestAppendAssignsSequences(t *testing.T) {
	idx := newTestIndex(t)

	first := appendRecord(t, idx, "CollectionCreate", "vault")
	second := appendRecord(t, idx, "Transfer", "alice")
	assert.Equal(t, first+1, second)

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAccountHistory(t *testing.T) {
	idx := newTestIndex(t)
	appendRecord(t, idx, "Transfer", "alice")
	appendRecord(t, idx, "Offer", "bob")
	appendRecord(t, idx, "Approval", "alice")

	records, err := idx.AccountHistory(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// oldest first
	assert.Equal(t, "Transfer", records[0].Type)
	assert.Equal(t, "Approval", records[1].Type)
	assert.Less(t, records[0].Seq, records[1].Seq)
	assert.Equal(t, "Success", records[0].Result)
	assert.JSONEq(t, `{"OperationType":"Transfer"}`, string(records[0].Operation))
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), records[0].AppliedAt)
}

func TestAccountHistoryLimit(t *testing.T) {
	idx := newTestIndex(t)
	for i := 0; i < 5; i++ {
		appendRecord(t, idx, "Transfer", "alice")
	}

	records, err := idx.AccountHistory(context.Background(), "alice", 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAccountHistoryEmpty(t *testing.T) {
	idx := newTestIndex(t)

	records, err := idx.AccountHistory(context.Background(), "nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestItemHistory(t *testing.T) {
	idx := newTestIndex(t)
	appendRecord(t, idx, "Transfer", "alice", ItemRef{Collection: "art", Item: 3})
	appendRecord(t, idx, "Transfer", "bob", ItemRef{Collection: "art", Item: 4})
	appendRecord(t, idx, "Redeem", "carol",
		ItemRef{Collection: "art", Item: 3}, ItemRef{Collection: "art", Item: 4})
	appendRecord(t, idx, "Transfer", "dave", ItemRef{Collection: "gems", Item: 3})

	records, err := idx.ItemHistory(context.Background(), "art", 3, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Transfer", records[0].Type)
	assert.Equal(t, "Redeem", records[1].Type)

	records, err = idx.ItemHistory(context.Background(), "art", 7, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEventsStoredWhenPresent(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Append(context.Background(), Record{
		Type:      "Transfer",
		Account:   "alice",
		Result:    "Success",
		Operation: json.RawMessage(`{}`),
		Events:    json.RawMessage(`[{"from":"alice","to":"bob"}]`),
		AppliedAt: time.Now(),
	}, nil)
	require.NoError(t, err)
	appendRecord(t, idx, "Offer", "alice")

	records, err := idx.AccountHistory(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `[{"from":"alice","to":"bob"}]`, string(records[0].Events))
	assert.Nil(t, records[1].Events)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	idx, err := Open(path)
	require.NoError(t, err)
	appendRecord(t, idx, "Transfer", "alice")
	require.NoError(t, idx.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
