package node

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemledger/itemd/internal/config"
	"github.com/itemledger/itemd/internal/core/tx"
)

type capturingPublisher struct {
	notifications []*OpNotification
	accounts      [][]string
}

func (p *capturingPublisher) PublishOperation(n *OpNotification, accounts []string) {
	p.notifications = append(p.notifications, n)
	p.accounts = append(p.accounts, accounts)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Backend = "memory"
	cfg.Database.Path = ""
	cfg.Database.Compression = "none"
	cfg.Database.HistoryPath = filepath.Join(t.TempDir(), "history.db")
	cfg.Genesis = config.GenesisConfig{
		Collections: []config.GenesisCollection{
			{ID: "art", ItemCount: 10, DefaultHolder: "vault", Enumerable: true},
		},
		Currencies: []config.GenesisCurrency{
			{ID: "gold", Issuer: "mint", Supply: 100000},
		},
	}
	return cfg
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestGenesisSeedsState(t *testing.T) {
	n := newTestNode(t)

	col, err := n.CollectionInfo("art")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), col.ItemCount)
	assert.Equal(t, "vault", col.DefaultHolder)

	owner, err := n.OwnerOf("art", 7)
	require.NoError(t, err)
	assert.Equal(t, "vault", owner)

	supply, err := n.TotalSupply("art")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), supply)

	balance, err := n.CurrencyBalance("gold", "mint")
	require.NoError(t, err)
	assert.Equal(t, uint64(100000), balance)
}

func TestSubmitTransfer(t *testing.T) {
	n := newTestNode(t)
	pub := &capturingPublisher{}
	n.SetPublisher(pub)

	res, err := n.Submit(context.Background(), json.RawMessage(`{
		"OperationType": "Transfer",
		"Account": "vault",
		"Collection": "art",
		"From": "vault",
		"To": "alice",
		"Item": 3
	}`))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, res.Result.IsSuccess())

	owner, err := n.OwnerOf("art", 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)

	require.Len(t, pub.notifications, 1)
	notif := pub.notifications[0]
	assert.Equal(t, "Transfer", notif.Type)
	assert.Equal(t, "vault", notif.Account)
	require.Len(t, notif.Events, 1)
	assert.ElementsMatch(t, []string{"vault", "alice"}, pub.accounts[0])
}

func TestSubmitRecordsHistory(t *testing.T) {
	n := newTestNode(t)

	_, err := n.Submit(context.Background(), json.RawMessage(`{
		"OperationType": "Transfer",
		"Account": "vault",
		"Collection": "art",
		"From": "vault",
		"To": "alice",
		"Item": 3
	}`))
	require.NoError(t, err)

	records, err := n.ItemHistory(context.Background(), "art", 3, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Transfer", records[0].Type)
	assert.Equal(t, "vault", records[0].Account)

	records, err = n.AccountHistory(context.Background(), "vault", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// rejected operations leave no history record
	_, err = n.Submit(context.Background(), json.RawMessage(`{
		"OperationType": "Transfer",
		"Account": "mallory",
		"Collection": "art",
		"From": "vault",
		"To": "mallory",
		"Item": 4
	}`))
	require.NoError(t, err)

	records, err = n.AccountHistory(context.Background(), "mallory", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitUnknownOperation(t *testing.T) {
	n := newTestNode(t)

	_, err := n.Submit(context.Background(), json.RawMessage(`{"OperationType": "Bogus", "Account": "x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, tx.ErrUnknownOperationType)
}

func TestGenesisSkippedOnSeededState(t *testing.T) {
	n := newTestNode(t)

	// reapplying against the same live store must not fail or duplicate
	require.NoError(t, n.applyGenesis())

	col, err := n.CollectionInfo("art")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), col.ItemCount)
}

func TestInfo(t *testing.T) {
	n := newTestNode(t)

	info, err := n.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.Version, info.Version)
	assert.Equal(t, "memory", info.Backend)
	assert.True(t, info.HistoryOn)
	assert.NotEmpty(t, info.Settlement)
}

func TestHistoryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.HistoryPath = ""
	n, err := New(cfg)
	require.NoError(t, err)
	defer n.Close()

	_, err = n.ItemHistory(context.Background(), "art", 0, 0)
	require.Error(t, err)

	info, err := n.Info(context.Background())
	require.NoError(t, err)
	assert.False(t, info.HistoryOn)
}
