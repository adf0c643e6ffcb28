package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemledger/itemd/internal/core/ledger"
)

type emptyReader struct{}

func (emptyReader) Read(key []byte) ([]byte, error) { return nil, nil }
func (emptyReader) Exists(key []byte) (bool, error) { return false, nil }
func (emptyReader) ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) error {
	return nil
}

// newTestView seeds the "gold" currency with 1000 units issued to alice.
func newTestView(t *testing.T) *ledger.StateTable {
	t.Helper()
	v := ledger.NewStateTable(emptyReader{})
	require.NoError(t, ledger.PutEntry(v, ledger.CurrencyKey("gold"),
		&ledger.CurrencyRoot{ID: "gold", Issuer: "alice", Supply: 1000}))
	require.NoError(t, ledger.PutEntry(v, ledger.BalanceKey("gold", "alice"),
		&ledger.Balance{Amount: 1000}))
	return v
}

func TestCurrencyLookup(t *testing.T) {
	v := newTestView(t)

	root, err := Currency(v, "gold")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), root.Supply)

	_, err = Currency(v, "silver")
	assert.ErrorIs(t, err, ErrNoCurrency)

	ok, err := Exists(v, "gold")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransfer(t *testing.T) {
	v := newTestView(t)

	require.NoError(t, Transfer(v, "gold", "alice", "bob", 300))

	balance, err := BalanceOf(v, "gold", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(700), balance)

	balance, err = BalanceOf(v, "gold", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), balance)
}

func TestTransferInsufficientFunds(t *testing.T) {
	v := newTestView(t)

	err := Transfer(v, "gold", "bob", "alice", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	err = Transfer(v, "gold", "alice", "bob", 1001)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestTransferUnknownCurrency(t *testing.T) {
	v := newTestView(t)
	err := Transfer(v, "silver", "alice", "bob", 1)
	assert.ErrorIs(t, err, ErrNoCurrency)
}

func TestTransferDrainedBalanceIsErased(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, Transfer(v, "gold", "alice", "bob", 1000))

	exists, err := v.Exists(ledger.BalanceKey("gold", "alice"))
	require.NoError(t, err)
	assert.False(t, exists)

	balance, err := BalanceOf(v, "gold", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestAllowanceLifecycle(t *testing.T) {
	v := newTestView(t)

	amount, err := Allowance(v, "gold", "alice", "spender")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), amount)

	require.NoError(t, SetAllowance(v, "gold", "alice", "spender", 500))

	amount, err = Allowance(v, "gold", "alice", "spender")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), amount)

	// setting zero erases the entry
	require.NoError(t, SetAllowance(v, "gold", "alice", "spender", 0))
	exists, err := v.Exists(ledger.AllowanceKey("gold", "alice", "spender"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, SetAllowance(v, "gold", "alice", "spender", 500))

	require.NoError(t, TransferFrom(v, "gold", "spender", "alice", "bob", 200))

	balance, err := BalanceOf(v, "gold", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(200), balance)

	amount, err := Allowance(v, "gold", "alice", "spender")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), amount)
}

func TestTransferFromExceedsAllowance(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, SetAllowance(v, "gold", "alice", "spender", 100))

	err := TransferFrom(v, "gold", "spender", "alice", "bob", 200)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	// allowance is untouched after the failed attempt
	amount, err := Allowance(v, "gold", "alice", "spender")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), amount)
}

func TestTransferFromWithoutAllowance(t *testing.T) {
	v := newTestView(t)
	err := TransferFrom(v, "gold", "spender", "alice", "bob", 1)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}
