package rpc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/market"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
	"github.com/itemledger/itemd/internal/node"
	"github.com/itemledger/itemd/internal/storage/history"
)

// mockService implements Service with canned results.
type mockService struct {
	submitResult *tx.ApplyResult
	submitErr    error

	owner    string
	ownerErr error

	balance    uint32
	supply     uint32
	approved   string
	isOperator bool

	offer    *ledger.Offer
	offerErr error

	price         uint64
	priceCurrency string
	priceErr      error

	currencyRoot      *ledger.CurrencyRoot
	currencyBalance   uint64
	currencyAllowance uint64

	records    []history.Record
	recordsErr error

	info *node.Info
}

func (m *mockService) Submit(ctx context.Context, opJSON json.RawMessage) (*tx.ApplyResult, error) {
	return m.submitResult, m.submitErr
}
func (m *mockService) CollectionInfo(id string) (*ledger.CollectionRoot, error) {
	return &ledger.CollectionRoot{ID: id, ItemCount: 3, DefaultHolder: "alice"}, nil
}
func (m *mockService) OwnerOf(collection string, item uint32) (string, error) {
	return m.owner, m.ownerErr
}
func (m *mockService) BalanceOf(collection, account string) (uint32, error) {
	return m.balance, nil
}
func (m *mockService) TotalSupply(collection string) (uint32, error) { return m.supply, nil }
func (m *mockService) TokenByIndex(collection string, index uint32) (uint32, error) {
	return index, nil
}
func (m *mockService) TokenOfOwnerByIndex(collection, account string, index uint32) (uint32, error) {
	return index, nil
}
func (m *mockService) Approved(collection string, item uint32) (string, error) {
	return m.approved, nil
}
func (m *mockService) IsOperator(collection, owner, operator string) (bool, error) {
	return m.isOperator, nil
}
func (m *mockService) OfferInfo(collection, offeror string) (*ledger.Offer, error) {
	return m.offer, m.offerErr
}
func (m *mockService) TokenPrice(collection string, item uint32, offeror string) (uint64, string, error) {
	return m.price, m.priceCurrency, m.priceErr
}
func (m *mockService) CurrencyInfo(id string) (*ledger.CurrencyRoot, error) {
	return m.currencyRoot, nil
}
func (m *mockService) CurrencyBalance(currencyID, account string) (uint64, error) {
	return m.currencyBalance, nil
}
func (m *mockService) CurrencyAllowance(currencyID, owner, spender string) (uint64, error) {
	return m.currencyAllowance, nil
}
func (m *mockService) ItemHistory(ctx context.Context, collection string, item uint32, limit int) ([]history.Record, error) {
	return m.records, m.recordsErr
}
func (m *mockService) AccountHistory(ctx context.Context, account string, limit int) ([]history.Record, error) {
	return m.records, m.recordsErr
}
func (m *mockService) Info(ctx context.Context) (*node.Info, error) { return m.info, nil }

func newTestContext() *RpcContext {
	return &RpcContext{Context: context.Background()}
}

func callMethod(t *testing.T, s *Server, method string, params any) (any, *RpcError) {
	t.Helper()
	handler, exists := s.Registry().Get(method)
	require.True(t, exists, "method %s not registered", method)

	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		raw = data
	}
	return handler.Handle(newTestContext(), raw)
}

func TestOwnerOfMethod(t *testing.T) {
	svc := &mockService{owner: "alice"}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "owner_of", map[string]any{
		"collection": "art",
		"item":       1,
	})
	require.Nil(t, rpcErr)
	assert.Equal(t, map[string]any{"owner": "alice"}, result)
}

func TestOwnerOfUnknownCollection(t *testing.T) {
	svc := &mockService{ownerErr: registry.ErrNoCollection}
	s := NewServer(svc, time.Second)

	_, rpcErr := callMethod(t, s, "owner_of", map[string]any{
		"collection": "missing",
		"item":       0,
	})
	require.NotNil(t, rpcErr)
	assert.Equal(t, "entryNotFound", rpcErr.ErrorString)
}

func TestOwnerOfMissingParams(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	handler, _ := s.Registry().Get("owner_of")
	_, rpcErr := handler.Handle(newTestContext(), nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcINVALID_PARAMS, rpcErr.Code)
}

func TestSubmitMethod(t *testing.T) {
	svc := &mockService{
		submitResult: &tx.ApplyResult{
			Result:  tx.Success,
			Applied: true,
			Events:  []tx.Event{tx.TransferEvent{Collection: "art", From: "alice", To: "bob", Item: 1}},
		},
	}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "submit", map[string]any{
		"operation": map[string]any{
			"OperationType": "Transfer",
			"Account":       "alice",
		},
	})
	require.Nil(t, rpcErr)

	resultMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Success", resultMap["engine_result"])
	assert.Equal(t, true, resultMap["applied"])
}

func TestSubmitRejectsUnknownOperation(t *testing.T) {
	svc := &mockService{submitErr: assertableError("unknown operation type")}
	s := NewServer(svc, time.Second)

	_, rpcErr := callMethod(t, s, "submit", map[string]any{
		"operation": map[string]any{"OperationType": "Bogus"},
	})
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcOP_REJECTED, rpcErr.Code)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestTokenPriceMethod(t *testing.T) {
	svc := &mockService{price: 1965, priceCurrency: "gold"}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "token_price", map[string]any{
		"collection": "art",
		"item":       5,
		"offeror":    "bob",
	})
	require.Nil(t, rpcErr)
	assert.Equal(t, map[string]any{"amount": uint64(1965), "currency": "gold"}, result)
}

func TestTokenPriceNoOffer(t *testing.T) {
	svc := &mockService{priceErr: market.ErrNoSuchOffer}
	s := NewServer(svc, time.Second)

	_, rpcErr := callMethod(t, s, "token_price", map[string]any{
		"collection": "art",
		"item":       0,
		"offeror":    "nobody",
	})
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcNOT_FOUND, rpcErr.Code)
}

func TestOfferInfoMethod(t *testing.T) {
	svc := &mockService{offer: &ledger.Offer{
		Collection: "art",
		Offeror:    "bob",
		Currency:   "gold",
		BaseAmount: 500,
	}}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "offer_info", map[string]any{
		"collection": "art",
		"offeror":    "bob",
	})
	require.Nil(t, rpcErr)

	resultMap := result.(map[string]any)
	assert.Equal(t, uint64(500), resultMap["base_amount"])
	assert.Equal(t, "gold", resultMap["currency"])
}

func TestItemHistoryMethod(t *testing.T) {
	svc := &mockService{records: []history.Record{
		{Seq: 1, Type: "Transfer", Account: "alice", Result: "Success"},
	}}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "item_history", map[string]any{
		"collection": "art",
		"item":       1,
	})
	require.Nil(t, rpcErr)

	resultMap := result.(map[string]any)
	records := resultMap["operations"].([]history.Record)
	require.Len(t, records, 1)
	assert.Equal(t, "Transfer", records[0].Type)
}

func TestServerInfoMethod(t *testing.T) {
	svc := &mockService{info: &node.Info{Version: "0.3.0", Backend: "memory"}}
	s := NewServer(svc, time.Second)

	result, rpcErr := callMethod(t, s, "server_info", nil)
	require.Nil(t, rpcErr)

	resultMap := result.(map[string]any)
	info := resultMap["info"].(*node.Info)
	assert.Equal(t, "memory", info.Backend)
}

func TestUnknownMethod(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)
	_, exists := s.Registry().Get("no_such_method")
	assert.False(t, exists)
}

func TestSubscribeRequiresWebSocket(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	_, rpcErr := callMethod(t, s, "subscribe", map[string]any{"streams": []string{"operations"}})
	require.NotNil(t, rpcErr)
	assert.Equal(t, RpcNOT_SUPPORTED, rpcErr.Code)
}
