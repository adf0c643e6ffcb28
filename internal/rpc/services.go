package rpc

import (
	"context"
	"encoding/json"

	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/tx"
	"github.com/itemledger/itemd/internal/node"
	"github.com/itemledger/itemd/internal/storage/history"
)

// Service is the node surface the RPC layer depends on. *node.Node
// satisfies it; tests substitute mocks.
type Service interface {
	Submit(ctx context.Context, opJSON json.RawMessage) (*tx.ApplyResult, error)

	CollectionInfo(id string) (*ledger.CollectionRoot, error)
	OwnerOf(collection string, item uint32) (string, error)
	BalanceOf(collection, account string) (uint32, error)
	TotalSupply(collection string) (uint32, error)
	TokenByIndex(collection string, index uint32) (uint32, error)
	TokenOfOwnerByIndex(collection, account string, index uint32) (uint32, error)
	Approved(collection string, item uint32) (string, error)
	IsOperator(collection, owner, operator string) (bool, error)

	OfferInfo(collection, offeror string) (*ledger.Offer, error)
	TokenPrice(collection string, item uint32, offeror string) (uint64, string, error)

	CurrencyInfo(id string) (*ledger.CurrencyRoot, error)
	CurrencyBalance(currencyID, account string) (uint64, error)
	CurrencyAllowance(currencyID, owner, spender string) (uint64, error)

	ItemHistory(ctx context.Context, collection string, item uint32, limit int) ([]history.Record, error)
	AccountHistory(ctx context.Context, account string, limit int) ([]history.Record, error)
	Info(ctx context.Context) (*node.Info, error)
}
