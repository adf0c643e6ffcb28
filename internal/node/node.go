// Package node wires the ledger store, the operation engine, the history
// index and the event publisher into one runnable service.
package node

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/itemledger/itemd/internal/config"
	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/market"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
	_ "github.com/itemledger/itemd/internal/core/tx/all"
	"github.com/itemledger/itemd/internal/core/tx/fungible"
	"github.com/itemledger/itemd/internal/core/tx/item"
	"github.com/itemledger/itemd/internal/storage/database"
	_ "github.com/itemledger/itemd/internal/storage/database/leveldb"
	_ "github.com/itemledger/itemd/internal/storage/database/memory"
	_ "github.com/itemledger/itemd/internal/storage/database/pebble"
	"github.com/itemledger/itemd/internal/storage/history"
)

// OpNotification describes one applied operation for stream subscribers.
type OpNotification struct {
	Seq       int64            `json:"seq"`
	Type      string           `json:"op_type"`
	Account   string           `json:"account"`
	Result    string           `json:"result"`
	Operation json.RawMessage  `json:"operation"`
	Events    []tx.TaggedEvent `json:"events,omitempty"`
}

// Publisher receives notifications about applied operations.
type Publisher interface {
	PublishOperation(n *OpNotification, accounts []string)
}

// Node is the assembled itemd service.
type Node struct {
	cfg       *config.Config
	db        database.DB
	store     *ledger.Store
	engine    *tx.Engine
	index     *history.Index
	receivers *registry.ReceiverSet
	publisher Publisher
	startedAt time.Time
}

// New opens storage and assembles a node from the configuration.
func New(cfg *config.Config) (*Node, error) {
	db, err := database.Open(cfg.Database.Backend, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Backend, err)
	}

	store, err := ledger.NewStore(db, ledger.StoreOptions{
		CacheSize:   cfg.Database.CacheSize,
		Compression: cfg.Database.Compression,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger store: %w", err)
	}

	receivers := registry.NewReceiverSet()
	n := &Node{
		cfg:       cfg,
		db:        db,
		store:     store,
		engine:    tx.NewEngine(store, receivers),
		receivers: receivers,
		startedAt: time.Now(),
	}

	if cfg.Database.HistoryPath != "" {
		index, err := history.Open(cfg.Database.HistoryPath)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open history index: %w", err)
		}
		n.index = index
	}

	if err := n.applyGenesis(); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

// SetPublisher installs the subscriber-facing publisher. Must be called
// before the node starts accepting submissions.
func (n *Node) SetPublisher(p Publisher) { n.publisher = p }

// Receivers exposes the transfer hook set for local integrations.
func (n *Node) Receivers() *registry.ReceiverSet { return n.receivers }

// Engine exposes the operation engine.
func (n *Node) Engine() *tx.Engine { return n.engine }

// Close releases storage resources.
func (n *Node) Close() error {
	var firstErr error
	if n.index != nil {
		if err := n.index.Close(); err != nil {
			firstErr = err
		}
	}
	if err := n.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// applyGenesis seeds collections and currencies from the configuration.
// It only runs against an empty state.
func (n *Node) applyGenesis() error {
	g := n.cfg.Genesis
	if len(g.Collections) == 0 && len(g.Currencies) == 0 {
		return nil
	}
	empty := true
	err := n.store.ForEachPrefix(nil, func(key, value []byte) bool {
		empty = false
		return false
	})
	if err != nil {
		return fmt.Errorf("probe state: %w", err)
	}
	if !empty {
		return nil
	}

	for _, c := range g.Collections {
		op := item.NewCollectionCreate(c.DefaultHolder, c.ID, c.ItemCount, c.DefaultHolder)
		op.Enumerable = c.Enumerable
		res := n.engine.Apply(op)
		if !res.Result.IsSuccess() {
			return fmt.Errorf("genesis collection %q: %s", c.ID, res.Result.Message())
		}
		log.Printf("Genesis: collection %s (%d items, holder %s)", c.ID, c.ItemCount, c.DefaultHolder)
	}
	for _, cur := range g.Currencies {
		op := fungible.NewCurrencyCreate(cur.Issuer, cur.ID, cur.Issuer, cur.Supply)
		res := n.engine.Apply(op)
		if !res.Result.IsSuccess() {
			return fmt.Errorf("genesis currency %q: %s", cur.ID, res.Result.Message())
		}
		log.Printf("Genesis: currency %s (supply %d, issuer %s)", cur.ID, cur.Supply, cur.Issuer)
	}
	return nil
}

// Submit parses, applies and records one operation given as JSON.
func (n *Node) Submit(ctx context.Context, opJSON json.RawMessage) (*tx.ApplyResult, error) {
	op, err := tx.FromJSON(opJSON)
	if err != nil {
		return nil, err
	}
	res := n.engine.Apply(op)

	seq := int64(0)
	if res.Applied && n.index != nil {
		rec := history.Record{
			Type:      op.OpType().String(),
			Account:   op.GetCommon().Account,
			Result:    res.Result.String(),
			Operation: opJSON,
			AppliedAt: time.Now(),
		}
		if len(res.Events) > 0 {
			if data, err := json.Marshal(tx.Tagged(res.Events)); err == nil {
				rec.Events = data
			}
		}
		seq, err = n.index.Append(ctx, rec, itemRefs(res.Events))
		if err != nil {
			log.Printf("History append failed: %v", err)
		}
	}

	if res.Applied && n.publisher != nil {
		n.publisher.PublishOperation(&OpNotification{
			Seq:       seq,
			Type:      op.OpType().String(),
			Account:   op.GetCommon().Account,
			Result:    res.Result.String(),
			Operation: opJSON,
			Events:    tx.Tagged(res.Events),
		}, affectedAccounts(op, res.Events))
	}
	return &res, nil
}

func itemRefs(events []tx.Event) []history.ItemRef {
	var refs []history.ItemRef
	seen := make(map[history.ItemRef]bool)
	add := func(collection string, item uint32) {
		ref := history.ItemRef{Collection: collection, Item: item}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	for _, ev := range events {
		switch e := ev.(type) {
		case tx.TransferEvent:
			add(e.Collection, e.Item)
		case tx.ApprovalEvent:
			add(e.Collection, e.Item)
		case tx.SettlementEvent:
			add(e.Collection, e.Item)
		}
	}
	return refs
}

func affectedAccounts(op tx.Operation, events []tx.Event) []string {
	seen := make(map[string]bool)
	var accounts []string
	add := func(a string) {
		if a != "" && !seen[a] {
			seen[a] = true
			accounts = append(accounts, a)
		}
	}
	add(op.GetCommon().Account)
	for _, ev := range events {
		switch e := ev.(type) {
		case tx.TransferEvent:
			add(e.From)
			add(e.To)
		case tx.ApprovalEvent:
			add(e.Owner)
			add(e.Approved)
		case tx.OperatorApprovalEvent:
			add(e.Owner)
			add(e.Operator)
		case tx.OfferEvent:
			add(e.Offeror)
		case tx.SettlementEvent:
			add(e.Offeror)
			add(e.Redeemer)
		case tx.CurrencyTransferEvent:
			add(e.From)
			add(e.To)
		case tx.CurrencyApprovalEvent:
			add(e.Owner)
			add(e.Spender)
		}
	}
	return accounts
}

// CollectionInfo reports the root entry of a collection.
func (n *Node) CollectionInfo(id string) (*ledger.CollectionRoot, error) {
	return registry.Collection(n.store, id)
}

// OwnerOf resolves the holder of one item.
func (n *Node) OwnerOf(collection string, item uint32) (string, error) {
	return registry.OwnerOf(n.store, collection, item)
}

// BalanceOf counts the items held by an account in one collection.
func (n *Node) BalanceOf(collection, account string) (uint32, error) {
	return registry.BalanceOf(n.store, collection, account)
}

// TotalSupply reports the fixed item count of a collection.
func (n *Node) TotalSupply(collection string) (uint32, error) {
	return registry.TotalSupply(n.store, collection)
}

// TokenByIndex maps an enumeration index to an item identifier.
func (n *Node) TokenByIndex(collection string, index uint32) (uint32, error) {
	return registry.TokenByIndex(n.store, collection, index)
}

// TokenOfOwnerByIndex enumerates one account's holdings.
func (n *Node) TokenOfOwnerByIndex(collection, account string, index uint32) (uint32, error) {
	return registry.TokenOfOwnerByIndex(n.store, collection, account, index)
}

// Approved reports the transfer grantee of an item, if any.
func (n *Node) Approved(collection string, item uint32) (string, error) {
	return registry.Approved(n.store, collection, item)
}

// IsOperator reports whether operator may act for owner across a collection.
func (n *Node) IsOperator(collection, owner, operator string) (bool, error) {
	return registry.IsOperator(n.store, collection, owner, operator)
}

// OfferInfo returns a standing offer from the book.
func (n *Node) OfferInfo(collection, offeror string) (*ledger.Offer, error) {
	return market.LookupOffer(n.store, collection, offeror)
}

// TokenPrice quotes one item under a standing offer.
func (n *Node) TokenPrice(collection string, item uint32, offeror string) (uint64, string, error) {
	return market.TokenPrice(n.store, collection, item, offeror)
}

// CurrencyInfo reports the root entry of a hosted currency.
func (n *Node) CurrencyInfo(id string) (*ledger.CurrencyRoot, error) {
	return currency.Currency(n.store, id)
}

// CurrencyBalance reports an account balance in a hosted currency.
func (n *Node) CurrencyBalance(currencyID, account string) (uint64, error) {
	return currency.BalanceOf(n.store, currencyID, account)
}

// CurrencyAllowance reports a spending authorization.
func (n *Node) CurrencyAllowance(currencyID, owner, spender string) (uint64, error) {
	return currency.Allowance(n.store, currencyID, owner, spender)
}

// ItemHistory returns recorded operations that touched one item.
func (n *Node) ItemHistory(ctx context.Context, collection string, item uint32, limit int) ([]history.Record, error) {
	if n.index == nil {
		return nil, fmt.Errorf("history index not configured")
	}
	return n.index.ItemHistory(ctx, collection, item, limit)
}

// AccountHistory returns recorded operations submitted by one account.
func (n *Node) AccountHistory(ctx context.Context, account string, limit int) ([]history.Record, error) {
	if n.index == nil {
		return nil, fmt.Errorf("history index not configured")
	}
	return n.index.AccountHistory(ctx, account, limit)
}

// Info summarizes the running node for server_info.
type Info struct {
	Version    string `json:"version"`
	Backend    string `json:"backend"`
	UptimeSec  int64  `json:"uptime_seconds"`
	Operations int64  `json:"operations"`
	HistoryOn  bool   `json:"history_enabled"`
	Settlement string `json:"settlement_account"`
}

// Info reports runtime details about the node.
func (n *Node) Info(ctx context.Context) (*Info, error) {
	info := &Info{
		Version:    config.Version,
		Backend:    n.cfg.Database.Backend,
		UptimeSec:  int64(time.Since(n.startedAt).Seconds()),
		HistoryOn:  n.index != nil,
		Settlement: market.EngineAccount,
	}
	if n.index != nil {
		count, err := n.index.Count(ctx)
		if err != nil {
			return nil, err
		}
		info.Operations = count
	}
	return info, nil
}
