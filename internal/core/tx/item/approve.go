package item

import (
	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeApprove, func() tx.Operation {
		return &Approve{Base: *tx.NewBase(tx.TypeApprove, "")}
	})
}

// Approve grants a single-item transfer right. Only the item's holder or a
// blanket operator of the holder may grant it; the grant disappears when
// the item's holder next changes.
type Approve struct {
	tx.Base

	// Collection identifies the registry (required)
	Collection string `json:"Collection"`

	// To receives the transfer right (required, non-empty)
	To string `json:"To"`

	// Item is the item identifier (required)
	Item uint32 `json:"Item"`
}

// NewApprove creates an Approve operation.
func NewApprove(account, collection, to string, item uint32) *Approve {
	return &Approve{
		Base:       *tx.NewBase(tx.TypeApprove, account),
		Collection: collection,
		To:         to,
		Item:       item,
	}
}

func (a *Approve) Validate() error {
	if err := a.Base.Validate(); err != nil {
		return err
	}
	if a.Collection == "" {
		return tx.ErrMissingCollection
	}
	for _, id := range []string{a.Collection, a.To} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (a *Approve) Apply(ctx *tx.ApplyContext) tx.Result {
	if a.To == "" {
		return tx.InvalidAccount
	}

	root, err := registry.Collection(ctx.View, a.Collection)
	if err != nil {
		return tx.NoCollection
	}
	if a.Item >= root.ItemCount {
		return tx.UnknownItem
	}

	owner, err := registry.OwnerOf(ctx.View, a.Collection, a.Item)
	if err != nil {
		return tx.Internal
	}
	if a.Account != owner {
		isOp, err := registry.IsOperator(ctx.View, a.Collection, owner, a.Account)
		if err != nil {
			return tx.Internal
		}
		if !isOp {
			return tx.Unauthorized
		}
	}

	err = ledger.PutEntry(ctx.View, ledger.GrantKey(a.Collection, a.Item), &ledger.Grant{Account: a.To})
	if err != nil {
		return tx.Internal
	}

	ctx.Emit(tx.ApprovalEvent{
		Collection: a.Collection,
		Owner:      owner,
		Approved:   a.To,
		Item:       a.Item,
	})
	return tx.Success
}
