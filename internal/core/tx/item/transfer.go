package item

import (
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeTransfer, func() tx.Operation {
		return &Transfer{Base: *tx.NewBase(tx.TypeTransfer, "")}
	})
}

// Transfer moves an item from its current holder to another account. The
// caller must be the holder, the item's grantee, or a blanket operator of
// the holder. A successful transfer clears the item's transfer grant.
type Transfer struct {
	tx.Base

	// Collection identifies the registry (required)
	Collection string `json:"Collection"`

	// From must be the item's current holder (required)
	From string `json:"From"`

	// To is the new holder (required, non-empty)
	To string `json:"To"`

	// Item is the item identifier (required)
	Item uint32 `json:"Item"`
}

// NewTransfer creates a Transfer operation.
func NewTransfer(account, collection, from, to string, item uint32) *Transfer {
	return &Transfer{
		Base:       *tx.NewBase(tx.TypeTransfer, account),
		Collection: collection,
		From:       from,
		To:         to,
		Item:       item,
	}
}

func (t *Transfer) Validate() error {
	if err := t.Base.Validate(); err != nil {
		return err
	}
	if t.Collection == "" {
		return tx.ErrMissingCollection
	}
	for _, id := range []string{t.Collection, t.From, t.To} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transfer) Apply(ctx *tx.ApplyContext) tx.Result {
	return ApplyTransfer(ctx, t.Collection, t.Account, t.From, t.To, t.Item)
}

// ApplyTransfer runs the full transfer chain: existence checks, holder
// match, the caller authorization chain, then the holder change with grant
// reset. Shared by Transfer, SafeTransfer and the settlement engine's
// redeem operation.
func ApplyTransfer(ctx *tx.ApplyContext, collection, caller, from, to string, item uint32) tx.Result {
	root, err := registry.Collection(ctx.View, collection)
	if err != nil {
		return tx.NoCollection
	}
	if item >= root.ItemCount {
		return tx.UnknownItem
	}
	if from == "" || to == "" {
		return tx.InvalidAccount
	}

	owner, err := registry.OwnerOf(ctx.View, collection, item)
	if err != nil {
		return tx.Internal
	}
	if owner != from {
		return tx.OwnerMismatch
	}

	allowed, err := registry.CanTransfer(ctx.View, collection, item, owner, caller)
	if err != nil {
		return tx.Internal
	}
	if !allowed {
		return tx.Unauthorized
	}

	grantCleared, err := registry.MoveItem(ctx.View, collection, item, to)
	if err != nil {
		return tx.Internal
	}
	if grantCleared {
		ctx.Emit(tx.ApprovalEvent{
			Collection: collection,
			Owner:      from,
			Approved:   "",
			Item:       item,
		})
	}
	ctx.Emit(tx.TransferEvent{
		Collection: collection,
		From:       from,
		To:         to,
		Item:       item,
	})
	return tx.Success
}
