package item

import (
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeSafeTransfer, func() tx.Operation {
		return &SafeTransfer{Base: *tx.NewBase(tx.TypeSafeTransfer, "")}
	})
}

// SafeTransfer is Transfer plus the receiver acceptance handshake: when the
// destination account has a registered receiver callback, the callback is
// invoked after the holder change and the whole operation aborts with
// ReceiverRejected unless it returns the acknowledgement value. Destinations
// without a callback behave exactly like a plain Transfer.
type SafeTransfer struct {
	tx.Base

	// Collection identifies the registry (required)
	Collection string `json:"Collection"`

	// From must be the item's current holder (required)
	From string `json:"From"`

	// To is the new holder (required, non-empty)
	To string `json:"To"`

	// Item is the item identifier (required)
	Item uint32 `json:"Item"`

	// Extra is opaque data handed to the receiver callback (optional)
	Extra []byte `json:"Extra,omitempty"`
}

// NewSafeTransfer creates a SafeTransfer operation.
func NewSafeTransfer(account, collection, from, to string, item uint32, extra []byte) *SafeTransfer {
	return &SafeTransfer{
		Base:       *tx.NewBase(tx.TypeSafeTransfer, account),
		Collection: collection,
		From:       from,
		To:         to,
		Item:       item,
		Extra:      extra,
	}
}

func (t *SafeTransfer) Validate() error {
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

func (t *SafeTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	if result := ApplyTransfer(ctx, t.Collection, t.Account, t.From, t.To, t.Item); !result.IsSuccess() {
		return result
	}

	if receiver, ok := ctx.Receivers.Lookup(t.To); ok {
		if receiver.OnItemReceived(t.Account, t.From, t.Item, t.Extra) != registry.AcceptTransfer {
			return tx.ReceiverRejected
		}
	}
	return tx.Success
}
