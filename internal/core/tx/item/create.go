package item

import (
	"errors"

	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCollectionCreate, func() tx.Operation {
		return &CollectionCreate{Base: *tx.NewBase(tx.TypeCollectionCreate, "")}
	})
}

// CollectionCreate instantiates a collection: a fixed set of items
// [0, ItemCount) initially held by DefaultHolder. The default-holder rule
// makes creation O(1) in state writes regardless of ItemCount. Collections
// are immutable after creation; no items are ever added or removed.
type CollectionCreate struct {
	tx.Base

	// Collection is the new collection's identifier (required)
	Collection string `json:"Collection"`

	// ItemCount is the fixed number of items (required, non-zero)
	ItemCount uint32 `json:"ItemCount"`

	// DefaultHolder owns every item that has no explicit holder entry
	// (required)
	DefaultHolder string `json:"DefaultHolder"`

	// Enumerable advertises the enumeration capability. Collections
	// without it cannot back ramp-down offers.
	Enumerable bool `json:"Enumerable,omitempty"`
}

// NewCollectionCreate creates a CollectionCreate operation.
func NewCollectionCreate(account, collection string, itemCount uint32, defaultHolder string) *CollectionCreate {
	return &CollectionCreate{
		Base:          *tx.NewBase(tx.TypeCollectionCreate, account),
		Collection:    collection,
		ItemCount:     itemCount,
		DefaultHolder: defaultHolder,
		Enumerable:    true,
	}
}

func (c *CollectionCreate) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if c.Collection == "" {
		return tx.ErrMissingCollection
	}
	if err := tx.CheckID(c.Collection); err != nil {
		return err
	}
	if err := tx.CheckID(c.DefaultHolder); err != nil {
		return err
	}
	if c.ItemCount == 0 {
		return errors.New("ItemCount must be non-zero")
	}
	return nil
}

func (c *CollectionCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if c.DefaultHolder == "" {
		return tx.InvalidAccount
	}

	key := ledger.CollectionKey(c.Collection)
	exists, err := ctx.View.Exists(key)
	if err != nil {
		return tx.Internal
	}
	if exists {
		return tx.CollectionExists
	}

	caps := ledger.CapRegistry
	if c.Enumerable {
		caps |= ledger.CapEnumerable
	}

	root := &ledger.CollectionRoot{
		ID:            c.Collection,
		ItemCount:     c.ItemCount,
		DefaultHolder: c.DefaultHolder,
		Capabilities:  caps,
	}
	data, err := ledger.Marshal(root)
	if err != nil {
		return tx.Internal
	}
	if err := ctx.View.Insert(key, data); err != nil {
		return tx.Internal
	}
	return tx.Success
}
