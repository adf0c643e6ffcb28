package item

import (
	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeSetOperator, func() tx.Operation {
		return &SetOperator{Base: *tx.NewBase(tx.TypeSetOperator, "")}
	})
}

// SetOperator sets or clears a blanket grant letting the operator move any
// item the caller holds in the collection.
type SetOperator struct {
	tx.Base

	// Collection identifies the registry (required)
	Collection string `json:"Collection"`

	// Operator receives or loses the blanket grant (required, non-empty)
	Operator string `json:"Operator"`

	// Approved sets the grant when true, clears it when false
	Approved bool `json:"Approved"`
}

// NewSetOperator creates a SetOperator operation.
func NewSetOperator(account, collection, operator string, approved bool) *SetOperator {
	return &SetOperator{
		Base:       *tx.NewBase(tx.TypeSetOperator, account),
		Collection: collection,
		Operator:   operator,
		Approved:   approved,
	}
}

func (s *SetOperator) Validate() error {
	if err := s.Base.Validate(); err != nil {
		return err
	}
	if s.Collection == "" {
		return tx.ErrMissingCollection
	}
	for _, id := range []string{s.Collection, s.Operator} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SetOperator) Apply(ctx *tx.ApplyContext) tx.Result {
	if s.Operator == "" {
		return tx.InvalidAccount
	}
	if _, err := registry.Collection(ctx.View, s.Collection); err != nil {
		return tx.NoCollection
	}

	key := ledger.OperatorKey(s.Collection, s.Account, s.Operator)
	if s.Approved {
		err := ledger.PutEntry(ctx.View, key, &ledger.OperatorGrant{Approved: true})
		if err != nil {
			return tx.Internal
		}
	} else {
		exists, err := ctx.View.Exists(key)
		if err != nil {
			return tx.Internal
		}
		if exists {
			if err := ctx.View.Erase(key); err != nil {
				return tx.Internal
			}
		}
	}

	ctx.Emit(tx.OperatorApprovalEvent{
		Collection: s.Collection,
		Owner:      s.Account,
		Operator:   s.Operator,
		Approved:   s.Approved,
	})
	return tx.Success
}
