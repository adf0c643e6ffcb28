package fungible

import (
	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCurrencyApprove, func() tx.Operation {
		return &CurrencyApprove{Base: *tx.NewBase(tx.TypeCurrencyApprove, "")}
	})
}

// CurrencyApprove authorizes a spender to debit up to Amount from the
// caller's balance. This is how an offeror pre-authorizes the settlement
// engine before publishing an offer. A zero amount revokes.
type CurrencyApprove struct {
	tx.Base

	// Currency identifies the currency (required)
	Currency string `json:"Currency"`

	// Spender is the account being authorized (required, non-empty)
	Spender string `json:"Spender"`

	// Amount is the authorization ceiling; zero revokes
	Amount uint64 `json:"Amount"`
}

// NewCurrencyApprove creates a CurrencyApprove operation.
func NewCurrencyApprove(account, curr, spender string, amount uint64) *CurrencyApprove {
	return &CurrencyApprove{
		Base:     *tx.NewBase(tx.TypeCurrencyApprove, account),
		Currency: curr,
		Spender:  spender,
		Amount:   amount,
	}
}

func (a *CurrencyApprove) Validate() error {
	if err := a.Base.Validate(); err != nil {
		return err
	}
	if a.Currency == "" {
		return tx.ErrMissingCurrency
	}
	for _, id := range []string{a.Currency, a.Spender} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (a *CurrencyApprove) Apply(ctx *tx.ApplyContext) tx.Result {
	err := currency.SetAllowance(ctx.View, a.Currency, a.Account, a.Spender, a.Amount)
	if result := currencyResult(err); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.CurrencyApprovalEvent{
		Currency: a.Currency,
		Owner:    a.Account,
		Spender:  a.Spender,
		Amount:   a.Amount,
	})
	return tx.Success
}
