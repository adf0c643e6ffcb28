package fungible

import (
	"errors"

	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCurrencyTransfer, func() tx.Operation {
		return &CurrencyTransfer{Base: *tx.NewBase(tx.TypeCurrencyTransfer, "")}
	})
	tx.Register(tx.TypeCurrencyTransferFrom, func() tx.Operation {
		return &CurrencyTransferFrom{Base: *tx.NewBase(tx.TypeCurrencyTransferFrom, "")}
	})
}

// CurrencyTransfer moves funds from the caller's own balance.
type CurrencyTransfer struct {
	tx.Base

	// Currency identifies the currency (required)
	Currency string `json:"Currency"`

	// To receives the funds (required, non-empty)
	To string `json:"To"`

	// Amount is the amount to move (required)
	Amount uint64 `json:"Amount"`
}

// NewCurrencyTransfer creates a CurrencyTransfer operation.
func NewCurrencyTransfer(account, curr, to string, amount uint64) *CurrencyTransfer {
	return &CurrencyTransfer{
		Base:     *tx.NewBase(tx.TypeCurrencyTransfer, account),
		Currency: curr,
		To:       to,
		Amount:   amount,
	}
}

func (t *CurrencyTransfer) Validate() error {
	if err := t.Base.Validate(); err != nil {
		return err
	}
	if t.Currency == "" {
		return tx.ErrMissingCurrency
	}
	for _, id := range []string{t.Currency, t.To} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *CurrencyTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	err := currency.Transfer(ctx.View, t.Currency, t.Account, t.To, t.Amount)
	if result := currencyResult(err); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.CurrencyTransferEvent{
		Currency: t.Currency,
		From:     t.Account,
		To:       t.To,
		Amount:   t.Amount,
	})
	return tx.Success
}

// CurrencyTransferFrom moves funds out of another account's balance under
// the caller's allowance, consuming it.
type CurrencyTransferFrom struct {
	tx.Base

	// Currency identifies the currency (required)
	Currency string `json:"Currency"`

	// From is the balance being debited (required, non-empty)
	From string `json:"From"`

	// To receives the funds (required, non-empty)
	To string `json:"To"`

	// Amount is the amount to move (required)
	Amount uint64 `json:"Amount"`
}

// NewCurrencyTransferFrom creates a CurrencyTransferFrom operation.
func NewCurrencyTransferFrom(account, curr, from, to string, amount uint64) *CurrencyTransferFrom {
	return &CurrencyTransferFrom{
		Base:     *tx.NewBase(tx.TypeCurrencyTransferFrom, account),
		Currency: curr,
		From:     from,
		To:       to,
		Amount:   amount,
	}
}

func (t *CurrencyTransferFrom) Validate() error {
	if err := t.Base.Validate(); err != nil {
		return err
	}
	if t.Currency == "" {
		return tx.ErrMissingCurrency
	}
	for _, id := range []string{t.Currency, t.From, t.To} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (t *CurrencyTransferFrom) Apply(ctx *tx.ApplyContext) tx.Result {
	err := currency.TransferFrom(ctx.View, t.Currency, t.Account, t.From, t.To, t.Amount)
	if result := currencyResult(err); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.CurrencyTransferEvent{
		Currency: t.Currency,
		From:     t.From,
		To:       t.To,
		Amount:   t.Amount,
	})
	return tx.Success
}

// currencyResult maps currency ledger errors onto result codes.
func currencyResult(err error) tx.Result {
	switch {
	case err == nil:
		return tx.Success
	case errors.Is(err, currency.ErrNoCurrency):
		return tx.NoCurrency
	case errors.Is(err, currency.ErrInvalidAccount):
		return tx.InvalidAccount
	case errors.Is(err, currency.ErrInsufficientFunds):
		return tx.InsufficientFunds
	case errors.Is(err, currency.ErrInsufficientAllowance):
		return tx.InsufficientAllowance
	default:
		return tx.Internal
	}
}
