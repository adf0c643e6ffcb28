package fungible

import (
	"errors"

	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCurrencyCreate, func() tx.Operation {
		return &CurrencyCreate{Base: *tx.NewBase(tx.TypeCurrencyCreate, "")}
	})
}

// CurrencyCreate instantiates a hosted fungible currency with a fixed
// supply credited to the issuer.
type CurrencyCreate struct {
	tx.Base

	// Currency is the new currency's identifier (required)
	Currency string `json:"Currency"`

	// Issuer receives the initial supply (required)
	Issuer string `json:"Issuer"`

	// Supply is the fixed total supply (required, non-zero)
	Supply uint64 `json:"Supply"`
}

// NewCurrencyCreate creates a CurrencyCreate operation.
func NewCurrencyCreate(account, currency, issuer string, supply uint64) *CurrencyCreate {
	return &CurrencyCreate{
		Base:     *tx.NewBase(tx.TypeCurrencyCreate, account),
		Currency: currency,
		Issuer:   issuer,
		Supply:   supply,
	}
}

func (c *CurrencyCreate) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if c.Currency == "" {
		return tx.ErrMissingCurrency
	}
	for _, id := range []string{c.Currency, c.Issuer} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	if c.Supply == 0 {
		return errors.New("Supply must be non-zero")
	}
	return nil
}

func (c *CurrencyCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if c.Issuer == "" {
		return tx.InvalidAccount
	}

	key := ledger.CurrencyKey(c.Currency)
	exists, err := ctx.View.Exists(key)
	if err != nil {
		return tx.Internal
	}
	if exists {
		return tx.CurrencyExists
	}

	root := &ledger.CurrencyRoot{ID: c.Currency, Issuer: c.Issuer, Supply: c.Supply}
	data, err := ledger.Marshal(root)
	if err != nil {
		return tx.Internal
	}
	if err := ctx.View.Insert(key, data); err != nil {
		return tx.Internal
	}

	bal := &ledger.Balance{Amount: c.Supply}
	if err := ledger.PutEntry(ctx.View, ledger.BalanceKey(c.Currency, c.Issuer), bal); err != nil {
		return tx.Internal
	}

	ctx.Emit(tx.CurrencyTransferEvent{
		Currency: c.Currency,
		To:       c.Issuer,
		Amount:   c.Supply,
	})
	return tx.Success
}
