package market

import (
	"errors"

	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/market"
	"github.com/itemledger/itemd/internal/core/tx"
	"github.com/itemledger/itemd/internal/core/tx/item"
)

func init() {
	tx.Register(tx.TypeRedeem, func() tx.Operation {
		return &Redeem{Base: *tx.NewBase(tx.TypeRedeem, "")}
	})
}

// Redeem settles one item against a standing offer: the caller (who must
// hold the item) delivers it to the offeror, and the offer's price in the
// offer's currency moves from the offeror to the caller under the offeror's
// prior authorization. Both movements run in the same tracked view, so they
// commit together or not at all.
//
// WantAmount and WantCurrency pin the caller's expectations: the offer may
// have been replaced since the caller last looked, and the operation aborts
// rather than settle at an unexpected price. Redemption does not consume
// the offer; it remains on the book as a standing commitment.
type Redeem struct {
	tx.Base

	// Collection identifies the registry (required)
	Collection string `json:"Collection"`

	// Item is the item being delivered (required)
	Item uint32 `json:"Item"`

	// Offeror names whose offer to settle against (required)
	Offeror string `json:"Offeror"`

	// WantAmount is the minimum price the caller will settle at
	WantAmount uint64 `json:"WantAmount"`

	// WantCurrency is the currency the caller expects to be paid in
	WantCurrency string `json:"WantCurrency"`
}

// NewRedeem creates a Redeem operation.
func NewRedeem(account, collection string, itemID uint32, offeror string, wantAmount uint64, wantCurrency string) *Redeem {
	return &Redeem{
		Base:         *tx.NewBase(tx.TypeRedeem, account),
		Collection:   collection,
		Item:         itemID,
		Offeror:      offeror,
		WantAmount:   wantAmount,
		WantCurrency: wantCurrency,
	}
}

func (r *Redeem) Validate() error {
	if err := r.Base.Validate(); err != nil {
		return err
	}
	if r.Collection == "" {
		return tx.ErrMissingCollection
	}
	if r.Offeror == "" {
		return errors.New("Offeror is required")
	}
	for _, id := range []string{r.Collection, r.Offeror, r.WantCurrency} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redeem) Apply(ctx *tx.ApplyContext) tx.Result {
	if r.Account == r.Offeror {
		return tx.SelfTrade
	}

	// Re-derive the current price and check it against the caller's
	// expectations before touching any state.
	amount, curr, err := market.TokenPrice(ctx.View, r.Collection, r.Item, r.Offeror)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrNoSuchOffer):
			return tx.NoSuchOffer
		case errors.Is(err, market.ErrRampUnderflow):
			return tx.RampUnderflow
		default:
			return tx.Internal
		}
	}
	if amount < r.WantAmount {
		return tx.PriceMismatch
	}
	if curr != r.WantCurrency {
		return tx.CurrencyMismatch
	}

	// Item side: the caller delivers the item to the offeror through the
	// ordinary transfer chain (holder match + grant reset).
	if result := item.ApplyTransfer(ctx, r.Collection, r.Account, r.Account, r.Offeror, r.Item); !result.IsSuccess() {
		return result
	}

	// Currency side: debit the offeror under the engine's allowance. Any
	// failure here discards the item movement with the rest of the table.
	err = currency.TransferFrom(ctx.View, curr, market.EngineAccount, r.Offeror, r.Account, amount)
	switch {
	case err == nil:
	case errors.Is(err, currency.ErrInsufficientAllowance):
		return tx.InsufficientAllowance
	case errors.Is(err, currency.ErrInsufficientFunds):
		return tx.InsufficientFunds
	case errors.Is(err, currency.ErrNoCurrency):
		return tx.NoCurrency
	default:
		return tx.Internal
	}

	ctx.Emit(tx.CurrencyTransferEvent{
		Currency: curr,
		From:     r.Offeror,
		To:       r.Account,
		Amount:   amount,
	})
	ctx.Emit(tx.SettlementEvent{
		Collection: r.Collection,
		Item:       r.Item,
		Offeror:    r.Offeror,
		Redeemer:   r.Account,
		Amount:     amount,
		Currency:   curr,
	})
	return tx.Success
}
