package market

import (
	"fmt"

	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/market"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeOffer, func() tx.Operation {
		return &Offer{Base: *tx.NewBase(tx.TypeOffer, "")}
	})
}

// Variation names accepted on the wire.
const (
	VariationNone     = "none"
	VariationRampDown = "ramp_down"
)

// Offer publishes, replaces or retracts the caller's standing pricing rule
// on a collection. A zero BaseAmount retracts. Publication checks that the
// collection is a compliant registry, that ramp-down pricing cannot
// underflow for any currently-existing item, and that the caller has
// pre-authorized the settlement engine to debit the offer's currency.
type Offer struct {
	tx.Base

	// Collection identifies the target registry (required)
	Collection string `json:"Collection"`

	// Currency denominates the offer (required unless retracting)
	Currency string `json:"Currency,omitempty"`

	// BaseAmount is the price before variation; zero retracts
	BaseAmount uint64 `json:"BaseAmount"`

	// Variation is "none" or "ramp_down" (defaults to none)
	Variation string `json:"Variation,omitempty"`

	// Step is the per-item discount for ramp-down pricing
	Step uint64 `json:"Step,omitempty"`
}

// NewOffer creates an Offer operation with no variation.
func NewOffer(account, collection, curr string, baseAmount uint64) *Offer {
	return &Offer{
		Base:       *tx.NewBase(tx.TypeOffer, account),
		Collection: collection,
		Currency:   curr,
		BaseAmount: baseAmount,
	}
}

// NewRampDownOffer creates an Offer operation with ramp-down pricing.
func NewRampDownOffer(account, collection, curr string, baseAmount, step uint64) *Offer {
	o := NewOffer(account, collection, curr, baseAmount)
	o.Variation = VariationRampDown
	o.Step = step
	return o
}

func (o *Offer) Validate() error {
	if err := o.Base.Validate(); err != nil {
		return err
	}
	if o.Collection == "" {
		return tx.ErrMissingCollection
	}
	for _, id := range []string{o.Collection, o.Currency} {
		if err := tx.CheckID(id); err != nil {
			return err
		}
	}
	switch o.Variation {
	case "", VariationNone, VariationRampDown:
	default:
		return fmt.Errorf("unknown Variation %q", o.Variation)
	}
	if o.BaseAmount != 0 && o.Currency == "" {
		return tx.ErrMissingCurrency
	}
	return nil
}

func (o *Offer) Apply(ctx *tx.ApplyContext) tx.Result {
	key := ledger.OfferKey(o.Collection, o.Account)

	// Zero base amount retracts whatever is on the book.
	if o.BaseAmount == 0 {
		exists, err := ctx.View.Exists(key)
		if err != nil {
			return tx.Internal
		}
		if exists {
			if err := ctx.View.Erase(key); err != nil {
				return tx.Internal
			}
			ctx.Emit(tx.OfferEvent{
				Collection: o.Collection,
				Offeror:    o.Account,
				BaseAmount: 0,
			})
		}
		return tx.Success
	}

	compliant, err := registry.Supports(ctx.View, o.Collection, ledger.CapRegistry)
	if err != nil {
		return tx.Internal
	}
	if !compliant {
		return tx.NeedsCompliantRegistry
	}

	currencyExists, err := currency.Exists(ctx.View, o.Currency)
	if err != nil {
		return tx.Internal
	}
	if !currencyExists {
		return tx.NoCurrency
	}

	variation := ledger.VariationNone
	if o.Variation == VariationRampDown {
		variation = ledger.VariationRampDown
		if result := o.checkRamp(ctx); !result.IsSuccess() {
			return result
		}
	}

	// The offeror must have pre-authorized the engine to debit a non-zero
	// amount of the offer's currency.
	allowed, err := currency.Allowance(ctx.View, o.Currency, o.Account, market.EngineAccount)
	if err != nil {
		return tx.Internal
	}
	if allowed == 0 {
		return tx.NoPaymentAuthorization
	}

	entry := &ledger.Offer{
		Collection: o.Collection,
		Offeror:    o.Account,
		Currency:   o.Currency,
		BaseAmount: o.BaseAmount,
		Variation:  variation,
		Step:       o.Step,
	}
	if err := ledger.PutEntry(ctx.View, key, entry); err != nil {
		return tx.Internal
	}

	ctx.Emit(tx.OfferEvent{
		Collection: o.Collection,
		Offeror:    o.Account,
		Currency:   o.Currency,
		BaseAmount: o.BaseAmount,
	})
	return tx.Success
}

// checkRamp runs the publication-time underflow scan: every currently
// enumerated item must price above zero under (BaseAmount, Step). Items
// that could appear later with higher identifiers are not a concern here;
// collections have a fixed item count.
func (o *Offer) checkRamp(ctx *tx.ApplyContext) tx.Result {
	enumerable, err := registry.Supports(ctx.View, o.Collection, ledger.CapEnumerable)
	if err != nil {
		return tx.Internal
	}
	if !enumerable {
		return tx.NeedsEnumerableRegistry
	}
	if o.Step == 0 {
		return tx.ZeroStep
	}

	total, err := registry.TotalSupply(ctx.View, o.Collection)
	if err != nil {
		return tx.Internal
	}
	limit := o.BaseAmount / o.Step
	for index := uint32(0); index < total; index++ {
		item, err := registry.TokenByIndex(ctx.View, o.Collection, index)
		if err != nil {
			return tx.Internal
		}
		if uint64(item) > limit {
			return tx.RampUnderflow
		}
	}
	return tx.Success
}
