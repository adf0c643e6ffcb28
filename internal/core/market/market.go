// Package market implements the offer book and the pricing formula. An offer
// is a standing, revocable commitment by an offeror to acquire any item of a
// collection at a formula-determined price; settlement happens in the redeem
// operation.
package market

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/itemledger/itemd/internal/core/ledger"
)

// EngineAccount is the reserved account identifier of the settlement engine.
// Offerors authorize currency debits to this spender; redemption consumes
// the allowance.
const EngineAccount = "@market"

var (
	// ErrNoSuchOffer is returned when no active offer exists for the
	// (collection, offeror) pair.
	ErrNoSuchOffer = errors.New("no such offer")

	// ErrRampUnderflow is returned when a ramp-down price would fall below
	// zero for the given item.
	ErrRampUnderflow = errors.New("ramp underflow")
)

// LookupOffer reads the active offer for (collection, offeror).
func LookupOffer(r ledger.Reader, collection, offeror string) (*ledger.Offer, error) {
	var offer ledger.Offer
	found, err := ledger.ReadEntry(r, ledger.OfferKey(collection, offeror), &offer)
	if err != nil {
		return nil, err
	}
	// A zero base amount means retracted; it is never stored, but treat it
	// as absent all the same.
	if !found || offer.BaseAmount == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoSuchOffer, collection, offeror)
	}
	return &offer, nil
}

// Price computes the price of an item under an offer's pricing rule.
// The ramp-down subtraction is checked: if baseAmount < step*item the price
// has underflowed and the offer cannot cover this item. The publication-time
// scan in the offer operation prevents this for items that existed when the
// offer was published; the check here guards the formula itself rather than
// papering over a wrapped value.
func Price(offer *ledger.Offer, item uint32) (uint64, error) {
	switch offer.Variation {
	case ledger.VariationNone:
		return offer.BaseAmount, nil
	case ledger.VariationRampDown:
		hi, discount := bits.Mul64(offer.Step, uint64(item))
		if hi != 0 || discount > offer.BaseAmount {
			return 0, fmt.Errorf("%w: item %d under base %d step %d",
				ErrRampUnderflow, item, offer.BaseAmount, offer.Step)
		}
		return offer.BaseAmount - discount, nil
	default:
		return 0, fmt.Errorf("unknown price variation %d", offer.Variation)
	}
}

// TokenPrice resolves the price and currency of an item under the offer
// published by offeror on the collection.
func TokenPrice(r ledger.Reader, collection string, item uint32, offeror string) (uint64, string, error) {
	offer, err := LookupOffer(r, collection, offeror)
	if err != nil {
		return 0, "", err
	}
	amount, err := Price(offer, item)
	if err != nil {
		return 0, "", err
	}
	return amount, offer.Currency, nil
}
