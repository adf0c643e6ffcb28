package ledger

// Capability bits advertised by a collection. The offer engine checks these
// before accepting a listing against the collection.
const (
	// CapRegistry marks a compliant item registry (ownership + transfer +
	// approval operations).
	CapRegistry uint32 = 0x01

	// CapEnumerable marks a registry that supports enumeration
	// (totalSupply / tokenByIndex / tokenOfOwnerByIndex).
	CapEnumerable uint32 = 0x02
)

// CollectionRoot is the immutable root entry of a collection. ItemCount and
// DefaultHolder are fixed at creation; any item without an explicit holder
// entry resolves to DefaultHolder.
type CollectionRoot struct {
	ID            string `codec:"id"`
	ItemCount     uint32 `codec:"item_count"`
	DefaultHolder string `codec:"default_holder"`
	Capabilities  uint32 `codec:"capabilities"`
}

// Supports reports whether the collection advertises the given capability.
func (c *CollectionRoot) Supports(cap uint32) bool {
	return c.Capabilities&cap == cap
}

// Holder is the explicit holder entry of an item. Absence of this entry
// means the item is held by the collection's DefaultHolder.
type Holder struct {
	Account string `codec:"account"`
}

// Grant is the delegated transfer right on a single item. Cleared whenever
// the item's holder changes.
type Grant struct {
	Account string `codec:"account"`
}

// OperatorGrant is a blanket grant letting an operator move any item owned
// by the granting account within one collection.
type OperatorGrant struct {
	Approved bool `codec:"approved"`
}

// Offer variation kinds.
const (
	VariationNone     uint8 = 0
	VariationRampDown uint8 = 1
)

// Offer is a standing pricing rule published by an offeror against a
// collection. At most one exists per (collection, offeror) pair.
type Offer struct {
	Collection string `codec:"collection"`
	Offeror    string `codec:"offeror"`
	Currency   string `codec:"currency"`
	BaseAmount uint64 `codec:"base_amount"`
	Variation  uint8  `codec:"variation"`
	Step       uint64 `codec:"step,omitempty"`
}

// CurrencyRoot is the root entry of a hosted fungible currency.
type CurrencyRoot struct {
	ID     string `codec:"id"`
	Issuer string `codec:"issuer"`
	Supply uint64 `codec:"supply"`
}

// Balance is a currency balance entry.
type Balance struct {
	Amount uint64 `codec:"amount"`
}

// Allowance is the amount a spender may debit from an owner's currency
// balance.
type Allowance struct {
	Amount uint64 `codec:"amount"`
}
