package tx

// Type is an operation type code.
type Type uint16

const (
	TypeInvalid Type = 0xFFFF

	// Registry operations
	TypeCollectionCreate Type = 1
	TypeTransfer         Type = 2
	TypeSafeTransfer     Type = 3
	TypeApprove          Type = 4
	TypeSetOperator      Type = 5

	// Marketplace operations
	TypeOffer  Type = 16
	TypeRedeem Type = 17

	// Currency operations
	TypeCurrencyCreate       Type = 32
	TypeCurrencyTransfer     Type = 33
	TypeCurrencyTransferFrom Type = 34
	TypeCurrencyApprove      Type = 35
)

var typeNames = map[Type]string{
	TypeCollectionCreate:     "CollectionCreate",
	TypeTransfer:             "Transfer",
	TypeSafeTransfer:         "SafeTransfer",
	TypeApprove:              "Approve",
	TypeSetOperator:          "SetOperator",
	TypeOffer:                "Offer",
	TypeRedeem:               "Redeem",
	TypeCurrencyCreate:       "CurrencyCreate",
	TypeCurrencyTransfer:     "CurrencyTransfer",
	TypeCurrencyTransferFrom: "CurrencyTransferFrom",
	TypeCurrencyApprove:      "CurrencyApprove",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the operation type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Invalid"
}

// TypeFromName looks up a type code by its name.
func TypeFromName(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}
