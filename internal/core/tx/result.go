package tx

import "fmt"

// Result is an operation result code. Zero is success; positive codes are
// failures against current state; negative codes are rejections that never
// reached state (malformed input, internal faults). No failure leaves any
// state change behind.
type Result int

const (
	Success Result = 0

	// Registry failures
	InvalidAccount   Result = 100
	UnknownItem      Result = 101
	OwnerMismatch    Result = 102
	Unauthorized     Result = 103
	ReceiverRejected Result = 104
	NoCollection     Result = 105
	CollectionExists Result = 106

	// Offer/settlement failures
	NeedsCompliantRegistry  Result = 120
	NeedsEnumerableRegistry Result = 121
	ZeroStep                Result = 122
	RampUnderflow           Result = 123
	NoPaymentAuthorization  Result = 124
	SelfTrade               Result = 125
	NoSuchOffer             Result = 126
	PriceMismatch           Result = 127
	CurrencyMismatch        Result = 128

	// Currency failures
	NoCurrency            Result = 140
	CurrencyExists        Result = 141
	InsufficientFunds     Result = 142
	InsufficientAllowance Result = 143

	// Rejections before state access
	Malformed        Result = -100
	UnknownOperation Result = -101

	// Internal faults
	Internal Result = -200
)

var resultNames = map[Result]string{
	Success:                 "Success",
	InvalidAccount:          "InvalidAccount",
	UnknownItem:             "UnknownItem",
	OwnerMismatch:           "OwnerMismatch",
	Unauthorized:            "Unauthorized",
	ReceiverRejected:        "ReceiverRejected",
	NoCollection:            "NoCollection",
	CollectionExists:        "CollectionExists",
	NeedsCompliantRegistry:  "NeedsCompliantRegistry",
	NeedsEnumerableRegistry: "NeedsEnumerableRegistry",
	ZeroStep:                "ZeroStep",
	RampUnderflow:           "RampUnderflow",
	NoPaymentAuthorization:  "NoPaymentAuthorization",
	SelfTrade:               "SelfTrade",
	NoSuchOffer:             "NoSuchOffer",
	PriceMismatch:           "PriceMismatch",
	CurrencyMismatch:        "CurrencyMismatch",
	NoCurrency:              "NoCurrency",
	CurrencyExists:          "CurrencyExists",
	InsufficientFunds:       "InsufficientFunds",
	InsufficientAllowance:   "InsufficientAllowance",
	Malformed:               "Malformed",
	UnknownOperation:        "UnknownOperation",
	Internal:                "Internal",
}

var resultMessages = map[Result]string{
	Success:                 "operation applied",
	InvalidAccount:          "the empty account is not a valid holder, grantee or operator",
	UnknownItem:             "item identifier outside the collection's range",
	OwnerMismatch:           "named account is not the item's current holder",
	Unauthorized:            "caller holds neither the item nor a transfer right over it",
	ReceiverRejected:        "receiver callback did not acknowledge the transfer",
	NoCollection:            "collection does not exist",
	CollectionExists:        "collection already exists",
	NeedsCompliantRegistry:  "collection does not advertise the item-registry capability",
	NeedsEnumerableRegistry: "ramp-down pricing requires an enumerable registry",
	ZeroStep:                "ramp-down step must be non-zero",
	RampUnderflow:           "price would underflow for an existing item",
	NoPaymentAuthorization:  "offeror has not authorized the settlement engine for this currency",
	SelfTrade:               "caller cannot redeem their own offer",
	NoSuchOffer:             "no active offer for this collection and offeror",
	PriceMismatch:           "current price is below the caller's expectation",
	CurrencyMismatch:        "offer is denominated in a different currency",
	NoCurrency:              "currency does not exist",
	CurrencyExists:          "currency already exists",
	InsufficientFunds:       "balance too low for the debit",
	InsufficientAllowance:   "remaining allowance too low for the debit",
	Malformed:               "operation is malformed",
	UnknownOperation:        "unknown operation type",
	Internal:                "internal error",
}

// String returns the code's name, e.g. "PriceMismatch".
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Message returns the human-readable reason for the code.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "unknown result"
}

// IsSuccess reports whether the operation was applied.
func (r Result) IsSuccess() bool {
	return r == Success
}
