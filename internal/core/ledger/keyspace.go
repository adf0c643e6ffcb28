package ledger

import "encoding/binary"

// Space identifiers for state keys. Each state entry kind gets its own
// single-byte prefix so that a kind can be range-scanned in isolation.
const (
	spaceCollection byte = 'c' // collection root
	spaceHolder     byte = 'h' // explicit item holder
	spaceGrant      byte = 'g' // per-item transfer grant
	spaceOperator   byte = 'p' // blanket operator grant
	spaceOffer      byte = 'o' // offer book entry
	spaceCurrency   byte = 'u' // currency root
	spaceBalance    byte = 'b' // currency balance
	spaceAllowance  byte = 'a' // currency allowance
)

// MaxIDLen bounds collection, currency and account identifiers so that they
// fit a one-byte length prefix inside keys.
const MaxIDLen = 255

// appendID appends a length-prefixed identifier.
func appendID(key []byte, id string) []byte {
	key = append(key, byte(len(id)))
	return append(key, id...)
}

func appendItem(key []byte, item uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], item)
	return append(key, buf[:]...)
}

// CollectionKey returns the key of a collection root entry.
func CollectionKey(collection string) []byte {
	return appendID([]byte{spaceCollection}, collection)
}

// HolderKey returns the key of the explicit holder entry for an item.
func HolderKey(collection string, item uint32) []byte {
	return appendItem(appendID([]byte{spaceHolder}, collection), item)
}

// GrantKey returns the key of the transfer grant entry for an item.
func GrantKey(collection string, item uint32) []byte {
	return appendItem(appendID([]byte{spaceGrant}, collection), item)
}

// OperatorKey returns the key of a blanket operator grant.
func OperatorKey(collection, owner, operator string) []byte {
	key := appendID([]byte{spaceOperator}, collection)
	key = appendID(key, owner)
	return appendID(key, operator)
}

// OfferKey returns the key of the offer book entry for (collection, offeror).
func OfferKey(collection, offeror string) []byte {
	return appendID(appendID([]byte{spaceOffer}, collection), offeror)
}

// CurrencyKey returns the key of a currency root entry.
func CurrencyKey(currency string) []byte {
	return appendID([]byte{spaceCurrency}, currency)
}

// BalanceKey returns the key of a currency balance entry.
func BalanceKey(currency, account string) []byte {
	return appendID(appendID([]byte{spaceBalance}, currency), account)
}

// AllowanceKey returns the key of a currency allowance entry.
func AllowanceKey(currency, owner, spender string) []byte {
	key := appendID([]byte{spaceAllowance}, currency)
	key = appendID(key, owner)
	return appendID(key, spender)
}

// HolderPrefix returns the range prefix covering all explicit holder entries
// of a collection.
func HolderPrefix(collection string) []byte {
	return appendID([]byte{spaceHolder}, collection)
}

// OfferPrefix returns the range prefix covering all offers on a collection.
func OfferPrefix(collection string) []byte {
	return appendID([]byte{spaceOffer}, collection)
}

// PrefixEnd returns the smallest key greater than every key with the given
// prefix, or nil if no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
