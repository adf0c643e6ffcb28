// Package registry implements the ownership side of the ledger: which
// account holds each item of a collection, delegated transfer rights, and
// the enumeration queries. Collections have a fixed item count and a default
// holder; an item without an explicit holder entry belongs to the default
// holder, so creating a collection of N items takes O(1) state writes.
package registry

import (
	"errors"
	"fmt"

	"github.com/itemledger/itemd/internal/core/ledger"
)

var (
	// ErrNoCollection is returned when the collection does not exist.
	ErrNoCollection = errors.New("no such collection")

	// ErrUnknownItem is returned when the item identifier is outside the
	// collection's fixed range.
	ErrUnknownItem = errors.New("unknown item")

	// ErrInvalidAccount is returned when the empty account is named as a
	// holder, grantee or operator.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrIndexOutOfRange is returned by enumeration queries when the index
	// exceeds the available entries.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Collection reads a collection root, or ErrNoCollection.
func Collection(r ledger.Reader, collection string) (*ledger.CollectionRoot, error) {
	var root ledger.CollectionRoot
	found, err := ledger.ReadEntry(r, ledger.CollectionKey(collection), &root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoCollection, collection)
	}
	return &root, nil
}

// Supports reports whether the collection advertises the given capability
// bits. Unknown collections support nothing.
func Supports(r ledger.Reader, collection string, cap uint32) (bool, error) {
	root, err := Collection(r, collection)
	if err != nil {
		if errors.Is(err, ErrNoCollection) {
			return false, nil
		}
		return false, err
	}
	return root.Supports(cap), nil
}

// OwnerOf resolves the current holder of an item.
func OwnerOf(r ledger.Reader, collection string, item uint32) (string, error) {
	root, err := Collection(r, collection)
	if err != nil {
		return "", err
	}
	if item >= root.ItemCount {
		return "", fmt.Errorf("%w: %d", ErrUnknownItem, item)
	}
	return resolveHolder(r, root, item)
}

func resolveHolder(r ledger.Reader, root *ledger.CollectionRoot, item uint32) (string, error) {
	var holder ledger.Holder
	found, err := ledger.ReadEntry(r, ledger.HolderKey(root.ID, item), &holder)
	if err != nil {
		return "", err
	}
	if !found {
		return root.DefaultHolder, nil
	}
	return holder.Account, nil
}

// BalanceOf counts the items held by an account. The scan over the fixed
// item range is O(N); collections are sized for this.
func BalanceOf(r ledger.Reader, collection, account string) (uint32, error) {
	if account == "" {
		return 0, ErrInvalidAccount
	}
	root, err := Collection(r, collection)
	if err != nil {
		return 0, err
	}

	var count uint32
	for item := uint32(0); item < root.ItemCount; item++ {
		holder, err := resolveHolder(r, root, item)
		if err != nil {
			return 0, err
		}
		if holder == account {
			count++
		}
	}
	return count, nil
}

// TotalSupply returns the fixed number of items in the collection.
func TotalSupply(r ledger.Reader, collection string) (uint32, error) {
	root, err := Collection(r, collection)
	if err != nil {
		return 0, err
	}
	return root.ItemCount, nil
}

// TokenByIndex maps an enumeration index to an item identifier. Item
// identifiers are dense in [0, N), so the mapping is the identity.
func TokenByIndex(r ledger.Reader, collection string, index uint32) (uint32, error) {
	root, err := Collection(r, collection)
	if err != nil {
		return 0, err
	}
	if index >= root.ItemCount {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return index, nil
}

// TokenOfOwnerByIndex returns the index-th item held by the account, in
// item-identifier order.
func TokenOfOwnerByIndex(r ledger.Reader, collection, account string, index uint32) (uint32, error) {
	if account == "" {
		return 0, ErrInvalidAccount
	}
	root, err := Collection(r, collection)
	if err != nil {
		return 0, err
	}

	var seen uint32
	for item := uint32(0); item < root.ItemCount; item++ {
		holder, err := resolveHolder(r, root, item)
		if err != nil {
			return 0, err
		}
		if holder != account {
			continue
		}
		if seen == index {
			return item, nil
		}
		seen++
	}
	return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
}

// Approved returns the account holding the transfer grant for an item, or
// the empty string when no grant is set.
func Approved(r ledger.Reader, collection string, item uint32) (string, error) {
	root, err := Collection(r, collection)
	if err != nil {
		return "", err
	}
	if item >= root.ItemCount {
		return "", fmt.Errorf("%w: %d", ErrUnknownItem, item)
	}

	var grant ledger.Grant
	found, err := ledger.ReadEntry(r, ledger.GrantKey(collection, item), &grant)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return grant.Account, nil
}

// IsOperator reports whether operator holds a blanket grant from owner.
func IsOperator(r ledger.Reader, collection, owner, operator string) (bool, error) {
	var grant ledger.OperatorGrant
	found, err := ledger.ReadEntry(r, ledger.OperatorKey(collection, owner, operator), &grant)
	if err != nil {
		return false, err
	}
	return found && grant.Approved, nil
}

// CanTransfer reports whether caller may move the item currently held by
// owner: the holder themselves, the item's grantee, or a blanket operator.
func CanTransfer(r ledger.Reader, collection string, item uint32, owner, caller string) (bool, error) {
	if caller == owner {
		return true, nil
	}
	grantee, err := Approved(r, collection, item)
	if err != nil {
		return false, err
	}
	if grantee != "" && grantee == caller {
		return true, nil
	}
	return IsOperator(r, collection, owner, caller)
}

// MoveItem reassigns an item to a new holder and clears its transfer grant.
// Returns whether a grant was cleared (a grant-reset notification is due).
// Callers are responsible for the authorization chain.
func MoveItem(v ledger.View, collection string, item uint32, to string) (grantCleared bool, err error) {
	grantKey := ledger.GrantKey(collection, item)
	hadGrant, err := v.Exists(grantKey)
	if err != nil {
		return false, err
	}
	if hadGrant {
		if err := v.Erase(grantKey); err != nil {
			return false, err
		}
	}

	if err := ledger.PutEntry(v, ledger.HolderKey(collection, item), &ledger.Holder{Account: to}); err != nil {
		return false, err
	}
	return hadGrant, nil
}
