// Package currency implements the fungible-currency side of the ledger. The
// settlement engine only relies on the narrow debit-with-prior-authorization
// contract (Allowance + TransferFrom); the rest exists so the daemon is a
// complete counterparty on its own.
package currency

import (
	"errors"
	"fmt"

	"github.com/itemledger/itemd/internal/core/ledger"
)

var (
	// ErrNoCurrency is returned when the currency does not exist.
	ErrNoCurrency = errors.New("no such currency")

	// ErrInvalidAccount is returned when the empty account is named.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientAllowance is returned when a delegated debit exceeds
	// the spender's remaining allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Currency reads a currency root, or ErrNoCurrency.
func Currency(r ledger.Reader, id string) (*ledger.CurrencyRoot, error) {
	var root ledger.CurrencyRoot
	found, err := ledger.ReadEntry(r, ledger.CurrencyKey(id), &root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoCurrency, id)
	}
	return &root, nil
}

// Exists reports whether a currency exists.
func Exists(r ledger.Reader, id string) (bool, error) {
	return r.Exists(ledger.CurrencyKey(id))
}

// BalanceOf returns the account's balance in the given currency.
func BalanceOf(r ledger.Reader, currency, account string) (uint64, error) {
	if account == "" {
		return 0, ErrInvalidAccount
	}
	if _, err := Currency(r, currency); err != nil {
		return 0, err
	}

	var bal ledger.Balance
	found, err := ledger.ReadEntry(r, ledger.BalanceKey(currency, account), &bal)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return bal.Amount, nil
}

// Allowance returns how much spender may still debit from owner.
func Allowance(r ledger.Reader, currency, owner, spender string) (uint64, error) {
	var a ledger.Allowance
	found, err := ledger.ReadEntry(r, ledger.AllowanceKey(currency, owner, spender), &a)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return a.Amount, nil
}

// SetAllowance records that spender may debit up to amount from owner.
// A zero amount removes the entry.
func SetAllowance(v ledger.View, currency, owner, spender string, amount uint64) error {
	if owner == "" || spender == "" {
		return ErrInvalidAccount
	}
	if _, err := Currency(v, currency); err != nil {
		return err
	}

	key := ledger.AllowanceKey(currency, owner, spender)
	if amount == 0 {
		exists, err := v.Exists(key)
		if err != nil {
			return err
		}
		if exists {
			return v.Erase(key)
		}
		return nil
	}
	return ledger.PutEntry(v, key, &ledger.Allowance{Amount: amount})
}

// Transfer moves amount from one balance to another.
func Transfer(v ledger.View, currency, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if _, err := Currency(v, currency); err != nil {
		return err
	}
	if err := debit(v, currency, from, amount); err != nil {
		return err
	}
	return credit(v, currency, to, amount)
}

// TransferFrom moves amount from the owner's balance under the spender's
// allowance, consuming it.
func TransferFrom(v ledger.View, currency, spender, from, to string, amount uint64) error {
	if spender == "" {
		return ErrInvalidAccount
	}
	allowed, err := Allowance(v, currency, from, spender)
	if err != nil {
		return err
	}
	if allowed < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientAllowance, allowed, amount)
	}
	if err := Transfer(v, currency, from, to, amount); err != nil {
		return err
	}
	return SetAllowance(v, currency, from, spender, allowed-amount)
}

func debit(v ledger.View, currency, account string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	var bal ledger.Balance
	key := ledger.BalanceKey(currency, account)
	found, err := ledger.ReadEntry(v, key, &bal)
	if err != nil {
		return err
	}
	if !found || bal.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, bal.Amount, amount)
	}

	bal.Amount -= amount
	if bal.Amount == 0 {
		return v.Erase(key)
	}
	data, err := ledger.Marshal(&bal)
	if err != nil {
		return err
	}
	return v.Update(key, data)
}

func credit(v ledger.View, currency, account string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	var bal ledger.Balance
	key := ledger.BalanceKey(currency, account)
	if _, err := ledger.ReadEntry(v, key, &bal); err != nil {
		return err
	}
	bal.Amount += amount
	return ledger.PutEntry(v, key, &bal)
}
