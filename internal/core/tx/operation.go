package tx

import (
	"errors"
	"fmt"

	"github.com/itemledger/itemd/internal/core/ledger"
)

// Common errors shared by operation validation.
var (
	ErrMissingAccount    = errors.New("Account is required")
	ErrMissingCollection = errors.New("Collection is required")
	ErrMissingCurrency   = errors.New("Currency is required")
	ErrReservedAccount   = errors.New("accounts starting with @ are reserved")
	ErrIDTooLong         = fmt.Errorf("identifier exceeds %d bytes", ledger.MaxIDLen)
)

// Operation is the interface every operation type implements. Validate
// checks the operation in isolation; Apply runs it against a tracked view
// and returns a Result, never leaving partial effects behind on failure.
type Operation interface {
	// OpType returns the operation type code
	OpType() Type

	// GetCommon returns the common operation fields
	GetCommon() *Common

	// Validate checks the operation's own fields, without state access
	Validate() error

	// Apply runs the operation against the context's view
	Apply(ctx *ApplyContext) Result
}

// Common contains fields shared by all operation types.
type Common struct {
	// Account is the caller on whose behalf the operation runs
	Account string `json:"Account"`

	// OperationType names the concrete operation
	OperationType string `json:"OperationType"`
}

// Validate validates the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	// Reserved names like the settlement engine's spender account can be
	// granted rights but never act as a caller.
	if c.Account[0] == '@' {
		return ErrReservedAccount
	}
	if err := CheckID(c.Account); err != nil {
		return err
	}
	if c.OperationType == "" {
		return errors.New("OperationType is required")
	}
	return nil
}

// CheckID validates an identifier against the key length bound.
func CheckID(id string) error {
	if len(id) > ledger.MaxIDLen {
		return ErrIDTooLong
	}
	return nil
}

// Base provides a base implementation for operations.
type Base struct {
	Common
	opType Type
}

// NewBase creates operation base fields for the given type and caller.
func NewBase(opType Type, account string) *Base {
	return &Base{
		Common: Common{
			Account:       account,
			OperationType: opType.String(),
		},
		opType: opType,
	}
}

// OpType returns the operation type code.
func (b *Base) OpType() Type {
	return b.opType
}

// GetCommon returns the common operation fields.
func (b *Base) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base operation.
func (b *Base) Validate() error {
	return b.Common.Validate()
}
