package tx

import (
	"sync"

	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/registry"
)

// Engine applies operations against the state store. Operations run one at
// a time under the engine's lock: each runs to completion against a tracked
// view and then either commits as a whole or is discarded, so no operation
// ever observes or leaves partial effects.
type Engine struct {
	mu        sync.Mutex
	store     *ledger.Store
	receivers *registry.ReceiverSet
}

// ApplyResult is the outcome of applying one operation.
type ApplyResult struct {
	// Result is the operation result code
	Result Result

	// Applied indicates whether state changed
	Applied bool

	// Message is a human-readable result message
	Message string

	// Events are the notifications emitted by the operation
	Events []Event

	// Changes is the committed change set (empty unless applied)
	Changes []ledger.Change
}

// NewEngine creates an engine over the given store.
func NewEngine(store *ledger.Store, receivers *registry.ReceiverSet) *Engine {
	if receivers == nil {
		receivers = registry.NewReceiverSet()
	}
	return &Engine{store: store, receivers: receivers}
}

// Store returns the engine's committed state for read-only queries.
func (e *Engine) Store() *ledger.Store {
	return e.store
}

// Apply validates and applies a single operation.
func (e *Engine) Apply(op Operation) ApplyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := op.Validate(); err != nil {
		return ApplyResult{
			Result:  Malformed,
			Message: err.Error(),
		}
	}

	table := ledger.NewStateTable(e.store)
	ctx := &ApplyContext{
		View:      table,
		Receivers: e.receivers,
	}

	result := op.Apply(ctx)
	if !result.IsSuccess() {
		// Dropping the table discards every buffered write
		return ApplyResult{
			Result:  result,
			Message: result.Message(),
		}
	}

	changes := table.Changes()
	if err := e.store.ApplyChanges(changes); err != nil {
		return ApplyResult{
			Result:  Internal,
			Message: "failed to commit state changes: " + err.Error(),
		}
	}

	return ApplyResult{
		Result:  Success,
		Applied: true,
		Message: Success.Message(),
		Events:  ctx.Events(),
		Changes: changes,
	}
}
