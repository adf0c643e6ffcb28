package tx

import (
	"github.com/itemledger/itemd/internal/core/ledger"
	"github.com/itemledger/itemd/internal/core/registry"
)

// ApplyContext carries everything an operation needs while applying. The
// view is a StateTable: nothing an operation writes is visible outside it
// until the engine commits the whole operation.
type ApplyContext struct {
	// View provides tracked read/write access to state
	View ledger.View

	// Receivers resolves acceptance callbacks for safe transfers
	Receivers *registry.ReceiverSet

	events []Event
}

// Emit queues a notification to publish if the operation commits.
func (ctx *ApplyContext) Emit(ev Event) {
	ctx.events = append(ctx.events, ev)
}

// Events returns the notifications queued so far.
func (ctx *ApplyContext) Events() []Event {
	return ctx.events
}
