package tx

// Event is a notification emitted by a successfully applied operation.
// Events carry the indexed subject fields external consumers key on.
type Event interface {
	EventType() string
}

// TaggedEvent pairs an event with its type name so that consumers of the
// JSON form can tell the event kinds apart.
type TaggedEvent struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Tagged wraps events for JSON output.
func Tagged(events []Event) []TaggedEvent {
	if len(events) == 0 {
		return nil
	}
	tagged := make([]TaggedEvent, len(events))
	for i, ev := range events {
		tagged[i] = TaggedEvent{Event: ev.EventType(), Data: ev}
	}
	return tagged
}

// TransferEvent notifies that an item changed holders.
type TransferEvent struct {
	Collection string `json:"collection"`
	From       string `json:"from"`
	To         string `json:"to"`
	Item       uint32 `json:"item"`
}

func (TransferEvent) EventType() string { return "transfer" }

// ApprovalEvent notifies that an item's transfer grant changed. An empty
// Approved account means the grant was cleared.
type ApprovalEvent struct {
	Collection string `json:"collection"`
	Owner      string `json:"owner"`
	Approved   string `json:"approved"`
	Item       uint32 `json:"item"`
}

func (ApprovalEvent) EventType() string { return "approval" }

// OperatorApprovalEvent notifies that a blanket operator grant was set or
// cleared.
type OperatorApprovalEvent struct {
	Collection string `json:"collection"`
	Owner      string `json:"owner"`
	Operator   string `json:"operator"`
	Approved   bool   `json:"approved"`
}

func (OperatorApprovalEvent) EventType() string { return "operator_approval" }

// OfferEvent notifies that an offer was published, replaced or retracted.
// A zero BaseAmount marks a retraction.
type OfferEvent struct {
	Collection string `json:"collection"`
	Offeror    string `json:"offeror"`
	Currency   string `json:"currency,omitempty"`
	BaseAmount uint64 `json:"base_amount"`
}

func (OfferEvent) EventType() string { return "offer" }

// SettlementEvent notifies that an item was redeemed against an offer.
type SettlementEvent struct {
	Collection string `json:"collection"`
	Item       uint32 `json:"item"`
	Offeror    string `json:"offeror"`
	Redeemer   string `json:"redeemer"`
	Amount     uint64 `json:"amount"`
	Currency   string `json:"currency"`
}

func (SettlementEvent) EventType() string { return "settlement" }

// CurrencyTransferEvent notifies a fungible balance movement. An empty From
// marks issuance at currency creation.
type CurrencyTransferEvent struct {
	Currency string `json:"currency"`
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
	Amount   uint64 `json:"amount"`
}

func (CurrencyTransferEvent) EventType() string { return "currency_transfer" }

// CurrencyApprovalEvent notifies an allowance change.
type CurrencyApprovalEvent struct {
	Currency string `json:"currency"`
	Owner    string `json:"owner"`
	Spender  string `json:"spender"`
	Amount   uint64 `json:"amount"`
}

func (CurrencyApprovalEvent) EventType() string { return "currency_approval" }
