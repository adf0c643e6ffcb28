package registry

import "sync"

// Receiver is the acceptance callback a hosted account can expose. A safe
// transfer to an account with a registered receiver only commits when the
// receiver returns AcceptTransfer.
type Receiver interface {
	// OnItemReceived is invoked with the operator that triggered the
	// transfer, the previous holder, the item, and the caller-supplied
	// extra data.
	OnItemReceived(operator, from string, item uint32, extra []byte) Ack
}

// Ack is the value a receiver returns to accept or reject a transfer.
type Ack uint32

const (
	// AcceptTransfer is the acknowledgement a receiver must return for the
	// transfer to commit.
	AcceptTransfer Ack = 0x150b7a02

	// RejectTransfer is any other value; this named one is for tests.
	RejectTransfer Ack = 0
)

// ReceiverSet maps hosted accounts to their acceptance callbacks. Whether an
// account counts as "a contract" in the original environment maps here to
// whether it has a registered receiver.
type ReceiverSet struct {
	mu        sync.RWMutex
	receivers map[string]Receiver
}

func NewReceiverSet() *ReceiverSet {
	return &ReceiverSet{receivers: make(map[string]Receiver)}
}

// Register installs the receiver callback for an account.
func (s *ReceiverSet) Register(account string, r Receiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers[account] = r
}

// Lookup returns the receiver for an account, if any.
func (s *ReceiverSet) Lookup(account string) (Receiver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.receivers[account]
	return r, ok
}
