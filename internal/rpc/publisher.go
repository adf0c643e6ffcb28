package rpc

import (
	"encoding/json"
	"log"

	"github.com/itemledger/itemd/internal/node"
)

// Publisher fans applied-operation notifications out to WebSocket
// subscribers. It satisfies node.Publisher.
type Publisher struct {
	manager *SubscriptionManager
}

// NewPublisher creates a Publisher over the given subscription manager.
func NewPublisher(manager *SubscriptionManager) *Publisher {
	return &Publisher{manager: manager}
}

// operationMessage is the wire shape of a stream notification.
type operationMessage struct {
	Type string `json:"type"`
	*node.OpNotification
}

// PublishOperation broadcasts one applied operation to operations-stream
// subscribers and to subscribers of any affected account.
func (p *Publisher) PublishOperation(n *node.OpNotification, accounts []string) {
	if n == nil || p.manager == nil {
		return
	}
	data, err := json.Marshal(operationMessage{Type: "operation", OpNotification: n})
	if err != nil {
		log.Printf("Failed to marshal operation notification: %v", err)
		return
	}
	p.manager.BroadcastToStream(SubOperations, data)
	if len(accounts) > 0 {
		p.manager.BroadcastToAccounts(data, accounts)
	}
}
