package rpc

import (
	"sync"
)

// Connection is the subscription-facing view of one WebSocket client.
type Connection struct {
	ID string

	mu       sync.RWMutex
	streams  map[SubscriptionType]bool
	accounts map[string]bool

	// SendChannel receives marshaled notifications. The write pump drains
	// it; a full channel drops the notification rather than blocking the
	// publisher.
	SendChannel chan []byte
}

// NewConnection creates a connection with the given send buffer.
func NewConnection(id string, buffer int) *Connection {
	return &Connection{
		ID:          id,
		streams:     make(map[SubscriptionType]bool),
		accounts:    make(map[string]bool),
		SendChannel: make(chan []byte, buffer),
	}
}

// Subscribe adds stream and account subscriptions.
func (c *Connection) Subscribe(req *SubscriptionRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, stream := range req.Streams {
		c.streams[stream] = true
	}
	for _, account := range req.Accounts {
		c.accounts[account] = true
	}
}

// Unsubscribe removes stream and account subscriptions.
func (c *Connection) Unsubscribe(req *SubscriptionRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, stream := range req.Streams {
		delete(c.streams, stream)
	}
	for _, account := range req.Accounts {
		delete(c.accounts, account)
	}
}

func (c *Connection) subscribedToStream(stream SubscriptionType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[stream]
}

func (c *Connection) subscribedToAccount(accounts []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.accounts) == 0 {
		return false
	}
	for _, account := range accounts {
		if c.accounts[account] {
			return true
		}
	}
	return false
}

// SubscriptionManager tracks active connections and routes notifications.
type SubscriptionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{connections: make(map[string]*Connection)}
}

// AddConnection registers a connection.
func (m *SubscriptionManager) AddConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID] = conn
}

// RemoveConnection drops a connection.
func (m *SubscriptionManager) RemoveConnection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

// BroadcastToStream sends data to every connection subscribed to stream.
func (m *SubscriptionManager) BroadcastToStream(stream SubscriptionType, data []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.connections {
		if conn.subscribedToStream(stream) {
			select {
			case conn.SendChannel <- data:
			default:
			}
		}
	}
}

// BroadcastToAccounts sends data to connections subscribed to any of the
// given accounts, skipping connections that already received it via a
// stream subscription.
func (m *SubscriptionManager) BroadcastToAccounts(data []byte, accounts []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.connections {
		if conn.subscribedToStream(SubOperations) {
			continue
		}
		if conn.subscribedToAccount(accounts) {
			select {
			case conn.SendChannel <- data:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of connections subscribed to stream.
func (m *SubscriptionManager) SubscriberCount(stream SubscriptionType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, conn := range m.connections {
		if conn.subscribedToStream(stream) {
			count++
		}
	}
	return count
}
