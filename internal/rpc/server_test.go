package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itemledger/itemd/internal/node"
)

func postRPC(t *testing.T, s *Server, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	result, ok := response["result"].(map[string]any)
	require.True(t, ok, "response missing result object: %s", rec.Body.String())
	return result
}

func TestHTTPOwnerOf(t *testing.T) {
	s := NewServer(&mockService{owner: "alice"}, time.Second)

	result := postRPC(t, s, `{"method": "owner_of", "params": [{"collection": "art", "item": 0}]}`)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "alice", result["owner"])
}

func TestHTTPUnknownMethod(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	result := postRPC(t, s, `{"method": "bogus"}`)
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "unknownMethod", result["error"])
}

func TestHTTPInvalidJSON(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	result := postRPC(t, s, `{not json`)
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "invalidParams", result["error"])
}

func TestHTTPMissingMethod(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	result := postRPC(t, s, `{"params": [{}]}`)
	assert.Equal(t, "error", result["status"])
}

func TestHTTPGetDefaultsToServerInfo(t *testing.T) {
	s := NewServer(&mockService{info: &node.Info{Version: "0.3.0"}}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	result := response["result"].(map[string]any)
	assert.Equal(t, "success", result["status"])
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	s := NewServer(&mockService{}, time.Second)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubscriptionRouting(t *testing.T) {
	manager := NewSubscriptionManager()

	opsConn := NewConnection("c1", 4)
	opsConn.Subscribe(&SubscriptionRequest{Streams: []SubscriptionType{SubOperations}})
	manager.AddConnection(opsConn)

	acctConn := NewConnection("c2", 4)
	acctConn.Subscribe(&SubscriptionRequest{Accounts: []string{"alice"}})
	manager.AddConnection(acctConn)

	idleConn := NewConnection("c3", 4)
	manager.AddConnection(idleConn)

	manager.BroadcastToStream(SubOperations, []byte("op"))
	manager.BroadcastToAccounts([]byte("op"), []string{"alice", "bob"})

	assert.Len(t, opsConn.SendChannel, 1)
	assert.Len(t, acctConn.SendChannel, 1)
	assert.Len(t, idleConn.SendChannel, 0)

	assert.Equal(t, 1, manager.SubscriberCount(SubOperations))

	// unsubscribe stops delivery
	acctConn.Unsubscribe(&SubscriptionRequest{Accounts: []string{"alice"}})
	manager.BroadcastToAccounts([]byte("op2"), []string{"alice"})
	assert.Len(t, acctConn.SendChannel, 1)

	manager.RemoveConnection("c1")
	assert.Equal(t, 0, manager.SubscriberCount(SubOperations))
}

func TestPublisherDeliversNotification(t *testing.T) {
	manager := NewSubscriptionManager()
	conn := NewConnection("c1", 4)
	conn.Subscribe(&SubscriptionRequest{Streams: []SubscriptionType{SubOperations}})
	manager.AddConnection(conn)

	p := NewPublisher(manager)
	p.PublishOperation(&node.OpNotification{
		Seq:     1,
		Type:    "Transfer",
		Account: "alice",
		Result:  "Success",
	}, []string{"alice", "bob"})

	require.Len(t, conn.SendChannel, 1)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(<-conn.SendChannel, &msg))
	assert.Equal(t, "operation", msg["type"])
	assert.Equal(t, "Transfer", msg["op_type"])
}
