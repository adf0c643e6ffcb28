package rpc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer   = 256
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// WebSocketServer serves RPC commands and stream subscriptions over
// WebSocket connections.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	manager  *SubscriptionManager
	rpc      *Server

	mu          sync.RWMutex
	connections map[string]*wsClient
}

type wsClient struct {
	conn   *websocket.Conn
	sub    *Connection
	cancel context.CancelFunc
}

// NewWebSocketServer creates a WebSocket server sharing the RPC method
// table and the subscription manager.
func NewWebSocketServer(rpcServer *Server, manager *SubscriptionManager) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		manager:     manager,
		rpc:         rpcServer,
		connections: make(map[string]*wsClient),
	}
}

// ServeHTTP upgrades the connection and starts the pumps.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// The request context dies when this handler returns; the hijacked
	// connection outlives it.
	ctx, cancel := context.WithCancel(context.Background())
	client := &wsClient{
		conn:   conn,
		sub:    NewConnection(newConnectionID(), wsSendBuffer),
		cancel: cancel,
	}

	ws.mu.Lock()
	ws.connections[client.sub.ID] = client
	ws.mu.Unlock()
	ws.manager.AddConnection(client.sub)

	go ws.readPump(ctx, client)
	go ws.writePump(ctx, client)
}

func (ws *WebSocketServer) close(client *wsClient) {
	client.cancel()
	ws.manager.RemoveConnection(client.sub.ID)
	ws.mu.Lock()
	delete(ws.connections, client.sub.ID)
	ws.mu.Unlock()
	_ = client.conn.Close()
}

// wsCommand is one client request: the command name plus inline params.
type wsCommand struct {
	Command string `json:"command"`
	ID      any    `json:"id,omitempty"`
}

// wsResponse is the reply envelope for one command.
type wsResponse struct {
	Type   string    `json:"type"`
	ID     any       `json:"id,omitempty"`
	Status string    `json:"status"`
	Result any       `json:"result,omitempty"`
	Error  *RpcError `json:"error,omitempty"`
}

func (ws *WebSocketServer) readPump(ctx context.Context, client *wsClient) {
	defer ws.close(client)

	client.conn.SetReadLimit(1 << 20)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		ws.dispatch(ctx, client, message)
	}
}

func (ws *WebSocketServer) writePump(ctx context.Context, client *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-client.sub.SendChannel:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.close(client)
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.close(client)
				return
			}
		}
	}
}

// dispatch handles one command. Subscription commands mutate the
// connection's subscription set; everything else goes through the shared
// method table.
func (ws *WebSocketServer) dispatch(ctx context.Context, client *wsClient, message []byte) {
	var cmd wsCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		ws.reply(client, wsResponse{
			Type:   "response",
			Status: "error",
			Error:  RpcErrorInvalidParams("Invalid JSON: " + err.Error()),
		})
		return
	}
	if cmd.Command == "" {
		ws.reply(client, wsResponse{
			Type:   "response",
			ID:     cmd.ID,
			Status: "error",
			Error:  RpcErrorInvalidParams("Missing command field"),
		})
		return
	}

	switch cmd.Command {
	case "subscribe", "unsubscribe":
		var req SubscriptionRequest
		if err := json.Unmarshal(message, &req); err != nil {
			ws.reply(client, wsResponse{
				Type:   "response",
				ID:     cmd.ID,
				Status: "error",
				Error:  RpcErrorInvalidParams("Invalid subscription request: " + err.Error()),
			})
			return
		}
		if cmd.Command == "subscribe" {
			client.sub.Subscribe(&req)
		} else {
			client.sub.Unsubscribe(&req)
		}
		ws.reply(client, wsResponse{Type: "response", ID: cmd.ID, Status: "success", Result: map[string]any{}})
		return
	}

	handler, exists := ws.rpc.Registry().Get(cmd.Command)
	if !exists {
		ws.reply(client, wsResponse{
			Type:   "response",
			ID:     cmd.ID,
			Status: "error",
			Error:  RpcErrorMethodNotFound(cmd.Command),
		})
		return
	}

	result, rpcErr := handler.Handle(&RpcContext{Context: ctx, Conn: client.sub}, message)
	resp := wsResponse{Type: "response", ID: cmd.ID}
	if rpcErr != nil {
		resp.Status = "error"
		resp.Error = rpcErr
	} else {
		resp.Status = "success"
		resp.Result = result
	}
	ws.reply(client, resp)
}

func (ws *WebSocketServer) reply(client *wsClient, resp wsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to marshal WebSocket response: %v", err)
		return
	}
	select {
	case client.sub.SendChannel <- data:
	default:
	}
}

func newConnectionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}
