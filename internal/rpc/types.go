package rpc

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC request in command form:
// {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcContext carries request-scoped information into method handlers.
type RpcContext struct {
	Context  context.Context
	ClientIP string

	// Conn is set for requests arriving over a WebSocket connection.
	// Subscription methods require it.
	Conn *Connection
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError)
}

// MethodFunc adapts a function to the MethodHandler interface.
type MethodFunc func(ctx *RpcContext, params json.RawMessage) (any, *RpcError)

func (f MethodFunc) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	return f(ctx, params)
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}

// RpcError is the error shape returned to RPC clients.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message"`
}

// RPC error codes.
const (
	RpcUNKNOWN_METHOD = 30
	RpcINVALID_PARAMS = 31
	RpcINTERNAL       = 32
	RpcNOT_FOUND      = 33
	RpcOP_REJECTED    = 34
	RpcNO_HISTORY     = 35
	RpcNOT_SUPPORTED  = 36
)

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcUNKNOWN_METHOD, "unknownMethod", fmt.Sprintf("Unknown method: %s", method))
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorNotFound(message string) *RpcError {
	return NewRpcError(RpcNOT_FOUND, "entryNotFound", message)
}

// SubscriptionType names a WebSocket stream.
type SubscriptionType string

const (
	// SubOperations delivers every applied operation.
	SubOperations SubscriptionType = "operations"

	// SubAccounts delivers operations affecting subscribed accounts.
	SubAccounts SubscriptionType = "accounts"
)

// SubscriptionRequest is the params shape of subscribe and unsubscribe.
type SubscriptionRequest struct {
	Streams  []SubscriptionType `json:"streams,omitempty"`
	Accounts []string           `json:"accounts,omitempty"`
}
