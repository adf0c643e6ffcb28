// Package rpc serves the itemd query and submission API over HTTP JSON-RPC
// and WebSocket subscriptions.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Server handles HTTP JSON-RPC requests in command form.
type Server struct {
	registry *MethodRegistry
	service  Service
	timeout  time.Duration
}

// NewServer creates an RPC server around the given node service.
func NewServer(service Service, timeout time.Duration) *Server {
	s := &Server{
		registry: NewMethodRegistry(),
		service:  service,
		timeout:  timeout,
	}
	s.registerAllMethods()
	return s
}

// Registry exposes the method table, shared with the WebSocket server.
func (s *Server) Registry() *MethodRegistry { return s.registry }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves simple queries like ?command=server_info.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.execute(r.Context(), method, nil, getClientIP(r))
	s.writeResponse(w, result, rpcErr)
}

// handlePost serves the standard JSON-RPC payload.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, RpcErrorInvalidParams("Missing method field"))
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.execute(r.Context(), request.Method, params, getClientIP(r))
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) execute(ctx context.Context, method string, params json.RawMessage, clientIP string) (any, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return handler.Handle(&RpcContext{Context: ctx, ClientIP: clientIP}, params)
}

// writeResponse writes the response envelope: result.status is "success"
// or "error", with error details inside the result object.
func (s *Server) writeResponse(w http.ResponseWriter, result any, rpcErr *RpcError) {
	response := make(map[string]any)

	if rpcErr != nil {
		response["result"] = map[string]any{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else if resultMap, ok := result.(map[string]any); ok {
		resultMap["status"] = "success"
		response["result"] = resultMap
	} else {
		response["result"] = map[string]any{
			"status": "success",
			"data":   result,
		}
	}

	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
