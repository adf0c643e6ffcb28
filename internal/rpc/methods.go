package rpc

import (
	"encoding/json"
	"errors"

	"github.com/itemledger/itemd/internal/core/currency"
	"github.com/itemledger/itemd/internal/core/market"
	"github.com/itemledger/itemd/internal/core/registry"
	"github.com/itemledger/itemd/internal/core/tx"
)

// registerAllMethods wires the method table.
func (s *Server) registerAllMethods() {
	// Server methods
	s.registry.Register("ping", MethodFunc(s.ping))
	s.registry.Register("server_info", MethodFunc(s.serverInfo))

	// Submission
	s.registry.Register("submit", MethodFunc(s.submit))

	// Registry queries
	s.registry.Register("collection_info", MethodFunc(s.collectionInfo))
	s.registry.Register("owner_of", MethodFunc(s.ownerOf))
	s.registry.Register("balance_of", MethodFunc(s.balanceOf))
	s.registry.Register("total_supply", MethodFunc(s.totalSupply))
	s.registry.Register("token_by_index", MethodFunc(s.tokenByIndex))
	s.registry.Register("token_of_owner_by_index", MethodFunc(s.tokenOfOwnerByIndex))
	s.registry.Register("get_approved", MethodFunc(s.getApproved))
	s.registry.Register("is_operator", MethodFunc(s.isOperator))

	// Market queries
	s.registry.Register("offer_info", MethodFunc(s.offerInfo))
	s.registry.Register("token_price", MethodFunc(s.tokenPrice))

	// Currency queries
	s.registry.Register("currency_info", MethodFunc(s.currencyInfo))
	s.registry.Register("currency_balance", MethodFunc(s.currencyBalance))
	s.registry.Register("currency_allowance", MethodFunc(s.currencyAllowance))

	// History
	s.registry.Register("item_history", MethodFunc(s.itemHistory))
	s.registry.Register("account_history", MethodFunc(s.accountHistory))

	// Subscriptions are WebSocket-only; the HTTP table rejects them with
	// a clear message.
	s.registry.Register("subscribe", MethodFunc(wsOnly))
	s.registry.Register("unsubscribe", MethodFunc(wsOnly))
}

func wsOnly(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	if ctx.Conn == nil {
		return nil, NewRpcError(RpcNOT_SUPPORTED, "notSupported", "Subscriptions require a WebSocket connection")
	}
	// Handled by the WebSocket dispatcher before reaching here.
	return nil, RpcErrorInternal("Subscription handler not attached")
}

func decodeParams(params json.RawMessage, out any) *RpcError {
	if params == nil {
		return RpcErrorInvalidParams("Missing parameters")
	}
	if err := json.Unmarshal(params, out); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// queryError maps lookup failures onto RPC error shapes.
func queryError(err error) *RpcError {
	switch {
	case errors.Is(err, registry.ErrNoCollection),
		errors.Is(err, registry.ErrUnknownItem),
		errors.Is(err, registry.ErrIndexOutOfRange),
		errors.Is(err, currency.ErrNoCurrency),
		errors.Is(err, market.ErrNoSuchOffer):
		return RpcErrorNotFound(err.Error())
	case errors.Is(err, registry.ErrInvalidAccount):
		return RpcErrorInvalidParams(err.Error())
	case errors.Is(err, market.ErrRampUnderflow):
		return NewRpcError(RpcNOT_FOUND, "rampUnderflow", err.Error())
	default:
		return RpcErrorInternal(err.Error())
	}
}

func (s *Server) ping(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	return map[string]any{}, nil
}

func (s *Server) serverInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	info, err := s.service.Info(ctx.Context)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}
	return map[string]any{"info": info}, nil
}

func (s *Server) submit(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Operation json.RawMessage `json:"operation"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if len(req.Operation) == 0 {
		return nil, RpcErrorInvalidParams("Missing operation field")
	}
	res, err := s.service.Submit(ctx.Context, req.Operation)
	if err != nil {
		return nil, NewRpcError(RpcOP_REJECTED, "invalidOperation", err.Error())
	}
	return map[string]any{
		"engine_result":         res.Result.String(),
		"engine_result_message": res.Result.Message(),
		"applied":               res.Applied,
		"events":                tx.Tagged(res.Events),
	}, nil
}

func (s *Server) collectionInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	root, err := s.service.CollectionInfo(req.Collection)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{
		"collection":     root.ID,
		"item_count":     root.ItemCount,
		"default_holder": root.DefaultHolder,
		"capabilities":   root.Capabilities,
	}, nil
}

func (s *Server) ownerOf(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Item       uint32 `json:"item"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, err := s.service.OwnerOf(req.Collection, req.Item)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"owner": owner}, nil
}

func (s *Server) balanceOf(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Account    string `json:"account"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := s.service.BalanceOf(req.Collection, req.Account)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"balance": balance}, nil
}

func (s *Server) totalSupply(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	supply, err := s.service.TotalSupply(req.Collection)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"total_supply": supply}, nil
}

func (s *Server) tokenByIndex(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Index      uint32 `json:"index"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	item, err := s.service.TokenByIndex(req.Collection, req.Index)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"item": item}, nil
}

func (s *Server) tokenOfOwnerByIndex(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Account    string `json:"account"`
		Index      uint32 `json:"index"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	item, err := s.service.TokenOfOwnerByIndex(req.Collection, req.Account, req.Index)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"item": item}, nil
}

func (s *Server) getApproved(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Item       uint32 `json:"item"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	approved, err := s.service.Approved(req.Collection, req.Item)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"approved": approved}, nil
}

func (s *Server) isOperator(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Owner      string `json:"owner"`
		Operator   string `json:"operator"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	approved, err := s.service.IsOperator(req.Collection, req.Owner, req.Operator)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"approved": approved}, nil
}

func (s *Server) offerInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Offeror    string `json:"offeror"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	offer, err := s.service.OfferInfo(req.Collection, req.Offeror)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{
		"collection":  offer.Collection,
		"offeror":     offer.Offeror,
		"currency":    offer.Currency,
		"base_amount": offer.BaseAmount,
		"variation":   offer.Variation,
		"step":        offer.Step,
	}, nil
}

func (s *Server) tokenPrice(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Item       uint32 `json:"item"`
		Offeror    string `json:"offeror"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	amount, currencyID, err := s.service.TokenPrice(req.Collection, req.Item, req.Offeror)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{
		"amount":   amount,
		"currency": currencyID,
	}, nil
}

func (s *Server) currencyInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Currency string `json:"currency"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	root, err := s.service.CurrencyInfo(req.Currency)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{
		"currency": root.ID,
		"issuer":   root.Issuer,
		"supply":   root.Supply,
	}, nil
}

func (s *Server) currencyBalance(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Currency string `json:"currency"`
		Account  string `json:"account"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := s.service.CurrencyBalance(req.Currency, req.Account)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"balance": balance}, nil
}

func (s *Server) currencyAllowance(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Currency string `json:"currency"`
		Owner    string `json:"owner"`
		Spender  string `json:"spender"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	amount, err := s.service.CurrencyAllowance(req.Currency, req.Owner, req.Spender)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"amount": amount}, nil
}

func (s *Server) itemHistory(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Collection string `json:"collection"`
		Item       uint32 `json:"item"`
		Limit      int    `json:"limit,omitempty"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	records, err := s.service.ItemHistory(ctx.Context, req.Collection, req.Item, req.Limit)
	if err != nil {
		return nil, NewRpcError(RpcNO_HISTORY, "noHistory", err.Error())
	}
	return map[string]any{"operations": records}, nil
}

func (s *Server) accountHistory(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req struct {
		Account string `json:"account"`
		Limit   int    `json:"limit,omitempty"`
	}
	if rpcErr := decodeParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	records, err := s.service.AccountHistory(ctx.Context, req.Account, req.Limit)
	if err != nil {
		return nil, NewRpcError(RpcNO_HISTORY, "noHistory", err.Error())
	}
	return map[string]any{"operations": records}, nil
}
