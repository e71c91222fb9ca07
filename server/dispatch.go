package server

import (
	"evgate/ocpp"
	"fmt"
	"sync"
)

const (
	errorCodeNotImplemented = "NotImplemented"
	errorCodeInternalError  = "InternalError"
)

// RequestHandler processes one inbound request from a charge point and
// builds the confirmation to send back.
type RequestHandler func(chargePointId string, request ocpp.Request) (ocpp.Response, error)

// DispatchTable routes inbound calls to the handler registered for their
// action name. One handler per action; registration normally happens once
// during facade construction.
type DispatchTable struct {
	mu       sync.RWMutex
	handlers map[string]RequestHandler
}

func NewDispatchTable() *DispatchTable {
	return &DispatchTable{
		handlers: make(map[string]RequestHandler),
	}
}

func (t *DispatchTable) Register(feature string, handler RequestHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[feature] = handler
}

// Dispatch invokes the handler bound to the call's action. A missing
// handler or a handler failure yields a CallError instead of a confirmation,
// never a panic across the protocol boundary.
func (t *DispatchTable) Dispatch(chargePointId string, callRequest *CallRequest) (*CallResult, *CallError) {
	t.mu.RLock()
	handler, ok := t.handlers[callRequest.GetFeatureName()]
	t.mu.RUnlock()
	if !ok {
		return nil, CreateCallError(callRequest.UniqueId, errorCodeNotImplemented,
			fmt.Sprintf("feature not supported: %s", callRequest.GetFeatureName()))
	}
	confirmation, err := handler(chargePointId, callRequest.Payload)
	if err != nil {
		return nil, CreateCallError(callRequest.UniqueId, errorCodeInternalError, err.Error())
	}
	callResult, _ := CreateCallResult(confirmation, callRequest.UniqueId)
	return callResult, nil
}
