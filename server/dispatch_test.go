package server

import (
	"evgate/ocpp"
	"evgate/ocpp/core"
	"fmt"
	"testing"
)

func heartbeatCall(t *testing.T) *CallRequest {
	t.Helper()
	return &CallRequest{
		TypeId:   CallTypeRequest,
		UniqueId: "1",
		feature:  core.HeartbeatFeatureName,
		Payload:  core.NewHeartbeatRequest(),
	}
}

func TestDispatchRoutesToHandler(t *testing.T) {
	table := NewDispatchTable()
	called := false
	table.Register(core.HeartbeatFeatureName, func(chargePointId string, request ocpp.Request) (ocpp.Response, error) {
		called = true
		if chargePointId != "cp1" {
			t.Errorf("expected cp1, got %s", chargePointId)
		}
		return core.NewHeartbeatResponse(nil), nil
	})

	callResult, callError := table.Dispatch("cp1", heartbeatCall(t))
	if !called {
		t.Fatal("handler was not invoked")
	}
	if callError != nil {
		t.Fatalf("unexpected call error: %v", callError)
	}
	if callResult == nil || callResult.UniqueId != "1" {
		t.Error("call result must carry the request unique id")
	}
}

func TestDispatchMissingHandler(t *testing.T) {
	table := NewDispatchTable()
	callResult, callError := table.Dispatch("cp1", heartbeatCall(t))
	if callResult != nil {
		t.Error("expected no call result")
	}
	if callError == nil {
		t.Fatal("expected a call error")
	}
	if callError.ErrorCode != errorCodeNotImplemented {
		t.Errorf("expected %s, got %s", errorCodeNotImplemented, callError.ErrorCode)
	}
	if callError.UniqueId != "1" {
		t.Error("call error must carry the request unique id")
	}
}

func TestDispatchHandlerError(t *testing.T) {
	table := NewDispatchTable()
	table.Register(core.HeartbeatFeatureName, func(chargePointId string, request ocpp.Request) (ocpp.Response, error) {
		return nil, fmt.Errorf("boom")
	})

	callResult, callError := table.Dispatch("cp1", heartbeatCall(t))
	if callResult != nil {
		t.Error("expected no call result")
	}
	if callError == nil {
		t.Fatal("expected a call error")
	}
	if callError.ErrorCode != errorCodeInternalError {
		t.Errorf("expected %s, got %s", errorCodeInternalError, callError.ErrorCode)
	}
}
