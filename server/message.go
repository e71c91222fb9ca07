package server

import (
	"encoding/json"
	"evgate/ocpp"
	"evgate/ocpp/core"
	"evgate/ocpp/firmware"
	"evgate/utility"
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"
)

type CallType int

const (
	CallTypeRequest CallType = 2
	CallTypeResult  CallType = 3
	CallTypeError   CallType = 4
)

// uniqueIdCounter backs the correlation ids of outbound requests; ids are
// strictly increasing for the lifetime of the process and never reused
// while a request is outstanding.
var uniqueIdCounter int64

func nextUniqueId() string {
	return strconv.FormatInt(atomic.AddInt64(&uniqueIdCounter, 1), 10)
}

// CallResult An OCPP-J CallResult message, containing an OCPP Response.
type CallResult struct {
	TypeId   CallType
	UniqueId string
	Payload  ocpp.Response
}

func (callResult *CallResult) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 3)
	fields[0] = int(callResult.TypeId)
	fields[1] = callResult.UniqueId
	fields[2] = callResult.Payload
	return json.Marshal(fields)
}

func CreateCallResult(confirmation ocpp.Response, uniqueId string) (*CallResult, error) {
	callResult := CallResult{
		TypeId:   CallTypeResult,
		UniqueId: uniqueId,
		Payload:  confirmation,
	}
	return &callResult, nil
}

// CallRequest An OCPP-J Call message, containing an OCPP Request.
type CallRequest struct {
	TypeId   CallType
	UniqueId string
	feature  string
	Payload  ocpp.Request
}

func (callRequest *CallRequest) GetFeatureName() string {
	return callRequest.feature
}

func (callRequest *CallRequest) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 4)
	fields[0] = int(callRequest.TypeId)
	fields[1] = callRequest.UniqueId
	fields[2] = callRequest.feature
	fields[3] = callRequest.Payload
	return json.Marshal(fields)
}

// CreateCallRequest allocates a fresh correlation id and wraps the request
// for sending towards the charge point.
func CreateCallRequest(request ocpp.Request) *CallRequest {
	return &CallRequest{
		TypeId:   CallTypeRequest,
		UniqueId: nextUniqueId(),
		feature:  request.GetFeatureName(),
		Payload:  request,
	}
}

// CallError An OCPP-J CallError message.
type CallError struct {
	TypeId           CallType
	UniqueId         string
	ErrorCode        string
	ErrorDescription string
	ErrorDetails     interface{}
}

func (callError *CallError) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 5)
	fields[0] = int(callError.TypeId)
	fields[1] = callError.UniqueId
	fields[2] = callError.ErrorCode
	fields[3] = callError.ErrorDescription
	if callError.ErrorDetails == nil {
		fields[4] = struct{}{}
	} else {
		fields[4] = callError.ErrorDetails
	}
	return json.Marshal(fields)
}

func CreateCallError(uniqueId string, code string, description string) *CallError {
	return &CallError{
		TypeId:           CallTypeError,
		UniqueId:         uniqueId,
		ErrorCode:        code,
		ErrorDescription: description,
	}
}

func MessageType(data []interface{}) (CallType, error) {
	if len(data) < 3 {
		return 0, utility.Err("incompatible message structure")
	}
	rawTypeId, ok := data[0].(float64)
	if !ok {
		return 0, utility.Err("invalid message type id")
	}
	typeId := CallType(rawTypeId)
	switch typeId {
	case CallTypeRequest, CallTypeResult, CallTypeError:
		return typeId, nil
	}
	return 0, utility.Err(fmt.Sprintf("unsupported message type id: %v", typeId))
}

// UnknownActionError marks a well-formed call frame whose action has no
// registered request type. The caller still has the correlation id and can
// answer with a NotImplemented call error.
type UnknownActionError struct {
	UniqueId string
	Action   string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unsupported action requested: %s", e.Action)
}

func ParseRequest(data []interface{}) (*CallRequest, error) {
	if len(data) != 4 {
		return nil, utility.Err("unsupported request format; expected length: 4 elements")
	}
	rawTypeId, ok := data[0].(float64)
	if !ok {
		return nil, utility.Err("invalid message type in request")
	}
	typeId := CallType(rawTypeId)
	if typeId != CallTypeRequest {
		return nil, utility.Err(fmt.Sprintf("invalid request type id: %v", typeId))
	}
	uniqueId, ok := data[1].(string)
	if !ok {
		return nil, utility.Err("invalid message unique id in request")
	}
	action, ok := data[2].(string)
	if !ok {
		return nil, utility.Err("invalid action name in request")
	}

	requestType, err := getRequestType(action)
	if err != nil {
		return nil, &UnknownActionError{UniqueId: uniqueId, Action: action}
	}
	request, err := ocpp.ParseRawJsonRequest(data[3], requestType)
	if err != nil {
		return nil, err
	}
	callRequest := CallRequest{
		TypeId:   typeId,
		UniqueId: uniqueId,
		feature:  action,
		Payload:  request,
	}
	return &callRequest, nil
}

// RawResult is a CallResult or CallError received from a charge point,
// carrying the payload as raw json to be matched with the pending request.
type RawResult struct {
	TypeId   CallType
	UniqueId string
	Payload  string
}

func ParseResult(data []interface{}) (*RawResult, error) {
	if len(data) < 3 {
		return nil, utility.Err("unsupported result format; expected length: 3 elements")
	}
	rawTypeId, ok := data[0].(float64)
	if !ok {
		return nil, utility.Err("invalid message type in result")
	}
	uniqueId, ok := data[1].(string)
	if !ok {
		return nil, utility.Err("invalid message unique id in result")
	}
	payload, err := json.Marshal(data[2])
	if err != nil {
		return nil, err
	}
	result := RawResult{
		TypeId:   CallType(rawTypeId),
		UniqueId: uniqueId,
		Payload:  string(payload),
	}
	return &result, nil
}

func getRequestType(action string) (requestType reflect.Type, err error) {
	switch action {
	case core.BootNotificationFeatureName:
		requestType = reflect.TypeOf(core.BootNotificationRequest{})
	case core.AuthorizeFeatureName:
		requestType = reflect.TypeOf(core.AuthorizeRequest{})
	case core.HeartbeatFeatureName:
		requestType = reflect.TypeOf(core.HeartbeatRequest{})
	case core.StartTransactionFeatureName:
		requestType = reflect.TypeOf(core.StartTransactionRequest{})
	case core.StopTransactionFeatureName:
		requestType = reflect.TypeOf(core.StopTransactionRequest{})
	case core.MeterValuesFeatureName:
		requestType = reflect.TypeOf(core.MeterValuesRequest{})
	case core.StatusNotificationFeatureName:
		requestType = reflect.TypeOf(core.StatusNotificationRequest{})
	case core.DataTransferFeatureName:
		requestType = reflect.TypeOf(core.DataTransferRequest{})
	case firmware.DiagnosticsStatusNotificationFeatureName:
		requestType = reflect.TypeOf(firmware.DiagnosticsStatusNotificationRequest{})
	case firmware.StatusNotificationFeatureName:
		requestType = reflect.TypeOf(firmware.StatusNotificationRequest{})
	default:
		return nil, utility.Err(fmt.Sprintf("unsupported action requested: %s", action))
	}
	return requestType, nil
}
