package station

import (
	"encoding/json"
	"evgate/ocpp"
	"evgate/ocpp/core"
	"evgate/ocpp/firmware"
	"evgate/ocpp/localauth"
	"evgate/ocpp/remotetrigger"
	"evgate/ocpp/reservation"
	"evgate/ocpp/security"
	"evgate/ocpp/smartcharging"
	"evgate/utility"
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"
)

type callType int

const (
	callTypeRequest callType = 2
	callTypeResult  callType = 3
	callTypeError   callType = 4
)

var uniqueIdCounter int64

func nextUniqueId() string {
	return strconv.FormatInt(atomic.AddInt64(&uniqueIdCounter, 1), 10)
}

type call struct {
	TypeId   callType
	UniqueId string
	feature  string
	Payload  ocpp.Request
}

func newCall(request ocpp.Request) *call {
	return &call{
		TypeId:   callTypeRequest,
		UniqueId: nextUniqueId(),
		feature:  request.GetFeatureName(),
		Payload:  request,
	}
}

func (c *call) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 4)
	fields[0] = int(c.TypeId)
	fields[1] = c.UniqueId
	fields[2] = c.feature
	fields[3] = c.Payload
	return json.Marshal(fields)
}

type callResult struct {
	TypeId   callType
	UniqueId string
	Payload  ocpp.Response
}

func newCallResult(response ocpp.Response, uniqueId string) *callResult {
	return &callResult{
		TypeId:   callTypeResult,
		UniqueId: uniqueId,
		Payload:  response,
	}
}

func (r *callResult) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 3)
	fields[0] = int(r.TypeId)
	fields[1] = r.UniqueId
	fields[2] = r.Payload
	return json.Marshal(fields)
}

type callError struct {
	TypeId           callType
	UniqueId         string
	ErrorCode        string
	ErrorDescription string
}

func (e *callError) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 5)
	fields[0] = int(e.TypeId)
	fields[1] = e.UniqueId
	fields[2] = e.ErrorCode
	fields[3] = e.ErrorDescription
	fields[4] = struct{}{}
	return json.Marshal(fields)
}

func messageType(data []interface{}) (callType, error) {
	if len(data) < 3 {
		return 0, utility.Err("incompatible message structure")
	}
	rawTypeId, ok := data[0].(float64)
	if !ok {
		return 0, utility.Err("invalid message type id")
	}
	typeId := callType(rawTypeId)
	switch typeId {
	case callTypeRequest, callTypeResult, callTypeError:
		return typeId, nil
	}
	return 0, utility.Err(fmt.Sprintf("unsupported message type id: %v", typeId))
}

func parseCall(data []interface{}) (*call, error) {
	if len(data) != 4 {
		return nil, utility.Err("unsupported request format; expected length: 4 elements")
	}
	uniqueId, ok := data[1].(string)
	if !ok {
		return nil, utility.Err("invalid message unique id in request")
	}
	action, ok := data[2].(string)
	if !ok {
		return nil, utility.Err("invalid action name in request")
	}
	requestType, err := getOperatorRequestType(action)
	if err != nil {
		return nil, err
	}
	request, err := ocpp.ParseRawJsonRequest(data[3], requestType)
	if err != nil {
		return nil, err
	}
	return &call{
		TypeId:   callTypeRequest,
		UniqueId: uniqueId,
		feature:  action,
		Payload:  request,
	}, nil
}

type rawResult struct {
	TypeId   callType
	UniqueId string
	Payload  string
}

func parseResult(data []interface{}) (*rawResult, error) {
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
	return &rawResult{
		TypeId:   callType(rawTypeId),
		UniqueId: uniqueId,
		Payload:  string(payload),
	}, nil
}

func getOperatorRequestType(action string) (requestType reflect.Type, err error) {
	switch action {
	case core.ResetFeatureName:
		requestType = reflect.TypeOf(core.ResetRequest{})
	case core.ChangeAvailabilityFeatureName:
		requestType = reflect.TypeOf(core.ChangeAvailabilityRequest{})
	case core.GetConfigurationFeatureName:
		requestType = reflect.TypeOf(core.GetConfigurationRequest{})
	case core.ChangeConfigurationFeatureName:
		requestType = reflect.TypeOf(core.ChangeConfigurationRequest{})
	case core.DataTransferFeatureName:
		requestType = reflect.TypeOf(core.DataTransferRequest{})
	case core.RemoteStartTransactionFeatureName:
		requestType = reflect.TypeOf(core.RemoteStartTransactionRequest{})
	case core.RemoteStopTransactionFeatureName:
		requestType = reflect.TypeOf(core.RemoteStopTransactionRequest{})
	case core.UnlockConnectorFeatureName:
		requestType = reflect.TypeOf(core.UnlockConnectorRequest{})
	case core.ClearCacheFeatureName:
		requestType = reflect.TypeOf(core.ClearCacheRequest{})
	case firmware.GetDiagnosticsFeatureName:
		requestType = reflect.TypeOf(firmware.GetDiagnosticsRequest{})
	case firmware.UpdateFirmwareFeatureName:
		requestType = reflect.TypeOf(firmware.UpdateFirmwareRequest{})
	case remotetrigger.TriggerMessageFeatureName:
		requestType = reflect.TypeOf(remotetrigger.TriggerMessageRequest{})
	case localauth.SendLocalListFeatureName:
		requestType = reflect.TypeOf(localauth.SendLocalListRequest{})
	case localauth.GetLocalListVersionFeatureName:
		requestType = reflect.TypeOf(localauth.GetLocalListVersionRequest{})
	case smartcharging.SetChargingProfileFeatureName:
		requestType = reflect.TypeOf(smartcharging.SetChargingProfileRequest{})
	case smartcharging.ClearChargingProfileFeatureName:
		requestType = reflect.TypeOf(smartcharging.ClearChargingProfileRequest{})
	case smartcharging.GetCompositeScheduleFeatureName:
		requestType = reflect.TypeOf(smartcharging.GetCompositeScheduleRequest{})
	case reservation.ReserveNowFeatureName:
		requestType = reflect.TypeOf(reservation.ReserveNowRequest{})
	case reservation.CancelReservationFeatureName:
		requestType = reflect.TypeOf(reservation.CancelReservationRequest{})
	case security.CertificateSignedFeatureName:
		requestType = reflect.TypeOf(security.CertificateSignedRequest{})
	case security.DeleteCertificateFeatureName:
		requestType = reflect.TypeOf(security.DeleteCertificateRequest{})
	case security.ExtendedTriggerMessageFeatureName:
		requestType = reflect.TypeOf(security.ExtendedTriggerMessageRequest{})
	case security.GetInstalledCertificateIdsFeatureName:
		requestType = reflect.TypeOf(security.GetInstalledCertificateIdsRequest{})
	case security.GetLogFeatureName:
		requestType = reflect.TypeOf(security.GetLogRequest{})
	case security.InstallCertificateFeatureName:
		requestType = reflect.TypeOf(security.InstallCertificateRequest{})
	case security.SignedUpdateFirmwareFeatureName:
		requestType = reflect.TypeOf(security.SignedUpdateFirmwareRequest{})
	default:
		return nil, utility.Err(fmt.Sprintf("unsupported action requested: %s", action))
	}
	return requestType, nil
}
