package server

import (
	"context"
	"errors"
	"evgate/internal"
	"evgate/internal/config"
	"evgate/metrics/counters"
	"evgate/ocpp"
	"evgate/ocpp/core"
	"evgate/ocpp/firmware"
	"evgate/ocpp/localauth"
	"evgate/ocpp/remotetrigger"
	"evgate/ocpp/reservation"
	"evgate/ocpp/security"
	"evgate/ocpp/smartcharging"
	"evgate/types"
	"evgate/utility"
	"fmt"
	"log"
	"sync"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "Success"
	OutcomeTimeout     OutcomeKind = "Server"
	OutcomeUnreachable OutcomeKind = "Unreachable"
	OutcomeError       OutcomeKind = "Error"
	OutcomeCancelled   OutcomeKind = "Cancelled"
	OutcomeFailed      OutcomeKind = "Failed"
)

// CallOutcome is the uniform result of every operator command. Success,
// timeout, unreachable target and protocol error all produce the same
// shape; callers branch on Kind, never on a raised error.
type CallOutcome struct {
	Kind          OutcomeKind
	Feature       string
	ChargePointId string
	TrackingId    string
	Payload       string
	Info          string
	Elapsed       time.Duration
}

func (o CallOutcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// CallOptions carries the optional per-call knobs of an operator command.
// The zero value means facade defaults.
type CallOptions struct {
	Timeout    time.Duration
	Context    context.Context
	TrackingId string
}

type CentralSystem struct {
	server            *Server
	api               *ServerApi
	logger            internal.LogHandler
	coreHandler       *SystemHandler
	chargeBoxes       *ChargeBoxStore
	dispatch          *DispatchTable
	observers         *internal.ObserverList
	supportedProtocol []string
	defaultTimeout    time.Duration
	mux               sync.Mutex
	pendingRequests   map[string]chan *RawResult
}

func (cs *CentralSystem) SetCoreHandler(handler *SystemHandler) {
	cs.coreHandler = handler
}

func (cs *CentralSystem) Subscribe(observer internal.CallObserver) {
	cs.observers.Subscribe(observer)
}

func (cs *CentralSystem) ChargeBoxes() *ChargeBoxStore {
	return cs.chargeBoxes
}

func (cs *CentralSystem) registerHandlers() {
	h := cs.coreHandler
	cs.dispatch.Register(core.BootNotificationFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnBootNotification(id, request.(*core.BootNotificationRequest))
	})
	cs.dispatch.Register(core.AuthorizeFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnAuthorize(id, request.(*core.AuthorizeRequest))
	})
	cs.dispatch.Register(core.HeartbeatFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnHeartbeat(id, request.(*core.HeartbeatRequest))
	})
	cs.dispatch.Register(core.StartTransactionFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnStartTransaction(id, request.(*core.StartTransactionRequest))
	})
	cs.dispatch.Register(core.StopTransactionFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnStopTransaction(id, request.(*core.StopTransactionRequest))
	})
	cs.dispatch.Register(core.MeterValuesFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnMeterValues(id, request.(*core.MeterValuesRequest))
	})
	cs.dispatch.Register(core.StatusNotificationFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnStatusNotification(id, request.(*core.StatusNotificationRequest))
	})
	cs.dispatch.Register(core.DataTransferFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnDataTransfer(id, request.(*core.DataTransferRequest))
	})
	cs.dispatch.Register(firmware.DiagnosticsStatusNotificationFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnDiagnosticsStatusNotification(id, request.(*firmware.DiagnosticsStatusNotificationRequest))
	})
	cs.dispatch.Register(firmware.StatusNotificationFeatureName, func(id string, request ocpp.Request) (ocpp.Response, error) {
		return h.OnFirmwareStatusNotification(id, request.(*firmware.StatusNotificationRequest))
	})
}

func (cs *CentralSystem) handleIncomingMessage(ws Connection, data []byte) error {
	chargePointId := ws.ID()
	message, err := utility.ParseJson(data)
	if err != nil {
		return err
	}
	callType, err := MessageType(message)
	if err != nil {
		return err
	}
	if callType == CallTypeResult || callType == CallTypeError {
		result, err := ParseResult(message)
		if err != nil {
			cs.logger.Warn(fmt.Sprintf("invalid message received from charge point %s: %s", chargePointId, string(data)))
			return nil
		}
		cs.deliverResult(result)
		return nil
	}
	callRequest, err := ParseRequest(message)
	if err != nil {
		var unknown *UnknownActionError
		if errors.As(err, &unknown) && !ws.IsClosed() {
			cs.logger.Warn(fmt.Sprintf("action %s from charge point %s is not supported", unknown.Action, chargePointId))
			return cs.server.SendError(ws, CreateCallError(unknown.UniqueId, errorCodeNotImplemented,
				fmt.Sprintf("action %s is not implemented", unknown.Action)))
		}
		return err
	}

	start := time.Now()
	cs.observers.NotifyRequest(&internal.CallEvent{
		TrackingId:    callRequest.UniqueId,
		ChargePointId: chargePointId,
		Feature:       callRequest.GetFeatureName(),
		Time:          start,
		Payload:       callRequest.Payload,
	})
	counters.ObserveInboundCall(callRequest.GetFeatureName())

	callResult, callError := cs.dispatch.Dispatch(chargePointId, callRequest)

	outcome := string(OutcomeSuccess)
	if callError != nil {
		outcome = string(OutcomeError)
	}
	cs.observers.NotifyResponse(&internal.CallEvent{
		TrackingId:    callRequest.UniqueId,
		ChargePointId: chargePointId,
		Feature:       callRequest.GetFeatureName(),
		Time:          time.Now(),
		Elapsed:       time.Since(start),
		Outcome:       outcome,
	})

	if ws.IsClosed() {
		cs.logger.FeatureEvent(callRequest.GetFeatureName(), chargePointId, "websocket closed, response not sent")
		return nil
	}
	if callError != nil {
		return cs.server.SendError(ws, callError)
	}
	return cs.server.SendResponse(ws, callResult)
}

func (cs *CentralSystem) deliverResult(result *RawResult) {
	cs.mux.Lock()
	responseChan, ok := cs.pendingRequests[result.UniqueId]
	if ok {
		delete(cs.pendingRequests, result.UniqueId)
	}
	cs.mux.Unlock()
	if ok {
		responseChan <- result
	}
}

func (cs *CentralSystem) registerPending(uniqueId string) chan *RawResult {
	responseChan := make(chan *RawResult, 1)
	cs.mux.Lock()
	cs.pendingRequests[uniqueId] = responseChan
	cs.mux.Unlock()
	return responseChan
}

func (cs *CentralSystem) dropPending(uniqueId string) {
	cs.mux.Lock()
	delete(cs.pendingRequests, uniqueId)
	cs.mux.Unlock()
}

// Send runs one operator command end to end: pre event, registry lookup,
// correlated wait bounded by the effective timeout, post event. An
// unresolved charge point short-circuits without touching the transport.
func (cs *CentralSystem) Send(chargePointId string, request ocpp.Request, opts *CallOptions) CallOutcome {
	feature := request.GetFeatureName()
	timeout := cs.defaultTimeout
	ctx := context.Background()
	trackingId := utility.NewUUID()
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.Context != nil {
			ctx = opts.Context
		}
		if opts.TrackingId != "" {
			trackingId = opts.TrackingId
		}
	}
	outcome := CallOutcome{
		Feature:       feature,
		ChargePointId: chargePointId,
		TrackingId:    trackingId,
	}
	start := time.Now()
	cs.observers.NotifyRequest(&internal.CallEvent{
		TrackingId:    trackingId,
		ChargePointId: chargePointId,
		Feature:       feature,
		Time:          start,
		Payload:       request,
	})

	if _, ok := cs.server.Registry().Resolve(chargePointId); !ok {
		outcome.Kind = OutcomeUnreachable
		outcome.Info = "Unknown or unreachable charge box"
		return cs.finish(start, outcome)
	}

	callRequest := CreateCallRequest(request)
	responseChan := cs.registerPending(callRequest.UniqueId)
	if err := cs.server.SendRequest(chargePointId, callRequest); err != nil {
		cs.dropPending(callRequest.UniqueId)
		outcome.Kind = OutcomeFailed
		outcome.Info = err.Error()
		return cs.finish(start, outcome)
	}

	select {
	case result := <-responseChan:
		if result.TypeId == CallTypeError {
			outcome.Kind = OutcomeError
		} else {
			outcome.Kind = OutcomeSuccess
		}
		outcome.Payload = result.Payload
	case <-time.After(timeout):
		cs.dropPending(callRequest.UniqueId)
		outcome.Kind = OutcomeTimeout
		outcome.Info = fmt.Sprintf("timeout waiting for response from %s", chargePointId)
		cs.logger.Warn(outcome.Info)
	case <-ctx.Done():
		cs.dropPending(callRequest.UniqueId)
		outcome.Kind = OutcomeCancelled
		outcome.Info = ctx.Err().Error()
	}
	return cs.finish(start, outcome)
}

func (cs *CentralSystem) finish(start time.Time, outcome CallOutcome) CallOutcome {
	outcome.Elapsed = time.Since(start)
	cs.observers.NotifyResponse(&internal.CallEvent{
		TrackingId:    outcome.TrackingId,
		ChargePointId: outcome.ChargePointId,
		Feature:       outcome.Feature,
		Time:          time.Now(),
		Elapsed:       outcome.Elapsed,
		Outcome:       string(outcome.Kind),
		Payload:       outcome.Payload,
	})
	counters.ObserveOutboundCall(outcome.Feature, string(outcome.Kind), outcome.Elapsed)
	return outcome
}

// Operator command surface. One method per OCPP 1.6 central system
// initiated message, all safe to call concurrently.

func (cs *CentralSystem) Reset(chargePointId string, resetType core.ResetType, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewResetRequest(resetType), opts)
}

func (cs *CentralSystem) ChangeAvailability(chargePointId string, connectorId int, availabilityType types.AvailabilityType, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewChangeAvailabilityRequest(connectorId, availabilityType), opts)
}

func (cs *CentralSystem) GetConfiguration(chargePointId string, keys []string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewGetConfigurationRequest(keys), opts)
}

func (cs *CentralSystem) ChangeConfiguration(chargePointId string, key string, value string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewChangeConfigurationRequest(key, value), opts)
}

func (cs *CentralSystem) DataTransfer(chargePointId string, vendorId string, messageId string, data string, opts *CallOptions) CallOutcome {
	request := core.NewDataTransferRequest(vendorId)
	request.MessageId = messageId
	request.Data = data
	return cs.Send(chargePointId, request, opts)
}

func (cs *CentralSystem) GetDiagnostics(chargePointId string, location string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, firmware.NewGetDiagnosticsRequest(location), opts)
}

func (cs *CentralSystem) TriggerMessage(chargePointId string, requestedMessage remotetrigger.MessageTrigger, connectorId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, remotetrigger.NewTriggerMessageRequest(requestedMessage, connectorId), opts)
}

func (cs *CentralSystem) UpdateFirmware(chargePointId string, location string, retrieveDate *types.DateTime, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, firmware.NewUpdateFirmwareRequest(location, retrieveDate), opts)
}

func (cs *CentralSystem) ReserveNow(chargePointId string, connectorId int, expiryDate *types.DateTime, idTag string, reservationId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, reservation.NewReserveNowRequest(connectorId, expiryDate, idTag, reservationId), opts)
}

func (cs *CentralSystem) CancelReservation(chargePointId string, reservationId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, reservation.NewCancelReservationRequest(reservationId), opts)
}

func (cs *CentralSystem) RemoteStartTransaction(chargePointId string, connectorId *int, idTag string, chargingProfile *types.ChargingProfile, opts *CallOptions) CallOutcome {
	request := core.NewRemoteStartTransactionRequest(idTag)
	request.ConnectorId = connectorId
	request.ChargingProfile = chargingProfile
	return cs.Send(chargePointId, request, opts)
}

func (cs *CentralSystem) RemoteStopTransaction(chargePointId string, transactionId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewRemoteStopTransactionRequest(transactionId), opts)
}

func (cs *CentralSystem) SetChargingProfile(chargePointId string, connectorId int, profile *types.ChargingProfile, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, smartcharging.NewSetChargingProfileRequest(connectorId, profile), opts)
}

func (cs *CentralSystem) ClearChargingProfile(chargePointId string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, smartcharging.NewClearChargingProfileRequest(), opts)
}

func (cs *CentralSystem) GetCompositeSchedule(chargePointId string, connectorId int, duration int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, smartcharging.NewGetCompositeScheduleRequest(connectorId, duration), opts)
}

func (cs *CentralSystem) UnlockConnector(chargePointId string, connectorId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewUnlockConnectorRequest(connectorId), opts)
}

func (cs *CentralSystem) GetLocalListVersion(chargePointId string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, localauth.NewGetLocalListVersionRequest(), opts)
}

func (cs *CentralSystem) SendLocalList(chargePointId string, version int, updateType localauth.UpdateType, authList []localauth.AuthorizationData, opts *CallOptions) CallOutcome {
	request := localauth.NewSendLocalListRequest(version, updateType)
	request.LocalAuthorizationList = authList
	return cs.Send(chargePointId, request, opts)
}

func (cs *CentralSystem) ClearCache(chargePointId string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, core.NewClearCacheRequest(), opts)
}

func (cs *CentralSystem) CertificateSigned(chargePointId string, certificateChain string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, security.NewCertificateSignedRequest(certificateChain), opts)
}

func (cs *CentralSystem) DeleteCertificate(chargePointId string, hashData *security.CertificateHashData, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, &security.DeleteCertificateRequest{CertificateHashData: hashData}, opts)
}

func (cs *CentralSystem) ExtendedTriggerMessage(chargePointId string, requestedMessage remotetrigger.MessageTrigger, connectorId int, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, security.NewExtendedTriggerMessageRequest(requestedMessage, connectorId), opts)
}

func (cs *CentralSystem) GetInstalledCertificateIds(chargePointId string, certificateType security.CertificateUse, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, &security.GetInstalledCertificateIdsRequest{CertificateType: certificateType}, opts)
}

func (cs *CentralSystem) GetLog(chargePointId string, logType security.LogType, requestId int, logParameters *security.LogParameters, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, security.NewGetLogRequest(logType, requestId, logParameters), opts)
}

func (cs *CentralSystem) InstallCertificate(chargePointId string, certificateType security.CertificateUse, certificate string, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, security.NewInstallCertificateRequest(certificateType, certificate), opts)
}

func (cs *CentralSystem) SignedUpdateFirmware(chargePointId string, requestId int, firmwareType *security.FirmwareType, opts *CallOptions) CallOutcome {
	return cs.Send(chargePointId, security.NewSignedUpdateFirmwareRequest(requestId, firmwareType), opts)
}

func (cs *CentralSystem) Start() {

	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("websocket server failed", err)
		}
	}()

	if cs.api != nil {
		go func() {
			if err := cs.api.Start(); err != nil {
				cs.logger.Error("api server failed", err)
			}
		}()
	}

	select {}
}

func NewCentralSystem(conf *config.Config) (*CentralSystem, error) {
	cs := CentralSystem{
		pendingRequests: make(map[string]chan *RawResult),
		defaultTimeout:  defaultRequestTimeout,
	}
	if conf.RequestTimeout > 0 {
		cs.defaultTimeout = time.Duration(conf.RequestTimeout) * time.Second
	}

	database, err := internal.NewMongoClient(conf)
	if err != nil {
		return nil, fmt.Errorf("mongodb setup failed: %s", err)
	}
	if database != nil {
		log.Println("mongodb is configured and enabled")
	} else {
		log.Println("database is disabled")
	}

	isDebug := conf.IsDebug != nil && *conf.IsDebug

	// logger with database sink for the message handling
	logService := internal.NewLogger()
	logService.SetDebugMode(isDebug)
	if database != nil {
		logService.SetDatabase(database)
	}
	cs.logger = logService
	cs.observers = internal.NewObserverList(logService)

	// charge box store behind its bounded-wait lock
	chargeBoxes := NewChargeBoxStore()
	if database != nil {
		chargeBoxes.SetDatabase(database)
	}
	chargeBoxes.SetLogger(logService)
	cs.chargeBoxes = chargeBoxes

	// system events handler
	systemHandler := NewSystemHandler(chargeBoxes)
	if database != nil {
		systemHandler.SetDatabase(database)
	}
	systemHandler.SetLogger(logService)
	systemHandler.SetDebugMode(isDebug)
	systemHandler.SetHeartbeatInterval(conf.HeartbeatInterval)

	// websocket listener
	wsServer := NewServer(conf, logService)
	wsServer.AddSupportedSupProtocol(types.SubProtocol16)
	wsServer.SetMessageHandler(cs.handleIncomingMessage)
	cs.server = wsServer

	err = systemHandler.OnStart()
	if err != nil {
		return nil, err
	}

	cs.SetCoreHandler(systemHandler)
	cs.dispatch = NewDispatchTable()
	cs.registerHandlers()

	// api server
	if conf.Api.Enabled {
		apiServer := NewServerApi(conf, logService)
		apiServer.SetCentralSystem(&cs)
		cs.api = apiServer
	}

	return &cs, nil
}
