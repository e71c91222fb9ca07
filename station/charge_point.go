package station

import (
	"context"
	"encoding/json"
	"evgate/internal"
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
	"strconv"
	"sync"
	"time"
)

const defaultRequestTimeout = 60 * time.Second

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "Success"
	OutcomeTimeout   OutcomeKind = "Server"
	OutcomeError     OutcomeKind = "Error"
	OutcomeCancelled OutcomeKind = "Cancelled"
	OutcomeFailed    OutcomeKind = "Failed"
)

// SendOutcome is the uniform result of a request towards the central
// system: success, timeout, transport failure and protocol error all share
// this shape.
type SendOutcome struct {
	Kind    OutcomeKind
	Feature string
	Payload string
	Info    string
	Elapsed time.Duration
}

func (o SendOutcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// SendOptions carries the optional per-call knobs; the zero value means
// facade defaults.
type SendOptions struct {
	Timeout    time.Duration
	Context    context.Context
	TrackingId string
}

// Transport is the charge point's connection to the central system.
type Transport interface {
	ID() string
	IsConnected() bool
	WriteMessage(data []byte) error
	SetMessageHandler(handler func(data []byte) error)
}

// Options describes the charge point identity and tuning knobs.
type Options struct {
	Vendor            string
	Model             string
	SerialNumber      string
	FirmwareVersion   string
	Connectors        int
	HeartbeatInterval time.Duration
	RequestTimeout    time.Duration
}

// ChargePoint is the device side facade: it answers operator commands,
// drives the connector state machine and emits its own notifications
// towards the central system.
type ChargePoint struct {
	opts              Options
	transport         Transport
	connectors        *ConnectorManager
	configuration     *ConfigurationStore
	queue             *OutboundQueue
	scheduler         *Scheduler
	logger            internal.LogHandler
	observers         *internal.ObserverList
	defaultTimeout    time.Duration
	mux               sync.Mutex
	pendingRequests   map[string]chan *rawResult
	registered        bool
	firmwareStatus    firmware.Status
	diagnosticsStatus firmware.DiagnosticsStatus
	localListVersion  int
}

func NewChargePoint(transport Transport, opts Options, logger internal.LogHandler) *ChargePoint {
	if opts.Connectors <= 0 {
		opts.Connectors = 1
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 10 * time.Minute
	}
	timeout := defaultRequestTimeout
	if opts.RequestTimeout > 0 {
		timeout = opts.RequestTimeout
	}
	cp := &ChargePoint{
		opts:              opts,
		transport:         transport,
		connectors:        NewConnectorManager(opts.Connectors),
		configuration:     NewConfigurationStore(opts.Connectors, int(opts.HeartbeatInterval.Seconds())),
		logger:            logger,
		observers:         internal.NewObserverList(logger),
		defaultTimeout:    timeout,
		pendingRequests:   make(map[string]chan *rawResult),
		firmwareStatus:    firmware.StatusIdle,
		diagnosticsStatus: firmware.DiagnosticsStatusIdle,
	}
	cp.queue = NewOutboundQueue(logger)
	cp.scheduler = NewScheduler(opts.HeartbeatInterval, logger)
	cp.scheduler.SetHeartbeatTask(func() { cp.Heartbeat() })
	cp.scheduler.SetMaintenanceTask(cp.drainQueue)
	transport.SetMessageHandler(cp.handleIncomingMessage)
	return cp
}

func (cp *ChargePoint) ID() string {
	return cp.transport.ID()
}

func (cp *ChargePoint) Subscribe(observer internal.CallObserver) {
	cp.observers.Subscribe(observer)
}

func (cp *ChargePoint) Connectors() *ConnectorManager {
	return cp.connectors
}

func (cp *ChargePoint) Configuration() *ConfigurationStore {
	return cp.configuration
}

func (cp *ChargePoint) Scheduler() *Scheduler {
	return cp.scheduler
}

func (cp *ChargePoint) IsRegistered() bool {
	cp.mux.Lock()
	defer cp.mux.Unlock()
	return cp.registered
}

// Start begins the periodic duties. The caller connects the transport
// first and normally sends a BootNotification right after.
func (cp *ChargePoint) Start() {
	cp.scheduler.Start()
}

func (cp *ChargePoint) Stop() {
	cp.scheduler.Stop()
}

// FlushOutbound drains the store-and-forward queue immediately instead of
// waiting for the next maintenance tick.
func (cp *ChargePoint) FlushOutbound() {
	cp.drainQueue()
}

func (cp *ChargePoint) drainQueue() {
	cp.queue.Drain(func(request ocpp.Request) (string, error) {
		outcome := cp.Send(request, nil)
		if !outcome.IsSuccess() {
			return "", utility.Err(fmt.Sprintf("%s: %s", outcome.Kind, outcome.Info))
		}
		return outcome.Payload, nil
	})
}

// Send transmits one request and waits for the correlated answer. A
// timeout yields a Server outcome, never a raised error.
func (cp *ChargePoint) Send(request ocpp.Request, opts *SendOptions) SendOutcome {
	feature := request.GetFeatureName()
	timeout := cp.defaultTimeout
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
	outcome := SendOutcome{Feature: feature}
	start := time.Now()
	cp.observers.NotifyRequest(&internal.CallEvent{
		TrackingId:    trackingId,
		ChargePointId: cp.ID(),
		Feature:       feature,
		Time:          start,
		Payload:       request,
	})

	message := newCall(request)
	data, err := message.MarshalJSON()
	if err != nil {
		outcome.Kind = OutcomeFailed
		outcome.Info = err.Error()
		return cp.finish(start, trackingId, outcome)
	}
	responseChan := cp.registerPending(message.UniqueId)
	if err = cp.transport.WriteMessage(data); err != nil {
		cp.dropPending(message.UniqueId)
		outcome.Kind = OutcomeFailed
		outcome.Info = err.Error()
		return cp.finish(start, trackingId, outcome)
	}

	select {
	case result := <-responseChan:
		if result.TypeId == callTypeError {
			outcome.Kind = OutcomeError
		} else {
			outcome.Kind = OutcomeSuccess
		}
		outcome.Payload = result.Payload
	case <-time.After(timeout):
		cp.dropPending(message.UniqueId)
		outcome.Kind = OutcomeTimeout
		outcome.Info = "timeout waiting for central system response"
	case <-ctx.Done():
		cp.dropPending(message.UniqueId)
		outcome.Kind = OutcomeCancelled
		outcome.Info = ctx.Err().Error()
	}
	return cp.finish(start, trackingId, outcome)
}

func (cp *ChargePoint) finish(start time.Time, trackingId string, outcome SendOutcome) SendOutcome {
	outcome.Elapsed = time.Since(start)
	cp.observers.NotifyResponse(&internal.CallEvent{
		TrackingId:    trackingId,
		ChargePointId: cp.ID(),
		Feature:       outcome.Feature,
		Time:          time.Now(),
		Elapsed:       outcome.Elapsed,
		Outcome:       string(outcome.Kind),
		Payload:       outcome.Payload,
	})
	return outcome
}

func (cp *ChargePoint) registerPending(uniqueId string) chan *rawResult {
	responseChan := make(chan *rawResult, 1)
	cp.mux.Lock()
	cp.pendingRequests[uniqueId] = responseChan
	cp.mux.Unlock()
	return responseChan
}

func (cp *ChargePoint) dropPending(uniqueId string) {
	cp.mux.Lock()
	delete(cp.pendingRequests, uniqueId)
	cp.mux.Unlock()
}

func (cp *ChargePoint) deliverResult(result *rawResult) {
	cp.mux.Lock()
	responseChan, ok := cp.pendingRequests[result.UniqueId]
	if ok {
		delete(cp.pendingRequests, result.UniqueId)
	}
	cp.mux.Unlock()
	if ok {
		responseChan <- result
	}
}

// Boot registers the charge point. An Accepted response retunes the
// heartbeat timer to the confirmed interval; Pending and Rejected leave
// the current schedule untouched.
func (cp *ChargePoint) Boot() SendOutcome {
	request := &core.BootNotificationRequest{
		ChargePointVendor:       cp.opts.Vendor,
		ChargePointModel:        cp.opts.Model,
		ChargePointSerialNumber: cp.opts.SerialNumber,
		FirmwareVersion:         cp.opts.FirmwareVersion,
	}
	outcome := cp.Send(request, nil)
	if outcome.IsSuccess() {
		cp.applyBootResponse(outcome.Payload)
	}
	return outcome
}

func (cp *ChargePoint) applyBootResponse(payload string) {
	var response core.BootNotificationResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		cp.logger.Error("parsing boot notification response", err)
		return
	}
	if response.Status != core.RegistrationStatusAccepted {
		cp.logger.Warn(fmt.Sprintf("registration not accepted: %s", response.Status))
		return
	}
	cp.mux.Lock()
	cp.registered = true
	cp.mux.Unlock()
	if response.Interval > 0 {
		cp.scheduler.SetHeartbeatInterval(time.Duration(response.Interval) * time.Second)
	}
	cp.logger.FeatureEvent(core.BootNotificationFeatureName, cp.ID(),
		fmt.Sprintf("registered, heartbeat interval %s", cp.scheduler.HeartbeatInterval()))
}

func (cp *ChargePoint) Heartbeat() SendOutcome {
	return cp.Send(core.NewHeartbeatRequest(), nil)
}

func (cp *ChargePoint) Authorize(idTag string) SendOutcome {
	return cp.Send(&core.AuthorizeRequest{IdTag: idTag}, nil)
}

// NotifyStatus enqueues a StatusNotification reflecting the connector's
// current state.
func (cp *ChargePoint) NotifyStatus(connectorId int) {
	snapshot, ok := cp.connectors.Snapshot(connectorId)
	if !ok {
		return
	}
	cp.enqueueStatus(connectorId, connectorStatus(snapshot))
}

func connectorStatus(c Connector) core.ChargePointStatus {
	switch {
	case c.Availability == types.AvailabilityTypeInoperative:
		return core.ChargePointStatusUnavailable
	case c.IsCharging:
		return core.ChargePointStatusCharging
	case c.IsReserved:
		return core.ChargePointStatusReserved
	default:
		return core.ChargePointStatusAvailable
	}
}

func (cp *ChargePoint) enqueueStatus(connectorId int, status core.ChargePointStatus) {
	request := core.NewStatusNotificationRequest(connectorId, status, core.NoError)
	cp.queue.Enqueue(&EnqueuedRequest{
		Feature: core.StatusNotificationFeatureName,
		Request: request,
	})
}

// SendMeterValues reports the connector's meter reading to the central
// system, attached to the running transaction when there is one.
func (cp *ChargePoint) SendMeterValues(connectorId int) SendOutcome {
	snapshot, ok := cp.connectors.Snapshot(connectorId)
	if !ok {
		return SendOutcome{Kind: OutcomeFailed, Feature: core.MeterValuesFeatureName, Info: "unknown connector"}
	}
	request := &core.MeterValuesRequest{
		ConnectorId: connectorId,
		MeterValue: []types.MeterValue{{
			Timestamp: types.NewDateTime(time.Now()),
			SampledValue: []types.SampledValue{{
				Value:     strconv.Itoa(snapshot.CurrentMeter),
				Measurand: types.MeasurandEnergyActiveImportRegister,
				Unit:      types.UnitOfMeasureWh,
			}},
		}},
	}
	if snapshot.ActiveTransactionId >= 0 {
		transactionId := snapshot.ActiveTransactionId
		request.TransactionId = &transactionId
	}
	return cp.Send(request, nil)
}

func (cp *ChargePoint) handleIncomingMessage(data []byte) error {
	message, err := utility.ParseJson(data)
	if err != nil {
		return err
	}
	typeId, err := messageType(message)
	if err != nil {
		return err
	}
	if typeId == callTypeResult || typeId == callTypeError {
		result, err := parseResult(message)
		if err != nil {
			cp.logger.Warn(fmt.Sprintf("invalid message received: %s", string(data)))
			return nil
		}
		cp.deliverResult(result)
		return nil
	}
	inbound, err := parseCall(message)
	if err != nil {
		return err
	}

	start := time.Now()
	cp.observers.NotifyRequest(&internal.CallEvent{
		TrackingId:    inbound.UniqueId,
		ChargePointId: cp.ID(),
		Feature:       inbound.feature,
		Time:          start,
		Payload:       inbound.Payload,
	})

	response := cp.handleOperatorCall(inbound.Payload)

	cp.observers.NotifyResponse(&internal.CallEvent{
		TrackingId:    inbound.UniqueId,
		ChargePointId: cp.ID(),
		Feature:       inbound.feature,
		Time:          time.Now(),
		Elapsed:       time.Since(start),
		Outcome:       string(OutcomeSuccess),
	})

	reply := newCallResult(response, inbound.UniqueId)
	data, err = reply.MarshalJSON()
	if err != nil {
		return err
	}
	return cp.transport.WriteMessage(data)
}

// handleOperatorCall maps every operator command to its domain handler.
// Rejections are message specific statuses, never transport errors.
func (cp *ChargePoint) handleOperatorCall(request ocpp.Request) ocpp.Response {
	switch request := request.(type) {
	case *core.ResetRequest:
		cp.logger.FeatureEvent(core.ResetFeatureName, cp.ID(), fmt.Sprintf("%s reset requested", request.Type))
		return core.NewResetResponse(core.ResetStatusAccepted)
	case *core.ChangeAvailabilityRequest:
		status := cp.connectors.ChangeAvailability(request.ConnectorId, request.Type)
		return core.NewChangeAvailabilityResponse(status)
	case *core.GetConfigurationRequest:
		known, unknown := cp.configuration.Get(request.Key)
		return core.NewGetConfigurationResponse(known, unknown)
	case *core.ChangeConfigurationRequest:
		return cp.changeConfiguration(request)
	case *core.DataTransferRequest:
		return core.NewDataTransferResponse(core.DataTransferStatusAccepted)
	case *core.RemoteStartTransactionRequest:
		return cp.remoteStart(request)
	case *core.RemoteStopTransactionRequest:
		return cp.remoteStop(request)
	case *core.UnlockConnectorRequest:
		return core.NewUnlockConnectorResponse(cp.connectors.Unlock(request.ConnectorId))
	case *core.ClearCacheRequest:
		return core.NewClearCacheResponse(core.ClearCacheStatusAccepted)
	case *firmware.GetDiagnosticsRequest:
		return cp.getDiagnostics()
	case *firmware.UpdateFirmwareRequest:
		cp.setFirmwareStatus(firmware.StatusDownloading)
		return firmware.NewUpdateFirmwareResponse()
	case *remotetrigger.TriggerMessageRequest:
		status := cp.trigger(request.RequestedMessage, request.ConnectorId)
		return remotetrigger.NewTriggerMessageResponse(status)
	case *localauth.SendLocalListRequest:
		return cp.sendLocalList(request)
	case *localauth.GetLocalListVersionRequest:
		cp.mux.Lock()
		version := cp.localListVersion
		cp.mux.Unlock()
		return localauth.NewGetLocalListVersionResponse(version)
	case *smartcharging.SetChargingProfileRequest:
		if cp.connectors.SetChargingProfile(request.ConnectorId, request.ChargingProfile) {
			return smartcharging.NewSetChargingProfileResponse(smartcharging.ChargingProfileStatusAccepted)
		}
		return smartcharging.NewSetChargingProfileResponse(smartcharging.ChargingProfileStatusRejected)
	case *smartcharging.ClearChargingProfileRequest:
		cp.connectors.ClearChargingProfiles()
		return smartcharging.NewClearChargingProfileResponse(smartcharging.ClearChargingProfileStatusAccepted)
	case *smartcharging.GetCompositeScheduleRequest:
		return smartcharging.NewGetCompositeScheduleResponse(smartcharging.GetCompositeScheduleStatusAccepted)
	case *reservation.ReserveNowRequest:
		return cp.reserveNow(request)
	case *reservation.CancelReservationRequest:
		if cp.connectors.CancelReservation(request.ReservationId) {
			return reservation.NewCancelReservationResponse(reservation.CancelReservationStatusAccepted)
		}
		return reservation.NewCancelReservationResponse(reservation.CancelReservationStatusRejected)
	case *security.CertificateSignedRequest:
		return &security.CertificateSignedResponse{Status: security.CertificateSignedStatusAccepted}
	case *security.DeleteCertificateRequest:
		return &security.DeleteCertificateResponse{Status: security.DeleteCertificateStatusAccepted}
	case *security.ExtendedTriggerMessageRequest:
		status := cp.trigger(request.RequestedMessage, request.ConnectorId)
		return &security.ExtendedTriggerMessageResponse{Status: status}
	case *security.GetInstalledCertificateIdsRequest:
		return &security.GetInstalledCertificateIdsResponse{Status: security.GetInstalledCertificateStatusNotFound}
	case *security.GetLogRequest:
		return security.NewGetLogResponse(security.LogStatusAccepted)
	case *security.InstallCertificateRequest:
		return &security.InstallCertificateResponse{Status: security.InstallCertificateStatusAccepted}
	case *security.SignedUpdateFirmwareRequest:
		cp.setFirmwareStatus(firmware.StatusDownloading)
		return security.NewSignedUpdateFirmwareResponse(security.UpdateFirmwareStatusAccepted)
	}
	cp.logger.Warn(fmt.Sprintf("feature not supported: %s", request.GetFeatureName()))
	return core.NewDataTransferResponse(core.DataTransferStatusRejected)
}

func (cp *ChargePoint) changeConfiguration(request *core.ChangeConfigurationRequest) ocpp.Response {
	status := cp.configuration.Change(request.Key, request.Value)
	if status == core.ConfigurationStatusAccepted && request.Key == KeyHeartbeatInterval {
		cp.scheduler.SetHeartbeatInterval(time.Duration(utility.ToInt(request.Value)) * time.Second)
	}
	cp.logger.FeatureEvent(core.ChangeConfigurationFeatureName, cp.ID(), fmt.Sprintf("%s: %s", request.Key, status))
	return core.NewChangeConfigurationResponse(status)
}

// remoteStart accepts immediately and completes the transaction
// asynchronously: the StartTransaction request travels through the
// outbound queue, followed by the StatusNotification that depends on it.
func (cp *ChargePoint) remoteStart(request *core.RemoteStartTransactionRequest) ocpp.Response {
	connector, ok := cp.connectors.StartCharging(request.ConnectorId, request.IdTag, request.ChargingProfile)
	if !ok {
		return core.NewRemoteStartTransactionResponse(types.RemoteStartStopStatusRejected)
	}
	connectorId := connector.Id
	start := core.NewStartTransactionRequest(connectorId, request.IdTag, connector.MeterStart, types.NewDateTime(connector.StartTimestamp))
	cp.queue.Enqueue(&EnqueuedRequest{
		Feature: core.StartTransactionFeatureName,
		Request: start,
		Callback: func(payload string, err error) {
			if err != nil {
				cp.logger.Error("start transaction not acknowledged", err)
				return
			}
			var response core.StartTransactionResponse
			if err = json.Unmarshal([]byte(payload), &response); err != nil {
				cp.logger.Error("parsing start transaction response", err)
				return
			}
			cp.connectors.CommitTransaction(connectorId, response.TransactionId, response.IdTagInfo)
			cp.logger.FeatureEvent(core.StartTransactionFeatureName, cp.ID(),
				fmt.Sprintf("transaction #%d confirmed for connector %d", response.TransactionId, connectorId))
		},
	})
	cp.enqueueStatus(connectorId, core.ChargePointStatusCharging)
	return core.NewRemoteStartTransactionResponse(types.RemoteStartStopStatusAccepted)
}

func (cp *ChargePoint) remoteStop(request *core.RemoteStopTransactionRequest) ocpp.Response {
	connector, ok := cp.connectors.StopCharging(request.TransactionId)
	if !ok {
		return core.NewRemoteStopTransactionResponse(types.RemoteStartStopStatusRejected)
	}
	stop := core.NewStopTransactionRequest(request.TransactionId, connector.MeterStop, types.NewDateTime(connector.StopTimestamp), core.ReasonRemote)
	cp.queue.Enqueue(&EnqueuedRequest{
		Feature: core.StopTransactionFeatureName,
		Request: stop,
	})
	cp.enqueueStatus(connector.Id, core.ChargePointStatusAvailable)
	return core.NewRemoteStopTransactionResponse(types.RemoteStartStopStatusAccepted)
}

func (cp *ChargePoint) reserveNow(request *reservation.ReserveNowRequest) ocpp.Response {
	expiry := time.Now()
	if request.ExpiryDate != nil {
		expiry = request.ExpiryDate.Time
	}
	if cp.connectors.Reserve(request.ConnectorId, request.ReservationId, request.IdTag, expiry) {
		cp.enqueueStatus(request.ConnectorId, core.ChargePointStatusReserved)
		return reservation.NewReserveNowResponse(reservation.ReservationStatusAccepted)
	}
	return reservation.NewReserveNowResponse(reservation.ReservationStatusRejected)
}

func (cp *ChargePoint) getDiagnostics() ocpp.Response {
	cp.mux.Lock()
	cp.diagnosticsStatus = firmware.DiagnosticsStatusUploaded
	cp.mux.Unlock()
	cp.queue.Enqueue(&EnqueuedRequest{
		Feature: firmware.DiagnosticsStatusNotificationFeatureName,
		Request: &firmware.DiagnosticsStatusNotificationRequest{Status: firmware.DiagnosticsStatusUploaded},
	})
	return firmware.NewGetDiagnosticsResponse("diagnostics.log")
}

func (cp *ChargePoint) setFirmwareStatus(status firmware.Status) {
	cp.mux.Lock()
	cp.firmwareStatus = status
	cp.mux.Unlock()
	cp.queue.Enqueue(&EnqueuedRequest{
		Feature: firmware.StatusNotificationFeatureName,
		Request: &firmware.StatusNotificationRequest{Status: status},
	})
}

func (cp *ChargePoint) sendLocalList(request *localauth.SendLocalListRequest) ocpp.Response {
	cp.mux.Lock()
	defer cp.mux.Unlock()
	if request.UpdateType == localauth.UpdateTypeDifferential && request.ListVersion <= cp.localListVersion {
		return localauth.NewSendLocalListResponse(localauth.UpdateStatusVersionMismatch)
	}
	cp.localListVersion = request.ListVersion
	return localauth.NewSendLocalListResponse(localauth.UpdateStatusAccepted)
}

func (cp *ChargePoint) trigger(requestedMessage remotetrigger.MessageTrigger, connectorId *int) remotetrigger.TriggerMessageStatus {
	target := 0
	if connectorId != nil {
		target = *connectorId
	}
	switch requestedMessage {
	case remotetrigger.TriggerBootNotification:
		cp.queue.Enqueue(&EnqueuedRequest{
			Feature: core.BootNotificationFeatureName,
			Request: &core.BootNotificationRequest{
				ChargePointVendor: cp.opts.Vendor,
				ChargePointModel:  cp.opts.Model,
			},
			Callback: func(payload string, err error) {
				if err == nil {
					cp.applyBootResponse(payload)
				}
			},
		})
	case remotetrigger.TriggerHeartbeat:
		cp.queue.Enqueue(&EnqueuedRequest{
			Feature: core.HeartbeatFeatureName,
			Request: core.NewHeartbeatRequest(),
		})
	case remotetrigger.TriggerStatusNotification:
		cp.NotifyStatus(target)
	case remotetrigger.TriggerMeterValues:
		go cp.SendMeterValues(target)
	case remotetrigger.TriggerDiagnosticsStatusNotification:
		cp.mux.Lock()
		status := cp.diagnosticsStatus
		cp.mux.Unlock()
		cp.queue.Enqueue(&EnqueuedRequest{
			Feature: firmware.DiagnosticsStatusNotificationFeatureName,
			Request: &firmware.DiagnosticsStatusNotificationRequest{Status: status},
		})
	case remotetrigger.TriggerFirmwareStatusNotification:
		cp.mux.Lock()
		status := cp.firmwareStatus
		cp.mux.Unlock()
		cp.queue.Enqueue(&EnqueuedRequest{
			Feature: firmware.StatusNotificationFeatureName,
			Request: &firmware.StatusNotificationRequest{Status: status},
		})
	default:
		return remotetrigger.TriggerMessageStatusNotImplemented
	}
	return remotetrigger.TriggerMessageStatusAccepted
}
