package server

import (
	"evgate/internal"
	"evgate/metrics/counters"
	"evgate/models"
	"evgate/ocpp/core"
	"evgate/ocpp/firmware"
	"evgate/types"
	"evgate/utility"
	"fmt"
	"sync"
	"time"
)

const defaultHeartbeatInterval = 600

type ChargeBoxState struct {
	status            core.ChargePointStatus
	diagnosticsStatus firmware.DiagnosticsStatus
	firmwareStatus    firmware.Status
	connectors        map[int]*models.Connector // No assumptions about the # of connectors
	errorCode         core.ChargePointErrorCode
}

// SystemHandler holds the central system's view of every charge box and
// processes the inbound notifications. Active transactions are keyed by
// "chargeBoxId*connectorId"; a StartTransaction overwrites any prior
// mapping for its key, a StopTransaction removes the mapping carrying its
// transaction id.
type SystemHandler struct {
	chargeBoxes       *ChargeBoxStore
	states            map[string]*ChargeBoxState
	sessions          map[string]int
	transactions      map[int]*models.Transaction
	newTransactionId  int
	heartbeatInterval int
	database          internal.Database
	logger            internal.LogHandler
	eventHandler      internal.EventHandler
	debug             bool
	mux               *sync.Mutex
}

func NewSystemHandler(chargeBoxes *ChargeBoxStore) *SystemHandler {
	handler := SystemHandler{
		chargeBoxes:       chargeBoxes,
		states:            make(map[string]*ChargeBoxState),
		sessions:          make(map[string]int),
		transactions:      make(map[int]*models.Transaction),
		newTransactionId:  1,
		heartbeatInterval: defaultHeartbeatInterval,
		mux:               &sync.Mutex{},
	}
	return &handler
}

func (h *SystemHandler) SetDatabase(database internal.Database) {
	h.database = database
}

// SetDebugMode setting debug mode, used for registering unknown id tags
func (h *SystemHandler) SetDebugMode(debug bool) {
	h.debug = debug
}

func (h *SystemHandler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *SystemHandler) SetEventHandler(eventHandler internal.EventHandler) {
	h.eventHandler = eventHandler
}

func (h *SystemHandler) SetHeartbeatInterval(seconds int) {
	if seconds > 0 {
		h.heartbeatInterval = seconds
	}
}

func sessionKey(chargeBoxId string, connectorId int) string {
	return fmt.Sprintf("%s*%d", chargeBoxId, connectorId)
}

func (h *SystemHandler) OnStart() error {
	if err := h.chargeBoxes.Load(); err != nil {
		return fmt.Errorf("failed to load charge boxes from database: %s", err)
	}
	if h.database != nil {
		connectors, err := h.database.GetConnectors()
		if err != nil {
			return fmt.Errorf("failed to load connectors from database: %s", err)
		}
		h.mux.Lock()
		for _, c := range connectors {
			c.Init()
			state := h.getState(c.ChargeBoxId)
			state.connectors[c.Id] = c
		}
		h.mux.Unlock()
		h.logger.Debug(fmt.Sprintf("loaded %d connectors from database", len(connectors)))

		transaction, err := h.database.GetLastTransaction()
		if err != nil {
			h.logger.Error("failed to load last transaction from database", err)
		}
		if transaction != nil {
			h.newTransactionId = transaction.Id + 1
		}
	}
	return nil
}

// getState returns the in-memory state of a charge box, creating it lazily.
// Caller must hold h.mux.
func (h *SystemHandler) getState(chargeBoxId string) *ChargeBoxState {
	state, ok := h.states[chargeBoxId]
	if !ok {
		state = &ChargeBoxState{
			connectors: make(map[int]*models.Connector),
		}
		h.states[chargeBoxId] = state
	}
	return state
}

// getConnector returns the connector record, creating it lazily. Caller
// must hold h.mux.
func (h *SystemHandler) getConnector(chargeBoxId string, state *ChargeBoxState, id int) *models.Connector {
	connector, ok := state.connectors[id]
	if !ok {
		connector = models.NewConnector(id, chargeBoxId)
		state.connectors[id] = connector
		if h.database != nil {
			err := h.database.AddConnector(connector)
			if err != nil {
				h.logger.Error("failed to add connector to database", err)
			}
		}
	}
	return connector
}

func (h *SystemHandler) OnBootNotification(chargePointId string, request *core.BootNotificationRequest) (*core.BootNotificationResponse, error) {
	chargeBox := &models.ChargeBox{
		Id:              chargePointId,
		Model:           request.ChargePointModel,
		Vendor:          request.ChargePointVendor,
		SerialNumber:    request.ChargePointSerialNumber,
		FirmwareVersion: request.FirmwareVersion,
		Status:          string(core.ChargePointStatusAvailable),
		ErrorCode:       string(core.NoError),
	}
	result := h.chargeBoxes.Upsert(chargeBox)
	if result.Status != StoreSuccess {
		h.logger.Warn(fmt.Sprintf("boot notification: charge box %s not registered: %s", chargePointId, result.Info))
	}
	h.mux.Lock()
	h.getState(chargePointId)
	h.mux.Unlock()

	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, string(core.RegistrationStatusAccepted))
	return core.NewBootNotificationResponse(types.NewDateTime(time.Now()), h.heartbeatInterval, core.RegistrationStatusAccepted), nil
}

func (h *SystemHandler) OnAuthorize(chargePointId string, request *core.AuthorizeRequest) (*core.AuthorizeResponse, error) {
	authStatus := types.AuthorizationStatusAccepted
	chargeBox, ok := h.chargeBoxes.TryGet(chargePointId)
	if !ok || !chargeBox.IsEnabled {
		authStatus = types.AuthorizationStatusBlocked
	}
	id := request.IdTag
	if id == "" {
		authStatus = types.AuthorizationStatusInvalid
	} else if h.database != nil && authStatus == types.AuthorizationStatusAccepted {
		// status will be changed if user tag is found and enabled
		authStatus = types.AuthorizationStatusBlocked
		userTag, err := h.database.GetUserTag(id)
		if err != nil {
			h.logger.Error("failed to get user tag from database", err)
		}
		// add user tag if not found, new tag is enabled if debug mode is on
		if userTag == nil {
			userTag = &models.UserTag{
				IdTag:     id,
				IsEnabled: h.debug,
			}
			err = h.database.AddUserTag(userTag)
			if err != nil {
				h.logger.Error("failed to add user tag to database", err)
			}
		}
		if userTag.IsEnabled {
			authStatus = types.AuthorizationStatusAccepted
		}
	}

	if h.eventHandler != nil {
		eventMessage := &internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   0,
			Time:          time.Now(),
			IdTag:         id,
			Status:        string(authStatus),
			Payload:       request,
		}
		h.eventHandler.OnAuthorize(eventMessage)
	}

	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("id tag: %s; authorization status: %s", id, authStatus))
	return core.NewAuthorizationResponse(types.NewIdTagInfo(authStatus)), nil
}

func (h *SystemHandler) OnHeartbeat(chargePointId string, request *core.HeartbeatRequest) (*core.HeartbeatResponse, error) {
	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("%v", time.Now()))
	return core.NewHeartbeatResponse(types.NewDateTime(time.Now())), nil
}

func (h *SystemHandler) OnStartTransaction(chargePointId string, request *core.StartTransactionRequest) (*core.StartTransactionResponse, error) {
	h.mux.Lock()
	defer h.mux.Unlock()
	state := h.getState(chargePointId)
	connector := h.getConnector(chargePointId, state, request.ConnectorId)
	connector.Lock()
	defer connector.Unlock()
	if connector.CurrentTransactionId >= 0 {
		h.logger.Error("connector is busy", fmt.Errorf("%s@%d is now busy with transaction %d", chargePointId, request.ConnectorId, connector.CurrentTransactionId))
	}

	transaction := &models.Transaction{
		IdTag:         request.IdTag,
		IsFinished:    false,
		ConnectorId:   request.ConnectorId,
		ChargeBoxId:   chargePointId,
		MeterStart:    request.MeterStart,
		TimeStart:     request.Timestamp.Time,
		ReservationId: request.ReservationId,
		Id:            h.newTransactionId,
	}
	h.newTransactionId += 1

	connector.CurrentTransactionId = transaction.Id
	h.transactions[transaction.Id] = transaction
	// an unfinished session on the same connector is superseded
	h.sessions[sessionKey(chargePointId, request.ConnectorId)] = transaction.Id
	counters.CountTransaction(chargePointId)

	if h.database != nil {
		err := h.database.UpdateConnector(connector)
		if err != nil {
			h.logger.Error("update connector", err)
		}
		err = h.database.AddTransaction(transaction)
		if err != nil {
			h.logger.Error("add transaction", err)
		}
	}

	if h.eventHandler != nil {
		eventMessage := &internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   transaction.ConnectorId,
			Time:          transaction.TimeStart,
			IdTag:         transaction.IdTag,
			Status:        connector.Status,
			TransactionId: transaction.Id,
			Payload:       request,
		}
		h.eventHandler.OnTransactionStart(eventMessage)
	}

	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("started transaction #%v for connector %v", transaction.Id, transaction.ConnectorId))
	return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusAccepted), transaction.Id), nil
}

func (h *SystemHandler) OnStopTransaction(chargePointId string, request *core.StopTransactionRequest) (*core.StopTransactionResponse, error) {
	h.mux.Lock()
	defer h.mux.Unlock()
	state := h.getState(chargePointId)

	transaction, ok := h.transactions[request.TransactionId]
	if !ok && h.database != nil {
		stored, err := h.database.GetTransaction(request.TransactionId)
		if err != nil {
			h.logger.Error("get transaction", err)
		} else {
			transaction = stored
			ok = true
		}
	}
	if !ok {
		h.logger.Warn(fmt.Sprintf("transaction #%v not found", request.TransactionId))
		return core.NewStopTransactionResponse(), nil
	}

	// release the session mapping carrying this transaction id
	for key, id := range h.sessions {
		if id == transaction.Id {
			delete(h.sessions, key)
		}
	}

	connector := h.getConnector(chargePointId, state, transaction.ConnectorId)
	connector.Lock()
	defer connector.Unlock()
	connector.CurrentTransactionId = -1
	if h.database != nil {
		err := h.database.UpdateConnector(connector)
		if err != nil {
			h.logger.Error("update connector", err)
		}
	}
	if transaction.IsFinished {
		h.logger.Warn(fmt.Sprintf("transaction #%v is already finished", request.TransactionId))
		return core.NewStopTransactionResponse(), nil
	}

	transaction.IsFinished = true
	transaction.TimeStop = request.Timestamp.Time
	transaction.MeterStop = request.MeterStop
	transaction.Reason = string(request.Reason)

	// request data may contain meter values of begin and end of transaction
	if request.TransactionData != nil {
		for _, data := range request.TransactionData {
			if data.SampledValue != nil {
				for _, value := range data.SampledValue {
					if value.Context == types.ReadingContextTransactionBegin {
						transaction.MeterStart = utility.ToInt(value.Value)
						transaction.TimeStart = data.Timestamp.Time
					}
					if value.Context == types.ReadingContextTransactionEnd {
						transaction.MeterStop = utility.ToInt(value.Value)
						transaction.TimeStop = data.Timestamp.Time
					}
				}
			}
		}
	}

	if h.database != nil {
		err := h.database.UpdateTransaction(transaction)
		if err != nil {
			h.logger.Error("update transaction", err)
		}
	}

	if h.eventHandler != nil {
		consumed := float32(transaction.MeterStop-transaction.MeterStart) / 1000
		eventMessage := &internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   transaction.ConnectorId,
			Time:          transaction.TimeStart,
			IdTag:         transaction.IdTag,
			Status:        connector.Status,
			TransactionId: transaction.Id,
			Info:          fmt.Sprintf("consumed %0.1f kW", consumed),
			Payload:       request,
		}
		h.eventHandler.OnTransactionStop(eventMessage)
	}

	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("stopped transaction %v %v", request.TransactionId, request.Reason))
	return core.NewStopTransactionResponse(), nil
}

// ActiveTransaction reports the transaction currently mapped to the
// connector, if any.
func (h *SystemHandler) ActiveTransaction(chargeBoxId string, connectorId int) (int, bool) {
	h.mux.Lock()
	defer h.mux.Unlock()
	id, ok := h.sessions[sessionKey(chargeBoxId, connectorId)]
	return id, ok
}

func (h *SystemHandler) OnMeterValues(chargePointId string, request *core.MeterValuesRequest) (*core.MeterValuesResponse, error) {
	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("received meter values for connector #%v", request.ConnectorId))
	for _, value := range request.MeterValue {
		h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("%v --> %v", request.ConnectorId, value))
	}
	return core.NewMeterValuesResponse(), nil
}

func (h *SystemHandler) OnStatusNotification(chargePointId string, request *core.StatusNotificationRequest) (*core.StatusNotificationResponse, error) {
	h.mux.Lock()
	defer h.mux.Unlock()
	state := h.getState(chargePointId)
	currentTransactionId := 0
	state.errorCode = request.ErrorCode
	if request.ErrorCode != core.NoError {
		counters.ObserveError(chargePointId, string(request.ErrorCode))
	}
	if request.ConnectorId > 0 {
		connector := h.getConnector(chargePointId, state, request.ConnectorId)
		connector.Lock()
		defer connector.Unlock()
		connector.Status = string(request.Status)
		connector.Info = request.Info
		connector.VendorId = request.VendorId
		connector.ErrorCode = string(request.ErrorCode)
		if request.Status == core.ChargePointStatusAvailable {
			connector.CurrentTransactionId = -1
		}
		if h.database != nil {
			err := h.database.UpdateConnector(connector)
			if err != nil {
				h.logger.Error("update status", err)
			}
		}
		currentTransactionId = connector.CurrentTransactionId
		h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("updated connector #%v status to %v", request.ConnectorId, request.Status))
	} else {
		state.status = request.Status
		if chargeBox, ok := h.chargeBoxes.TryGet(chargePointId); ok {
			chargeBox.Status = string(request.Status)
			chargeBox.Info = request.Info
			chargeBox.ErrorCode = string(request.ErrorCode)
			h.chargeBoxes.Update(chargeBox)
		}
		h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("updated main controller status to %v", request.Status))
	}

	if h.eventHandler != nil {
		eventMessage := &internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   request.ConnectorId,
			Time:          time.Now(),
			Status:        string(request.Status),
			TransactionId: currentTransactionId,
			Payload:       request,
		}
		h.eventHandler.OnStatusNotification(eventMessage)
	}

	return core.NewStatusNotificationResponse(), nil
}

func (h *SystemHandler) OnDataTransfer(chargePointId string, request *core.DataTransferRequest) (*core.DataTransferResponse, error) {
	if !h.chargeBoxes.Exists(chargePointId) {
		return core.NewDataTransferResponse(core.DataTransferStatusRejected), nil
	}
	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("received data #%v", request.Data))
	return core.NewDataTransferResponse(core.DataTransferStatusAccepted), nil
}

func (h *SystemHandler) OnDiagnosticsStatusNotification(chargePointId string, request *firmware.DiagnosticsStatusNotificationRequest) (*firmware.DiagnosticsStatusNotificationResponse, error) {
	h.mux.Lock()
	state := h.getState(chargePointId)
	state.diagnosticsStatus = request.Status
	h.mux.Unlock()
	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("updated diagnostic status to %v", request.Status))
	return firmware.NewDiagnosticsStatusNotificationResponse(), nil
}

func (h *SystemHandler) OnFirmwareStatusNotification(chargePointId string, request *firmware.StatusNotificationRequest) (*firmware.StatusNotificationResponse, error) {
	h.mux.Lock()
	state := h.getState(chargePointId)
	state.firmwareStatus = request.Status
	h.mux.Unlock()
	h.logger.FeatureEvent(request.GetFeatureName(), chargePointId, fmt.Sprintf("updated firmware status to %v", request.Status))
	return firmware.NewStatusNotificationResponse(), nil
}
