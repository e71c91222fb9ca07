package server

import (
	"crypto/tls"
	"encoding/json"
	"evgate/internal"
	"evgate/internal/config"
	"evgate/models"
	"evgate/ocpp/core"
	"evgate/ocpp/firmware"
	"evgate/ocpp/localauth"
	"evgate/ocpp/remotetrigger"
	"evgate/types"
	"evgate/utility"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net/http"
	"strings"
	"time"
)

const (
	commandEndpoint   = "/api/command"
	chargeBoxEndpoint = "/api/chargebox"
)

type ServerApi struct {
	conf          *config.Config
	httpServer    *http.Server
	centralSystem *CentralSystem
	logger        internal.LogHandler
}

type command struct {
	ChargePointId string
	ConnectorId   int
	FeatureName   string
	Payload       string
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *ServerApi {
	server := ServerApi{
		conf:   conf,
		logger: logger,
	}
	router := httprouter.New()
	router.POST(commandEndpoint, server.handleCommand)
	router.POST(chargeBoxEndpoint, server.handleAddChargeBox)
	router.GET(chargeBoxEndpoint+"/:id", server.handleGetChargeBox)
	router.PUT(chargeBoxEndpoint+"/:id", server.handleUpdateChargeBox)
	router.DELETE(chargeBoxEndpoint+"/:id", server.handleDeleteChargeBox)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: router,
	}
	return &server
}

func (s *ServerApi) SetCentralSystem(centralSystem *CentralSystem) {
	s.centralSystem = centralSystem
}

func (s *ServerApi) Start() error {
	if s.conf.Api.TLS {
		cert, err := tls.LoadX509KeyPair(s.conf.Api.CertFile, s.conf.Api.KeyFile)
		if err != nil {
			return fmt.Errorf("api: failed to load certificate: %v", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

func (s *ServerApi) handleCommand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var cmd command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing command from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if cmd.FeatureName == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	outcome, err := s.runCommand(cmd)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error sending command %s to %s: %s", cmd.FeatureName, cmd.ChargePointId, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.writeJson(w, outcome)
}

func (s *ServerApi) runCommand(cmd command) (CallOutcome, error) {
	cs := s.centralSystem
	switch cmd.FeatureName {
	case core.RemoteStartTransactionFeatureName:
		var connectorId *int
		if cmd.ConnectorId > 0 {
			connectorId = &cmd.ConnectorId
		}
		return cs.RemoteStartTransaction(cmd.ChargePointId, connectorId, cmd.Payload, nil, nil), nil
	case core.RemoteStopTransactionFeatureName:
		return cs.RemoteStopTransaction(cmd.ChargePointId, utility.ToInt(cmd.Payload), nil), nil
	case core.ResetFeatureName:
		resetType := core.ResetTypeSoft
		if cmd.Payload == string(core.ResetTypeHard) {
			resetType = core.ResetTypeHard
		}
		return cs.Reset(cmd.ChargePointId, resetType, nil), nil
	case core.ChangeAvailabilityFeatureName:
		availability := types.AvailabilityTypeOperative
		if cmd.Payload == string(types.AvailabilityTypeInoperative) {
			availability = types.AvailabilityTypeInoperative
		}
		return cs.ChangeAvailability(cmd.ChargePointId, cmd.ConnectorId, availability, nil), nil
	case core.GetConfigurationFeatureName:
		var keys []string
		if cmd.Payload != "" {
			keys = strings.Split(cmd.Payload, ",")
		}
		return cs.GetConfiguration(cmd.ChargePointId, keys, nil), nil
	case core.ChangeConfigurationFeatureName:
		key, value, found := strings.Cut(cmd.Payload, "=")
		if !found {
			return CallOutcome{}, fmt.Errorf("expected payload in key=value form")
		}
		return cs.ChangeConfiguration(cmd.ChargePointId, key, value, nil), nil
	case core.UnlockConnectorFeatureName:
		return cs.UnlockConnector(cmd.ChargePointId, cmd.ConnectorId, nil), nil
	case core.ClearCacheFeatureName:
		return cs.ClearCache(cmd.ChargePointId, nil), nil
	case core.DataTransferFeatureName:
		return cs.DataTransfer(cmd.ChargePointId, cmd.Payload, "", "", nil), nil
	case remotetrigger.TriggerMessageFeatureName:
		return cs.TriggerMessage(cmd.ChargePointId, remotetrigger.MessageTrigger(cmd.Payload), cmd.ConnectorId, nil), nil
	case firmware.GetDiagnosticsFeatureName:
		return cs.GetDiagnostics(cmd.ChargePointId, cmd.Payload, nil), nil
	case firmware.UpdateFirmwareFeatureName:
		return cs.UpdateFirmware(cmd.ChargePointId, cmd.Payload, types.NewDateTime(time.Now()), nil), nil
	case localauth.GetLocalListVersionFeatureName:
		return cs.GetLocalListVersion(cmd.ChargePointId, nil), nil
	}
	return CallOutcome{}, fmt.Errorf("feature not supported: %s", cmd.FeatureName)
}

func (s *ServerApi) handleAddChargeBox(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var chargeBox models.ChargeBox
	if err := json.NewDecoder(r.Body).Decode(&chargeBox); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.writeStoreResult(w, s.centralSystem.ChargeBoxes().Add(&chargeBox))
}

func (s *ServerApi) handleGetChargeBox(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	s.writeStoreResult(w, s.centralSystem.ChargeBoxes().Get(params.ByName("id")))
}

func (s *ServerApi) handleUpdateChargeBox(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	var chargeBox models.ChargeBox
	if err := json.NewDecoder(r.Body).Decode(&chargeBox); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	chargeBox.Id = params.ByName("id")
	s.writeStoreResult(w, s.centralSystem.ChargeBoxes().Update(&chargeBox))
}

func (s *ServerApi) handleDeleteChargeBox(w http.ResponseWriter, _ *http.Request, params httprouter.Params) {
	s.writeStoreResult(w, s.centralSystem.ChargeBoxes().Delete(params.ByName("id")))
}

func (s *ServerApi) writeStoreResult(w http.ResponseWriter, result StoreResult) {
	switch result.Status {
	case StoreNotFound:
		w.WriteHeader(http.StatusNotFound)
	case StoreRejected:
		w.WriteHeader(http.StatusConflict)
	case StoreFailed:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	s.writeJson(w, result)
}

func (s *ServerApi) writeJson(w http.ResponseWriter, value interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Error("api: encoding response", err)
	}
}
