package server

import (
	"encoding/json"
	"evgate/ocpp/core"
	"evgate/station"
	"evgate/types"
	"sync"
	"testing"
	"time"
)

// pipeLink couples a charge point facade to the central system in memory.
// Frames written by either side are delivered synchronously to the other,
// so one test goroutine drives the whole round trip.
type pipeLink struct {
	id      string
	cs      *CentralSystem
	conn    *pipeConn
	mu      sync.Mutex
	handler func(data []byte) error
	closed  bool
}

func (l *pipeLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// pipeTransport is the station's side of the link.
type pipeTransport struct {
	link *pipeLink
}

func (p *pipeTransport) ID() string {
	return p.link.id
}

func (p *pipeTransport) IsConnected() bool {
	return !p.link.isClosed()
}

func (p *pipeTransport) SetMessageHandler(handler func(data []byte) error) {
	p.link.mu.Lock()
	p.link.handler = handler
	p.link.mu.Unlock()
}

func (p *pipeTransport) WriteMessage(data []byte) error {
	return p.link.cs.handleIncomingMessage(p.link.conn, data)
}

// pipeConn is the central system's side of the link.
type pipeConn struct {
	link *pipeLink
}

func (p *pipeConn) ID() string {
	return p.link.id
}

func (p *pipeConn) IsClosed() bool {
	return p.link.isClosed()
}

func (p *pipeConn) WriteMessage(data []byte) error {
	p.link.mu.Lock()
	handler := p.link.handler
	p.link.mu.Unlock()
	if handler == nil {
		return nil
	}
	return handler(data)
}

func newPipe(id string, cs *CentralSystem) (*pipeTransport, *pipeConn) {
	link := &pipeLink{id: id, cs: cs}
	link.conn = &pipeConn{link: link}
	return &pipeTransport{link: link}, link.conn
}

func TestOperatorChargeCycleAcrossFacades(t *testing.T) {
	cs := newTestCentralSystem()
	transport, conn := newPipe("cp-e2e", cs)
	cp := station.NewChargePoint(transport, station.Options{
		Vendor:         "vendor",
		Model:          "model",
		Connectors:     1,
		RequestTimeout: time.Second,
	}, &noopLogger{})
	cs.server.Registry().Touch("cp-e2e", conn)

	if outcome := cp.Boot(); !outcome.IsSuccess() {
		t.Fatalf("boot failed: %s: %s", outcome.Kind, outcome.Info)
	}
	if !cp.IsRegistered() {
		t.Fatal("charge point must be registered after boot")
	}
	if !cs.chargeBoxes.Exists("cp-e2e") {
		t.Fatal("central system must know the charge box after boot")
	}

	connectorId := 1
	outcome := cs.RemoteStartTransaction("cp-e2e", &connectorId, "ABC", nil, nil)
	if !outcome.IsSuccess() {
		t.Fatalf("remote start failed: %s: %s", outcome.Kind, outcome.Info)
	}
	var startReply core.RemoteStartTransactionResponse
	if err := json.Unmarshal([]byte(outcome.Payload), &startReply); err != nil {
		t.Fatalf("decode remote start reply: %v", err)
	}
	if startReply.Status != types.RemoteStartStopStatusAccepted {
		t.Fatalf("expected accepted remote start, got %s", startReply.Status)
	}

	// the queued StartTransaction reaches the central system on the flush
	// and its transaction id comes back through the callback
	cp.FlushOutbound()
	snapshot, _ := cp.Connectors().Snapshot(1)
	if !snapshot.IsCharging {
		t.Fatal("connector must be charging after the accepted start")
	}
	txId := snapshot.ActiveTransactionId
	if txId < 0 {
		t.Fatal("transaction id was not assigned by the central system")
	}
	if active, ok := cs.coreHandler.ActiveTransaction("cp-e2e", 1); !ok || active != txId {
		t.Fatalf("central system tracks transaction %d (%v), station holds %d", active, ok, txId)
	}

	stop := cs.RemoteStopTransaction("cp-e2e", txId, nil)
	if !stop.IsSuccess() {
		t.Fatalf("remote stop failed: %s: %s", stop.Kind, stop.Info)
	}
	var stopReply core.RemoteStopTransactionResponse
	if err := json.Unmarshal([]byte(stop.Payload), &stopReply); err != nil {
		t.Fatalf("decode remote stop reply: %v", err)
	}
	if stopReply.Status != types.RemoteStartStopStatusAccepted {
		t.Fatalf("expected accepted remote stop, got %s", stopReply.Status)
	}

	cp.FlushOutbound()
	snapshot, _ = cp.Connectors().Snapshot(1)
	if snapshot.IsCharging {
		t.Error("connector must be idle after the stop completes")
	}
	if _, ok := cs.coreHandler.ActiveTransaction("cp-e2e", 1); ok {
		t.Error("central system must release the session after StopTransaction")
	}
}

func TestConfigurationRoundTripAcrossFacades(t *testing.T) {
	cs := newTestCentralSystem()
	transport, conn := newPipe("cp-e2e-2", cs)
	cp := station.NewChargePoint(transport, station.Options{
		Vendor:         "vendor",
		Model:          "model",
		Connectors:     1,
		RequestTimeout: time.Second,
	}, &noopLogger{})
	cs.server.Registry().Touch("cp-e2e-2", conn)

	change := cs.ChangeConfiguration("cp-e2e-2", "HeartbeatInterval", "120", nil)
	if !change.IsSuccess() {
		t.Fatalf("change configuration failed: %s: %s", change.Kind, change.Info)
	}
	if cp.Scheduler().HeartbeatInterval() != 2*time.Minute {
		t.Errorf("expected retuned heartbeat 2m, got %s", cp.Scheduler().HeartbeatInterval())
	}

	get := cs.GetConfiguration("cp-e2e-2", []string{"HeartbeatInterval"}, nil)
	if !get.IsSuccess() {
		t.Fatalf("get configuration failed: %s: %s", get.Kind, get.Info)
	}
	var reply core.GetConfigurationResponse
	if err := json.Unmarshal([]byte(get.Payload), &reply); err != nil {
		t.Fatalf("decode get configuration reply: %v", err)
	}
	if len(reply.ConfigurationKey) != 1 || reply.ConfigurationKey[0].Value == nil || *reply.ConfigurationKey[0].Value != "120" {
		t.Errorf("expected HeartbeatInterval 120 reported, got %+v", reply.ConfigurationKey)
	}
}
