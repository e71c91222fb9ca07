package station

import (
	"encoding/json"
	"evgate/ocpp/core"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeTransport is an in-memory stand-in for the websocket client. When a
// responder is set, every outbound call is answered synchronously through
// the registered message handler.
type fakeTransport struct {
	mu        sync.Mutex
	id        string
	connected bool
	handler   func(data []byte) error
	frames    [][]byte
	writeErr  error
	respond   func(action string) (payload string, isError bool)
}

func newFakeTransport(id string) *fakeTransport {
	return &fakeTransport{id: id, connected: true}
}

func (f *fakeTransport) ID() string {
	return f.id
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) SetMessageHandler(handler func(data []byte) error) {
	f.handler = handler
}

func (f *fakeTransport) WriteMessage(data []byte) error {
	f.mu.Lock()
	if f.writeErr != nil {
		err := f.writeErr
		f.mu.Unlock()
		return err
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	f.frames = append(f.frames, copied)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return nil
	}
	var fields []interface{}
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 4 {
		return nil
	}
	uniqueId := fields[1].(string)
	action := fields[2].(string)
	payload, isError := respond(action)
	if payload == "" {
		return nil
	}
	var reply string
	if isError {
		reply = fmt.Sprintf(`[4,"%s","InternalError","failure",%s]`, uniqueId, payload)
	} else {
		reply = fmt.Sprintf(`[3,"%s",%s]`, uniqueId, payload)
	}
	return f.handler([]byte(reply))
}

func (f *fakeTransport) deliver(t *testing.T, frame string) {
	t.Helper()
	if err := f.handler([]byte(frame)); err != nil {
		t.Fatalf("deliver %s: %v", frame, err)
	}
}

func (f *fakeTransport) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// lastReply returns the payload of the most recent call result written to
// the transport, matched by correlation id.
func (f *fakeTransport) lastReply(t *testing.T, uniqueId string) map[string]interface{} {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.frames) - 1; i >= 0; i-- {
		var fields []interface{}
		if err := json.Unmarshal(f.frames[i], &fields); err != nil {
			continue
		}
		if len(fields) == 3 && fields[1].(string) == uniqueId {
			return fields[2].(map[string]interface{})
		}
	}
	t.Fatalf("no reply found for %s", uniqueId)
	return nil
}

func newTestChargePoint(t *testing.T, transport *fakeTransport) *ChargePoint {
	t.Helper()
	return NewChargePoint(transport, Options{
		Vendor:         "vendor",
		Model:          "model",
		Connectors:     1,
		RequestTimeout: time.Second,
	}, &quietLogger{})
}

func acceptingResponder(action string) (string, bool) {
	switch action {
	case core.BootNotificationFeatureName:
		return `{"currentTime":"2026-01-01T00:00:00Z","interval":3600,"status":"Accepted"}`, false
	case core.StartTransactionFeatureName:
		return `{"idTagInfo":{"status":"Accepted"},"transactionId":55}`, false
	default:
		return `{}`, false
	}
}

func TestBootAcceptedRetunesHeartbeat(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = acceptingResponder

	outcome := cp.Boot()
	if !outcome.IsSuccess() {
		t.Fatalf("expected success, got %s: %s", outcome.Kind, outcome.Info)
	}
	if !cp.IsRegistered() {
		t.Error("charge point must be registered after an accepted boot")
	}
	if cp.Scheduler().HeartbeatInterval() != time.Hour {
		t.Errorf("expected heartbeat interval 1h, got %s", cp.Scheduler().HeartbeatInterval())
	}
}

func TestBootRejectedKeepsSchedule(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	before := cp.Scheduler().HeartbeatInterval()
	transport.respond = func(action string) (string, bool) {
		return `{"currentTime":"2026-01-01T00:00:00Z","interval":10,"status":"Rejected"}`, false
	}

	cp.Boot()
	if cp.IsRegistered() {
		t.Error("a rejected boot must not register the charge point")
	}
	if cp.Scheduler().HeartbeatInterval() != before {
		t.Error("a rejected boot must not retune the heartbeat")
	}
}

func TestSendTimeoutOutcome(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	// no responder: the call runs into the timeout

	outcome := cp.Send(core.NewHeartbeatRequest(), &SendOptions{Timeout: 30 * time.Millisecond})
	if outcome.Kind != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s", outcome.Kind)
	}
	if outcome.Kind != "Server" {
		t.Errorf("timeout outcome must be the Server kind, got %s", outcome.Kind)
	}
	cp.mux.Lock()
	pending := len(cp.pendingRequests)
	cp.mux.Unlock()
	if pending != 0 {
		t.Error("pending request must be dropped on timeout")
	}
}

func TestSendErrorOutcome(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = func(action string) (string, bool) {
		return `{}`, true
	}

	outcome := cp.Heartbeat()
	if outcome.Kind != OutcomeError {
		t.Errorf("expected error outcome, got %s", outcome.Kind)
	}
}

func TestRemoteStartFlow(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = acceptingResponder

	transport.deliver(t, `[2,"10","RemoteStartTransaction",{"idTag":"tag1"}]`)
	reply := transport.lastReply(t, "10")
	if reply["status"] != "Accepted" {
		t.Fatalf("expected accepted, got %v", reply["status"])
	}

	snapshot, _ := cp.Connectors().Snapshot(1)
	if !snapshot.IsCharging {
		t.Fatal("connector must be charging after an accepted remote start")
	}
	if snapshot.ActiveTransactionId != -1 {
		t.Error("transaction id must stay unassigned until the queue is drained")
	}
	if cp.queue.Len() != 2 {
		t.Fatalf("expected StartTransaction and StatusNotification queued, got %d", cp.queue.Len())
	}

	cp.drainQueue()
	snapshot, _ = cp.Connectors().Snapshot(1)
	if snapshot.ActiveTransactionId != 55 {
		t.Errorf("expected committed transaction 55, got %d", snapshot.ActiveTransactionId)
	}
	if cp.queue.Len() != 0 {
		t.Errorf("queue must be drained, %d entries left", cp.queue.Len())
	}
}

func TestRemoteStartRejectedWhileCharging(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = acceptingResponder

	transport.deliver(t, `[2,"10","RemoteStartTransaction",{"idTag":"tag1"}]`)
	queued := cp.queue.Len()

	transport.deliver(t, `[2,"11","RemoteStartTransaction",{"idTag":"tag2"}]`)
	reply := transport.lastReply(t, "11")
	if reply["status"] != "Rejected" {
		t.Fatalf("expected rejected, got %v", reply["status"])
	}
	if cp.queue.Len() != queued {
		t.Error("a rejected start must not enqueue anything")
	}
}

func TestRemoteStopFlow(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = acceptingResponder

	transport.deliver(t, `[2,"10","RemoteStartTransaction",{"idTag":"tag1"}]`)
	cp.drainQueue()
	cp.Connectors().AdvanceMeter(1, 400)

	transport.deliver(t, `[2,"20","RemoteStopTransaction",{"transactionId":55}]`)
	reply := transport.lastReply(t, "20")
	if reply["status"] != "Accepted" {
		t.Fatalf("expected accepted, got %v", reply["status"])
	}
	snapshot, _ := cp.Connectors().Snapshot(1)
	if snapshot.IsCharging {
		t.Error("connector must stop charging")
	}
	if snapshot.MeterStop != 400 {
		t.Errorf("expected meter stop 400, got %d", snapshot.MeterStop)
	}
	cp.drainQueue()
	if cp.queue.Len() != 0 {
		t.Errorf("queue must be drained, %d entries left", cp.queue.Len())
	}
}

func TestRemoteStopUnknownTransactionRejected(t *testing.T) {
	transport := newFakeTransport("cp1")
	_ = newTestChargePoint(t, transport)

	transport.deliver(t, `[2,"20","RemoteStopTransaction",{"transactionId":999}]`)
	reply := transport.lastReply(t, "20")
	if reply["status"] != "Rejected" {
		t.Errorf("expected rejected, got %v", reply["status"])
	}
}

func TestChangeConfigurationRetunesHeartbeat(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)

	transport.deliver(t, `[2,"30","ChangeConfiguration",{"key":"HeartbeatInterval","value":"120"}]`)
	reply := transport.lastReply(t, "30")
	if reply["status"] != "Accepted" {
		t.Fatalf("expected accepted, got %v", reply["status"])
	}
	if cp.Scheduler().HeartbeatInterval() != 2*time.Minute {
		t.Errorf("expected 2m, got %s", cp.Scheduler().HeartbeatInterval())
	}
	value, _ := cp.Configuration().Value(KeyHeartbeatInterval)
	if value != "120" {
		t.Errorf("expected stored value 120, got %s", value)
	}
}

func TestChangeConfigurationReadOnlyRejected(t *testing.T) {
	transport := newFakeTransport("cp1")
	_ = newTestChargePoint(t, transport)

	transport.deliver(t, `[2,"31","ChangeConfiguration",{"key":"NumberOfConnectors","value":"9"}]`)
	reply := transport.lastReply(t, "31")
	if reply["status"] != "Rejected" {
		t.Errorf("expected rejected, got %v", reply["status"])
	}
}

func TestGetConfigurationReportsUnknownKeys(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	_ = cp

	transport.deliver(t, `[2,"32","GetConfiguration",{"key":["HeartbeatInterval","Bogus"]}]`)
	reply := transport.lastReply(t, "32")
	unknown, ok := reply["unknownKey"].([]interface{})
	if !ok || len(unknown) != 1 || unknown[0] != "Bogus" {
		t.Errorf("expected Bogus reported unknown, got %v", reply["unknownKey"])
	}
}

func TestTriggerHeartbeatEnqueues(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)

	transport.deliver(t, `[2,"40","TriggerMessage",{"requestedMessage":"Heartbeat"}]`)
	reply := transport.lastReply(t, "40")
	if reply["status"] != "Accepted" {
		t.Fatalf("expected accepted, got %v", reply["status"])
	}
	if cp.queue.Len() != 1 {
		t.Errorf("expected one queued heartbeat, got %d", cp.queue.Len())
	}
}

func TestTriggerUnknownMessageNotImplemented(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	_ = cp

	transport.deliver(t, `[2,"41","TriggerMessage",{"requestedMessage":"SomethingElse"}]`)
	reply := transport.lastReply(t, "41")
	if reply["status"] != "NotImplemented" {
		t.Errorf("expected not implemented, got %v", reply["status"])
	}
}

func TestStrayResultIsDropped(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	_ = cp

	// no pending request carries this id; the frame is dropped silently
	transport.deliver(t, `[3,"404",{"status":"Accepted"}]`)
	if transport.frameCount() != 0 {
		t.Error("a stray result must not produce a reply")
	}
}

func TestBootChargeStopLifecycle(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	transport.respond = acceptingResponder

	if outcome := cp.Boot(); !outcome.IsSuccess() {
		t.Fatalf("boot failed: %s: %s", outcome.Kind, outcome.Info)
	}
	if cp.Scheduler().HeartbeatInterval() < minHeartbeatInterval {
		t.Fatalf("heartbeat interval below floor: %s", cp.Scheduler().HeartbeatInterval())
	}

	transport.deliver(t, `[2,"60","RemoteStartTransaction",{"connectorId":1,"idTag":"ABC"}]`)
	if reply := transport.lastReply(t, "60"); reply["status"] != "Accepted" {
		t.Fatalf("remote start not accepted: %v", reply["status"])
	}
	cp.drainQueue()
	snapshot, _ := cp.Connectors().Snapshot(1)
	if !snapshot.IsCharging || snapshot.ActiveTransactionId != 55 {
		t.Fatalf("expected charging with transaction 55, got charging=%v tx=%d",
			snapshot.IsCharging, snapshot.ActiveTransactionId)
	}

	transport.deliver(t, `[2,"61","RemoteStopTransaction",{"transactionId":55}]`)
	if reply := transport.lastReply(t, "61"); reply["status"] != "Accepted" {
		t.Fatalf("remote stop not accepted: %v", reply["status"])
	}
	cp.drainQueue()
	snapshot, _ = cp.Connectors().Snapshot(1)
	if snapshot.IsCharging {
		t.Error("connector must be idle after the stop completes")
	}
}

func TestReservationRoundTrip(t *testing.T) {
	transport := newFakeTransport("cp1")
	cp := newTestChargePoint(t, transport)
	_ = cp

	transport.deliver(t, `[2,"50","ReserveNow",{"connectorId":1,"expiryDate":"2026-01-01T00:00:00Z","idTag":"tag1","reservationId":5}]`)
	reply := transport.lastReply(t, "50")
	if reply["status"] != "Accepted" {
		t.Fatalf("expected accepted, got %v", reply["status"])
	}

	transport.deliver(t, `[2,"51","CancelReservation",{"reservationId":5}]`)
	reply = transport.lastReply(t, "51")
	if reply["status"] != "Accepted" {
		t.Errorf("expected accepted, got %v", reply["status"])
	}

	transport.deliver(t, `[2,"52","CancelReservation",{"reservationId":5}]`)
	reply = transport.lastReply(t, "52")
	if reply["status"] != "Rejected" {
		t.Errorf("expected rejected for a cancelled reservation, got %v", reply["status"])
	}
}
