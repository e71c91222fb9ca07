package server

import (
	"encoding/json"
	"errors"
	"evgate/internal"
	"evgate/internal/config"
	"evgate/ocpp/core"
	"sync"
	"testing"
	"time"
)

var errWrite = errors.New("write failed")

type recordingObserver struct {
	mu        sync.Mutex
	requests  []*internal.CallEvent
	responses []*internal.CallEvent
}

func (o *recordingObserver) OnRequest(event *internal.CallEvent) {
	o.mu.Lock()
	o.requests = append(o.requests, event)
	o.mu.Unlock()
}

func (o *recordingObserver) OnResponse(event *internal.CallEvent) {
	o.mu.Lock()
	o.responses = append(o.responses, event)
	o.mu.Unlock()
}

func (o *recordingObserver) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.requests), len(o.responses)
}

func newTestCentralSystem() *CentralSystem {
	logger := &noopLogger{}
	cs := &CentralSystem{
		pendingRequests: make(map[string]chan *RawResult),
		defaultTimeout:  defaultRequestTimeout,
		logger:          logger,
		observers:       internal.NewObserverList(logger),
	}
	store := NewChargeBoxStore()
	store.SetLogger(logger)
	cs.chargeBoxes = store
	handler := NewSystemHandler(store)
	handler.SetLogger(logger)
	cs.SetCoreHandler(handler)
	cs.dispatch = NewDispatchTable()
	cs.registerHandlers()
	cs.server = NewServer(&config.Config{}, logger)
	return cs
}

func pendingCount(cs *CentralSystem) int {
	cs.mux.Lock()
	defer cs.mux.Unlock()
	return len(cs.pendingRequests)
}

// frameUniqueId extracts the correlation id of the last frame written to
// the fake connection. Safe to call from helper goroutines.
func frameUniqueId(conn *fakeConn) string {
	data := conn.messageAt(conn.messageCount() - 1)
	if data == nil {
		return ""
	}
	var fields []interface{}
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 4 {
		return ""
	}
	id, _ := fields[1].(string)
	return id
}

func TestSendUnreachableShortCircuits(t *testing.T) {
	cs := newTestCentralSystem()
	observer := &recordingObserver{}
	cs.Subscribe(observer)

	outcome := cs.Reset("ghost", core.ResetTypeSoft, nil)
	if outcome.Kind != OutcomeUnreachable {
		t.Fatalf("expected unreachable, got %s", outcome.Kind)
	}
	if outcome.Info != "Unknown or unreachable charge box" {
		t.Errorf("unexpected info: %s", outcome.Info)
	}
	if pendingCount(cs) != 0 {
		t.Error("no pending request may be registered for an unreachable target")
	}
	requests, responses := observer.counts()
	if requests != 1 || responses != 1 {
		t.Errorf("expected 1 request and 1 response event, got %d and %d", requests, responses)
	}
}

func TestSendUnreachableWhenConnectionClosed(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	cs.server.Registry().Touch("cb1", conn)
	conn.close()

	outcome := cs.Reset("cb1", core.ResetTypeSoft, nil)
	if outcome.Kind != OutcomeUnreachable {
		t.Fatalf("expected unreachable, got %s", outcome.Kind)
	}
	if conn.messageCount() != 0 {
		t.Error("no frame may be written to a closed connection")
	}
}

func TestSendTimeout(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	cs.server.Registry().Touch("cb1", conn)

	outcome := cs.Reset("cb1", core.ResetTypeSoft, &CallOptions{Timeout: 30 * time.Millisecond})
	if outcome.Kind != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s", outcome.Kind)
	}
	if outcome.Kind != "Server" {
		t.Errorf("timeout outcome must be the Server kind, got %s", outcome.Kind)
	}
	if pendingCount(cs) != 0 {
		t.Error("pending request must be dropped on timeout")
	}
	if conn.messageCount() != 1 {
		t.Errorf("expected exactly one frame written, got %d", conn.messageCount())
	}
}

func TestSendSuccessRoundTrip(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	cs.server.Registry().Touch("cb1", conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			if conn.messageCount() > 0 {
				cs.deliverResult(&RawResult{
					TypeId:   CallTypeResult,
					UniqueId: frameUniqueId(conn),
					Payload:  `{"status":"Accepted"}`,
				})
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	outcome := cs.RemoteStopTransaction("cb1", 7, &CallOptions{Timeout: time.Second})
	<-done
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Kind, outcome.Info)
	}
	var response core.RemoteStopTransactionResponse
	if err := json.Unmarshal([]byte(outcome.Payload), &response); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if response.Status != "Accepted" {
		t.Errorf("expected Accepted, got %s", response.Status)
	}
	if pendingCount(cs) != 0 {
		t.Error("pending request must be cleared after delivery")
	}
}

func TestSendErrorResult(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	cs.server.Registry().Touch("cb1", conn)

	go func() {
		for i := 0; i < 100; i++ {
			if conn.messageCount() > 0 {
				cs.deliverResult(&RawResult{
					TypeId:   CallTypeError,
					UniqueId: frameUniqueId(conn),
					Payload:  `{}`,
				})
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	outcome := cs.ClearCache("cb1", &CallOptions{Timeout: time.Second})
	if outcome.Kind != OutcomeError {
		t.Fatalf("expected error outcome, got %s", outcome.Kind)
	}
}

func TestSendWriteFailure(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	conn.writeErr = errWrite
	cs.server.Registry().Touch("cb1", conn)

	outcome := cs.Reset("cb1", core.ResetTypeSoft, nil)
	if outcome.Kind != OutcomeFailed {
		t.Fatalf("expected failed, got %s", outcome.Kind)
	}
	if pendingCount(cs) != 0 {
		t.Error("pending request must be dropped on write failure")
	}
}

func TestHandleIncomingBootNotification(t *testing.T) {
	cs := newTestCentralSystem()
	observer := &recordingObserver{}
	cs.Subscribe(observer)

	conn := newFakeConn("cb1")
	raw := []byte(`[2,"55","BootNotification",{"chargePointVendor":"vendor","chargePointModel":"model"}]`)
	if err := cs.handleIncomingMessage(conn, raw); err != nil {
		t.Fatalf("handle incoming: %v", err)
	}

	if !cs.chargeBoxes.Exists("cb1") {
		t.Error("boot notification was not dispatched")
	}
	if conn.messageCount() != 1 {
		t.Fatalf("expected one reply frame, got %d", conn.messageCount())
	}
	var fields []interface{}
	if err := json.Unmarshal(conn.messageAt(0), &fields); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if fields[0].(float64) != 3 || fields[1].(string) != "55" {
		t.Errorf("expected call result for id 55, got %v", fields)
	}
	requests, responses := observer.counts()
	if requests != 1 || responses != 1 {
		t.Errorf("expected 1 request and 1 response event, got %d and %d", requests, responses)
	}
}

func TestHandleIncomingClosedConnectionSkipsReply(t *testing.T) {
	cs := newTestCentralSystem()

	// closed socket: the dispatch still runs, only the reply is skipped
	conn := newFakeConn("cb1")
	conn.close()
	raw := []byte(`[2,"56","BootNotification",{"chargePointVendor":"vendor","chargePointModel":"model"}]`)
	if err := cs.handleIncomingMessage(conn, raw); err != nil {
		t.Fatalf("handle incoming: %v", err)
	}
	if !cs.chargeBoxes.Exists("cb1") {
		t.Error("boot notification was not dispatched")
	}
	if conn.messageCount() != 0 {
		t.Errorf("expected no reply on a closed connection, got %d frames", conn.messageCount())
	}
}

func TestHandleIncomingUnknownActionRepliesNotImplemented(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")

	raw := []byte(`[2,"77","FancyAction",{}]`)
	if err := cs.handleIncomingMessage(conn, raw); err != nil {
		t.Fatalf("handle incoming: %v", err)
	}
	if conn.messageCount() != 1 {
		t.Fatalf("expected a call error reply, got %d frames", conn.messageCount())
	}
	var fields []interface{}
	if err := json.Unmarshal(conn.messageAt(0), &fields); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if fields[0].(float64) != 4 {
		t.Fatalf("expected call error frame, got type %v", fields[0])
	}
	if fields[1].(string) != "77" {
		t.Errorf("expected correlation id 77, got %v", fields[1])
	}
	if fields[2].(string) != errorCodeNotImplemented {
		t.Errorf("expected %s, got %v", errorCodeNotImplemented, fields[2])
	}
}

func TestHandleIncomingResultWithoutPending(t *testing.T) {
	cs := newTestCentralSystem()
	conn := newFakeConn("cb1")
	// a stray result for an unknown correlation id is dropped silently
	if err := cs.handleIncomingMessage(conn, []byte(`[3,"404",{}]`)); err != nil {
		t.Fatalf("handle incoming: %v", err)
	}
	if conn.messageCount() != 0 {
		t.Error("a stray result must not produce a reply")
	}
}
