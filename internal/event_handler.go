package internal

import (
	"fmt"
	"sync"
	"time"
)

type EventMessage struct {
	Type          string      `json:"type" bson:"type"`
	ChargePointId string      `json:"charge_point_id" bson:"charge_point_id"`
	ConnectorId   int         `json:"connector_id" bson:"connector_id"`
	Time          time.Time   `json:"time" bson:"time"`
	IdTag         string      `json:"id_tag" bson:"id_tag"`
	TransactionId int         `json:"transaction_id" bson:"transaction_id"`
	Status        string      `json:"status" bson:"status"`
	Info          string      `json:"info" bson:"info"`
	Payload       interface{} `json:"payload" bson:"payload"`
}

type EventHandler interface {
	OnStatusNotification(event *EventMessage)
	OnTransactionStart(event *EventMessage)
	OnTransactionStop(event *EventMessage)
	OnAuthorize(event *EventMessage)
}

// CallEvent describes one request/response exchange for observability subscribers.
// A Request event fires before the payload is sent, a Response event after the
// reply (or its synthesized failure) is available.
type CallEvent struct {
	TrackingId    string
	ChargePointId string
	Feature       string
	Time          time.Time
	Elapsed       time.Duration
	Outcome       string
	Payload       interface{}
}

type CallObserver interface {
	OnRequest(event *CallEvent)
	OnResponse(event *CallEvent)
}

// ObserverList is a registrable set of call observers. A panic in one
// subscriber is recovered and logged; it never reaches the protocol path
// and never stops delivery to the remaining subscribers.
type ObserverList struct {
	mux       sync.Mutex
	observers []CallObserver
	logger    LogHandler
}

func NewObserverList(logger LogHandler) *ObserverList {
	return &ObserverList{logger: logger}
}

func (l *ObserverList) Subscribe(observer CallObserver) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.observers = append(l.observers, observer)
}

func (l *ObserverList) NotifyRequest(event *CallEvent) {
	for _, observer := range l.snapshot() {
		l.notify(func() { observer.OnRequest(event) })
	}
}

func (l *ObserverList) NotifyResponse(event *CallEvent) {
	for _, observer := range l.snapshot() {
		l.notify(func() { observer.OnResponse(event) })
	}
}

func (l *ObserverList) snapshot() []CallObserver {
	l.mux.Lock()
	defer l.mux.Unlock()
	observers := make([]CallObserver, len(l.observers))
	copy(observers, l.observers)
	return observers
}

func (l *ObserverList) notify(deliver func()) {
	defer func() {
		if r := recover(); r != nil {
			if l.logger != nil {
				l.logger.Error("call observer failed", fmt.Errorf("%v", r))
			}
		}
	}()
	deliver()
}
