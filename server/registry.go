package server

import (
	"evgate/metrics/counters"
	"sync"
	"time"
)

// Connection is the transport handle the registry tracks for every
// reachable charge point. The websocket listener provides the production
// implementation.
type Connection interface {
	ID() string
	IsClosed() bool
	WriteMessage(data []byte) error
}

// ReachabilityRecord binds a charge point id to its live connection and the
// time of the last inbound activity.
type ReachabilityRecord struct {
	Connection Connection
	LastSeen   time.Time
}

// Registry tracks which charge points are currently reachable and over which
// connection. A reconnect overwrites the stale record, last writer wins.
type Registry struct {
	mu      sync.Mutex
	records map[string]*ReachabilityRecord
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*ReachabilityRecord),
	}
}

// Touch inserts or refreshes the reachability record; called on every new
// connection and on every inbound message.
func (r *Registry) Touch(chargePointId string, connection Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[chargePointId]
	if ok && record.Connection == connection {
		record.LastSeen = time.Now()
		return
	}
	r.records[chargePointId] = &ReachabilityRecord{
		Connection: connection,
		LastSeen:   time.Now(),
	}
	counters.ObserveConnections(len(r.records))
}

// Resolve returns the live connection of a charge point, or false when the
// charge point is unknown or its connection is gone. Never blocks on I/O.
func (r *Registry) Resolve(chargePointId string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[chargePointId]
	if !ok || record.Connection == nil || record.Connection.IsClosed() {
		return nil, false
	}
	return record.Connection, true
}

// LastSeen reports the time of the last inbound activity of a charge point.
func (r *Registry) LastSeen(chargePointId string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[chargePointId]
	if !ok {
		return time.Time{}, false
	}
	return record.LastSeen, true
}

// Drop removes the record, but only if it still points at the given
// connection; a record refreshed by a reconnect stays untouched.
func (r *Registry) Drop(chargePointId string, connection Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[chargePointId]
	if ok && record.Connection == connection {
		delete(r.records, chargePointId)
		counters.ObserveConnections(len(r.records))
	}
}
