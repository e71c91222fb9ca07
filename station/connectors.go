package station

import (
	"evgate/ocpp/core"
	"evgate/types"
	"sync"
	"time"
)

// Connector is one physical connector of the charge point. Connector 0
// stands for the whole charge point and never carries a transaction.
type Connector struct {
	Id                  int
	Availability        types.AvailabilityType
	IsReserved          bool
	ReservationId       int
	ReservationIdTag    string
	ReservationExpiry   time.Time
	IsCharging          bool
	ActiveIdTag         string
	ActiveIdTagInfo     *types.IdTagInfo
	ActiveTransactionId int
	ChargingProfile     *types.ChargingProfile
	StartTimestamp      time.Time
	MeterStart          int
	StopTimestamp       time.Time
	MeterStop           int
	CurrentMeter        int
}

func newConnector(id int) *Connector {
	return &Connector{
		Id:                  id,
		Availability:        types.AvailabilityTypeOperative,
		ActiveTransactionId: -1,
	}
}

// ConnectorManager owns all connector state of one charge point. Every
// mutation happens under the manager's lock; the transaction lifecycle
// invariants (no double start, stop only with a matching transaction id)
// are enforced here.
type ConnectorManager struct {
	mux        sync.Mutex
	connectors map[int]*Connector
}

func NewConnectorManager(count int) *ConnectorManager {
	m := &ConnectorManager{
		connectors: make(map[int]*Connector),
	}
	for id := 0; id <= count; id++ {
		m.connectors[id] = newConnector(id)
	}
	return m
}

// Snapshot returns a copy of one connector's state.
func (m *ConnectorManager) Snapshot(id int) (Connector, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	connector, ok := m.connectors[id]
	if !ok {
		return Connector{}, false
	}
	return *connector, true
}

func (m *ConnectorManager) Count() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	// connector 0 is the charge point itself
	return len(m.connectors) - 1
}

func (m *ConnectorManager) ChangeAvailability(id int, availability types.AvailabilityType) core.AvailabilityStatus {
	m.mux.Lock()
	defer m.mux.Unlock()
	connector, ok := m.connectors[id]
	if !ok {
		return core.AvailabilityStatusRejected
	}
	connector.Availability = availability
	return core.AvailabilityStatusAccepted
}

// Reserve marks the connector reserved. No conflict check against an
// existing reservation or a running transaction is performed, matching the
// reference behavior of the upstream protocol handler.
func (m *ConnectorManager) Reserve(id int, reservationId int, idTag string, expiry time.Time) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	connector, ok := m.connectors[id]
	if !ok || id == 0 {
		return false
	}
	connector.IsReserved = true
	connector.ReservationId = reservationId
	connector.ReservationIdTag = idTag
	connector.ReservationExpiry = expiry
	return true
}

func (m *ConnectorManager) CancelReservation(reservationId int) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	for _, connector := range m.connectors {
		if connector.IsReserved && connector.ReservationId == reservationId {
			connector.IsReserved = false
			connector.ReservationId = 0
			connector.ReservationIdTag = ""
			return true
		}
	}
	return false
}

// resolve finds the target of a remote start: the named connector, or the
// sole connector when none was named. Caller must hold m.mux.
func (m *ConnectorManager) resolve(id *int) *Connector {
	if id != nil {
		connector, ok := m.connectors[*id]
		if !ok || connector.Id == 0 {
			return nil
		}
		return connector
	}
	if len(m.connectors) == 2 {
		for _, connector := range m.connectors {
			if connector.Id != 0 {
				return connector
			}
		}
	}
	return nil
}

// StartCharging moves the resolved connector into the charging state. The
// transaction id is assigned later, once the enqueued StartTransaction is
// acknowledged by the central system.
func (m *ConnectorManager) StartCharging(id *int, idTag string, profile *types.ChargingProfile) (*Connector, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	connector := m.resolve(id)
	if connector == nil || connector.IsCharging || connector.Availability == types.AvailabilityTypeInoperative {
		return nil, false
	}
	connector.IsCharging = true
	connector.ActiveIdTag = idTag
	connector.ActiveTransactionId = -1
	connector.ChargingProfile = profile
	connector.StartTimestamp = time.Now()
	connector.MeterStart = connector.CurrentMeter
	return connector, true
}

// CommitTransaction attaches the server assigned transaction id once the
// StartTransaction round trip finishes.
func (m *ConnectorManager) CommitTransaction(connectorId int, transactionId int, idTagInfo *types.IdTagInfo) {
	m.mux.Lock()
	defer m.mux.Unlock()
	connector, ok := m.connectors[connectorId]
	if !ok || !connector.IsCharging {
		return
	}
	connector.ActiveTransactionId = transactionId
	connector.ActiveIdTagInfo = idTagInfo
}

// StopCharging ends the transaction carrying the given id. Fails when no
// charging connector holds that id.
func (m *ConnectorManager) StopCharging(transactionId int) (*Connector, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	for _, connector := range m.connectors {
		if connector.IsCharging && connector.ActiveTransactionId == transactionId {
			connector.IsCharging = false
			connector.StopTimestamp = time.Now()
			connector.MeterStop = connector.CurrentMeter
			connector.ActiveIdTag = ""
			connector.ActiveIdTagInfo = nil
			connector.ActiveTransactionId = -1
			return connector, true
		}
	}
	return nil, false
}

// SetChargingProfile applies a profile. Connector 0 broadcasts: every
// connector takes the profile when it carries no transaction id, otherwise
// only connectors running that transaction.
func (m *ConnectorManager) SetChargingProfile(id int, profile *types.ChargingProfile) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	if id == 0 {
		for _, connector := range m.connectors {
			if connector.Id == 0 {
				continue
			}
			if profile.TransactionId != 0 && connector.ActiveTransactionId != profile.TransactionId {
				continue
			}
			connector.ChargingProfile = profile
		}
		return true
	}
	connector, ok := m.connectors[id]
	if !ok {
		return false
	}
	connector.ChargingProfile = profile
	return true
}

func (m *ConnectorManager) ClearChargingProfiles() {
	m.mux.Lock()
	defer m.mux.Unlock()
	for _, connector := range m.connectors {
		connector.ChargingProfile = nil
	}
}

func (m *ConnectorManager) Unlock(id int) core.UnlockStatus {
	m.mux.Lock()
	defer m.mux.Unlock()
	_, ok := m.connectors[id]
	if !ok || id == 0 {
		return core.UnlockStatusUnlockFailed
	}
	return core.UnlockStatusUnlocked
}

// AdvanceMeter adds consumed energy to the connector's meter counter; the
// counter only grows.
func (m *ConnectorManager) AdvanceMeter(id int, wh int) {
	if wh < 0 {
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	connector, ok := m.connectors[id]
	if ok {
		connector.CurrentMeter += wh
	}
}
