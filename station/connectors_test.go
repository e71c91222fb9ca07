package station

import (
	"evgate/ocpp/core"
	"evgate/types"
	"testing"
	"time"
)

func intPtr(v int) *int {
	return &v
}

func TestConnectorManagerCount(t *testing.T) {
	manager := NewConnectorManager(2)
	if manager.Count() != 2 {
		t.Errorf("expected 2 connectors, got %d", manager.Count())
	}
	if _, ok := manager.Snapshot(0); !ok {
		t.Error("connector 0 must exist")
	}
}

func TestStartChargingExplicitConnector(t *testing.T) {
	manager := NewConnectorManager(2)
	connector, ok := manager.StartCharging(intPtr(2), "tag1", nil)
	if !ok {
		t.Fatal("expected start to be accepted")
	}
	if connector.Id != 2 {
		t.Errorf("expected connector 2, got %d", connector.Id)
	}
	snapshot, _ := manager.Snapshot(2)
	if !snapshot.IsCharging {
		t.Error("connector must be charging")
	}
	if snapshot.ActiveTransactionId != -1 {
		t.Error("transaction id must stay unassigned until the server confirms")
	}
}

func TestStartChargingResolvesSoleConnector(t *testing.T) {
	manager := NewConnectorManager(1)
	connector, ok := manager.StartCharging(nil, "tag1", nil)
	if !ok {
		t.Fatal("expected start on the sole connector")
	}
	if connector.Id != 1 {
		t.Errorf("expected connector 1, got %d", connector.Id)
	}
}

func TestStartChargingAmbiguousWithoutConnectorId(t *testing.T) {
	manager := NewConnectorManager(2)
	if _, ok := manager.StartCharging(nil, "tag1", nil); ok {
		t.Error("start without a connector id must fail on a multi connector point")
	}
}

func TestStartChargingRejectsDoubleStart(t *testing.T) {
	manager := NewConnectorManager(1)
	if _, ok := manager.StartCharging(intPtr(1), "tag1", nil); !ok {
		t.Fatal("first start must succeed")
	}
	if _, ok := manager.StartCharging(intPtr(1), "tag2", nil); ok {
		t.Error("second start on a charging connector must be rejected")
	}
}

func TestStartChargingRejectsInoperative(t *testing.T) {
	manager := NewConnectorManager(1)
	manager.ChangeAvailability(1, types.AvailabilityTypeInoperative)
	if _, ok := manager.StartCharging(intPtr(1), "tag1", nil); ok {
		t.Error("start on an inoperative connector must be rejected")
	}
}

func TestStartChargingRejectsConnectorZero(t *testing.T) {
	manager := NewConnectorManager(1)
	if _, ok := manager.StartCharging(intPtr(0), "tag1", nil); ok {
		t.Error("connector 0 never charges")
	}
}

func TestStopChargingRequiresMatchingTransaction(t *testing.T) {
	manager := NewConnectorManager(1)
	manager.StartCharging(intPtr(1), "tag1", nil)
	manager.CommitTransaction(1, 42, types.NewIdTagInfo(types.AuthorizationStatusAccepted))

	if _, ok := manager.StopCharging(7); ok {
		t.Error("stop with a foreign transaction id must fail")
	}
	snapshot, _ := manager.Snapshot(1)
	if !snapshot.IsCharging {
		t.Error("failed stop must not end the session")
	}

	connector, ok := manager.StopCharging(42)
	if !ok {
		t.Fatal("stop with the matching transaction id must succeed")
	}
	if connector.IsCharging {
		t.Error("connector must no longer charge")
	}
	if connector.ActiveTransactionId != -1 {
		t.Error("transaction id must be cleared")
	}

	if _, ok = manager.StopCharging(42); ok {
		t.Error("a second stop for the same transaction must fail")
	}
}

func TestCommitTransactionIgnoredAfterStop(t *testing.T) {
	manager := NewConnectorManager(1)
	manager.StartCharging(intPtr(1), "tag1", nil)
	manager.CommitTransaction(1, 42, nil)
	manager.StopCharging(42)

	// a late acknowledgement must not resurrect the session
	manager.CommitTransaction(1, 43, nil)
	snapshot, _ := manager.Snapshot(1)
	if snapshot.ActiveTransactionId != -1 {
		t.Error("late commit on an idle connector must be ignored")
	}
}

func TestMeterTracksChargedEnergy(t *testing.T) {
	manager := NewConnectorManager(1)
	manager.AdvanceMeter(1, 100)
	manager.StartCharging(intPtr(1), "tag1", nil)
	manager.CommitTransaction(1, 1, nil)
	manager.AdvanceMeter(1, 250)
	manager.AdvanceMeter(1, -50) // ignored
	connector, _ := manager.StopCharging(1)

	if connector.MeterStart != 100 {
		t.Errorf("expected meter start 100, got %d", connector.MeterStart)
	}
	if connector.MeterStop != 350 {
		t.Errorf("expected meter stop 350, got %d", connector.MeterStop)
	}
}

func TestReservationLifecycle(t *testing.T) {
	manager := NewConnectorManager(2)
	if manager.Reserve(0, 5, "tag1", time.Now()) {
		t.Error("connector 0 must not be reservable")
	}
	if !manager.Reserve(1, 5, "tag1", time.Now().Add(time.Hour)) {
		t.Fatal("expected reservation to be accepted")
	}
	snapshot, _ := manager.Snapshot(1)
	if !snapshot.IsReserved || snapshot.ReservationId != 5 {
		t.Error("reservation was not recorded")
	}

	if manager.CancelReservation(99) {
		t.Error("unknown reservation id must not cancel anything")
	}
	if !manager.CancelReservation(5) {
		t.Fatal("expected cancellation to succeed")
	}
	snapshot, _ = manager.Snapshot(1)
	if snapshot.IsReserved {
		t.Error("reservation was not cleared")
	}
}

func TestChangeAvailabilityUnknownConnector(t *testing.T) {
	manager := NewConnectorManager(1)
	if manager.ChangeAvailability(9, types.AvailabilityTypeInoperative) != core.AvailabilityStatusRejected {
		t.Error("unknown connector must be rejected")
	}
	if manager.ChangeAvailability(1, types.AvailabilityTypeInoperative) != core.AvailabilityStatusAccepted {
		t.Error("known connector must be accepted")
	}
}

func TestSetChargingProfileBroadcast(t *testing.T) {
	manager := NewConnectorManager(2)
	manager.StartCharging(intPtr(1), "tag1", nil)
	manager.CommitTransaction(1, 10, nil)

	// transaction bound profile only lands on the matching connector
	bound := &types.ChargingProfile{ChargingProfileId: 1, TransactionId: 10}
	if !manager.SetChargingProfile(0, bound) {
		t.Fatal("broadcast must be accepted")
	}
	first, _ := manager.Snapshot(1)
	second, _ := manager.Snapshot(2)
	if first.ChargingProfile == nil {
		t.Error("profile must land on the transaction's connector")
	}
	if second.ChargingProfile != nil {
		t.Error("profile must not land on unrelated connectors")
	}

	manager.ClearChargingProfiles()
	first, _ = manager.Snapshot(1)
	if first.ChargingProfile != nil {
		t.Error("profiles were not cleared")
	}
}

func TestUnlock(t *testing.T) {
	manager := NewConnectorManager(1)
	if manager.Unlock(1) != core.UnlockStatusUnlocked {
		t.Error("expected unlocked")
	}
	if manager.Unlock(0) != core.UnlockStatusUnlockFailed {
		t.Error("connector 0 must fail to unlock")
	}
	if manager.Unlock(9) != core.UnlockStatusUnlockFailed {
		t.Error("unknown connector must fail to unlock")
	}
}
