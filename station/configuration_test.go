package station

import (
	"evgate/ocpp/core"
	"testing"
)

func TestConfigurationGetAll(t *testing.T) {
	store := NewConfigurationStore(2, 600)
	known, unknown := store.Get(nil)
	if len(unknown) != 0 {
		t.Errorf("expected no unknown keys, got %v", unknown)
	}
	if len(known) != 7 {
		t.Errorf("expected 7 seeded entries, got %d", len(known))
	}
}

func TestConfigurationGetSelected(t *testing.T) {
	store := NewConfigurationStore(2, 600)
	known, unknown := store.Get([]string{KeyHeartbeatInterval, "NoSuchKey"})
	if len(known) != 1 || known[0].Key != KeyHeartbeatInterval {
		t.Fatalf("expected the heartbeat entry, got %v", known)
	}
	if *known[0].Value != "600" {
		t.Errorf("expected 600, got %s", *known[0].Value)
	}
	if len(unknown) != 1 || unknown[0] != "NoSuchKey" {
		t.Errorf("expected NoSuchKey to be reported unknown, got %v", unknown)
	}
}

func TestConfigurationReadonlyFlag(t *testing.T) {
	store := NewConfigurationStore(3, 600)
	known, _ := store.Get([]string{KeyNumberOfConnectors})
	if !known[0].Readonly {
		t.Error("NumberOfConnectors must report readonly")
	}
	if *known[0].Value != "3" {
		t.Errorf("expected 3, got %s", *known[0].Value)
	}
}

func TestChangeRejectsReadOnlyKey(t *testing.T) {
	store := NewConfigurationStore(1, 600)
	status := store.Change(KeyNumberOfConnectors, "99")
	if status != core.ConfigurationStatusRejected {
		t.Fatalf("expected rejected, got %s", status)
	}
	value, _ := store.Value(KeyNumberOfConnectors)
	if value != "1" {
		t.Errorf("rejected change must not mutate the value, got %s", value)
	}
}

func TestChangeAcceptsWritableKey(t *testing.T) {
	store := NewConfigurationStore(1, 600)
	status := store.Change(KeyHeartbeatInterval, "120")
	if status != core.ConfigurationStatusAccepted {
		t.Fatalf("expected accepted, got %s", status)
	}
	value, _ := store.Value(KeyHeartbeatInterval)
	if value != "120" {
		t.Errorf("expected 120, got %s", value)
	}
}

func TestChangeUnknownKeyCreatesEntry(t *testing.T) {
	store := NewConfigurationStore(1, 600)
	status := store.Change("VendorSpecific", "on")
	if status != core.ConfigurationStatusAccepted {
		t.Fatalf("expected accepted, got %s", status)
	}
	value, ok := store.Value("VendorSpecific")
	if !ok || value != "on" {
		t.Errorf("expected stored value on, got %s", value)
	}
	// the fresh entry is writable
	if store.Change("VendorSpecific", "off") != core.ConfigurationStatusAccepted {
		t.Error("fresh entry must accept further changes")
	}
}

func TestChangeRebootRequired(t *testing.T) {
	store := NewConfigurationStore(1, 600)
	status := store.Change(KeyAuthorizeRemoteTxRequests, "true")
	if status != core.ConfigurationStatusRebootRequired {
		t.Fatalf("expected reboot required, got %s", status)
	}
	value, _ := store.Value(KeyAuthorizeRemoteTxRequests)
	if value != "true" {
		t.Errorf("value must be applied even when a reboot is required, got %s", value)
	}
}
