package station

import (
	"evgate/ocpp/core"
	"strconv"
	"sync"
)

type AccessRights string

const (
	AccessReadOnly  AccessRights = "ReadOnly"
	AccessWriteOnly AccessRights = "WriteOnly"
	AccessReadWrite AccessRights = "ReadWrite"
)

// Standard configuration keys seeded at boot.
const (
	KeyHeartbeatInterval         = "HeartbeatInterval"
	KeyConnectionTimeOut         = "ConnectionTimeOut"
	KeyMeterValueSampleInterval  = "MeterValueSampleInterval"
	KeyNumberOfConnectors        = "NumberOfConnectors"
	KeySupportedFeatureProfiles  = "SupportedFeatureProfiles"
	KeyAuthorizeRemoteTxRequests = "AuthorizeRemoteTxRequests"
	KeyLocalAuthListEnabled      = "LocalAuthListEnabled"
)

type ConfigurationEntry struct {
	Key            string
	Value          string
	AccessRights   AccessRights
	RebootRequired bool
}

// ConfigurationStore holds the charge point's key/value configuration and
// gates ChangeConfiguration by per key access rights.
type ConfigurationStore struct {
	mux     sync.Mutex
	entries map[string]*ConfigurationEntry
}

func NewConfigurationStore(numberOfConnectors int, heartbeatInterval int) *ConfigurationStore {
	store := &ConfigurationStore{
		entries: make(map[string]*ConfigurationEntry),
	}
	store.seed(KeyHeartbeatInterval, strconv.Itoa(heartbeatInterval), AccessReadWrite, false)
	store.seed(KeyConnectionTimeOut, "60", AccessReadWrite, false)
	store.seed(KeyMeterValueSampleInterval, "60", AccessReadWrite, false)
	store.seed(KeyNumberOfConnectors, strconv.Itoa(numberOfConnectors), AccessReadOnly, false)
	store.seed(KeySupportedFeatureProfiles, "Core,FirmwareManagement,LocalAuthListManagement,RemoteTrigger,Reservation,SmartCharging", AccessReadOnly, false)
	store.seed(KeyAuthorizeRemoteTxRequests, "false", AccessReadWrite, true)
	store.seed(KeyLocalAuthListEnabled, "true", AccessReadWrite, false)
	return store
}

func (s *ConfigurationStore) seed(key, value string, rights AccessRights, rebootRequired bool) {
	s.entries[key] = &ConfigurationEntry{
		Key:            key,
		Value:          value,
		AccessRights:   rights,
		RebootRequired: rebootRequired,
	}
}

// Get returns the readable entries for the requested keys and the list of
// unknown ones. An empty key list reports the whole store. WriteOnly values
// are never exposed.
func (s *ConfigurationStore) Get(keys []string) ([]core.ConfigurationKey, []string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	var known []core.ConfigurationKey
	var unknown []string
	if len(keys) == 0 {
		for _, entry := range s.entries {
			known = append(known, s.exportEntry(entry))
		}
		return known, nil
	}
	for _, key := range keys {
		entry, ok := s.entries[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		known = append(known, s.exportEntry(entry))
	}
	return known, unknown
}

func (s *ConfigurationStore) exportEntry(entry *ConfigurationEntry) core.ConfigurationKey {
	readonly := entry.AccessRights == AccessReadOnly
	key := core.ConfigurationKey{
		Key:      entry.Key,
		Readonly: readonly,
	}
	if entry.AccessRights != AccessWriteOnly {
		value := entry.Value
		key.Value = &value
	}
	return key
}

// Change applies a ChangeConfiguration request. A ReadOnly key is never
// mutated; an unknown key becomes a fresh ReadWrite entry.
func (s *ConfigurationStore) Change(key, value string) core.ConfigurationStatus {
	s.mux.Lock()
	defer s.mux.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		s.seed(key, value, AccessReadWrite, false)
		return core.ConfigurationStatusAccepted
	}
	if entry.AccessRights == AccessReadOnly {
		return core.ConfigurationStatusRejected
	}
	entry.Value = value
	if entry.RebootRequired {
		return core.ConfigurationStatusRebootRequired
	}
	return core.ConfigurationStatusAccepted
}

// Value reads one entry's value directly; used by the facade for its own
// settings such as the heartbeat interval.
func (s *ConfigurationStore) Value(key string) (string, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	return entry.Value, true
}
