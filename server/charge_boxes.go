package server

import (
	"evgate/internal"
	"evgate/models"
	"fmt"
	"time"
)

var storeAcquireTimeout = 5 * time.Second

type StoreStatus string

const (
	StoreSuccess  StoreStatus = "Success"
	StoreFailed   StoreStatus = "Failed"
	StoreNotFound StoreStatus = "NotFound"
	StoreRejected StoreStatus = "Rejected"
)

// StoreResult is the uniform outcome of every charge box mutator; callers
// branch on Status, the store never panics or throws across its boundary.
type StoreResult struct {
	Status    StoreStatus
	ChargeBox *models.ChargeBox
	Info      string
	Err       error
}

// ChargeBoxListener receives a domain event after a mutation is committed.
type ChargeBoxListener func(operation string, chargeBox models.ChargeBox)

// ChargeBoxStore owns the charge box map of the operator layer. All access
// goes through a semaphore with a bounded wait; failing to acquire it in
// time is a recoverable Failed result, not a fatal error.
type ChargeBoxStore struct {
	sem       chan struct{}
	boxes     map[string]*models.ChargeBox
	database  internal.Database
	logger    internal.LogHandler
	listeners []ChargeBoxListener
}

func NewChargeBoxStore() *ChargeBoxStore {
	return &ChargeBoxStore{
		sem:   make(chan struct{}, 1),
		boxes: make(map[string]*models.ChargeBox),
	}
}

func (s *ChargeBoxStore) SetDatabase(database internal.Database) {
	s.database = database
}

func (s *ChargeBoxStore) SetLogger(logger internal.LogHandler) {
	s.logger = logger
}

func (s *ChargeBoxStore) AddListener(listener ChargeBoxListener) {
	s.listeners = append(s.listeners, listener)
}

func (s *ChargeBoxStore) acquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	case <-time.After(storeAcquireTimeout):
		return false
	}
}

func (s *ChargeBoxStore) release() {
	<-s.sem
}

func (s *ChargeBoxStore) failedToAcquire(operation string) StoreResult {
	err := fmt.Errorf("%s: charge box store is busy", operation)
	if s.logger != nil {
		s.logger.Error("charge box store", err)
	}
	return StoreResult{Status: StoreFailed, Info: "store lock not acquired", Err: err}
}

func (s *ChargeBoxStore) notify(operation string, chargeBox models.ChargeBox) {
	for _, listener := range s.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil && s.logger != nil {
					s.logger.Error("charge box listener", fmt.Errorf("%v", r))
				}
			}()
			listener(operation, chargeBox)
		}()
	}
}

// Load seeds the store from the database, when one is wired.
func (s *ChargeBoxStore) Load() error {
	if s.database == nil {
		return nil
	}
	if !s.acquire() {
		return fmt.Errorf("load: charge box store is busy")
	}
	defer s.release()
	boxes, err := s.database.GetChargeBoxes()
	if err != nil {
		return err
	}
	for i := range boxes {
		box := boxes[i]
		s.boxes[box.Id] = &box
	}
	return nil
}

func (s *ChargeBoxStore) Add(chargeBox *models.ChargeBox) StoreResult {
	if chargeBox == nil || chargeBox.Id == "" {
		return StoreResult{Status: StoreRejected, Info: "charge box id is empty"}
	}
	if !s.acquire() {
		return s.failedToAcquire("add")
	}
	defer s.release()
	if _, ok := s.boxes[chargeBox.Id]; ok {
		return StoreResult{Status: StoreRejected, Info: fmt.Sprintf("charge box %s already exists", chargeBox.Id)}
	}
	if s.database != nil {
		if err := s.database.AddChargeBox(chargeBox); err != nil {
			if s.logger != nil {
				s.logger.Error("add charge box", err)
			}
			return StoreResult{Status: StoreFailed, Err: err}
		}
	}
	s.boxes[chargeBox.Id] = chargeBox
	s.notify("Add", *chargeBox)
	return StoreResult{Status: StoreSuccess, ChargeBox: chargeBox}
}

func (s *ChargeBoxStore) Update(chargeBox *models.ChargeBox) StoreResult {
	if chargeBox == nil || chargeBox.Id == "" {
		return StoreResult{Status: StoreRejected, Info: "charge box id is empty"}
	}
	if !s.acquire() {
		return s.failedToAcquire("update")
	}
	defer s.release()
	if _, ok := s.boxes[chargeBox.Id]; !ok {
		return StoreResult{Status: StoreNotFound, Info: fmt.Sprintf("charge box %s not found", chargeBox.Id)}
	}
	if s.database != nil {
		if err := s.database.UpdateChargeBox(chargeBox); err != nil {
			if s.logger != nil {
				s.logger.Error("update charge box", err)
			}
			return StoreResult{Status: StoreFailed, Err: err}
		}
	}
	s.boxes[chargeBox.Id] = chargeBox
	s.notify("Update", *chargeBox)
	return StoreResult{Status: StoreSuccess, ChargeBox: chargeBox}
}

func (s *ChargeBoxStore) Delete(id string) StoreResult {
	if !s.acquire() {
		return s.failedToAcquire("delete")
	}
	defer s.release()
	chargeBox, ok := s.boxes[id]
	if !ok {
		return StoreResult{Status: StoreNotFound, Info: fmt.Sprintf("charge box %s not found", id)}
	}
	if s.database != nil {
		if err := s.database.DeleteChargeBox(id); err != nil {
			if s.logger != nil {
				s.logger.Error("delete charge box", err)
			}
			return StoreResult{Status: StoreFailed, Err: err}
		}
	}
	delete(s.boxes, id)
	s.notify("Delete", *chargeBox)
	return StoreResult{Status: StoreSuccess, ChargeBox: chargeBox}
}

func (s *ChargeBoxStore) Get(id string) StoreResult {
	if !s.acquire() {
		return s.failedToAcquire("get")
	}
	defer s.release()
	chargeBox, ok := s.boxes[id]
	if !ok {
		return StoreResult{Status: StoreNotFound, Info: fmt.Sprintf("charge box %s not found", id)}
	}
	copied := *chargeBox
	return StoreResult{Status: StoreSuccess, ChargeBox: &copied}
}

// TryGet returns the charge box when present; unlike Get, absence is not
// reported as a distinct status but as a plain boolean.
func (s *ChargeBoxStore) TryGet(id string) (*models.ChargeBox, bool) {
	result := s.Get(id)
	if result.Status != StoreSuccess {
		return nil, false
	}
	return result.ChargeBox, true
}

func (s *ChargeBoxStore) Exists(id string) bool {
	_, ok := s.TryGet(id)
	return ok
}

// Upsert registers the charge box if unknown; used by the boot notification
// path which accepts any station presenting itself.
func (s *ChargeBoxStore) Upsert(chargeBox *models.ChargeBox) StoreResult {
	if !s.acquire() {
		return s.failedToAcquire("upsert")
	}
	defer s.release()
	existing, ok := s.boxes[chargeBox.Id]
	if ok {
		existing.Model = chargeBox.Model
		existing.Vendor = chargeBox.Vendor
		existing.SerialNumber = chargeBox.SerialNumber
		existing.FirmwareVersion = chargeBox.FirmwareVersion
		if s.database != nil {
			if err := s.database.UpdateChargeBox(existing); err != nil && s.logger != nil {
				s.logger.Error("update charge box", err)
			}
		}
		s.notify("Update", *existing)
		return StoreResult{Status: StoreSuccess, ChargeBox: existing}
	}
	chargeBox.IsEnabled = true
	if s.database != nil {
		if err := s.database.AddChargeBox(chargeBox); err != nil && s.logger != nil {
			s.logger.Error("add charge box", err)
		}
	}
	s.boxes[chargeBox.Id] = chargeBox
	s.notify("Add", *chargeBox)
	return StoreResult{Status: StoreSuccess, ChargeBox: chargeBox}
}
