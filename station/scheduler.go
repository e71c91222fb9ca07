package station

import (
	"evgate/internal"
	"fmt"
	"sync"
	"time"
)

const minHeartbeatInterval = 5 * time.Second

var defaultMaintenanceInterval = time.Second

// Scheduler drives the two periodic duties of a charge point: heartbeat
// emission and the outbound queue drain. Each timer has its own disabled
// flag, and a panic inside one tick never cancels future ticks.
type Scheduler struct {
	mux                  sync.Mutex
	heartbeatInterval    time.Duration
	heartbeatDisabled    bool
	maintenanceDisabled  bool
	heartbeatTask        func()
	maintenanceTask      func()
	heartbeatTicker      *time.Ticker
	maintenanceTicker    *time.Ticker
	stop                 chan struct{}
	stopOnce             sync.Once
	logger               internal.LogHandler
}

func NewScheduler(heartbeatInterval time.Duration, logger internal.LogHandler) *Scheduler {
	if heartbeatInterval < minHeartbeatInterval {
		heartbeatInterval = minHeartbeatInterval
	}
	return &Scheduler{
		heartbeatInterval: heartbeatInterval,
		stop:              make(chan struct{}),
		logger:            logger,
	}
}

func (s *Scheduler) SetHeartbeatTask(task func()) {
	s.heartbeatTask = task
}

func (s *Scheduler) SetMaintenanceTask(task func()) {
	s.maintenanceTask = task
}

func (s *Scheduler) HeartbeatInterval() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.heartbeatInterval
}

// SetHeartbeatInterval retunes the running heartbeat timer in place,
// enforcing the five second floor. Called when a BootNotification response
// confirms a different interval.
func (s *Scheduler) SetHeartbeatInterval(interval time.Duration) {
	if interval < minHeartbeatInterval {
		interval = minHeartbeatInterval
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.heartbeatInterval = interval
	if s.heartbeatTicker != nil {
		s.heartbeatTicker.Reset(interval)
	}
}

func (s *Scheduler) EnableHeartbeat(enabled bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.heartbeatDisabled = !enabled
}

func (s *Scheduler) EnableMaintenance(enabled bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.maintenanceDisabled = !enabled
}

func (s *Scheduler) Start() {
	s.mux.Lock()
	s.heartbeatTicker = time.NewTicker(s.heartbeatInterval)
	s.maintenanceTicker = time.NewTicker(defaultMaintenanceInterval)
	s.mux.Unlock()

	go func() {
		for {
			select {
			case <-s.heartbeatTicker.C:
				if !s.heartbeatEnabled() {
					continue
				}
				s.runGuarded("heartbeat", s.heartbeatTask)
			case <-s.stop:
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case <-s.maintenanceTicker.C:
				if !s.maintenanceEnabled() {
					continue
				}
				s.runGuarded("maintenance", s.maintenanceTask)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mux.Lock()
		if s.heartbeatTicker != nil {
			s.heartbeatTicker.Stop()
		}
		if s.maintenanceTicker != nil {
			s.maintenanceTicker.Stop()
		}
		s.mux.Unlock()
	})
}

func (s *Scheduler) heartbeatEnabled() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return !s.heartbeatDisabled
}

func (s *Scheduler) maintenanceEnabled() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return !s.maintenanceDisabled
}

func (s *Scheduler) runGuarded(name string, task func()) {
	if task == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error(fmt.Sprintf("%s tick failed", name), fmt.Errorf("%v", r))
		}
	}()
	task()
}
