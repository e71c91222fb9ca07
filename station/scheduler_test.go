package station

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerEnforcesHeartbeatFloor(t *testing.T) {
	scheduler := NewScheduler(time.Second, &quietLogger{})
	if scheduler.HeartbeatInterval() != minHeartbeatInterval {
		t.Errorf("expected floor %s, got %s", minHeartbeatInterval, scheduler.HeartbeatInterval())
	}

	scheduler.SetHeartbeatInterval(time.Millisecond)
	if scheduler.HeartbeatInterval() != minHeartbeatInterval {
		t.Errorf("retune below the floor must clamp, got %s", scheduler.HeartbeatInterval())
	}

	scheduler.SetHeartbeatInterval(10 * time.Minute)
	if scheduler.HeartbeatInterval() != 10*time.Minute {
		t.Errorf("expected 10m, got %s", scheduler.HeartbeatInterval())
	}
}

func TestSchedulerRetunesRunningTicker(t *testing.T) {
	scheduler := NewScheduler(time.Hour, &quietLogger{})
	scheduler.SetHeartbeatTask(func() {})
	scheduler.Start()
	defer scheduler.Stop()

	// must not panic while the ticker is live
	scheduler.SetHeartbeatInterval(30 * time.Minute)
	if scheduler.HeartbeatInterval() != 30*time.Minute {
		t.Errorf("expected 30m, got %s", scheduler.HeartbeatInterval())
	}
}

func TestSchedulerMaintenanceTicks(t *testing.T) {
	original := defaultMaintenanceInterval
	defaultMaintenanceInterval = 5 * time.Millisecond
	defer func() { defaultMaintenanceInterval = original }()

	var ticks int64
	scheduler := NewScheduler(time.Hour, &quietLogger{})
	scheduler.SetMaintenanceTask(func() {
		atomic.AddInt64(&ticks, 1)
	})
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&ticks) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&ticks) < 2 {
		t.Error("maintenance task did not tick")
	}
}

func TestSchedulerDisabledTimerSkipsTask(t *testing.T) {
	original := defaultMaintenanceInterval
	defaultMaintenanceInterval = 5 * time.Millisecond
	defer func() { defaultMaintenanceInterval = original }()

	var ticks int64
	scheduler := NewScheduler(time.Hour, &quietLogger{})
	scheduler.SetMaintenanceTask(func() {
		atomic.AddInt64(&ticks, 1)
	})
	scheduler.EnableMaintenance(false)
	scheduler.Start()
	defer scheduler.Stop()

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt64(&ticks) != 0 {
		t.Error("disabled maintenance timer must not fire the task")
	}
}

func TestSchedulerRecoversPanickingTask(t *testing.T) {
	original := defaultMaintenanceInterval
	defaultMaintenanceInterval = 5 * time.Millisecond
	defer func() { defaultMaintenanceInterval = original }()

	var ticks int64
	scheduler := NewScheduler(time.Hour, &quietLogger{})
	scheduler.SetMaintenanceTask(func() {
		atomic.AddInt64(&ticks, 1)
		panic("tick blew up")
	})
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&ticks) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&ticks) < 2 {
		t.Error("a panicking task must not cancel future ticks")
	}
}
