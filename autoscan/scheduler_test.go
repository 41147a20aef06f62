package autoscan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/types"
)

// fakeBackend lets tests swap the device snapshot between ticks and block a
// fetch mid-flight to exercise the teardown discard path.
type fakeBackend struct {
	mu            sync.Mutex
	devices       []types.Device
	logs          []types.LogEntry
	deviceFetches int
	startCalls    int
	stopCalls     int
	status        types.AutoScanConfig
	blockFetch    chan struct{} // when non-nil, FetchDevices waits on it
}

func (f *fakeBackend) setDevices(d []types.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = d
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deviceFetches
}

func (f *fakeBackend) FetchDevices(ctx context.Context) ([]types.Device, error) {
	f.mu.Lock()
	f.deviceFetches++
	gate := f.blockFetch
	out := append([]types.Device(nil), f.devices...)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return out, nil
}

func (f *fakeBackend) FetchLogs(ctx context.Context) ([]types.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.LogEntry(nil), f.logs...), nil
}

func (f *fakeBackend) BeginScan(ctx context.Context) error          { return nil }
func (f *fakeBackend) ForceScan(ctx context.Context) error          { return nil }
func (f *fakeBackend) ScanStatus(ctx context.Context) (bool, error) { return false, nil }
func (f *fakeBackend) ToggleBlock(ctx context.Context, mac string) (bool, error) {
	return false, nil
}
func (f *fakeBackend) SetNickname(ctx context.Context, mac, nickname string) error {
	return nil
}
func (f *fakeBackend) PanicLock(ctx context.Context) (string, error)   { return "", nil }
func (f *fakeBackend) PanicUnlock(ctx context.Context) (string, error) { return "", nil }

func (f *fakeBackend) StartAutoScan(ctx context.Context, intervalMinutes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	return nil
}

func (f *fakeBackend) StopAutoScan(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return nil
}

func (f *fakeBackend) SetAutoScanInterval(ctx context.Context, intervalMinutes int) error {
	return nil
}

func (f *fakeBackend) AutoScanStatus(ctx context.Context) (types.AutoScanConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func newTestScheduler(f *fakeBackend, interval time.Duration) (*Scheduler, *store.Inventory) {
	inv := store.NewInventory()
	r := &refresh.Refresher{Backend: f, Inventory: inv, Log: store.NewEventLog()}
	return NewScheduler(f, r, interval), inv
}

func waitFor(t *testing.T, within time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Condition not met in time")
}

func TestStartRunsRefreshLoop(t *testing.T) {
	f := &fakeBackend{devices: []types.Device{{MAC: "aa:bb", IP: "10.0.0.1"}}}
	s, inv := newTestScheduler(f, 5*time.Millisecond)
	defer s.Close()

	if err := s.Start(5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.Status().Enabled {
		t.Fatal("Status should report enabled")
	}

	waitFor(t, time.Second, func() bool { return inv.Count() == 1 })

	// A changed snapshot lands on a later tick.
	f.setDevices([]types.Device{
		{MAC: "aa:bb", IP: "10.0.0.1"},
		{MAC: "cc:dd", IP: "10.0.0.2"},
	})
	waitFor(t, time.Second, func() bool { return inv.Count() == 2 })
}

func TestStartWhileEnabledIsNoOp(t *testing.T) {
	f := &fakeBackend{}
	s, _ := newTestScheduler(f, time.Hour)
	defer s.Close()

	if err := s.Start(5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(10); err != nil {
		t.Fatalf("Second start should be a silent no-op, got %v", err)
	}
	if f.startCalls != 1 {
		t.Errorf("Second start must not reach the backend, startCalls=%d", f.startCalls)
	}
	if got := s.Status().IntervalMinutes; got != 5 {
		t.Errorf("Interval must keep the original value, got %d", got)
	}
}

func TestStartRejectsOutOfRangeInterval(t *testing.T) {
	f := &fakeBackend{}
	s, _ := newTestScheduler(f, time.Hour)
	defer s.Close()

	if err := s.Start(0); err == nil {
		t.Error("Interval below the minimum must be rejected")
	}
	if err := s.Start(61); err == nil {
		t.Error("Interval above the maximum must be rejected")
	}
	if f.startCalls != 0 {
		t.Errorf("Rejected start must not reach the backend, startCalls=%d", f.startCalls)
	}
}

func TestStopHaltsFetches(t *testing.T) {
	f := &fakeBackend{devices: []types.Device{{MAC: "aa:bb"}}}
	s, _ := newTestScheduler(f, 5*time.Millisecond)

	if err := s.Start(5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, time.Second, func() bool { return f.fetchCount() >= 2 })

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.Status().Enabled {
		t.Error("Status should report disabled after stop")
	}
	if f.stopCalls != 1 {
		t.Errorf("Stop must reach the backend once, stopCalls=%d", f.stopCalls)
	}

	settled := f.fetchCount()
	time.Sleep(40 * time.Millisecond)
	if got := f.fetchCount(); got != settled {
		t.Errorf("Fetches continued after stop: %d -> %d", settled, got)
	}
}

func TestStopDiscardsInFlightFetch(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeBackend{
		devices:    []types.Device{{MAC: "aa:bb"}},
		blockFetch: gate,
	}
	s, inv := newTestScheduler(f, 5*time.Millisecond)

	if err := s.Start(5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// Wait until a fetch is parked on the gate, then tear down underneath it.
	waitFor(t, time.Second, func() bool { return f.fetchCount() >= 1 })
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	close(gate)

	time.Sleep(40 * time.Millisecond)
	if inv.Count() != 0 {
		t.Error("A fetch completing after teardown must be discarded, not applied")
	}
}

func TestSyncFromBackendResumesLoop(t *testing.T) {
	f := &fakeBackend{
		devices: []types.Device{{MAC: "aa:bb"}},
		status:  types.AutoScanConfig{Enabled: true, IntervalMinutes: 10},
	}
	s, inv := newTestScheduler(f, 5*time.Millisecond)
	defer s.Close()

	if err := s.SyncFromBackend(context.Background()); err != nil {
		t.Fatalf("SyncFromBackend failed: %v", err)
	}
	if got := s.Status(); !got.Enabled || got.IntervalMinutes != 10 {
		t.Fatalf("Mirror not synced: %+v", got)
	}
	if f.startCalls != 0 {
		t.Error("Resuming must not re-issue a backend start")
	}
	waitFor(t, time.Second, func() bool { return inv.Count() == 1 })
}
