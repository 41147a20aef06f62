package mutate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/types"
)

type fakeBackend struct {
	mu          sync.Mutex
	toggleErr   error
	toggleState bool
	toggleCalls int
	panicCalls  int
	unlockCalls int
	gate        chan struct{} // when non-nil, ToggleBlock/PanicLock wait on it
	logs        []types.LogEntry
	devices     []types.Device
}

func (f *fakeBackend) FetchDevices(ctx context.Context) ([]types.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Device(nil), f.devices...), nil
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
	f.mu.Lock()
	f.toggleCalls++
	gate := f.gate
	err := f.toggleErr
	state := f.toggleState
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return state, err
}

func (f *fakeBackend) SetNickname(ctx context.Context, mac, nickname string) error {
	return nil
}

func (f *fakeBackend) PanicLock(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.panicCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return "All devices blocked", nil
}

func (f *fakeBackend) PanicUnlock(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlockCalls++
	return "All devices unblocked", nil
}

func (f *fakeBackend) StartAutoScan(ctx context.Context, intervalMinutes int) error {
	return nil
}
func (f *fakeBackend) StopAutoScan(ctx context.Context) error { return nil }
func (f *fakeBackend) SetAutoScanInterval(ctx context.Context, intervalMinutes int) error {
	return nil
}
func (f *fakeBackend) AutoScanStatus(ctx context.Context) (types.AutoScanConfig, error) {
	return types.AutoScanConfig{}, nil
}

func newTestCoordinator(f *fakeBackend) (*Coordinator, *store.Inventory, *store.EventLog) {
	inv := store.NewInventory()
	l := store.NewEventLog()
	r := &refresh.Refresher{Backend: f, Inventory: inv, Log: l}
	return NewCoordinator(f, inv, r), inv, l
}

func seed(inv *store.Inventory) {
	inv.ReplaceAll([]types.Device{
		{MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.0.1", Hostname: "printer"},
		{MAC: "aa:bb:cc:dd:ee:02", IP: "10.0.0.2", Hostname: "nas"},
	})
}

func TestToggleAppliesConfirmedState(t *testing.T) {
	f := &fakeBackend{toggleState: true, logs: []types.LogEntry{{ID: 1, Event: "blocked"}}}
	c, inv, l := newTestCoordinator(f)
	seed(inv)

	blocked, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01")
	if err != nil {
		t.Fatalf("ToggleBlock failed: %v", err)
	}
	if !blocked {
		t.Fatal("Expected confirmed blocked state")
	}
	d, ok := inv.Get("aa:bb:cc:dd:ee:01")
	if !ok || !d.IsBlocked {
		t.Error("Confirmed toggle must land in the inventory")
	}
	if l.Count() != 1 {
		t.Error("Confirmed toggle must refresh the audit log")
	}
	if c.InFlight("aa:bb:cc:dd:ee:01") {
		t.Error("Lock must be released after completion")
	}
}

func TestToggleFailureLeavesStoreUntouched(t *testing.T) {
	f := &fakeBackend{toggleErr: errors.New("backend down")}
	c, inv, _ := newTestCoordinator(f)
	seed(inv)

	if _, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01"); err == nil {
		t.Fatal("Expected error from failed toggle")
	}
	d, _ := inv.Get("aa:bb:cc:dd:ee:01")
	if d.IsBlocked {
		t.Error("Failed toggle must not flip local state")
	}
	if c.InFlight("aa:bb:cc:dd:ee:01") {
		t.Error("Lock must be released after failure")
	}
	// The device is usable again right away.
	f.mu.Lock()
	f.toggleErr = nil
	f.mu.Unlock()
	if _, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01"); err != nil {
		t.Errorf("Retry after failure should succeed, got %v", err)
	}
}

func TestConcurrentToggleSameMACRejected(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeBackend{gate: gate}
	c, inv, _ := newTestCoordinator(f)
	seed(inv)

	done := make(chan error, 1)
	go func() {
		_, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01")
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for !c.InFlight("aa:bb:cc:dd:ee:01") {
		if time.Now().After(deadline) {
			t.Fatal("First toggle never acquired the lock")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if _, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01"); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("Second toggle for the same MAC must be rejected, got %v", err)
	}
	// A different MAC is independent.
	f.mu.Lock()
	f.gate = nil
	f.mu.Unlock()
	if _, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:02"); err != nil {
		t.Errorf("Toggle for a different MAC must proceed, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Errorf("First toggle should complete, got %v", err)
	}
	if f.toggleCalls != 2 {
		t.Errorf("Rejected toggle must not reach the backend, calls=%d", f.toggleCalls)
	}
}

func TestSetNicknameTrimsAndApplies(t *testing.T) {
	f := &fakeBackend{}
	c, inv, _ := newTestCoordinator(f)
	seed(inv)

	if err := c.SetNickname(context.Background(), "aa:bb:cc:dd:ee:01", "  Office Printer  "); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}
	d, _ := inv.Get("aa:bb:cc:dd:ee:01")
	if d.Nickname != "Office Printer" {
		t.Errorf("Nickname not trimmed and applied, got %q", d.Nickname)
	}

	// Empty clears the label.
	if err := c.SetNickname(context.Background(), "aa:bb:cc:dd:ee:01", "   "); err != nil {
		t.Fatalf("Clearing nickname failed: %v", err)
	}
	d, _ = inv.Get("aa:bb:cc:dd:ee:01")
	if d.Nickname != "" {
		t.Errorf("Empty nickname must clear the label, got %q", d.Nickname)
	}
}

func TestPanicLockRefreshesStores(t *testing.T) {
	f := &fakeBackend{
		devices: []types.Device{{MAC: "aa:bb:cc:dd:ee:01", IsBlocked: true}},
		logs:    []types.LogEntry{{ID: 1, Event: "panic"}},
	}
	c, inv, l := newTestCoordinator(f)

	msg, err := c.PanicLock(context.Background())
	if err != nil {
		t.Fatalf("PanicLock failed: %v", err)
	}
	if msg != "All devices blocked" {
		t.Errorf("Unexpected message %q", msg)
	}
	d, ok := inv.Get("aa:bb:cc:dd:ee:01")
	if !ok || !d.IsBlocked {
		t.Error("Panic lock must refresh the inventory with blocked state")
	}
	if l.Count() != 1 {
		t.Error("Panic lock must refresh the audit log")
	}
}

func TestConcurrentBulkRejected(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeBackend{gate: gate}
	c, _, _ := newTestCoordinator(f)

	done := make(chan error, 1)
	go func() {
		_, err := c.PanicLock(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		f.mu.Lock()
		started := f.panicCalls > 0
		f.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("First bulk action never started")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if _, err := c.PanicUnlock(context.Background()); !errors.Is(err, ErrBulkInFlight) {
		t.Errorf("Second bulk action must be rejected while one runs, got %v", err)
	}
	if f.unlockCalls != 0 {
		t.Error("Rejected bulk action must not reach the backend")
	}

	close(gate)
	if err := <-done; err != nil {
		t.Errorf("First bulk action should complete, got %v", err)
	}
	// The slot frees up after completion.
	f.mu.Lock()
	f.gate = nil
	f.mu.Unlock()
	if _, err := c.PanicUnlock(context.Background()); err != nil {
		t.Errorf("Bulk action after completion should succeed, got %v", err)
	}
}
