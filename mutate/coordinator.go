// Package mutate serializes state-changing requests against the backend:
// per-device block toggles and nickname edits, and the bulk panic actions.
// Everything is confirm-then-apply — local state never flips before the
// backend confirms, so there is no rollback path.
package mutate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// LockTTL bounds how long a MAC stays locked if a toggle request is lost
// without its release running (process-level safety net, not a policy knob).
const LockTTL = 30 * time.Second

var (
	// ErrToggleInFlight means a toggle for this MAC is already running.
	// Policy, not failure: the second request is simply not issued.
	ErrToggleInFlight = errors.New("toggle already in flight for this device")
	// ErrBulkInFlight means a panic lock/unlock is already running.
	ErrBulkInFlight = errors.New("a bulk action is already in flight")
)

// Coordinator guards the per-MAC toggle lock and the single-bulk-action
// invariant, and applies confirmed results to the inventory.
type Coordinator struct {
	lockMu sync.Mutex
	locks  *ttlworker.Cache[string, time.Time]

	bulkMu     sync.Mutex
	bulkActive bool

	backend   backend.Service
	inventory *store.Inventory
	refresher *refresh.Refresher
}

func NewCoordinator(svc backend.Service, inventory *store.Inventory, refresher *refresh.Refresher) *Coordinator {
	return &Coordinator{
		locks:     ttlworker.NewCache[string, time.Time](LockTTL),
		backend:   svc,
		inventory: inventory,
		refresher: refresher,
	}
}

// ToggleBlock flips the block state of one device. The server-returned state
// is applied to the inventory only on confirmed success; on any failure the
// store is left untouched and the lock released. A confirmed toggle also
// refreshes the log store, since the backend writes an audit entry for it.
func (c *Coordinator) ToggleBlock(ctx context.Context, mac string) (bool, error) {
	if !c.acquire(mac) {
		tool.DefaultLogger.Debugf("Toggle for %s rejected, already in flight", mac)
		return false, ErrToggleInFlight
	}
	defer c.release(mac)

	blocked, err := c.backend.ToggleBlock(ctx, mac)
	if err != nil {
		return false, err
	}

	state := blocked
	c.inventory.ApplyPatch(mac, types.DevicePatch{IsBlocked: &state})

	notifyType := types.NotifyTypeDeviceUnblocked
	title := "Device Unblocked"
	if blocked {
		notifyType = types.NotifyTypeDeviceBlocked
		title = "Device Blocked"
	}
	notify.Publish(&types.Notification{
		Type:    notifyType,
		Title:   title,
		Message: "Block state changed for " + mac,
		Data:    map[string]any{"mac": mac, "isBlocked": blocked},
	})

	if err := c.refresher.RefreshLogs(ctx); err != nil {
		tool.DefaultLogger.Debugf("Log refresh after toggle failed: %v", err)
	}
	return blocked, nil
}

// SetNickname assigns a user label to a device. Empty string is a valid
// value and clears the label back to the display fallback chain.
func (c *Coordinator) SetNickname(ctx context.Context, mac, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if err := c.backend.SetNickname(ctx, mac, nickname); err != nil {
		return err
	}

	name := nickname
	c.inventory.ApplyPatch(mac, types.DevicePatch{Nickname: &name})
	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeNicknameSet,
		Title:   "Nickname Updated",
		Message: "Nickname set for " + mac,
		Data:    map[string]any{"mac": mac, "nickname": nickname},
	})
	return nil
}

// PanicLock requests the global block-everything action. On success the
// coordinator itself refreshes both stores rather than leaving per-device
// block flags stale until the next polling cycle.
func (c *Coordinator) PanicLock(ctx context.Context) (string, error) {
	return c.bulk(ctx, c.backend.PanicLock, types.NotifyTypePanicEngaged, "Panic Mode Engaged")
}

// PanicUnlock is the symmetric bulk release. Repeating an already-applied
// unlock is a safe no-op server-side.
func (c *Coordinator) PanicUnlock(ctx context.Context) (string, error) {
	return c.bulk(ctx, c.backend.PanicUnlock, types.NotifyTypePanicReleased, "Panic Mode Released")
}

func (c *Coordinator) bulk(ctx context.Context, call func(context.Context) (string, error), notifyType, title string) (string, error) {
	if !c.beginBulk() {
		tool.DefaultLogger.Debug("Bulk action rejected, one already in flight")
		return "", ErrBulkInFlight
	}
	defer c.endBulk()

	msg, err := call(ctx)
	if err != nil {
		return "", err
	}

	// The backend applies bulk blocks asynchronously; this refresh plus the
	// periodic one converge on the final state.
	if err := c.refresher.RefreshAll(ctx); err != nil {
		tool.DefaultLogger.Warnf("Refresh after bulk action incomplete: %v", err)
	}
	notify.Publish(&types.Notification{
		Type:    notifyType,
		Title:   title,
		Message: msg,
	})
	return msg, nil
}

// InFlight reports whether a toggle for mac is currently running; the UI
// disables the control instead of queueing a second request.
func (c *Coordinator) InFlight(mac string) bool {
	return !c.locks.Get(mac).IsZero()
}

func (c *Coordinator) acquire(mac string) bool {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	if !c.locks.Get(mac).IsZero() {
		return false
	}
	c.locks.Set(mac, time.Now())
	return true
}

func (c *Coordinator) release(mac string) {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	c.locks.Delete(mac)
}

func (c *Coordinator) beginBulk() bool {
	c.bulkMu.Lock()
	defer c.bulkMu.Unlock()
	if c.bulkActive {
		return false
	}
	c.bulkActive = true
	return true
}

func (c *Coordinator) endBulk() {
	c.bulkMu.Lock()
	c.bulkActive = false
	c.bulkMu.Unlock()
}
