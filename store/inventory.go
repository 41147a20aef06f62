package store

import (
	"fmt"
	"sync"

	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// Inventory is the canonical in-memory device table, keyed by MAC.
// It is a replace-by-snapshot structure: a full fetch overwrites the table,
// confirmed mutations patch single entries, and a device disappears only
// when a later snapshot no longer reports its MAC.
type Inventory struct {
	mu      sync.RWMutex
	devices []types.Device // backend order preserved
	index   map[string]int // mac -> position in devices
}

func NewInventory() *Inventory {
	return &Inventory{index: make(map[string]int)}
}

// ReplaceAll overwrites the table from a full snapshot. Duplicate MACs in the
// snapshot collapse to the last occurrence so the one-entry-per-MAC invariant
// holds no matter what the backend sent.
func (inv *Inventory) ReplaceAll(devices []types.Device) {
	next := make([]types.Device, 0, len(devices))
	index := make(map[string]int, len(devices))
	for _, d := range devices {
		if d.MAC == "" {
			tool.DefaultLogger.Warnf("Inventory: dropping device with empty MAC (ip=%s)", d.IP)
			continue
		}
		if pos, seen := index[d.MAC]; seen {
			next[pos] = d
			continue
		}
		index[d.MAC] = len(next)
		next = append(next, d)
	}

	inv.mu.Lock()
	inv.devices = next
	inv.index = index
	inv.mu.Unlock()

	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeInventoryReplaced,
		Title:   "Inventory Updated",
		Message: fmt.Sprintf("%d devices in inventory", len(next)),
		Data:    map[string]any{"count": len(next)},
	})
}

// ApplyPatch merges partial fields into an existing entry. An unknown MAC is
// an anomaly (a confirmed mutation for a device the store never saw) and is
// logged and dropped rather than creating a half-empty entry.
func (inv *Inventory) ApplyPatch(mac string, patch types.DevicePatch) {
	inv.mu.Lock()
	pos, ok := inv.index[mac]
	if !ok {
		inv.mu.Unlock()
		tool.DefaultLogger.Warnf("Inventory: patch for unknown device %s ignored", mac)
		return
	}
	if patch.IsBlocked != nil {
		inv.devices[pos].IsBlocked = *patch.IsBlocked
	}
	if patch.Nickname != nil {
		inv.devices[pos].Nickname = *patch.Nickname
	}
	inv.mu.Unlock()

	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeDevicePatched,
		Title:   "Device Updated",
		Message: fmt.Sprintf("Device %s updated", mac),
		Data:    map[string]any{"mac": mac},
	})
}

// Snapshot returns a copy of the table in backend order.
func (inv *Inventory) Snapshot() []types.Device {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]types.Device, len(inv.devices))
	copy(out, inv.devices)
	return out
}

// Get returns the device for mac, if present.
func (inv *Inventory) Get(mac string) (types.Device, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	pos, ok := inv.index[mac]
	if !ok {
		return types.Device{}, false
	}
	return inv.devices[pos], true
}

// Count returns the number of devices currently held.
func (inv *Inventory) Count() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.devices)
}

// Equal reports whether the given snapshot matches current content exactly,
// field by field and in the same order. The auto-scan scheduler uses this to
// skip a replace when nothing changed.
func (inv *Inventory) Equal(devices []types.Device) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if len(devices) != len(inv.devices) {
		return false
	}
	for i := range devices {
		if !DeviceEqual(inv.devices[i], devices[i]) {
			return false
		}
	}
	return true
}

// DeviceEqual compares two devices by value, including latency behind the pointer.
func DeviceEqual(a, b types.Device) bool {
	if a.LatencyMs == nil != (b.LatencyMs == nil) {
		return false
	}
	if a.LatencyMs != nil && *a.LatencyMs != *b.LatencyMs {
		return false
	}
	return a.MAC == b.MAC &&
		a.IP == b.IP &&
		a.Hostname == b.Hostname &&
		a.Vendor == b.Vendor &&
		a.OSType == b.OSType &&
		a.DeviceType == b.DeviceType &&
		a.OpenPortsCount == b.OpenPortsCount &&
		a.PortSummary == b.PortSummary &&
		a.RiskScore == b.RiskScore &&
		a.IsBlocked == b.IsBlocked &&
		a.Nickname == b.Nickname &&
		a.Harmful == b.Harmful &&
		a.HasCriticalPorts == b.HasCriticalPorts &&
		a.Summary == b.Summary &&
		a.Status == b.Status &&
		a.LastSeen == b.LastSeen
}
