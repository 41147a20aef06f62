package types

// Notification types pushed to the dashboard over WebSocket.
const (
	NotifyTypeInventoryReplaced = "inventory_replaced"
	NotifyTypeDevicePatched     = "device_patched"
	NotifyTypeLogsReplaced      = "logs_replaced"
	NotifyTypeScanStarted       = "scan_started"
	NotifyTypeScanFailed        = "scan_failed"
	NotifyTypeScanCompleted     = "scan_completed"
	NotifyTypeScanTimedOut      = "scan_timed_out"
	NotifyTypeDeviceBlocked     = "device_blocked"
	NotifyTypeDeviceUnblocked   = "device_unblocked"
	NotifyTypeNicknameSet       = "nickname_set"
	NotifyTypePanicEngaged      = "panic_engaged"
	NotifyTypePanicReleased     = "panic_released"
	NotifyTypeAutoScanEnabled   = "auto_scan_enabled"
	NotifyTypeAutoScanDisabled  = "auto_scan_disabled"
)

// Notification represents a notification message structure
type Notification struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type,omitempty"`
	Title   string         `json:"title,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
