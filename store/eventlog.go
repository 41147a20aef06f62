package store

import (
	"fmt"
	"sync"

	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/types"
)

// EventLog is the canonical in-memory audit log. Entries are immutable and
// the whole log is replaced on every fetch; ordering is whatever the backend
// returned.
type EventLog struct {
	mu      sync.RWMutex
	entries []types.LogEntry
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

// ReplaceAll overwrites the log from a full snapshot.
func (l *EventLog) ReplaceAll(entries []types.LogEntry) {
	next := make([]types.LogEntry, len(entries))
	copy(next, entries)

	l.mu.Lock()
	l.entries = next
	l.mu.Unlock()

	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeLogsReplaced,
		Title:   "Activity Log Updated",
		Message: fmt.Sprintf("%d log entries", len(next)),
		Data:    map[string]any{"count": len(next)},
	})
}

// Snapshot returns a copy of the current log.
func (l *EventLog) Snapshot() []types.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns the number of entries currently held.
func (l *EventLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Equal reports whether the given snapshot matches current content exactly.
func (l *EventLog) Equal(entries []types.LogEntry) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(entries) != len(l.entries) {
		return false
	}
	for i := range entries {
		if l.entries[i] != entries[i] {
			return false
		}
	}
	return true
}
