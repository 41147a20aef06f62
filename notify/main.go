package notify

import (
	"sync"

	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// Hub receives published notifications. The WebSocket hub in api/notifyhub
// implements this; tests register their own.
type Hub interface {
	Broadcast(notification *types.Notification)
}

var (
	mu        sync.RWMutex
	hubs      []Hub
	UseNotify = true
)

// SetUseNotify sets whether to dispatch notifications at all.
func SetUseNotify(use bool) {
	UseNotify = use
}

// RegisterHub adds a broadcast target for published notifications.
func RegisterHub(h Hub) {
	if h == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	hubs = append(hubs, h)
}

// Publish assigns the notification an id and fans it out to all registered hubs.
// Publishing never blocks store writers on slow consumers: hubs are expected to
// do their own buffering or best-effort writes.
func Publish(notification *types.Notification) {
	if !UseNotify || notification == nil {
		return
	}
	if notification.ID == "" {
		notification.ID = tool.GenerateRandomUUID()
	}
	mu.RLock()
	targets := make([]Hub, len(hubs))
	copy(targets, hubs)
	mu.RUnlock()

	tool.DefaultLogger.Debugf("notify: %s %q", notification.Type, notification.Message)
	for _, h := range targets {
		h.Broadcast(notification)
	}
}
