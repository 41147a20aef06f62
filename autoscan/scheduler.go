// Package autoscan mirrors the backend's recurring-scan toggle and runs the
// independent client-side refresh loop that keeps the stores current while
// the toggle is on. It never touches the manual scan lifecycle.
package autoscan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/poller"
	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// Scheduler forwards start/stop/status to the backend (the recurring scan
// itself runs server-side) and owns the local diff-refresh loop. The loop is
// torn down deterministically on Stop or Close; a fetch still in flight when
// teardown happens discards its result instead of applying it.
type Scheduler struct {
	mu      sync.Mutex
	config  types.AutoScanConfig
	task    *poller.Task
	gen     uint64 // bumped on every teardown so stale fetches self-discard
	backend backend.Service

	refresher       *refresh.Refresher
	refreshInterval time.Duration
}

func NewScheduler(svc backend.Service, refresher *refresh.Refresher, refreshInterval time.Duration) *Scheduler {
	return &Scheduler{
		backend:         svc,
		refresher:       refresher,
		refreshInterval: refreshInterval,
	}
}

// Start enables auto-scan on the backend and begins the local refresh loop.
// Starting while already enabled is a no-op per the in-progress policy.
func (s *Scheduler) Start(intervalMinutes int) error {
	if intervalMinutes < types.AutoScanMinIntervalMinutes || intervalMinutes > types.AutoScanMaxIntervalMinutes {
		return fmt.Errorf("interval must be between %d and %d minutes",
			types.AutoScanMinIntervalMinutes, types.AutoScanMaxIntervalMinutes)
	}

	s.mu.Lock()
	if s.config.Enabled {
		s.mu.Unlock()
		tool.DefaultLogger.Debug("Auto-scan already enabled, ignoring start")
		return nil
	}
	s.mu.Unlock()

	if err := s.backend.StartAutoScan(context.Background(), intervalMinutes); err != nil {
		return err
	}

	s.mu.Lock()
	s.config = types.AutoScanConfig{Enabled: true, IntervalMinutes: intervalMinutes}
	s.startLoopLocked()
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Auto-scan enabled (every %d minutes, local refresh every %v)",
		intervalMinutes, s.refreshInterval)
	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeAutoScanEnabled,
		Title:   "Auto-Scan Enabled",
		Message: fmt.Sprintf("Scanning every %d minutes", intervalMinutes),
		Data:    map[string]any{"intervalMinutes": intervalMinutes},
	})
	return nil
}

// Stop disables auto-scan on the backend and tears down the local loop.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.config.Enabled {
		s.mu.Unlock()
		tool.DefaultLogger.Debug("Auto-scan not enabled, ignoring stop")
		return nil
	}
	s.mu.Unlock()

	if err := s.backend.StopAutoScan(context.Background()); err != nil {
		return err
	}

	s.mu.Lock()
	s.config.Enabled = false
	s.stopLoopLocked()
	s.mu.Unlock()

	tool.DefaultLogger.Info("Auto-scan disabled")
	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeAutoScanDisabled,
		Title:   "Auto-Scan Disabled",
		Message: "Automatic scanning stopped",
	})
	return nil
}

// SetInterval forwards a new interval to the backend. It takes effect on the
// next auto-scan restart; the local mirror updates immediately.
func (s *Scheduler) SetInterval(intervalMinutes int) error {
	if intervalMinutes < types.AutoScanMinIntervalMinutes || intervalMinutes > types.AutoScanMaxIntervalMinutes {
		return fmt.Errorf("interval must be between %d and %d minutes",
			types.AutoScanMinIntervalMinutes, types.AutoScanMaxIntervalMinutes)
	}
	if err := s.backend.SetAutoScanInterval(context.Background(), intervalMinutes); err != nil {
		return err
	}
	s.mu.Lock()
	s.config.IntervalMinutes = intervalMinutes
	s.mu.Unlock()
	return nil
}

// Status returns the local mirror of the auto-scan toggle.
func (s *Scheduler) Status() types.AutoScanConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SyncFromBackend re-reads the server-side toggle, which is the source of
// truth across restarts of this daemon. When the backend reports enabled,
// the local refresh loop resumes without re-issuing a start.
func (s *Scheduler) SyncFromBackend(ctx context.Context) error {
	cfg, err := s.backend.AutoScanStatus(ctx)
	if err != nil {
		tool.DefaultLogger.Warnf("Could not sync auto-scan state from backend: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	if cfg.Enabled && s.task == nil {
		tool.DefaultLogger.Infof("Auto-scan already enabled on backend (every %d minutes), resuming local refresh",
			cfg.IntervalMinutes)
		s.startLoopLocked()
	}
	if !cfg.Enabled {
		s.stopLoopLocked()
	}
	return nil
}

// Close tears down the local loop without touching the backend toggle. Used
// on daemon shutdown so no timer outlives the owning context.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLoopLocked()
}

func (s *Scheduler) startLoopLocked() {
	if s.task != nil && s.task.Active() {
		return
	}
	gen := s.gen
	guard := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.gen == gen
	}
	s.task = poller.Start(s.refreshInterval, func() bool {
		if !guard() {
			return false
		}
		if err := s.refresher.RefreshIfChanged(context.Background(), guard); err != nil {
			tool.DefaultLogger.Debugf("Auto-scan refresh tick incomplete: %v", err)
		}
		return guard()
	})
}

func (s *Scheduler) stopLoopLocked() {
	s.gen++
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}
