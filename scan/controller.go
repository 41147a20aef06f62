// Package scan drives one manual network scan to completion: request the
// backend to start, poll its status on a short cadence, and refresh the
// stores exactly once at the terminal transition.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/poller"
	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// Controller owns the single-active-scan invariant. At most one session can
// be Requesting or Polling system-wide; a second Start is a silent no-op.
// Once started, a session runs to Completed or TimedOut — there is no
// external cancel.
type Controller struct {
	mu          sync.Mutex
	phase       types.ScanPhase
	session     types.ScanSession
	lastOutcome types.ScanPhase

	backend      backend.Service
	refresher    *refresh.Refresher
	pollInterval time.Duration
	timeout      time.Duration
	task         *poller.Task
}

func NewController(svc backend.Service, refresher *refresh.Refresher, pollInterval, timeout time.Duration) *Controller {
	return &Controller{
		phase:        types.ScanIdle,
		backend:      svc,
		refresher:    refresher,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// Start begins a new scan session. Returns false when a session is already
// active; that is the "already in progress" policy, not an error.
func (c *Controller) Start() bool {
	return c.start(false)
}

// ForceStart begins a session over the backend's force-scan operation, which
// clears its device cache and rescans everything. Same lifecycle otherwise.
func (c *Controller) ForceStart() bool {
	return c.start(true)
}

func (c *Controller) start(forced bool) bool {
	c.mu.Lock()
	if c.phase == types.ScanRequesting || c.phase == types.ScanPolling {
		c.mu.Unlock()
		tool.DefaultLogger.Debug("Scan already in progress, ignoring start")
		return false
	}
	c.phase = types.ScanRequesting
	c.session = types.ScanSession{
		ID:        tool.GenerateRandomUUID(),
		Phase:     types.ScanRequesting,
		StartedAt: time.Now(),
		Forced:    forced,
	}
	c.mu.Unlock()

	go c.run(forced)
	return true
}

func (c *Controller) run(forced bool) {
	ctx := context.Background()
	var err error
	if forced {
		err = c.backend.ForceScan(ctx)
	} else {
		err = c.backend.BeginScan(ctx)
	}
	if err != nil {
		tool.DefaultLogger.Warnf("Scan request failed: %v", err)
		c.mu.Lock()
		c.phase = types.ScanIdle
		c.mu.Unlock()
		notify.Publish(&types.Notification{
			Type:    types.NotifyTypeScanFailed,
			Title:   "Scan Failed",
			Message: "Could not start network scan: " + err.Error(),
		})
		return
	}

	c.mu.Lock()
	c.phase = types.ScanPolling
	c.session.Phase = types.ScanPolling
	startedAt := c.session.StartedAt
	c.mu.Unlock()

	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeScanStarted,
		Title:   "Scan Started",
		Message: "Network scan running",
		Data:    map[string]any{"forced": forced},
	})

	tool.DefaultLogger.Infof("Scan polling started (cadence %v, ceiling %v)", c.pollInterval, c.timeout)
	c.task = poller.Start(c.pollInterval, func() bool {
		if time.Since(startedAt) >= c.timeout {
			c.finish(types.ScanTimedOut)
			return false
		}
		scanning, err := c.backend.ScanStatus(context.Background())
		if err != nil {
			// A single failed status poll is not terminal, the ceiling
			// still bounds the session.
			tool.DefaultLogger.Debugf("Scan status poll failed: %v", err)
			return true
		}
		if scanning {
			return true
		}
		c.finish(types.ScanCompleted)
		return false
	})
}

// finish performs the one terminal refresh and returns the controller to
// Idle. Store writes happen only here, never mid-poll.
func (c *Controller) finish(outcome types.ScanPhase) {
	c.mu.Lock()
	if c.phase != types.ScanPolling {
		c.mu.Unlock()
		return
	}
	c.phase = outcome
	c.session.Phase = outcome
	elapsed := time.Since(c.session.StartedAt)
	c.mu.Unlock()

	if err := c.refresher.RefreshAll(context.Background()); err != nil {
		tool.DefaultLogger.Warnf("Post-scan refresh incomplete: %v", err)
	}

	c.mu.Lock()
	c.lastOutcome = outcome
	c.phase = types.ScanIdle
	c.mu.Unlock()

	if outcome == types.ScanTimedOut {
		tool.DefaultLogger.Warnf("Scan did not finish within %v, results may be partial", c.timeout)
		notify.Publish(&types.Notification{
			Type:    types.NotifyTypeScanTimedOut,
			Title:   "Scan Timed Out",
			Message: "Scan did not finish in time, showing latest known state",
			Data:    map[string]any{"elapsed": elapsed.Round(time.Second).String()},
		})
		return
	}
	tool.DefaultLogger.Infof("Scan completed in %v", elapsed.Round(time.Second))
	notify.Publish(&types.Notification{
		Type:    types.NotifyTypeScanCompleted,
		Title:   "Scan Completed",
		Message: "Network scan finished",
		Data:    map[string]any{"elapsed": elapsed.Round(time.Second).String()},
	})
}

// Session returns the current session state for the status endpoint.
func (c *Controller) Session() types.ScanSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Phase = c.phase
	s.PhaseName = c.phase.String()
	return s
}

// Active reports whether a scan is currently Requesting or Polling.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == types.ScanRequesting || c.phase == types.ScanPolling
}

// LastOutcome returns the terminal phase of the most recent finished session
// (Completed or TimedOut), or Idle when none has finished yet. Lets the UI
// present a timed-out scan as degraded confidence rather than success.
func (c *Controller) LastOutcome() types.ScanPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastOutcome == 0 {
		return types.ScanIdle
	}
	return c.lastOutcome
}
