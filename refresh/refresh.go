// Package refresh funnels every full inventory/log re-fetch through one place
// so all writers use the same replace semantics and the same failure policy.
package refresh

import (
	"context"
	"fmt"

	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

// Refresher fetches fresh snapshots from the backend and applies them to the
// stores. A fetch that fails at the transport level keeps the prior store
// content: stale data beats a cleared dashboard, and an empty table would be
// indistinguishable from a truly empty network.
type Refresher struct {
	Backend   backend.Service
	Inventory *store.Inventory
	Log       *store.EventLog
}

// RefreshAll replaces both stores unconditionally. Each store degrades
// independently: a failed device fetch does not stop the log refresh.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var devErr, logErr error

	devices, err := r.Backend.FetchDevices(ctx)
	if err != nil {
		tool.DefaultLogger.Warnf("Device refresh failed, keeping previous inventory: %v", err)
		devErr = err
	} else {
		r.Inventory.ReplaceAll(devices)
	}

	entries, err := r.Backend.FetchLogs(ctx)
	if err != nil {
		tool.DefaultLogger.Warnf("Log refresh failed, keeping previous log: %v", err)
		logErr = err
	} else {
		r.Log.ReplaceAll(entries)
	}

	if devErr != nil || logErr != nil {
		return fmt.Errorf("refresh incomplete (devices: %v, logs: %v)", devErr, logErr)
	}
	return nil
}

// RefreshIfChanged fetches both snapshots but applies each only when its
// content differs from what the store already holds. Content comparison, not
// count comparison: an in-place risk-score change must still land. The guard
// runs after each fetch and before the apply; when it returns false the
// result is discarded — a response arriving after the caller's teardown must
// never be written.
func (r *Refresher) RefreshIfChanged(ctx context.Context, guard func() bool) error {
	if guard == nil {
		guard = func() bool { return true }
	}
	var devErr, logErr error

	devices, err := r.Backend.FetchDevices(ctx)
	switch {
	case err != nil:
		tool.DefaultLogger.Warnf("Periodic device fetch failed: %v", err)
		devErr = err
	case !guard():
		tool.DefaultLogger.Debug("Periodic refresh: torn down mid-fetch, discarding devices")
	case r.Inventory.Equal(devices):
		tool.DefaultLogger.Debug("Periodic refresh: inventory unchanged")
	default:
		r.Inventory.ReplaceAll(devices)
	}

	entries, err := r.Backend.FetchLogs(ctx)
	switch {
	case err != nil:
		tool.DefaultLogger.Warnf("Periodic log fetch failed: %v", err)
		logErr = err
	case !guard():
		tool.DefaultLogger.Debug("Periodic refresh: torn down mid-fetch, discarding logs")
	case r.Log.Equal(entries):
		tool.DefaultLogger.Debug("Periodic refresh: log unchanged")
	default:
		r.Log.ReplaceAll(entries)
	}

	if devErr != nil || logErr != nil {
		return fmt.Errorf("periodic refresh incomplete (devices: %v, logs: %v)", devErr, logErr)
	}
	return nil
}

// RefreshLogs replaces only the log store. Used after a confirmed block
// toggle, which produces a new audit entry server-side.
func (r *Refresher) RefreshLogs(ctx context.Context) error {
	entries, err := r.Backend.FetchLogs(ctx)
	if err != nil {
		tool.DefaultLogger.Warnf("Log refresh failed, keeping previous log: %v", err)
		return err
	}
	r.Log.ReplaceAll(entries)
	return nil
}
