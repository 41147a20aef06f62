package types

// Auto-scan interval bounds accepted by the backend.
const (
	AutoScanMinIntervalMinutes = 1
	AutoScanMaxIntervalMinutes = 60
)

// AutoScanConfig mirrors the server-side recurring scan toggle. The true
// state lives on the backend, so it must be re-synchronized on load.
type AutoScanConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"intervalMinutes"`
}
