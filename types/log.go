package types

// Log severity tags as emitted by the backend.
const (
	LogTypeInfo    = "info"
	LogTypeWarning = "warning"
	LogTypeDanger  = "danger"
	LogTypeSuccess = "success"
	LogTypeError   = "error"
)

// LogEntry is one immutable audit log line. The log store is replaced
// wholesale on every fetch, ordering is whatever the backend returned.
type LogEntry struct {
	ID    int64  `json:"id"`
	Time  string `json:"time"`
	Event string `json:"event"`
	Type  string `json:"type"`
}
