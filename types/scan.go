package types

import "time"

// ScanPhase is the lifecycle state of one manual scan attempt.
type ScanPhase int

const (
	ScanIdle       ScanPhase = iota // no scan active
	ScanRequesting                  // begin-scan request in flight
	ScanPolling                     // waiting for the backend to report completion
	ScanCompleted                   // backend confirmed completion
	ScanTimedOut                    // poll ceiling reached without completion
)

// String returns the phase tag used in API responses and notifications.
func (p ScanPhase) String() string {
	switch p {
	case ScanIdle:
		return "idle"
	case ScanRequesting:
		return "requesting"
	case ScanPolling:
		return "polling"
	case ScanCompleted:
		return "completed"
	case ScanTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// ScanSession is the transient state of a single scan attempt. It exists
// only between Start and the terminal refresh; it is never persisted.
type ScanSession struct {
	ID        string    `json:"id"`
	Phase     ScanPhase `json:"-"`
	PhaseName string    `json:"phase"`
	StartedAt time.Time `json:"startedAt"`
	Forced    bool      `json:"forced,omitempty"`
}
