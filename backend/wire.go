package backend

import "github.com/sentriwatch/sentriwatch/types"

// Wire records mirror the backend's snake_case JSON. The backend stores a
// device's block flag as a 0/1 integer and may send latency/nickname as null,
// so the records are converted to the dashboard's canonical types here and
// nowhere else.

type deviceRecord struct {
	MAC              string   `json:"mac"`
	IP               string   `json:"ip"`
	Vendor           string   `json:"vendor"`
	Hostname         string   `json:"hostname"`
	RiskScore        int      `json:"risk_score"`
	Status           string   `json:"status"`
	LastSeen         string   `json:"last_seen"`
	OSType           string   `json:"os_type"`
	DeviceType       string   `json:"device_type"`
	OpenPorts        int      `json:"open_ports"`
	PortSummary      string   `json:"port_summary"`
	Latency          *float64 `json:"latency"`
	Nickname         *string  `json:"nickname"`
	IsBlocked        int      `json:"is_blocked"`
	Harmful          bool     `json:"harmful"`
	HasCriticalPorts bool     `json:"has_critical_ports"`
	Summary          string   `json:"summary"`
}

func (r deviceRecord) toDevice() types.Device {
	d := types.Device{
		MAC:              r.MAC,
		IP:               r.IP,
		Vendor:           r.Vendor,
		Hostname:         r.Hostname,
		RiskScore:        r.RiskScore,
		Status:           r.Status,
		LastSeen:         r.LastSeen,
		OSType:           r.OSType,
		DeviceType:       r.DeviceType,
		OpenPortsCount:   r.OpenPorts,
		PortSummary:      r.PortSummary,
		LatencyMs:        r.Latency,
		IsBlocked:        r.IsBlocked != 0,
		Harmful:          r.Harmful,
		HasCriticalPorts: r.HasCriticalPorts,
		Summary:          r.Summary,
	}
	if r.Nickname != nil {
		d.Nickname = *r.Nickname
	}
	return d
}

type logRecord struct {
	ID    int64  `json:"id"`
	Time  string `json:"time"`
	Event string `json:"event"`
	Type  string `json:"type"`
}

func (r logRecord) toEntry() types.LogEntry {
	return types.LogEntry{ID: r.ID, Time: r.Time, Event: r.Event, Type: r.Type}
}

type scanAck struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type scanStatusResult struct {
	IsScanning  bool     `json:"is_scanning"`
	StartedAt   *float64 `json:"started_at"`
	CompletedAt *float64 `json:"completed_at"`
	DeviceCount int      `json:"device_count"`
}

type mutationResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	IsBlocked *bool  `json:"isBlocked"`
	Nickname  string `json:"nickname"`
}

type autoScanStatusResult struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}
