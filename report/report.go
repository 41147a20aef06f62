// Package report turns an inventory snapshot into exportable artifacts. The
// transform is pure: identical device lists produce identical rows and
// summary counts, with only the generated-at header varying.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sentriwatch/sentriwatch/types"
)

// Risk thresholds for the summary and the per-row status label.
const (
	criticalRiskThreshold   = 50
	vulnerableRiskThreshold = 20
)

// Status labels derived per device.
const (
	StatusBlocked    = "BLOCKED"
	StatusVulnerable = "VULNERABLE"
	StatusSecure     = "SECURE"
)

// Summary is the report header counts.
type Summary struct {
	TotalDevices    int `json:"totalDevices"`
	BlockedDevices  int `json:"blockedDevices"`
	CriticalThreats int `json:"criticalThreats"`
}

// Row is one exported device line, fields in output order.
type Row struct {
	DisplayName string `json:"displayName"`
	IP          string `json:"ip"`
	MAC         string `json:"mac"`
	OSType      string `json:"osType"`
	DeviceType  string `json:"deviceType"`
	RiskPercent string `json:"riskPercent"`
	OpenPorts   int    `json:"openPorts"`
	Latency     string `json:"latency"`
	Status      string `json:"status"`
}

// Report is the finished artifact, ready for any renderer.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     Summary   `json:"summary"`
	Rows        []Row     `json:"rows"`
}

// columnHeaders is the fixed column order shared by all renderers.
var columnHeaders = []string{
	"Device", "IP Address", "MAC Address", "OS", "Type",
	"Risk", "Open Ports", "Latency", "Status",
}

// Build computes the report from a device snapshot. Row order follows input
// order; generatedAt is caller-supplied so renders are reproducible.
func Build(devices []types.Device, generatedAt time.Time) Report {
	r := Report{
		GeneratedAt: generatedAt,
		Rows:        make([]Row, 0, len(devices)),
	}
	for _, d := range devices {
		r.Summary.TotalDevices++
		if d.IsBlocked {
			r.Summary.BlockedDevices++
		}
		if d.RiskScore > criticalRiskThreshold {
			r.Summary.CriticalThreats++
		}
		r.Rows = append(r.Rows, buildRow(d))
	}
	return r
}

func buildRow(d types.Device) Row {
	return Row{
		DisplayName: DisplayName(d),
		IP:          d.IP,
		MAC:         d.MAC,
		OSType:      defaultString(d.OSType, "Unknown"),
		DeviceType:  defaultString(d.DeviceType, types.DeviceTypeUnknown),
		RiskPercent: fmt.Sprintf("%d%%", d.RiskScore),
		OpenPorts:   d.OpenPortsCount,
		Latency:     formatLatency(d.LatencyMs),
		Status:      statusLabel(d),
	}
}

// DisplayName picks the friendliest available identifier: nickname, then
// hostname, then vendor, then the raw IP. A candidate counts only when it is
// meaningful: non-empty, longer than one character and not purely numeric.
func DisplayName(d types.Device) string {
	for _, candidate := range []string{d.Nickname, d.Hostname, d.Vendor} {
		if meaningful(candidate) {
			return candidate
		}
	}
	return d.IP
}

func meaningful(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= 1 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

func statusLabel(d types.Device) string {
	switch {
	case d.IsBlocked:
		return StatusBlocked
	case d.RiskScore > vulnerableRiskThreshold:
		return StatusVulnerable
	default:
		return StatusSecure
	}
}

func formatLatency(ms *float64) string {
	if ms == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0fms", *ms)
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func (r Row) fields() []string {
	return []string{
		r.DisplayName, r.IP, r.MAC, r.OSType, r.DeviceType,
		r.RiskPercent, fmt.Sprintf("%d", r.OpenPorts), r.Latency, r.Status,
	}
}
