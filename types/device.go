package types

// Device categories reported by the backend classifier.
const (
	DeviceTypeRouter  = "router"
	DeviceTypeLaptop  = "laptop"
	DeviceTypeMobile  = "mobile"
	DeviceTypeIoT     = "iot"
	DeviceTypeMedia   = "media"
	DeviceTypeServer  = "server"
	DeviceTypeUnknown = "unknown"
)

// Device is one network endpoint keyed by hardware address.
// The inventory holds exactly one Device per MAC at any time.
type Device struct {
	MAC              string   `json:"mac"`
	IP               string   `json:"ip"`
	Hostname         string   `json:"hostname"`
	Vendor           string   `json:"vendor"`
	OSType           string   `json:"osType"`
	DeviceType       string   `json:"deviceType"`
	OpenPortsCount   int      `json:"openPortsCount"`
	PortSummary      string   `json:"portSummary,omitempty"`
	RiskScore        int      `json:"riskScore"`
	LatencyMs        *float64 `json:"latencyMs,omitempty"`
	IsBlocked        bool     `json:"isBlocked"`
	Nickname         string   `json:"nickname"`
	Harmful          bool     `json:"harmful"`
	HasCriticalPorts bool     `json:"hasCriticalPorts,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Status           string   `json:"status,omitempty"`
	LastSeen         string   `json:"lastSeen,omitempty"`
}

// DevicePatch carries a partial field update merged into an existing
// inventory entry. Nil pointers mean "leave the field alone".
type DevicePatch struct {
	IsBlocked *bool
	Nickname  *string
}
