package types

// AppConfig is the YAML-backed daemon configuration.
type AppConfig struct {
	BackendURL string `yaml:"backend_url"` // base URL of the remote scanning backend
	Port       int    `yaml:"port"`        // dashboard API listen port

	// Scan lifecycle cadences, in seconds.
	ScanPollIntervalSeconds int `yaml:"scan_poll_interval_seconds"`
	ScanTimeoutSeconds      int `yaml:"scan_timeout_seconds"`

	// Auto-scan local refresh cadence and default backend interval.
	AutoRefreshIntervalSeconds  int `yaml:"auto_refresh_interval_seconds"`
	AutoScanDefaultIntervalMins int `yaml:"auto_scan_default_interval_minutes"`

	// Backend request pacing (requests per second, 0 = unlimited).
	BackendRateLimitRPS int `yaml:"backend_rate_limit_rps"`
}
