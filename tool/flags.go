package tool

import "flag"

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log              string
	UseConfigPath    string
	UseBackendURL    string
	UsePort          int
	UseScanTimeout   int // seconds, overrides scan poll ceiling
	SkipAutoScanSync bool
}

// SetFlags parses CLI flags and returns the override config.
func SetFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseBackendURL, "useBackendURL", "", "override backend base URL")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override dashboard API port")
	flag.IntVar(&cfg.UseScanTimeout, "useScanTimeout", 0, "override scan poll ceiling in seconds")
	flag.BoolVar(&cfg.SkipAutoScanSync, "skipAutoScanSync", false, "do not mirror auto-scan state from the backend on startup")
	flag.Parse()
	return cfg
}
