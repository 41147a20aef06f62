package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sentriwatch/sentriwatch/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		BackendURL:                  "http://127.0.0.1:8000",
		Port:                        8420,
		ScanPollIntervalSeconds:     1,
		ScanTimeoutSeconds:          120,
		AutoRefreshIntervalSeconds:  15,
		AutoScanDefaultIntervalMins: 5,
		BackendRateLimitRPS:         10,
	}
}

// LoadConfig reads the YAML config at path, creating it with defaults when missing.
// Environment overrides (BACKEND_URL, PORT) are applied by main before this runs.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	sanitizeConfig(&cfg)
	CurrentConfig = cfg
	return cfg, nil
}

// sanitizeConfig clamps values a hand-edited config file could break.
func sanitizeConfig(cfg *types.AppConfig) {
	if cfg.ScanPollIntervalSeconds <= 0 {
		cfg.ScanPollIntervalSeconds = 1
	}
	if cfg.ScanTimeoutSeconds <= 0 {
		cfg.ScanTimeoutSeconds = 120
	}
	if cfg.AutoRefreshIntervalSeconds <= 0 {
		cfg.AutoRefreshIntervalSeconds = 15
	}
	if cfg.AutoScanDefaultIntervalMins < types.AutoScanMinIntervalMinutes ||
		cfg.AutoScanDefaultIntervalMins > types.AutoScanMaxIntervalMinutes {
		cfg.AutoScanDefaultIntervalMins = 5
	}
	if cfg.BackendRateLimitRPS < 0 {
		cfg.BackendRateLimitRPS = 0
	}
}

func writeConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
