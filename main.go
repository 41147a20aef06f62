package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sentriwatch/sentriwatch/api"
	"github.com/sentriwatch/sentriwatch/api/notifyhub"
	"github.com/sentriwatch/sentriwatch/autoscan"
	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/mutate"
	"github.com/sentriwatch/sentriwatch/notify"
	"github.com/sentriwatch/sentriwatch/refresh"
	"github.com/sentriwatch/sentriwatch/scan"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

func main() {
	if err := godotenv.Load(); err != nil {
		tool.DefaultLogger.Debug("No .env file found")
	}

	cfg := tool.SetFlags()
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	// Overrides: env first, flags win.
	if v := os.Getenv("BACKEND_URL"); v != "" {
		appCfg.BackendURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			appCfg.Port = port
		}
	}
	if cfg.UseBackendURL != "" {
		appCfg.BackendURL = cfg.UseBackendURL
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}
	if cfg.UseScanTimeout > 0 {
		appCfg.ScanTimeoutSeconds = cfg.UseScanTimeout
	}

	tool.InitLogger()
	tool.ApplyLogMode(cfg.Log)

	client := backend.NewClient(appCfg.BackendURL, appCfg.BackendRateLimitRPS)
	inventory := store.NewInventory()
	eventLog := store.NewEventLog()
	refresher := &refresh.Refresher{
		Backend:   client,
		Inventory: inventory,
		Log:       eventLog,
	}

	hub := notifyhub.New()
	notify.RegisterHub(hub)

	scanCtl := scan.NewController(client, refresher,
		time.Duration(appCfg.ScanPollIntervalSeconds)*time.Second,
		time.Duration(appCfg.ScanTimeoutSeconds)*time.Second)
	scheduler := autoscan.NewScheduler(client, refresher,
		time.Duration(appCfg.AutoRefreshIntervalSeconds)*time.Second)
	coordinator := mutate.NewCoordinator(client, inventory, refresher)

	// Initial snapshots, then mirror the server-side auto-scan toggle.
	startupCtx, cancel := context.WithTimeout(context.Background(), tool.DefaultTimeout)
	if err := refresher.RefreshAll(startupCtx); err != nil {
		tool.DefaultLogger.Warnf("Initial refresh incomplete, dashboard starts stale: %v", err)
	}
	if !cfg.SkipAutoScanSync {
		if err := scheduler.SyncFromBackend(startupCtx); err != nil {
			tool.DefaultLogger.Warnf("Auto-scan state not mirrored: %v", err)
		}
	}
	cancel()

	apiServer := api.NewServer(appCfg.Port, api.Deps{
		Inventory:               inventory,
		Log:                     eventLog,
		Scan:                    scanCtl,
		Scheduler:               scheduler,
		Coordinator:             coordinator,
		Hub:                     hub,
		BackendHost:             client.Host(),
		DefaultAutoScanInterval: appCfg.AutoScanDefaultIntervalMins,
	})
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	select {}
}
