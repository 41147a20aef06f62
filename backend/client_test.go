package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentriwatch/sentriwatch/types"
)

func TestFetchDevicesDecodesWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/devices" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"mac":"aa:bb:cc:dd:ee:01","ip":"10.0.0.1","vendor":"HP","hostname":"printer",
			 "risk_score":35,"os_type":"Linux","device_type":"Printer","open_ports":2,
			 "latency":12.5,"nickname":"Office Printer","is_blocked":1,"harmful":false},
			{"mac":"aa:bb:cc:dd:ee:02","ip":"10.0.0.2","vendor":"","hostname":"",
			 "risk_score":0,"latency":null,"nickname":null,"is_blocked":0}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	devices, err := c.FetchDevices(context.Background())
	if err != nil {
		t.Fatalf("FetchDevices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}

	d := devices[0]
	if !d.IsBlocked {
		t.Error("is_blocked=1 must decode to true")
	}
	if d.Nickname != "Office Printer" {
		t.Errorf("Nickname = %q", d.Nickname)
	}
	if d.LatencyMs == nil || *d.LatencyMs != 12.5 {
		t.Error("Latency not decoded")
	}
	if d.OpenPortsCount != 2 {
		t.Errorf("OpenPortsCount = %d", d.OpenPortsCount)
	}

	d = devices[1]
	if d.IsBlocked {
		t.Error("is_blocked=0 must decode to false")
	}
	if d.Nickname != "" {
		t.Errorf("Null nickname must decode to empty, got %q", d.Nickname)
	}
	if d.LatencyMs != nil {
		t.Error("Null latency must stay nil")
	}
}

func TestScanStatus(t *testing.T) {
	scanning := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if scanning {
			_, _ = w.Write([]byte(`{"is_scanning":true,"started_at":1756713600.0}`))
			return
		}
		_, _ = w.Write([]byte(`{"is_scanning":false,"device_count":12}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	got, err := c.ScanStatus(context.Background())
	if err != nil {
		t.Fatalf("ScanStatus failed: %v", err)
	}
	if !got {
		t.Error("Expected scanning=true")
	}

	scanning = false
	got, err = c.ScanStatus(context.Background())
	if err != nil {
		t.Fatalf("ScanStatus failed: %v", err)
	}
	if got {
		t.Error("Expected scanning=false")
	}
}

func TestToggleBlockEscapesMACAndConfirms(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status":"success","isBlocked":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	blocked, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01")
	if err != nil {
		t.Fatalf("ToggleBlock failed: %v", err)
	}
	if !blocked {
		t.Error("Expected confirmed blocked state")
	}
	if gotPath != "/api/device/aa:bb:cc:dd:ee:01/block" {
		t.Errorf("Unexpected path %s", gotPath)
	}
}

func TestToggleBlockRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Device not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.ToggleBlock(context.Background(), "aa:bb:cc:dd:ee:01")
	var rej *RejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("Expected RejectedError, got %v", err)
	}
	if rej.Message != "Device not found" {
		t.Errorf("Message = %q, want backend detail", rej.Message)
	}
}

func TestSetNicknameSendsQueryParam(t *testing.T) {
	var gotNickname string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNickname = r.URL.Query().Get("nickname")
		_, _ = w.Write([]byte(`{"status":"success","nickname":"NAS Box"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if err := c.SetNickname(context.Background(), "aa:bb:cc:dd:ee:02", "NAS Box"); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}
	if gotNickname != "NAS Box" {
		t.Errorf("nickname query = %q", gotNickname)
	}
}

func TestAutoScanRoundTrip(t *testing.T) {
	var startInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auto-scan/start":
			startInterval = r.URL.Query().Get("interval_minutes")
			_, _ = w.Write([]byte(`{"status":"success"}`))
		case "/api/auto-scan/status":
			_, _ = w.Write([]byte(`{"enabled":true,"interval_minutes":10}`))
		case "/api/auto-scan/interval":
			// Applies on next restart.
			_, _ = w.Write([]byte(`{"status":"warning","message":"takes effect on restart"}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	if err := c.StartAutoScan(context.Background(), 10); err != nil {
		t.Fatalf("StartAutoScan failed: %v", err)
	}
	if startInterval != "10" {
		t.Errorf("interval_minutes query = %q", startInterval)
	}

	cfg, err := c.AutoScanStatus(context.Background())
	if err != nil {
		t.Fatalf("AutoScanStatus failed: %v", err)
	}
	if !cfg.Enabled || cfg.IntervalMinutes != 10 {
		t.Errorf("Unexpected config %+v", cfg)
	}

	// A warning answer counts as accepted for interval updates.
	if err := c.SetAutoScanInterval(context.Background(), 15); err != nil {
		t.Errorf("SetAutoScanInterval treated warning as rejection: %v", err)
	}
}

func TestPanicLockReturnsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"All devices blocked"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	msg, err := c.PanicLock(context.Background())
	if err != nil {
		t.Fatalf("PanicLock failed: %v", err)
	}
	if msg != "All devices blocked" {
		t.Errorf("Message = %q", msg)
	}
}

func TestFetchLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"time":"2026-09-01 10:00:00","event":"Scan completed","type":"success"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	entries, err := c.FetchLogs(context.Background())
	if err != nil {
		t.Fatalf("FetchLogs failed: %v", err)
	}
	want := types.LogEntry{ID: 7, Time: "2026-09-01 10:00:00", Event: "Scan completed", Type: "success"}
	if len(entries) != 1 || entries[0] != want {
		t.Errorf("Entries = %+v", entries)
	}
}
