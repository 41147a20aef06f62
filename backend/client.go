package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// Service is the remote scanning backend boundary. Every call is blocking,
// context-aware and returns an explicit error on transport or rejection;
// callers decide how to degrade.
type Service interface {
	FetchDevices(ctx context.Context) ([]types.Device, error)
	FetchLogs(ctx context.Context) ([]types.LogEntry, error)
	BeginScan(ctx context.Context) error
	ForceScan(ctx context.Context) error
	ScanStatus(ctx context.Context) (bool, error)
	ToggleBlock(ctx context.Context, mac string) (bool, error)
	SetNickname(ctx context.Context, mac, nickname string) error
	PanicLock(ctx context.Context) (string, error)
	PanicUnlock(ctx context.Context) (string, error)
	StartAutoScan(ctx context.Context, intervalMinutes int) error
	StopAutoScan(ctx context.Context) error
	SetAutoScanInterval(ctx context.Context, intervalMinutes int) error
	AutoScanStatus(ctx context.Context) (types.AutoScanConfig, error)
}

// RejectedError is a backend-side refusal of a mutation: the call reached the
// backend but it answered with a non-success status. Distinct from transport
// faults so callers can surface the server's own message.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL string
	http    *http.Client
	poll    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a backend client. rateLimitRPS caps outgoing requests per
// second (0 = unlimited) so a tight poll loop cannot flood the backend.
func NewClient(baseURL string, rateLimitRPS int) *Client {
	var limiter *rate.Limiter
	if rateLimitRPS > 0 {
		burst := rateLimitRPS + 5
		limiter = rate.NewLimiter(rate.Limit(rateLimitRPS), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    tool.GetHttpClient(),
		poll:    tool.GetPollHttpClient(),
		limiter: limiter,
	}
}

// Host returns the backend hostname, for reachability probing.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (c *Client) do(ctx context.Context, client *http.Client, method, path string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %v", err)
		}
	}
	urlStr := c.baseURL + path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %v", path, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s failed: %v", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend response %s unreadable: %v", path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &RejectedError{Message: rejectionMessage(resp.StatusCode, body)}
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend response %s malformed: %v", path, err)
	}
	return nil
}

// rejectionMessage extracts the backend's human-readable detail, falling back
// to the bare status code.
func rejectionMessage(code int, body []byte) string {
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &detail); err == nil {
		if detail.Detail != "" {
			return detail.Detail
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	return fmt.Sprintf("backend returned HTTP %d", code)
}

func (c *Client) FetchDevices(ctx context.Context) ([]types.Device, error) {
	var records []deviceRecord
	if err := c.do(ctx, c.http, http.MethodGet, "/api/devices", nil, &records); err != nil {
		return nil, err
	}
	devices := make([]types.Device, 0, len(records))
	for _, r := range records {
		devices = append(devices, r.toDevice())
	}
	return devices, nil
}

func (c *Client) FetchLogs(ctx context.Context) ([]types.LogEntry, error) {
	var records []logRecord
	if err := c.do(ctx, c.http, http.MethodGet, "/api/logs", nil, &records); err != nil {
		return nil, err
	}
	entries := make([]types.LogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func (c *Client) BeginScan(ctx context.Context) error {
	var ack scanAck
	if err := c.do(ctx, c.http, http.MethodPost, "/api/scan", nil, &ack); err != nil {
		return err
	}
	tool.DefaultLogger.Debugf("Backend scan ack: %s", ack.Message)
	return nil
}

func (c *Client) ForceScan(ctx context.Context) error {
	var ack scanAck
	if err := c.do(ctx, c.http, http.MethodPost, "/api/scan/force", nil, &ack); err != nil {
		return err
	}
	tool.DefaultLogger.Debugf("Backend force scan ack: %s", ack.Message)
	return nil
}

// ScanStatus asks the backend whether a scan is currently running. Uses the
// tight-deadline poll client so a stuck backend cannot stall the poll loop.
func (c *Client) ScanStatus(ctx context.Context) (bool, error) {
	var status scanStatusResult
	if err := c.do(ctx, c.poll, http.MethodGet, "/api/scan/status", nil, &status); err != nil {
		return false, err
	}
	return status.IsScanning, nil
}

func (c *Client) ToggleBlock(ctx context.Context, mac string) (bool, error) {
	path := "/api/device/" + url.PathEscape(mac) + "/block"
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, path, nil, &result); err != nil {
		return false, err
	}
	if result.Status != "success" || result.IsBlocked == nil {
		return false, &RejectedError{Message: nonSuccess(result)}
	}
	return *result.IsBlocked, nil
}

func (c *Client) SetNickname(ctx context.Context, mac, nickname string) error {
	path := "/api/device/" + url.PathEscape(mac) + "/nickname"
	query := url.Values{"nickname": {nickname}}
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, path, query, &result); err != nil {
		return err
	}
	if result.Status != "success" {
		return &RejectedError{Message: nonSuccess(result)}
	}
	return nil
}

func (c *Client) PanicLock(ctx context.Context) (string, error) {
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/panic", nil, &result); err != nil {
		return "", err
	}
	if result.Status != "success" {
		return "", &RejectedError{Message: nonSuccess(result)}
	}
	return result.Message, nil
}

func (c *Client) PanicUnlock(ctx context.Context) (string, error) {
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/panic/unlock", nil, &result); err != nil {
		return "", err
	}
	if result.Status != "success" {
		return "", &RejectedError{Message: nonSuccess(result)}
	}
	return result.Message, nil
}

func (c *Client) StartAutoScan(ctx context.Context, intervalMinutes int) error {
	query := url.Values{"interval_minutes": {strconv.Itoa(intervalMinutes)}}
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/auto-scan/start", query, &result); err != nil {
		return err
	}
	if result.Status != "success" {
		return &RejectedError{Message: nonSuccess(result)}
	}
	return nil
}

func (c *Client) StopAutoScan(ctx context.Context) error {
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/auto-scan/stop", nil, &result); err != nil {
		return err
	}
	if result.Status != "success" {
		return &RejectedError{Message: nonSuccess(result)}
	}
	return nil
}

// SetAutoScanInterval forwards a new interval. The backend applies it on the
// next auto-scan restart, and answers "warning" when a restart is required;
// that is not a rejection.
func (c *Client) SetAutoScanInterval(ctx context.Context, intervalMinutes int) error {
	query := url.Values{"interval_minutes": {strconv.Itoa(intervalMinutes)}}
	var result mutationResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/auto-scan/interval", query, &result); err != nil {
		return err
	}
	if result.Status != "success" && result.Status != "warning" {
		return &RejectedError{Message: nonSuccess(result)}
	}
	return nil
}

func (c *Client) AutoScanStatus(ctx context.Context) (types.AutoScanConfig, error) {
	var status autoScanStatusResult
	if err := c.do(ctx, c.http, http.MethodGet, "/api/auto-scan/status", nil, &status); err != nil {
		return types.AutoScanConfig{}, err
	}
	return types.AutoScanConfig{
		Enabled:         status.Enabled,
		IntervalMinutes: status.IntervalMinutes,
	}, nil
}

func nonSuccess(result mutationResult) string {
	if result.Message != "" {
		return result.Message
	}
	return "backend rejected the request"
}
