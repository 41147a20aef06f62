package tool

import (
	"crypto/tls"
	"net/http"
	"time"
)

var (
	DefaultTimeout    = 30 * time.Second
	BackendHttpClient *http.Client
	PollHttpClient    *http.Client
)

func init() {
	BackendHttpClient = NewHTTPClient(DefaultTimeout)
	// Status polls run on a 1s cadence, so they get a much tighter deadline
	// to guarantee a tick can never outlive the next one by much.
	PollHttpClient = NewHTTPClient(5 * time.Second)
}

// NewHTTPClient creates an HTTP client, skipping self-signed certificate verification
// so a backend running with a local certificate still works.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func GetHttpClient() *http.Client {
	return BackendHttpClient
}

func GetPollHttpClient() *http.Client {
	return PollHttpClient
}
