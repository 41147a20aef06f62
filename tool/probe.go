package tool

import (
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// QuickICMPProbe sends a single unprivileged ICMP echo to host and reports
// whether a reply arrived within timeout. Used to distinguish "backend down"
// from "backend host unreachable" on the status endpoint.
func QuickICMPProbe(host string, timeout time.Duration) bool {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		DefaultLogger.Debugf("ICMP probe setup failed for %s: %v", host, err)
		return false
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)
	if err := pinger.Run(); err != nil {
		DefaultLogger.Debugf("ICMP probe failed for %s: %v", host, err)
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}
