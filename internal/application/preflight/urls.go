package preflight

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// Localizer rewrites in-cluster service URLs to host-reachable ones.
type Localizer struct {
	HostPrefixes []string
	PortRemap    map[int]int
}

// NewLocalizer builds a localizer from the pre-flight settings.
func NewLocalizer(cfg domain.PreflightSettings) Localizer {
	return Localizer{HostPrefixes: cfg.InternalHostPrefixes, PortRemap: cfg.PortRemap}
}

// Localize maps internal hostnames to localhost and remaps published ports.
// Unparseable input is returned unchanged.
func (l Localizer) Localize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := u.Hostname()
	port := u.Port()
	for _, prefix := range l.HostPrefixes {
		if prefix != "" && strings.HasPrefix(host, prefix) {
			host = "localhost"
			break
		}
	}
	if port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			if mapped, ok := l.PortRemap[n]; ok {
				port = strconv.Itoa(mapped)
			}
		}
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}
	return u.String()
}

// HealthURL resolves the URL probed by the health check. The second return
// is false when the entry exposes no health endpoint.
func (l Localizer) HealthURL(entry domain.ServiceEntry) (string, bool) {
	switch {
	case entry.LocalOverrideURL != "":
		return entry.LocalOverrideURL, true
	case entry.HealthURL != "":
		return l.Localize(entry.HealthURL), true
	case entry.BaseURL != "":
		return l.Localize(joinPath(entry.BaseURL, "/health")), true
	default:
		return "", false
	}
}

// MetricsURL resolves the URL probed by the metrics check: metrics_url, then
// base_url + /metrics, then the health URL with /health swapped for /metrics.
func (l Localizer) MetricsURL(entry domain.ServiceEntry) (string, bool) {
	switch {
	case entry.MetricsURL != "":
		return l.Localize(entry.MetricsURL), true
	case entry.BaseURL != "":
		return l.Localize(joinPath(entry.BaseURL, "/metrics")), true
	}
	health, ok := l.HealthURL(entry)
	if !ok {
		return "", false
	}
	return strings.Replace(health, "/health", "/metrics", 1), true
}

func joinPath(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
