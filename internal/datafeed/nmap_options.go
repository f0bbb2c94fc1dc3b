package datafeed

import (
	"time"

	"go.uber.org/zap"
)

// NmapOption is a functional option for configuring NmapFeed
type NmapOption func(*NmapFeed)

// WithPortRange sets the ports to scan. Invalid ranges are ignored; use
// ValidatePorts first when the caller needs an error.
// Format: "80,443,8080" or "1-1000" or "22,80-443,8080"
func WithPortRange(ports string) NmapOption {
	return func(n *NmapFeed) {
		if validated, err := parsePorts(ports); err == nil {
			n.portRange = validated
		}
	}
}

// WithServiceDetection enables or disables service version detection (-sV)
func WithServiceDetection(enabled bool) NmapOption {
	return func(n *NmapFeed) {
		n.serviceDetection = enabled
	}
}

// WithSkipHostDiscovery treats all hosts as online (-Pn)
func WithSkipHostDiscovery(skip bool) NmapOption {
	return func(n *NmapFeed) {
		n.skipHostDiscovery = skip
	}
}

// WithScanTimeout bounds a single poll
func WithScanTimeout(d time.Duration) NmapOption {
	return func(n *NmapFeed) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithNmapLogger sets the logger used for scan diagnostics
func WithNmapLogger(logger *zap.Logger) NmapOption {
	return func(n *NmapFeed) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// ValidatePorts reports whether an nmap port list is well formed
func ValidatePorts(ports string) error {
	_, err := parsePorts(ports)
	return err
}
