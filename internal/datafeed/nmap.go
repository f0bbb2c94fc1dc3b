package datafeed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"

	"doodledash/internal/domain"
)

// DefaultPortRange is scanned when no ports option is given
const DefaultPortRange = "22,25,53,80,443,445,3389,5432,5900,8080,8443,9090"

// scanFunc runs one nmap scan; replaced in tests
type scanFunc func(ctx context.Context, opts ...nmap.Option) (*nmap.Run, []string, error)

// NmapFeed scans its targets on every poll and emits one message per open
// port on each host that is up, e.g. "192.168.1.10 22/tcp ssh".
type NmapFeed struct {
	domain.Named
	targets           []string
	portRange         string
	serviceDetection  bool
	skipHostDiscovery bool
	timeout           time.Duration
	logger            *zap.Logger
	scan              scanFunc
}

// NewNmapFeed creates a new nmap-backed data feed
func NewNmapFeed(targets []string, opts ...NmapOption) *NmapFeed {
	feed := &NmapFeed{
		targets:          append([]string(nil), targets...),
		portRange:        DefaultPortRange,
		serviceDetection: true,
		timeout:          2 * time.Minute,
		logger:           zap.NewNop(),
		scan:             runNmap,
	}

	for _, opt := range opts {
		opt(feed)
	}

	return feed
}

// LatestEntities implements domain.DataFeed
func (n *NmapFeed) LatestEntities(ctx context.Context) ([]domain.Message, error) {
	if len(n.targets) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(n.targets...),
		nmap.WithPorts(n.portRange),
	}
	if n.serviceDetection {
		opts = append(opts, nmap.WithServiceInfo())
	}
	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	n.logger.Debug("starting nmap scan",
		zap.Strings("targets", n.targets),
		zap.String("ports", n.portRange))

	result, warnings, err := n.scan(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("nmap scan: %w", err)
	}
	if len(warnings) > 0 {
		n.logger.Warn("nmap reported warnings", zap.Strings("warnings", warnings))
	}

	return messagesFromRun(result), nil
}

func (n *NmapFeed) String() string {
	return fmt.Sprintf("Nmap %s (ports %s)", strings.Join(n.targets, ","), n.portRange)
}

func runNmap(ctx context.Context, opts ...nmap.Option) (*nmap.Run, []string, error) {
	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	var warns []string
	if warnings != nil {
		warns = *warnings
	}
	if err != nil {
		return nil, warns, err
	}
	return result, warns, nil
}

// messagesFromRun converts scan results into one message per open port
func messagesFromRun(result *nmap.Run) []domain.Message {
	if result == nil {
		return nil
	}

	var msgs []domain.Message
	for _, host := range result.Hosts {
		if len(host.Addresses) == 0 || host.Status.State != "up" {
			continue
		}

		label := hostLabel(host)
		for _, port := range host.Ports {
			if port.State.State != "open" {
				continue
			}

			text := fmt.Sprintf("%s %d/%s", label, port.ID, port.Protocol)
			if port.Service.Name != "" {
				text += " " + port.Service.Name
			}
			if port.Service.Product != "" {
				text += " " + strings.TrimSpace(port.Service.Product+" "+port.Service.Version)
			}
			msgs = append(msgs, domain.NewMessage(text, "nmap"))
		}
	}
	return msgs
}

// hostLabel prefers the reverse DNS name, then the IPv4 address
func hostLabel(host nmap.Host) string {
	if len(host.Hostnames) > 0 && host.Hostnames[0].Name != "" {
		return host.Hostnames[0].Name
	}
	for _, addr := range host.Addresses {
		if addr.AddrType == "ipv4" {
			return addr.Addr
		}
	}
	return host.Addresses[0].Addr
}

// parsePorts validates an nmap port list such as "22,80-443,8080"
func parsePorts(portRange string) (string, error) {
	if strings.TrimSpace(portRange) == "" {
		return "", fmt.Errorf("empty port range")
	}

	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[1])
			}
			continue
		}

		port, err := strconv.Atoi(part)
		if err != nil || port < 1 || port > 65535 {
			return "", fmt.Errorf("invalid port number: %s", part)
		}
	}
	return portRange, nil
}
