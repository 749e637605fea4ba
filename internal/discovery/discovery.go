// Package discovery enumerates candidate radios reachable from this host:
// serial devices matching known USB-serial prefixes, and network-bridged
// radios reachable at the host subnet's .1 address. Each medium is a
// pluggable DiscoveryBackend rather than a shell-out to system binaries.
package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Result is one discovered candidate radio.
type Result struct {
	ID          string
	VendorID    string
	ProductID   string
	Serial      string
	Endpoint    string
	DisplayName string
}

// DiscoveryBackend enumerates candidates of one kind (serial, network, …).
// Implementations must be safe to call repeatedly and must not block
// longer than a bounded handshake timeout.
type DiscoveryBackend interface {
	Poll(ctx context.Context) ([]Result, error)
}

// knownSerialPrefixes are the USB-serial device name prefixes Motorola CPS
// cables enumerate under on POSIX systems.
var knownSerialPrefixes = []string{"cu.usbserial-", "cu.usbmodem-", "ttyUSB", "ttyACM"}

// SerialBackend lists serial device entries under a root directory (normally
// /dev) matching knownSerialPrefixes.
type SerialBackend struct {
	// ListDevices returns device base names under the scan root; overridable
	// for tests. Defaults to a real /dev listing via ReadDevDir.
	ListDevices func() ([]string, error)
}

func (b *SerialBackend) Poll(ctx context.Context) ([]Result, error) {
	list := b.ListDevices
	if list == nil {
		list = ReadDevDir
	}
	names, err := list()
	if err != nil {
		return nil, fmt.Errorf("discovery: list serial devices: %w", err)
	}
	var out []Result
	for _, name := range names {
		for _, prefix := range knownSerialPrefixes {
			if strings.HasPrefix(name, prefix) {
				out = append(out, Result{
					ID:          uuid.NewString(),
					Endpoint:    "/dev/" + name,
					DisplayName: "Serial: " + name,
				})
				break
			}
		}
	}
	return out, nil
}

// NetworkBackend probes the .1 address of every local IPv4 /24 the host
// participates in with a bounded TCP handshake to the XNL port.
type NetworkBackend struct {
	// Interfaces returns local network interfaces; overridable for tests.
	// Defaults to net.Interfaces.
	Interfaces func() ([]net.Interface, error)
	DialTimeout time.Duration
	Port        int
}

func (b *NetworkBackend) Poll(ctx context.Context) ([]Result, error) {
	ifacesFn := b.Interfaces
	if ifacesFn == nil {
		ifacesFn = net.Interfaces
	}
	ifaces, err := ifacesFn()
	if err != nil {
		return nil, fmt.Errorf("discovery: list interfaces: %w", err)
	}
	timeout := b.DialTimeout
	if timeout == 0 {
		timeout = 500 * time.Millisecond
	}
	port := b.Port
	if port == 0 {
		port = 8002
	}

	var out []Result
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil || ipNet.IP.IsLoopback() {
				continue
			}
			candidate := dotOneOf(ipNet.IP.To4())
			if candidate == "" {
				continue
			}
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", candidate, port), timeout)
			if err != nil {
				continue
			}
			conn.Close()
			out = append(out, Result{
				ID:          uuid.NewString(),
				Endpoint:    candidate,
				DisplayName: "Network bridge: " + candidate,
			})
		}
	}
	return out, nil
}

func dotOneOf(ip net.IP) string {
	if len(ip) != 4 {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.1", ip[0], ip[1], ip[2])
}

// Poller runs a set of backends on a fixed interval and exposes the
// most recent idempotent result set. It is the single writer of its own
// state; callers only read.
type Poller struct {
	Backends []DiscoveryBackend
	Interval time.Duration
	Log      logrus.FieldLogger

	mu      sync.RWMutex
	results []Result

	cancel context.CancelFunc
}

func (p *Poller) log() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	return logrus.StandardLogger()
}

// Start begins background polling every Interval (default ~2s).
func (p *Poller) Start(ctx context.Context) {
	interval := p.Interval
	if interval == 0 {
		interval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		p.pollOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.pollOnce(ctx)
			}
		}
	}()
}

// Stop halts the background poller.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	var merged []Result
	for _, b := range p.Backends {
		results, err := b.Poll(ctx)
		if err != nil {
			p.log().WithError(err).Warn("discovery backend poll failed")
			continue
		}
		merged = append(merged, results...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Endpoint < merged[j].Endpoint })

	p.mu.Lock()
	p.results = merged
	p.mu.Unlock()
}

// Results returns the most recent poll's result set.
func (p *Poller) Results() []Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}
