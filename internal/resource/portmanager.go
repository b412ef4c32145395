// Package resource manages the TCP ports a process hands out to locally
// hosted nodes: dynamic-range ports are preferred, with fallback to the
// registered range once the dynamic range is exhausted, per the
// specification's port policy.
package resource

import (
	"sync"

	"chorddht/internal/chorderr"
)

const (
	firstRegisteredPort = 1024
	lastRegisteredPort  = 49151
	firstDynamicPort    = 49152
	lastDynamicPort     = 65535
)

// PortManager hands out and reclaims TCP ports for an overlay's local
// nodes, so two create-node calls in the same process never collide.
type PortManager struct {
	mu   sync.Mutex
	used map[int]bool
}

// NewPortManager builds a manager with every port in both ranges free.
func NewPortManager() *PortManager {
	return &PortManager{used: make(map[int]bool)}
}

// portType reports "dynamic" or "registered" for a valid port, or "" for
// one outside both managed ranges.
func portType(port int) string {
	switch {
	case port >= firstDynamicPort && port <= lastDynamicPort:
		return "dynamic"
	case port >= firstRegisteredPort && port <= lastRegisteredPort:
		return "registered"
	default:
		return ""
	}
}

// GetFreePort returns the lowest free port in the dynamic range, falling
// back to the registered range once the dynamic range is fully used. It
// fails with chorderr.NoFreePorts once both ranges are exhausted.
func (pm *PortManager) GetFreePort() (int, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for p := firstDynamicPort; p <= lastDynamicPort; p++ {
		if !pm.used[p] {
			pm.used[p] = true
			return p, nil
		}
	}
	for p := firstRegisteredPort; p <= lastRegisteredPort; p++ {
		if !pm.used[p] {
			pm.used[p] = true
			return p, nil
		}
	}
	return 0, chorderr.New(chorderr.NoFreePorts, "TCP ports are out of stock")
}

// MarkUsed reserves a specific port, e.g. one requested explicitly by an
// operator rather than allocated by GetFreePort. It fails with
// chorderr.InvalidPort if port lies outside both managed ranges, and with
// chorderr.PortInUse if it is already reserved.
func (pm *PortManager) MarkUsed(port int) error {
	if portType(port) == "" {
		return chorderr.New(chorderr.InvalidPort, "port outside managed ranges")
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.used[port] {
		return chorderr.New(chorderr.PortInUse, "port already reserved")
	}
	pm.used[port] = true
	return nil
}

// Free releases port back to its range. Freeing a port that was never
// marked used is chorderr.FreeingUnusedPort; freeing one outside both
// ranges is chorderr.InvalidPort.
func (pm *PortManager) Free(port int) error {
	if portType(port) == "" {
		return chorderr.New(chorderr.InvalidPort, "port outside managed ranges")
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if !pm.used[port] {
		return chorderr.New(chorderr.FreeingUnusedPort, "port was not reserved")
	}
	delete(pm.used, port)
	return nil
}

// IsUsed reports whether port is currently reserved.
func (pm *PortManager) IsUsed(port int) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.used[port]
}
