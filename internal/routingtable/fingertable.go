// Package routingtable implements the two routing structures a Chord node
// maintains: the finger table (O(log N) routing shortcuts) and the
// successor list (short-range fault tolerance). Each guards its own
// entries internally, so the enclosing node can read and update them from
// several goroutines without holding a lock of its own.
package routingtable

import (
	"sync"

	"chorddht/internal/domain"
)

// FingerTable holds domain.Bits routing entries. Entry i (1-based) is
// the successor of (self.ID + 2^(i-1)) mod 2^Bits; entry 1 therefore
// always mirrors the node's immediate successor.
type FingerTable struct {
	self    domain.ID
	mu      sync.RWMutex
	entries []*domain.NodeInfo // 1-based; entries[0] unused
}

// NewFingerTable allocates an empty table for a node with identifier self.
func NewFingerTable(self domain.ID) *FingerTable {
	return &FingerTable{self: self, entries: make([]*domain.NodeInfo, domain.Bits+1)}
}

// Set installs n at 1-based index i.
func (ft *FingerTable) Set(i int, n domain.NodeInfo) {
	cp := n
	ft.mu.Lock()
	ft.entries[i] = &cp
	ft.mu.Unlock()
}

// Get returns the entry at 1-based index i, or false if unset.
func (ft *FingerTable) Get(i int) (domain.NodeInfo, bool) {
	ft.mu.RLock()
	e := ft.entries[i]
	ft.mu.RUnlock()
	if e == nil {
		return domain.NodeInfo{}, false
	}
	return *e, true
}

// Clear empties the entry at index i.
func (ft *FingerTable) Clear(i int) {
	ft.mu.Lock()
	ft.entries[i] = nil
	ft.mu.Unlock()
}

// Successor is shorthand for Get(1): the finger table's first entry is
// always this node's immediate successor.
func (ft *FingerTable) Successor() (domain.NodeInfo, bool) {
	return ft.Get(1)
}

// ClosestPrecedingFinger scans entries from domain.Bits down to 1 and
// returns the first finger whose identifier lies on the open arc
// (self, target); if none qualifies it returns self, signalling that no
// closer hop is known.
func (ft *FingerTable) ClosestPrecedingFinger(target domain.ID, self domain.NodeInfo) domain.NodeInfo {
	for i := domain.Bits; i >= 1; i-- {
		n, ok := ft.Get(i)
		if !ok {
			continue
		}
		if n.ID.BetweenOpen(self.ID, target) {
			return n
		}
	}
	return self
}

// All returns a snapshot slice of the live (index, node) pairs, 1-based
// index preserved, for debugging and DebugLog-style dumps.
func (ft *FingerTable) All() []struct {
	Index int
	Node  domain.NodeInfo
} {
	var out []struct {
		Index int
		Node  domain.NodeInfo
	}
	for i := 1; i <= domain.Bits; i++ {
		if n, ok := ft.Get(i); ok {
			out = append(out, struct {
				Index int
				Node  domain.NodeInfo
			}{i, n})
		}
	}
	return out
}
