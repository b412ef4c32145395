package routingtable

import (
	"sync"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// successorEntry holds one successor-list slot behind its own lock, so a
// stabilize goroutine can update one slot while a lookup reads another.
type successorEntry struct {
	mu   sync.RWMutex
	node *domain.NodeInfo
}

func (e *successorEntry) set(n *domain.NodeInfo) {
	e.mu.Lock()
	e.node = n
	e.mu.Unlock()
}

func (e *successorEntry) get() *domain.NodeInfo {
	e.mu.RLock()
	n := e.node
	e.mu.RUnlock()
	return n
}

// SuccessorList is the bounded, ordered list of immediate successors a
// node keeps for fault tolerance: when the first successor fails, the
// next live entry takes its place without a full re-lookup.
type SuccessorList struct {
	self    domain.NodeInfo
	entries []*successorEntry
	lgr     logger.Logger
}

// NewSuccessorList allocates an empty list of capacity r for a node
// identified by self.
func NewSuccessorList(self domain.NodeInfo, r int, lgr logger.Logger) *SuccessorList {
	if lgr == nil {
		lgr = logger.Nop()
	}
	sl := &SuccessorList{self: self, entries: make([]*successorEntry, r), lgr: lgr}
	for i := range sl.entries {
		sl.entries[i] = &successorEntry{}
	}
	return sl
}

// Len returns the configured capacity (R), not the number of live entries.
func (sl *SuccessorList) Len() int { return len(sl.entries) }

// Get returns the node at index i, or false if i is out of range or empty.
func (sl *SuccessorList) Get(i int) (domain.NodeInfo, bool) {
	if i < 0 || i >= len(sl.entries) {
		return domain.NodeInfo{}, false
	}
	n := sl.entries[i].get()
	if n == nil {
		return domain.NodeInfo{}, false
	}
	return *n, true
}

// Set installs n at index i. Out-of-range indices are logged and ignored.
func (sl *SuccessorList) Set(i int, n domain.NodeInfo) {
	if i < 0 || i >= len(sl.entries) {
		sl.lgr.Warn("successorlist: index out of range", logger.F("index", i), logger.F("size", len(sl.entries)))
		return
	}
	cp := n
	sl.entries[i].set(&cp)
}

// Clear empties index i.
func (sl *SuccessorList) Clear(i int) {
	if i < 0 || i >= len(sl.entries) {
		return
	}
	sl.entries[i].set(nil)
}

// First is shorthand for Get(0): the node's immediate successor.
func (sl *SuccessorList) First() (domain.NodeInfo, bool) {
	return sl.Get(0)
}

// All returns the live entries in order, skipping empty slots.
func (sl *SuccessorList) All() []domain.NodeInfo {
	out := make([]domain.NodeInfo, 0, len(sl.entries))
	for _, e := range sl.entries {
		if n := e.get(); n != nil {
			out = append(out, *n)
		}
	}
	return out
}

// ReplaceAll overwrites the whole list with nodes, truncating if nodes is
// longer than capacity and padding with empty slots if shorter. Used to
// fill the list with R copies of one node (InitAlone, ImNotAloneAnymore).
func (sl *SuccessorList) ReplaceAll(nodes []domain.NodeInfo) {
	cap := len(sl.entries)
	if len(nodes) > cap {
		sl.lgr.Warn("successorlist: truncating replacement list", logger.F("capacity", cap), logger.F("got", len(nodes)))
		nodes = nodes[:cap]
	}
	for i, n := range nodes {
		sl.Set(i, n)
	}
	for i := len(nodes); i < cap; i++ {
		sl.Clear(i)
	}
}

// PromoteFrom drops the dead entry at index i and shifts every later
// entry one slot forward, vacating the tail slot. Entries before i are
// left in place. Used by successor-list repair when an entry is found
// unreachable.
func (sl *SuccessorList) PromoteFrom(i int) {
	cap := len(sl.entries)
	if i < 0 || i >= cap {
		return
	}
	for j := i; j < cap-1; j++ {
		if n, ok := sl.Get(j + 1); ok {
			sl.Set(j, n)
		} else {
			sl.Clear(j)
		}
	}
	sl.Clear(cap - 1)
}

// ClosestSuccessor returns the first live entry whose identifier lies on
// the arc (self.ID, target], i.e. the tightest known successor of target
// this node is aware of through its successor list alone. ok is false if
// no entry qualifies, meaning the finger table must be consulted instead.
func (sl *SuccessorList) ClosestSuccessor(target domain.ID) (domain.NodeInfo, bool) {
	for _, n := range sl.All() {
		if target.Between(sl.self.ID, n.ID) {
			return n, true
		}
	}
	return domain.NodeInfo{}, false
}
