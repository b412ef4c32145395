// Package node implements the Chord peer: its routing state, the
// maintenance protocol that keeps that state converging, and the
// operations (publish/lookup/delete, join/leave) a caller or a remote
// peer can invoke against it.
package node

import (
	"math/rand"
	"sync"
	"time"

	"chorddht/internal/config"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
	"chorddht/internal/routingtable"
	"chorddht/internal/storage"
)

// Node holds one peer's view of the ring: its identity, its routing
// structures, its local key/value store, and the plumbing needed to
// issue RPCs to other peers. Predecessor and the alone flag are guarded
// by mu; the finger table and successor list guard their own entries
// internally (see internal/routingtable), so most reads of those do not
// need to take mu at all.
type Node struct {
	self domain.NodeInfo

	mu          sync.Mutex
	predecessor *domain.NodeInfo // nil when absent
	alone       bool

	fingers    *routingtable.FingerTable
	successors *routingtable.SuccessorList
	store      *storage.FileStore

	cfg    config.DHTConfig
	sender *RequestSender
	lgr    logger.Logger

	periodic     chan struct{}
	periodicDone chan struct{}
}

// New builds a Node for self but does not join it to any ring; call
// InitAlone or InitWithBootstrap before serving traffic.
func New(self domain.NodeInfo, cfg config.DHTConfig, sender *RequestSender, lgr logger.Logger) *Node {
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &Node{
		self:       self,
		fingers:    routingtable.NewFingerTable(self.ID),
		successors: routingtable.NewSuccessorList(self, cfg.MaxSuccessorNumber, lgr.Named("successorlist")),
		store:      storage.New(lgr.Named("store")),
		cfg:        cfg,
		sender:     sender,
		lgr:        lgr.Named("node").With(logger.FNode("self", self)),
	}
}

// Self returns this node's identifier and address.
func (n *Node) Self() domain.NodeInfo { return n.self }

// isSelf reports whether target denotes this very node, the condition
// under which an RPC must short-circuit to a direct method call instead
// of going out over Transport.
func (n *Node) isSelf(target domain.NodeInfo) bool {
	return target.ID.Equal(n.self.ID)
}

func (n *Node) getPredecessor() (domain.NodeInfo, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.predecessor == nil {
		return domain.NodeInfo{}, false
	}
	return *n.predecessor, true
}

func (n *Node) setPredecessor(p domain.NodeInfo) {
	n.mu.Lock()
	cp := p
	n.predecessor = &cp
	n.mu.Unlock()
}

func (n *Node) clearPredecessor() {
	n.mu.Lock()
	n.predecessor = nil
	n.mu.Unlock()
}

func (n *Node) isAlone() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.alone
}

func (n *Node) setAlone(v bool) {
	n.mu.Lock()
	n.alone = v
	n.mu.Unlock()
}

// FirstSuccessor is shorthand for the first entry of the successor list.
func (n *Node) FirstSuccessor() (domain.NodeInfo, bool) {
	return n.successors.First()
}

// Store exposes the local file store for the handler layer.
func (n *Node) Store() *storage.FileStore { return n.store }

// Predecessor exposes this node's current predecessor, for status
// reporting (print-node-status).
func (n *Node) Predecessor() (domain.NodeInfo, bool) { return n.getPredecessor() }

// Successors returns a snapshot of the live successor-list entries.
func (n *Node) Successors() []domain.NodeInfo { return n.successors.All() }

// Fingers returns a snapshot of the live finger-table entries, 1-based
// index preserved.
func (n *Node) Fingers() []struct {
	Index int
	Node  domain.NodeInfo
} {
	return n.fingers.All()
}

// IsAlone reports whether this node currently believes it is the sole
// member of the ring.
func (n *Node) IsAlone() bool { return n.isAlone() }

// InitAlone initializes the node as the sole member of the ring: the
// successor list is filled with R copies of self, the predecessor is
// self, and alone is true.
func (n *Node) InitAlone() {
	n.setPredecessor(n.self)
	n.setAlone(true)
	self := make([]domain.NodeInfo, n.cfg.MaxSuccessorNumber)
	for i := range self {
		self[i] = n.self
	}
	n.successors.ReplaceAll(self)
	n.fingers.Set(1, n.self)
	n.lgr.Info("initialized as sole member of the ring")
}

// randomFingerIndex returns a uniformly random index in [1, m], used by
// fix_finger. Declared as a package variable so tests can override it.
var randomFingerIndex = func() int {
	return rand.Intn(domain.Bits) + 1
}

func (n *Node) fingerTarget(i int) domain.ID {
	return domain.FingerTarget(n.self.ID, i)
}

// periodicTickInterval substitutes the 2500ms default for a non-positive
// cfg.PeriodicInterval and otherwise returns it unchanged; Validate in
// internal/config already enforces the specification's bounds, this is a
// last-resort guard against a zero interval for nodes constructed without
// going through it.
func periodicTickInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return 2500 * time.Millisecond
	}
	return d
}
