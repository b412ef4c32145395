package node

import (
	"context"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// Stabilize asks the current first successor for its predecessor and
// rectifies the successor-list head if that predecessor turns out to be
// a tighter fit, then notifies whichever node ends up first so it can
// hand back any keys this node now owns.
func (n *Node) Stabilize(ctx context.Context) {
	a, ok := n.successors.First()
	if !ok {
		return
	}

	p, found, err := n.rpcGetPredecessor(ctx, a)
	if err != nil {
		n.lgr.Warn("stabilize: get_predecessor failed, repairing successor list",
			logger.FNode("successor", a), logger.F("err", err))
		n.repopulateSuccessorList(ctx, 0)
		return
	}
	if !found || n.isSelf(p) {
		a = n.stabilizeNotify(ctx, a)
		return
	}

	normal := n.self.ID.Cmp(p.ID) < 0 && p.ID.Cmp(a.ID) < 0
	wrap := n.self.ID.Cmp(p.ID) > 0
	if normal || wrap {
		n.successors.Set(0, p)
		a = p
	}

	n.stabilizeNotify(ctx, a)
}

func (n *Node) stabilizeNotify(ctx context.Context, a domain.NodeInfo) domain.NodeInfo {
	files, err := n.rpcNotify(ctx, a)
	if err != nil {
		n.lgr.Warn("stabilize: notify failed, repairing successor list",
			logger.FNode("successor", a), logger.F("err", err))
		n.repopulateSuccessorList(ctx, 0)
		return a
	}
	resources, ferr := filesToResources(files)
	if ferr != nil {
		n.lgr.Warn("stabilize: dropped malformed file hand-off", logger.F("err", ferr))
		return a
	}
	for _, r := range resources {
		n.store.Put(r)
	}
	return a
}

// CheckPredecessor PINGs the known predecessor and clears it on failure.
func (n *Node) CheckPredecessor(ctx context.Context) {
	p, ok := n.getPredecessor()
	if !ok {
		return
	}
	if err := n.rpcPing(ctx, p); err != nil {
		n.lgr.Warn("check_predecessor: predecessor unresponsive, clearing", logger.FNode("predecessor", p), logger.F("err", err))
		n.clearPredecessor()
	}
}

// FixFinger refreshes one randomly chosen finger table entry per call,
// bounding per-tick cost at the price of O(m x ticks) full convergence.
func (n *Node) FixFinger(ctx context.Context) {
	i := randomFingerIndex()
	target := n.fingerTarget(i)
	s, err := n.FindKeySuccessor(ctx, target)
	if err != nil {
		n.lgr.Warn("fix_finger: lookup failed", logger.F("index", i), logger.F("err", err))
		return
	}
	n.fingers.Set(i, s)
}

// FixSuccessorList walks the successor list asking each live entry for
// its own first successor, shifting the result one slot to the right.
func (n *Node) FixSuccessorList(ctx context.Context) {
	r := n.successors.Len()
	for i := 0; i < r-1; i++ {
		cur, ok := n.successors.Get(i)
		if !ok {
			continue
		}
		if n.isSelf(cur) {
			for j := i + 1; j < r; j++ {
				n.successors.Set(j, n.self)
			}
			return
		}
		next, found, err := n.rpcGetFirstSuccessor(ctx, cur)
		if err != nil || !found {
			continue
		}
		n.successors.Set(i+1, next)
		if next.Equal(n.self) {
			for j := i + 2; j < r; j++ {
				n.successors.Set(j, n.self)
			}
			return
		}
	}
}

// CheckIfImAlone recomputes the alone flag: true iff the predecessor is
// absent or self, and every successor list entry is self.
func (n *Node) CheckIfImAlone(ctx context.Context) {
	pred, ok := n.getPredecessor()
	predAlone := !ok || pred.ID.Equal(n.self.ID)
	if !predAlone {
		n.setAlone(false)
		return
	}
	for _, s := range n.successors.All() {
		if !s.ID.Equal(n.self.ID) {
			n.setAlone(false)
			return
		}
	}
	n.setAlone(true)
}
