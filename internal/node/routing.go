package node

import (
	"context"

	"chorddht/internal/chorderr"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// amIResponsible reports whether k falls in (predecessorID, self.ID], the
// modular ownership interval for this node's key range.
func (n *Node) amIResponsible(predecessorID domain.ID, k domain.ID) bool {
	return k.Between(predecessorID, n.self.ID)
}

// FindKeySuccessor resolves the node responsible for k, routing through
// the successor list and finger table and falling back to a remote hop
// when neither covers the target locally.
func (n *Node) FindKeySuccessor(ctx context.Context, k domain.ID) (domain.NodeInfo, error) {
	if k.Equal(n.self.ID) {
		return n.self, nil
	}

	if pred, ok := n.getPredecessor(); ok && n.amIResponsible(pred.ID, k) {
		return n.self, nil
	}

	if n.isAlone() {
		return n.self, nil
	}

	if succ, ok := n.successors.ClosestSuccessor(k); ok {
		return succ, nil
	}

	p := n.fingers.ClosestPrecedingFinger(k, n.self)
	if p.Equal(n.self) {
		if n.self.ID.Cmp(k) >= 0 {
			return n.self, nil
		}
		return domain.NodeInfo{}, chorderr.New(chorderr.NoSuccessorFound, k.String())
	}

	reply, err := n.rpcFindKeySuccessor(ctx, p, k)
	if err != nil {
		n.lgr.Warn("find_key_successor: hop failed, repairing successor list",
			logger.F("key", k.String()), logger.FNode("hop", p), logger.F("err", err))
		n.repopulateSuccessorList(ctx, 0)
		if n.self.ID.Cmp(k) >= 0 {
			return n.self, nil
		}
		return domain.NodeInfo{}, err
	}
	return reply, nil
}

// firstWorkingFinger PINGs every populated finger table entry and returns
// the first one that answers. If none answer it returns self, the
// signal that this node is truly alone.
func (n *Node) firstWorkingFinger(ctx context.Context) domain.NodeInfo {
	for _, e := range n.fingers.All() {
		if n.isSelf(e.Node) {
			continue
		}
		if err := n.rpcPing(ctx, e.Node); err == nil {
			return e.Node
		}
	}
	return n.self
}

// repopulateSuccessorList repairs a dead entry at index i by walking
// forward through the list (or, failing that, through the finger table)
// and re-announcing the new predecessor relationship to whichever
// candidate turns out to be reachable.
func (n *Node) repopulateSuccessorList(ctx context.Context, i int) {
	r := n.successors.Len()
	for j := i + 1; j < r; j++ {
		cand, ok := n.successors.Get(j)
		if !ok {
			continue
		}
		if n.announceNewPredecessor(ctx, i, cand) {
			// Drop every entry from i up to the reachable candidate, so
			// the candidate itself lands at index i.
			for k := i; k < j; k++ {
				n.successors.PromoteFrom(i)
			}
			return
		}
	}

	fallback := n.firstWorkingFinger(ctx)
	if i == 0 {
		n.successors.Set(0, fallback)
		return
	}
	n.successors.Set(i, fallback)
}

// announceNewPredecessor tells cand that its predecessor has changed,
// per the two sub-cases of successor-list repair: index 0 announces
// self, index >0 announces successors[i-1] and additionally notifies
// the predecessor-side chain of the new successor.
func (n *Node) announceNewPredecessor(ctx context.Context, i int, cand domain.NodeInfo) bool {
	if i == 0 {
		if err := n.rpcLeavingPred(ctx, cand, n.self, nil); err != nil {
			return false
		}
		return true
	}

	newPred, ok := n.successors.Get(i - 1)
	if !ok {
		return false
	}
	if err := n.rpcLeavingPred(ctx, cand, newPred, nil); err != nil {
		return false
	}
	if err := n.rpcLeavingSucc(ctx, newPred, cand); err != nil {
		n.lgr.Warn("repair: failed to notify predecessor-side chain",
			logger.FNode("newPred", newPred), logger.FNode("newSucc", cand), logger.F("err", err))
	}
	return true
}
