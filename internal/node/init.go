package node

import (
	"context"
	"fmt"

	"chorddht/internal/chorderr"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// InitWithBootstrap joins the ring through peer B. Any RPC failure during
// the initial successor lookup is surfaced as chorderr.ImpossibleInit;
// the overlay container is responsible for retrying.
func (n *Node) InitWithBootstrap(ctx context.Context, b domain.NodeInfo) error {
	s, err := n.rpcFindKeySuccessor(ctx, b, n.self.ID)
	if err != nil {
		return chorderr.New(chorderr.ImpossibleInit, fmt.Sprintf("find_key_successor via bootstrap %s: %v", b.Addr(), err))
	}

	n.setAlone(false)
	n.clearPredecessor()
	n.successors.Set(0, s)
	n.fingers.Set(1, s)

	n.populateSuccessorList(ctx, s)
	n.populateFingerTable(ctx)

	wasAlone, err := n.rpcYoureNotAlone(ctx, b)
	if err != nil {
		n.lgr.Warn("init: YOURE_NOT_ALONE to bootstrap failed", logger.FNode("bootstrap", b), logger.F("err", err))
	} else if wasAlone {
		n.ImNotAloneAnymore(b)
	}

	first, ok := n.successors.First()
	if ok && !n.isSelf(first) {
		if pred, found, err := n.rpcGetPredecessor(ctx, first); err == nil && found {
			n.setPredecessor(pred)
		}
		files, err := n.rpcNotify(ctx, first)
		if err != nil {
			n.lgr.Warn("init: NOTIFY to first successor failed", logger.FNode("successor", first), logger.F("err", err))
		} else if resources, ferr := filesToResources(files); ferr == nil {
			for _, r := range resources {
				n.store.Put(r)
			}
		}
	}

	n.lgr.Info("joined ring via bootstrap", logger.FNode("bootstrap", b), logger.FNode("successor", s))
	return nil
}

// populateSuccessorList walks successor-of-successor starting from first
// to fill the remaining slots of the successor list; if a step's reply
// is self, every remaining slot is filled with self.
func (n *Node) populateSuccessorList(ctx context.Context, first domain.NodeInfo) {
	cur := first
	for i := 1; i < n.successors.Len(); i++ {
		if n.isSelf(cur) {
			n.successors.Set(i, n.self)
			continue
		}
		next, ok, err := n.rpcGetFirstSuccessor(ctx, cur)
		if err != nil || !ok {
			n.lgr.Warn("init: walking successor chain failed", logger.FNode("at", cur), logger.F("err", err))
			return
		}
		n.successors.Set(i, next)
		if next.Equal(n.self) {
			for j := i + 1; j < n.successors.Len(); j++ {
				n.successors.Set(j, n.self)
			}
			return
		}
		cur = next
	}
}

// populateFingerTable asks successors[0] for the successor of every
// finger target; an RPC failure triggers successor-list repair at 0.
func (n *Node) populateFingerTable(ctx context.Context) {
	for i := 1; i <= domain.Bits; i++ {
		first, ok := n.successors.First()
		if !ok {
			return
		}
		target := n.fingerTarget(i)
		s, err := n.rpcFindKeySuccessor(ctx, first, target)
		if err != nil {
			n.lgr.Warn("init: finger lookup failed, repairing", logger.F("index", i), logger.F("err", err))
			n.repopulateSuccessorList(ctx, 0)
			continue
		}
		n.fingers.Set(i, s)
	}
}
