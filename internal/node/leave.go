package node

import (
	"context"

	"chorddht/internal/logger"
)

// Terminate runs the graceful-leave protocol: it stops periodic
// maintenance, hands the local file store to the successor along with
// this node's predecessor, tells the predecessor who its new successor
// is, and returns. Closing the network listener is the caller's
// responsibility (internal/server), since Node has no handle on it.
// Every RPC here is best-effort: failures are logged and swallowed, not
// propagated, matching a departing node's priority of not blocking on a
// peer that may itself be gone.
func (n *Node) Terminate(ctx context.Context) {
	n.StopPeriodic()

	pred, hasPred := n.getPredecessor()
	if succ, ok := n.successors.First(); ok && !n.isSelf(succ) {
		files := resourcesToFiles(n.store.DrainAll())
		if err := n.rpcLeavingPred(ctx, succ, pred, files); err != nil {
			n.lgr.Warn("terminate: leaving_pred failed", logger.FNode("successor", succ), logger.F("err", err))
		}
	}

	if hasPred && !n.isSelf(pred) {
		if succ, ok := n.successors.First(); ok {
			if err := n.rpcLeavingSucc(ctx, pred, succ); err != nil {
				n.lgr.Warn("terminate: leaving_succ failed", logger.FNode("predecessor", pred), logger.F("err", err))
			}
		}
	}

	n.lgr.Info("left ring")
}
