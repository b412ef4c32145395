package node

import (
	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// resourcesToFiles renders a resource slice as the hex(id) -> value map
// carried by NOTIFY replies and LEAVING_PRED hand-offs. The raw,
// pre-hash name each resource was published under is not preserved
// across the wire -- every downstream operation addresses resources by
// identifier, never by name, so the loss has no functional effect.
func resourcesToFiles(resources []domain.Resource) map[string]string {
	if len(resources) == 0 {
		return nil
	}
	out := make(map[string]string, len(resources))
	for _, r := range resources {
		out[r.Key.String()] = r.Value
	}
	return out
}

func filesToResources(files map[string]string) ([]domain.Resource, error) {
	if len(files) == 0 {
		return nil, nil
	}
	out := make([]domain.Resource, 0, len(files))
	for hexID, value := range files {
		id, err := domain.IDFromHex(hexID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Resource{Key: id, Value: value})
	}
	return out, nil
}

// handleNotify is the server-side reaction to an inbound NOTIFY: it
// rectifies the predecessor pointer if sender is a better candidate,
// and always hands back the key range sender now owns.
func (n *Node) handleNotify(sender domain.NodeInfo) map[string]string {
	predBefore, hadPred := n.getPredecessor()
	predID := n.self.ID
	if hadPred {
		predID = predBefore.ID
	}

	update := !hadPred
	if hadPred {
		if predBefore.ID.Cmp(sender.ID) < 0 {
			update = true
		} else if predBefore.ID.Cmp(n.self.ID) > 0 && n.self.ID.Cmp(sender.ID) > 0 {
			update = true
		}
	}
	if update && !sender.Equal(n.self) {
		n.setPredecessor(sender)
	}

	resources := n.store.ExtractForNewOwner(predID, n.self.ID, sender.ID)
	return resourcesToFiles(resources)
}

// applyLeavingPred installs newPred as this node's predecessor and
// merges files into the local store. It is the server-side reaction to
// LEAVING_PRED, whether that message arrived over the wire or was
// short-circuited locally.
func (n *Node) applyLeavingPred(newPred domain.NodeInfo, files map[string]string) {
	n.setPredecessor(newPred)
	resources, err := filesToResources(files)
	if err != nil {
		n.lgr.Warn("leaving_pred: dropped malformed file hand-off", logger.F("err", err))
		return
	}
	for _, r := range resources {
		n.store.Put(r)
	}
}

// applyLeavingSucc installs newSucc as this node's first successor. It
// is the server-side reaction to LEAVING_SUCC.
func (n *Node) applyLeavingSucc(newSucc domain.NodeInfo) {
	n.successors.Set(0, newSucc)
}

// ImNotAloneAnymore folds a newly discovered peer into a previously
// lonely node's routing state.
func (n *Node) ImNotAloneAnymore(other domain.NodeInfo) {
	if !n.isAlone() || other.ID.Equal(n.self.ID) {
		return
	}
	n.setAlone(false)
	n.setPredecessor(other)
	r := n.successors.Len()
	copies := make([]domain.NodeInfo, r)
	for i := range copies {
		copies[i] = other
	}
	n.successors.ReplaceAll(copies)
	if n.self.ID.Cmp(other.ID) <= 0 {
		n.fingers.Set(1, other)
	}
}
