package node

import (
	"context"
	"fmt"
	"time"

	"chorddht/internal/chorderr"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// StoreLocal puts res directly into the local file store, bypassing
// routing. Used both for locally-owned publishes and as the server-side
// reaction to an inbound PUBLISH.
func (n *Node) StoreLocal(res domain.Resource) error {
	n.store.Put(res)
	return nil
}

// RetrieveLocal reads a resource directly from the local file store.
func (n *Node) RetrieveLocal(id domain.ID) (domain.Resource, error) {
	return n.store.Get(id)
}

// RemoveLocal deletes a resource directly from the local file store.
func (n *Node) RemoveLocal(id domain.ID) error {
	return n.store.Delete(id)
}

// resolveTarget finds the node responsible for key, falling back to a
// ring-minimum search (walking successors until the identifier
// decreases) when routing cannot otherwise resolve it, bounded by three
// times the RPC timeout.
func (n *Node) resolveTarget(ctx context.Context, key domain.ID) (domain.NodeInfo, error) {
	if n.isAlone() {
		return n.self, nil
	}
	s, err := n.FindKeySuccessor(ctx, key)
	if err == nil {
		return s, nil
	}
	n.lgr.Warn("resolveTarget: routing failed, falling back to ring-minimum search", logger.F("key", key.String()), logger.F("err", err))
	return n.findRingMinimum(ctx)
}

func (n *Node) findRingMinimum(ctx context.Context) (domain.NodeInfo, error) {
	deadline := time.Now().Add(3 * n.cfg.RPCTimeout)
	cur := n.self
	for time.Now().Before(deadline) {
		next, ok, err := n.rpcGetFirstSuccessor(ctx, cur)
		if err != nil || !ok {
			return domain.NodeInfo{}, chorderr.New(chorderr.NoSuccessorFound, "ring minimum search failed")
		}
		if next.Equal(cur) || next.ID.Cmp(cur.ID) < 0 {
			return next, nil
		}
		cur = next
	}
	return domain.NodeInfo{}, chorderr.New(chorderr.NoSuccessorFound, "ring minimum search timed out")
}

// Publish stores value under name, routing to whichever node owns
// domain.HashID(name).
func (n *Node) Publish(ctx context.Context, name, value string) error {
	key := domain.HashID(name)
	res := domain.Resource{Key: key, Name: name, Value: value}

	if n.isAlone() {
		return n.StoreLocal(res)
	}

	retries := n.cfg.MaxFilePublishRetries
	if retries <= 0 {
		retries = 1
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		target, err := n.resolveTarget(ctx, key)
		if err != nil {
			lastErr = err
			continue
		}
		if n.isSelf(target) {
			return n.StoreLocal(res)
		}
		if err := n.rpcPublish(ctx, target, key, name, value); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return chorderr.New(chorderr.ImpossiblePublish, fmt.Sprintf("after %d attempts: %v", retries, lastErr))
}

// Lookup returns the value published under name, and whether it was
// found anywhere in the ring.
func (n *Node) Lookup(ctx context.Context, name string) (string, bool, error) {
	key := domain.HashID(name)

	if n.isAlone() {
		res, err := n.RetrieveLocal(key)
		if err != nil {
			return "", false, nil
		}
		return res.Value, true, nil
	}

	target, err := n.resolveTarget(ctx, key)
	if err != nil {
		return "", false, err
	}
	if n.isSelf(target) {
		res, err := n.RetrieveLocal(key)
		if err != nil {
			return "", false, nil
		}
		return res.Value, true, nil
	}
	value, found, err := n.rpcFileGet(ctx, target, key)
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// Delete removes the value published under name. Best-effort: routing
// or remote failures are swallowed rather than surfaced, per the
// specification's delete contract.
func (n *Node) Delete(ctx context.Context, name string) {
	key := domain.HashID(name)

	if n.isAlone() {
		_ = n.RemoveLocal(key)
		return
	}

	target, err := n.resolveTarget(ctx, key)
	if err != nil {
		n.lgr.Warn("delete: could not resolve owner, ignoring", logger.F("name", name), logger.F("err", err))
		return
	}
	if n.isSelf(target) {
		_ = n.RemoveLocal(key)
		return
	}
	if err := n.rpcFileDelete(ctx, target, key); err != nil {
		n.lgr.Warn("delete: remote delete failed, ignoring", logger.FNode("target", target), logger.F("err", err))
	}
}
