package node

import (
	"context"

	"chorddht/internal/domain"
	"chorddht/internal/telemetry/lookuptrace"
	"chorddht/internal/wire"
)

// The functions in this file are the client-side counterpart of every
// wire.Type the overlay defines. Each one either short-circuits to a
// direct local call (target is this very node -- see Node.isSelf) or
// builds an Envelope and hands it to the RequestSender. They are the
// only places in the node package that issue network I/O.

func (n *Node) newRequest(t wire.Type, dest domain.NodeInfo) *wire.Envelope {
	return &wire.Envelope{Type: t, Sender: n.self, Destination: dest}
}

func (n *Node) rpcPing(ctx context.Context, target domain.NodeInfo) error {
	if n.isSelf(target) {
		return nil
	}
	_, err := n.sender.Send(ctx, target, n.newRequest(wire.Ping, target))
	return err
}

func (n *Node) rpcGetPredecessor(ctx context.Context, target domain.NodeInfo) (domain.NodeInfo, bool, error) {
	if n.isSelf(target) {
		p, ok := n.getPredecessor()
		return p, ok, nil
	}
	reply, err := n.sender.Send(ctx, target, n.newRequest(wire.GetPredecessor, target))
	if err != nil {
		return domain.NodeInfo{}, false, err
	}
	return reply.Node, reply.Found, nil
}

func (n *Node) rpcGetFirstSuccessor(ctx context.Context, target domain.NodeInfo) (domain.NodeInfo, bool, error) {
	if n.isSelf(target) {
		s, ok := n.FirstSuccessor()
		return s, ok, nil
	}
	reply, err := n.sender.Send(ctx, target, n.newRequest(wire.GetFirstSuccessor, target))
	if err != nil {
		return domain.NodeInfo{}, false, err
	}
	return reply.Node, reply.Found, nil
}

func (n *Node) rpcFindKeySuccessor(ctx context.Context, target domain.NodeInfo, key domain.ID) (domain.NodeInfo, error) {
	if n.isSelf(target) {
		return n.FindKeySuccessor(ctx, key)
	}
	req := n.newRequest(wire.FindKeySuccessor, target)
	req.Key = key
	reply, err := n.sender.Send(lookuptrace.WithLookup(ctx), target, req)
	if err != nil {
		return domain.NodeInfo{}, err
	}
	return reply.Node, nil
}

// rpcNotify sends NOTIFY to target and returns the files handed back in
// the reply, keyed by hex identifier.
func (n *Node) rpcNotify(ctx context.Context, target domain.NodeInfo) (map[string]string, error) {
	if n.isSelf(target) {
		return n.handleNotify(n.self), nil
	}
	reply, err := n.sender.Send(ctx, target, n.newRequest(wire.Notify, target))
	if err != nil {
		return nil, err
	}
	return reply.Files, nil
}

func (n *Node) rpcLeavingPred(ctx context.Context, target domain.NodeInfo, newPred domain.NodeInfo, files map[string]string) error {
	if n.isSelf(target) {
		n.applyLeavingPred(newPred, files)
		return nil
	}
	req := n.newRequest(wire.LeavingPred, target)
	req.Node = newPred
	req.Files = files
	_, err := n.sender.Send(ctx, target, req)
	return err
}

func (n *Node) rpcLeavingSucc(ctx context.Context, target domain.NodeInfo, newSucc domain.NodeInfo) error {
	if n.isSelf(target) {
		n.applyLeavingSucc(newSucc)
		return nil
	}
	req := n.newRequest(wire.LeavingSucc, target)
	req.Node = newSucc
	_, err := n.sender.Send(ctx, target, req)
	return err
}

func (n *Node) rpcYoureNotAlone(ctx context.Context, target domain.NodeInfo) (bool, error) {
	if n.isSelf(target) {
		return false, nil
	}
	reply, err := n.sender.Send(ctx, target, n.newRequest(wire.YoureNotAlone, target))
	if err != nil {
		return false, err
	}
	return reply.WasAlone, nil
}

func (n *Node) rpcPublish(ctx context.Context, target domain.NodeInfo, key domain.ID, name, value string) error {
	if n.isSelf(target) {
		return n.StoreLocal(domain.Resource{Key: key, Name: name, Value: value})
	}
	req := n.newRequest(wire.Publish, target)
	req.Key = key
	req.Value = value
	_, err := n.sender.Send(ctx, target, req)
	return err
}

func (n *Node) rpcFileGet(ctx context.Context, target domain.NodeInfo, key domain.ID) (string, bool, error) {
	if n.isSelf(target) {
		res, err := n.RetrieveLocal(key)
		if err != nil {
			return "", false, nil
		}
		return res.Value, true, nil
	}
	req := n.newRequest(wire.FileGet, target)
	req.Key = key
	reply, err := n.sender.Send(ctx, target, req)
	if err != nil {
		return "", false, err
	}
	return reply.Value, reply.Found, nil
}

func (n *Node) rpcFileDelete(ctx context.Context, target domain.NodeInfo, key domain.ID) error {
	if n.isSelf(target) {
		return n.RemoveLocal(key)
	}
	req := n.newRequest(wire.FileDelete, target)
	req.Key = key
	_, err := n.sender.Send(ctx, target, req)
	return err
}
