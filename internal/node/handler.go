package node

import (
	"context"
	"fmt"

	"chorddht/internal/chorderr"
	"chorddht/internal/domain"
	"chorddht/internal/wire"
)

// Handler is the pure dispatcher the transport layer calls for every
// inbound Envelope: it extracts parameters, invokes the matching Node
// method, and builds the reply. It implements transport.Handler.
type Handler struct {
	n *Node
}

// NewHandler wraps n for dispatch.
func NewHandler(n *Node) *Handler { return &Handler{n: n} }

func (h *Handler) reply(in *wire.Envelope) *wire.Envelope {
	return &wire.Envelope{Type: in.Type, Ticket: in.Ticket, Sender: h.n.Self(), Destination: in.Sender}
}

// Handle dispatches one inbound request and returns its reply. An
// unrecognized Type is a protocol error, not a transport error: it
// indicates a version mismatch between peers, not a network failure.
func (h *Handler) Handle(ctx context.Context, in *wire.Envelope) (*wire.Envelope, error) {
	out := h.reply(in)

	switch in.Type {
	case wire.Ping:
		return out, nil

	case wire.GetPredecessor:
		p, ok := h.n.getPredecessor()
		out.Node, out.Found = p, ok
		return out, nil

	case wire.GetFirstSuccessor:
		s, ok := h.n.FirstSuccessor()
		out.Node, out.Found = s, ok
		return out, nil

	case wire.FindKeySuccessor:
		s, err := h.n.FindKeySuccessor(ctx, in.Key)
		if err != nil {
			return nil, err
		}
		out.Node, out.Found = s, true
		return out, nil

	case wire.Notify:
		out.Files = h.n.handleNotify(in.Sender)
		return out, nil

	case wire.LeavingPred:
		h.n.applyLeavingPred(in.Node, in.Files)
		return out, nil

	case wire.LeavingSucc:
		h.n.applyLeavingSucc(in.Node)
		return out, nil

	case wire.YoureNotAlone:
		wasAlone := h.n.isAlone()
		if wasAlone {
			h.n.ImNotAloneAnymore(in.Sender)
		}
		out.WasAlone = wasAlone
		return out, nil

	case wire.Publish:
		_ = h.n.StoreLocal(domain.Resource{Key: in.Key, Value: in.Value})
		return out, nil

	case wire.FileGet:
		res, err := h.n.RetrieveLocal(in.Key)
		if err == nil {
			out.Value, out.Found = res.Value, true
		}
		return out, nil

	case wire.FileDelete:
		_ = h.n.RemoveLocal(in.Key)
		return out, nil

	default:
		return nil, chorderr.New(chorderr.InvalidMessageType, fmt.Sprintf("type %d", in.Type))
	}
}
