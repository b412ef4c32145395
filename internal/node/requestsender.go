package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chorddht/internal/chorderr"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
	"chorddht/internal/transport"
	"chorddht/internal/wire"
)

// RequestSender issues outbound requests and matches each one to its
// reply. The transport this overlay is built on (internal/transport,
// a grpc unary call per Envelope) already blocks until the remote end
// answers on the very same call, so the ticket here does not gate a
// separate pending-reply slot the way an asynchronous transport would
// need; it is still allocated and stamped onto every outbound Envelope
// because the wire format and the remote's reply-construction logic
// (ReceivedMessagesHandler) both key off it, and because it gives every
// RPC a stable identifier for logging.
type RequestSender struct {
	mu         sync.Mutex
	nextTicket uint64

	client  *transport.Client
	timeout time.Duration
	lgr     logger.Logger
}

// NewRequestSender builds a RequestSender bounding every RPC to timeout.
func NewRequestSender(client *transport.Client, timeout time.Duration, lgr logger.Logger) *RequestSender {
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &RequestSender{client: client, timeout: timeout, lgr: lgr.Named("requestsender")}
}

func (rs *RequestSender) allocateTicket() uint64 {
	rs.mu.Lock()
	rs.nextTicket++
	t := rs.nextTicket
	rs.mu.Unlock()
	return t
}

// Send allocates a ticket, hands req to Transport addressed at target,
// and waits up to rpc_timeout_ms for the reply. An immediate send
// failure or an expired deadline is reported as chorderr.SendFailure /
// chorderr.TimerExpired respectively; a reply carrying a non-empty Err
// field is likewise surfaced as a send-failure.
func (rs *RequestSender) Send(ctx context.Context, target domain.NodeInfo, req *wire.Envelope) (*wire.Envelope, error) {
	req.Ticket = rs.allocateTicket()

	sendCtx, cancel := context.WithTimeout(ctx, rs.timeout)
	defer cancel()

	reply, err := rs.client.Send(sendCtx, target.Addr(), req)
	if err != nil {
		if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			rs.lgr.Warn("rpc timed out", logger.F("ticket", req.Ticket), logger.F("type", req.Type.String()), logger.FNode("target", target))
			return nil, chorderr.New(chorderr.TimerExpired, fmt.Sprintf("ticket %d to %s", req.Ticket, target.Addr()))
		}
		rs.lgr.Warn("rpc send failed", logger.F("ticket", req.Ticket), logger.F("type", req.Type.String()), logger.FNode("target", target), logger.F("err", err))
		return nil, chorderr.New(chorderr.SendFailure, err.Error())
	}
	if reply.Err != "" {
		return nil, chorderr.New(chorderr.SendFailure, reply.Err)
	}
	return reply, nil
}
