// Package transport carries wire.Envelope request/reply pairs between
// peers. Per the specification, the unit of the protocol is one message
// per connection: the Client dials fresh for every outbound Envelope and
// closes immediately afterwards; it keeps no connection pool. The
// Listener accepts inbound request envelopes and hands them to a Handler
// (node.Handler in production); the reply to each request travels back as
// the return value of the same call, so no reply ever reaches the Handler.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	_ "chorddht/internal/transport/codec" // registers the gob codec
	"chorddht/internal/transport/chordrpc"
	"chorddht/internal/telemetry/lookuptrace"
	"chorddht/internal/wire"

	"chorddht/internal/logger"
)

// DefaultMaxRetries is the bounded number of send attempts before a
// Client.Send call raises a send-failure, per the specification's
// Transport section.
const DefaultMaxRetries = 5

// Handler answers one inbound request Envelope with a reply Envelope. The
// implementation (node.Handler) dispatches on Type.
type Handler interface {
	Handle(ctx context.Context, in *wire.Envelope) (*wire.Envelope, error)
}

// Listener accepts inbound connections and dispatches each framed
// Envelope to a Handler.
type Listener struct {
	lis        net.Listener
	grpcServer *grpc.Server
	handler    Handler
	lgr        logger.Logger
}

// NewListener binds a listener to addr and wires it to handler. The
// caller starts it with Serve and stops it with Stop.
func NewListener(addr string, handler Handler, lgr logger.Logger, grpcOpts ...grpc.ServerOption) (*Listener, error) {
	if lgr == nil {
		lgr = logger.Nop()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	l := &Listener{
		lis:        lis,
		grpcServer: grpc.NewServer(grpcOpts...),
		handler:    handler,
		lgr:        lgr,
	}
	chordrpc.RegisterDispatchServer(l.grpcServer, l)
	return l, nil
}

// Addr returns the bound network address.
func (l *Listener) Addr() net.Addr { return l.lis.Addr() }

// Dispatch implements chordrpc.DispatchServer; it is the single entry
// point every inbound request Envelope passes through. grpc runs each
// inbound call on its own goroutine, so calls are handled concurrently and
// no ordering among them is imposed.
func (l *Listener) Dispatch(ctx context.Context, in *wire.Envelope) (*wire.Envelope, error) {
	out, err := l.handler.Handle(ctx, in)
	if err != nil {
		l.lgr.Warn("transport: handler returned error", logger.F("type", in.Type.String()), logger.F("err", err))
		return &wire.Envelope{Type: in.Type, Ticket: in.Ticket, Err: err.Error()}, nil
	}
	return out, nil
}

// Serve blocks accepting connections until Stop is called.
func (l *Listener) Serve() error {
	return l.grpcServer.Serve(l.lis)
}

// Stop closes the listener immediately, dropping in-flight connections.
func (l *Listener) Stop() {
	l.grpcServer.Stop()
}

// GracefulStop waits for in-flight requests before closing.
func (l *Listener) GracefulStop() {
	l.grpcServer.GracefulStop()
}

// Client sends one Envelope per call, opening and closing a dedicated
// connection each time -- no persistent pooling, per the specification.
type Client struct {
	dialTimeout time.Duration
	maxRetries  int
	lgr         logger.Logger
}

// NewClient builds a Client bounded by dialTimeout per attempt and
// maxRetries attempts overall (<=0 uses DefaultMaxRetries).
func NewClient(dialTimeout time.Duration, maxRetries int, lgr logger.Logger) *Client {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &Client{dialTimeout: dialTimeout, maxRetries: maxRetries, lgr: lgr}
}

// Send delivers env to addr and returns the reply. It dials a fresh
// connection, issues exactly one RPC, and closes the connection whether
// the call succeeded or failed. Connection failures (refused, broken
// pipe, dial timeout) are attempted up to maxRetries times in total with no backoff
// beyond the per-attempt dial timeout; exhausting the budget raises a
// send-failure. The caller is expected to bound overall latency with ctx.
func (c *Client) Send(ctx context.Context, addr string, env *wire.Envelope) (*wire.Envelope, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		reply, err := c.sendOnce(ctx, addr, env)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.lgr.Warn("transport: send attempt failed", logger.F("addr", addr), logger.F("attempt", attempt), logger.F("err", err))
	}
	return nil, fmt.Errorf("transport: send to %s failed after %d attempts: %w", addr, c.maxRetries, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, addr string, env *wire.Envelope) (*wire.Envelope, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype("gob")),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(lookuptrace.ClientInterceptor()),
	)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	client := chordrpc.NewDispatchClient(conn)
	reply, err := client.Dispatch(dialCtx, env)
	if err != nil {
		return nil, err
	}
	if reply.Err != "" {
		return reply, fmt.Errorf("transport: remote error: %s", reply.Err)
	}
	return reply, nil
}
