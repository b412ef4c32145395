// Package server binds a node.Node to the network: it owns the listening
// socket and the grpc server hosting the Transport service, and it
// sequences startup (serve before join) and shutdown (stop periodic
// maintenance, leave gracefully, then close the socket) the way a daemon
// process needs to.
package server

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"chorddht/internal/logger"
	"chorddht/internal/node"
	"chorddht/internal/transport"
)

// Server wraps a transport.Listener bound to one node.Node.
type Server struct {
	listener *transport.Listener
	n        *node.Node
	lgr      logger.Logger
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger injects a logger, overriding the no-op default.
func WithLogger(lgr logger.Logger) Option {
	return func(s *Server) { s.lgr = lgr }
}

// New binds addr and wires a transport.Listener around n's handler. grpcOpts
// are passed straight through to grpc.NewServer, letting callers attach
// interceptors (e.g. lookuptrace.ServerInterceptor).
func New(addr string, n *node.Node, grpcOpts []grpc.ServerOption, opts ...Option) (*Server, error) {
	s := &Server{n: n, lgr: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	lis, err := transport.NewListener(addr, node.NewHandler(n), s.lgr.Named("transport"), grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.listener = lis
	return s, nil
}

// Addr returns the bound network address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve blocks accepting connections until Stop or GracefulStop is called.
// It is meant to run in its own goroutine, started before the node joins
// the ring so incoming RPCs can be answered immediately.
func (s *Server) Serve() error {
	return s.listener.Serve()
}

// Stop closes the listener immediately, dropping in-flight connections.
func (s *Server) Stop() {
	s.listener.Stop()
}

// GracefulStop runs the node's leave protocol and then waits for in-flight
// RPCs to finish before closing the listener.
func (s *Server) GracefulStop(ctx context.Context) {
	s.n.Terminate(ctx)
	s.listener.GracefulStop()
}
