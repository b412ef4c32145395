// Package overlay manages the set of Chord nodes hosted inside a single
// process: it owns the port -> Node map, picks bootstrap peers for new
// joins out of that map, and fans out the caller-facing publish/lookup/
// delete operations to whichever local node happens to be convenient. It
// is the only place in the module that owns more than one Node at a time.
package overlay

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/grpc"

	"chorddht/internal/chorderr"
	"chorddht/internal/config"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
	"chorddht/internal/node"
	"chorddht/internal/resource"
	"chorddht/internal/server"
	"chorddht/internal/transport"
)

// localNode bundles a Node with the server that makes it reachable.
type localNode struct {
	n   *node.Node
	srv *server.Server
}

// Overlay holds every node this process hosts, keyed by listening port.
type Overlay struct {
	mu    sync.Mutex
	nodes map[int]*localNode
	order []int // join order, used to pick "an arbitrary local node" deterministically

	host     string
	cfg      config.Config
	client   *transport.Client
	grpcOpts []grpc.ServerOption
	lgr      logger.Logger
	ports    *resource.PortManager
}

// New builds an empty Overlay. host is the advertised address new nodes
// bind under (e.g. "127.0.0.1" for a single-machine simulation).
func New(host string, cfg config.Config, grpcOpts []grpc.ServerOption, lgr logger.Logger) *Overlay {
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &Overlay{
		nodes:    make(map[int]*localNode),
		host:     host,
		cfg:      cfg,
		client:   transport.NewClient(cfg.DHT.RPCTimeout, cfg.DHT.TransportMaxRetries, lgr.Named("transport")),
		grpcOpts: grpcOpts,
		lgr:      lgr.Named("overlay"),
		ports:    resource.NewPortManager(),
	}
}

// Len returns the number of nodes currently hosted.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.nodes)
}

// randomBootstrap returns a random peer already in the overlay, or
// (NodeInfo{}, false) when it is empty -- the "alone" case.
func (o *Overlay) randomBootstrap(excludePort int) (domain.NodeInfo, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	candidates := make([]domain.NodeInfo, 0, len(o.order))
	for _, p := range o.order {
		if p == excludePort {
			continue
		}
		candidates = append(candidates, o.nodes[p].n.Self())
	}
	if len(candidates) == 0 {
		return domain.NodeInfo{}, false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// Join constructs a Node, serves it, and initializes it either as the sole
// ring member (when this is the first node) or by joining through a
// randomly chosen existing local node, retrying up to
// max_node_init_retries times on impossible-init before giving up and
// tearing the partial node down. port == 0 asks the PortManager for the
// next free port; a nonzero port is reserved explicitly, failing with
// chorderr.PortInUse if it is already taken by another local node.
func (o *Overlay) Join(ctx context.Context, port int) (domain.NodeInfo, error) {
	if port == 0 {
		p, err := o.ports.GetFreePort()
		if err != nil {
			return domain.NodeInfo{}, fmt.Errorf("overlay: join: %w", err)
		}
		port = p
	} else if err := o.ports.MarkUsed(port); err != nil {
		return domain.NodeInfo{}, fmt.Errorf("overlay: join: %w", err)
	}

	self := domain.NewNodeInfo(o.host, port)
	sender := node.NewRequestSender(o.client, o.cfg.DHT.RPCTimeout, o.lgr)
	n := node.New(self, o.cfg.DHT, sender, o.lgr.With(logger.FNode("node", self)))

	srv, err := server.New(self.Addr(), n, o.grpcOpts, server.WithLogger(o.lgr.Named("server")))
	if err != nil {
		return domain.NodeInfo{}, fmt.Errorf("overlay: join: %w", err)
	}
	go func() {
		if err := srv.Serve(); err != nil {
			o.lgr.Warn("node server stopped serving", logger.FNode("node", self), logger.F("err", err))
		}
	}()

	bootstrap, hasBootstrap := o.randomBootstrap(port)
	if !hasBootstrap {
		n.InitAlone()
	} else {
		retries := o.cfg.DHT.MaxNodeInitRetries
		if retries <= 0 {
			retries = 1
		}
		var lastErr error
		joined := false
		for attempt := 0; attempt < retries; attempt++ {
			if err := n.InitWithBootstrap(ctx, bootstrap); err != nil {
				lastErr = err
				continue
			}
			joined = true
			break
		}
		if !joined {
			srv.Stop()
			_ = o.ports.Free(port)
			return domain.NodeInfo{}, chorderr.New(chorderr.ImpossibleInit,
				fmt.Sprintf("port %d via bootstrap %s: %v", port, bootstrap.Addr(), lastErr))
		}
	}

	n.StartPeriodic()

	o.mu.Lock()
	o.nodes[port] = &localNode{n: n, srv: srv}
	o.order = append(o.order, port)
	o.mu.Unlock()

	o.lgr.Info("node joined overlay", logger.FNode("node", self), logger.F("bootstrap_used", hasBootstrap))
	return self, nil
}

// Leave runs the departing node's graceful-leave protocol, closes its
// listener, and removes it from the overlay.
func (o *Overlay) Leave(ctx context.Context, port int) error {
	o.mu.Lock()
	ln, ok := o.nodes[port]
	if ok {
		delete(o.nodes, port)
		o.order = removePort(o.order, port)
	}
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("overlay: no node on port %d", port)
	}

	ln.srv.GracefulStop(ctx)
	_ = o.ports.Free(port)
	o.lgr.Info("node left overlay", logger.F("port", port))
	return nil
}

func removePort(ports []int, port int) []int {
	out := ports[:0]
	for _, p := range ports {
		if p != port {
			out = append(out, p)
		}
	}
	return out
}

// any returns an arbitrary local node, or chord-is-empty if there is none.
func (o *Overlay) any() (*node.Node, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.order) == 0 {
		return nil, chorderr.New(chorderr.ChordIsEmpty, "no local nodes")
	}
	return o.nodes[o.order[0]].n, nil
}

// Publish stores value under name through an arbitrary local node.
func (o *Overlay) Publish(ctx context.Context, name, value string) error {
	n, err := o.any()
	if err != nil {
		return err
	}
	return n.Publish(ctx, name, value)
}

// Lookup retrieves the value published under name through an arbitrary
// local node.
func (o *Overlay) Lookup(ctx context.Context, name string) (string, bool, error) {
	n, err := o.any()
	if err != nil {
		return "", false, err
	}
	return n.Lookup(ctx, name)
}

// Delete removes the value published under name through an arbitrary
// local node.
func (o *Overlay) Delete(ctx context.Context, name string) error {
	n, err := o.any()
	if err != nil {
		return err
	}
	n.Delete(ctx, name)
	return nil
}

// SetPeriodicInterval validates d against [500ms, 300000ms] and, if valid,
// propagates it to every locally hosted node.
func (o *Overlay) SetPeriodicInterval(d time.Duration) error {
	if d < config.MinPeriodicInterval || d > config.MaxPeriodicInterval {
		return chorderr.New(chorderr.InvalidTimeout,
			fmt.Sprintf("periodic_interval_ms must be in [%d, %d], got %d",
				config.MinPeriodicInterval.Milliseconds(), config.MaxPeriodicInterval.Milliseconds(), d.Milliseconds()))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg.DHT.PeriodicInterval = d
	for _, ln := range o.nodes {
		ln.n.SetPeriodicInterval(d)
	}
	return nil
}

// Nodes returns the NodeInfo of every locally hosted node, in join order.
func (o *Overlay) Nodes() []domain.NodeInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.NodeInfo, 0, len(o.order))
	for _, p := range o.order {
		out = append(out, o.nodes[p].n.Self())
	}
	return out
}

// Node returns the Node hosted on port, for status inspection
// (print-node-status).
func (o *Overlay) Node(port int) (*node.Node, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ln, ok := o.nodes[port]
	if !ok {
		return nil, false
	}
	return ln.n, true
}

// Shutdown gracefully stops every hosted node, in join order.
func (o *Overlay) Shutdown(ctx context.Context) {
	o.mu.Lock()
	ports := append([]int(nil), o.order...)
	o.mu.Unlock()
	for _, p := range ports {
		_ = o.Leave(ctx, p)
	}
}
