// Command node is the interactive driver for a Chord overlay hosted inside
// a single process: it loads configuration, sets up logging and tracing,
// and then drives an overlay.Overlay through a liner-based REPL exposing
// the specification's CLI surface (create-node, leave-node, publish,
// lookup, delete, print-ring, print-node-status).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"chorddht/internal/config"
	"chorddht/internal/logger"
	zapfactory "chorddht/internal/logger/zap"
	"chorddht/internal/overlay"
	"chorddht/internal/telemetry"
	"chorddht/internal/telemetry/lookuptrace"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (optional, defaults built in)")
	host := flag.String("host", "127.0.0.1", "address new local nodes advertise themselves under")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
		}
		cfg = loaded
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLog, err := zapfactory.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()
	lgr := zapfactory.Wrap(zapLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, "chorddht-node")
	if err != nil {
		lgr.Error("failed to initialize tracing", logger.F("err", err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	grpcOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(lookuptrace.ServerInterceptor()),
	}
	ov := overlay.New(*host, cfg, grpcOpts, lgr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lgr.Warn("received termination signal, shutting down overlay", logger.F("signal", sig.String()))
		ov.Shutdown(context.Background())
		cancel()
		os.Exit(0)
	}()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("Chord overlay driver. Commands: create-node [port] | leave-node <port> | publish <key> <value> | lookup <key> | delete <key> | print-ring | print-node-status <port> | exit")

	for {
		input, err := line.Prompt("chord> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)
		runCommand(ctx, ov, strings.Fields(strings.TrimSpace(input)))
	}

	ov.Shutdown(context.Background())
}

func runCommand(ctx context.Context, ov *overlay.Overlay, args []string) {
	if len(args) == 0 {
		return
	}
	cmd := args[0]
	rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cmd {
	case "create-node":
		port := 0 // 0 asks the overlay's PortManager for the next free port
		if len(args) >= 2 {
			p, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("usage: create-node [port]")
				return
			}
			port = p
		}
		self, err := ov.Join(rctx, port)
		if err != nil {
			fmt.Printf("create-node failed: %v\n", err)
			return
		}
		fmt.Printf("created node %s\n", self)

	case "leave-node":
		if len(args) < 2 {
			fmt.Println("usage: leave-node <port>")
			return
		}
		port, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("usage: leave-node <port>")
			return
		}
		if err := ov.Leave(rctx, port); err != nil {
			fmt.Printf("leave-node failed: %v\n", err)
			return
		}
		fmt.Printf("node on port %d left the ring\n", port)

	case "publish":
		if len(args) < 3 {
			fmt.Println("usage: publish <key> <value>")
			return
		}
		if err := ov.Publish(rctx, args[1], strings.Join(args[2:], " ")); err != nil {
			fmt.Printf("publish failed: %v\n", err)
			return
		}
		fmt.Println("published")

	case "lookup":
		if len(args) < 2 {
			fmt.Println("usage: lookup <key>")
			return
		}
		val, found, err := ov.Lookup(rctx, args[1])
		switch {
		case err != nil:
			fmt.Printf("lookup failed: %v\n", err)
		case !found:
			fmt.Printf("key not found: %s\n", args[1])
		default:
			fmt.Printf("%s = %s\n", args[1], val)
		}

	case "delete":
		if len(args) < 2 {
			fmt.Println("usage: delete <key>")
			return
		}
		if err := ov.Delete(rctx, args[1]); err != nil {
			fmt.Printf("delete failed: %v\n", err)
			return
		}
		fmt.Println("deleted")

	case "print-ring":
		printRing(ov)

	case "print-node-status":
		if len(args) < 2 {
			fmt.Println("usage: print-node-status <port>")
			return
		}
		port, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("usage: print-node-status <port>")
			return
		}
		printNodeStatus(ov, port)

	case "exit", "quit":
		fmt.Println("Bye!")
		os.Exit(0)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

func printRing(ov *overlay.Overlay) {
	nodes := ov.Nodes()
	if len(nodes) == 0 {
		fmt.Println("(empty ring)")
		return
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID.Cmp(nodes[j].ID) < 0 })
	for _, n := range nodes {
		fmt.Printf("  %s\n", n)
	}
}

func printNodeStatus(ov *overlay.Overlay, port int) {
	n, ok := ov.Node(port)
	if !ok {
		fmt.Printf("no local node on port %d\n", port)
		return
	}
	fmt.Printf("self: %s\n", n.Self())
	if pred, ok := n.Predecessor(); ok {
		fmt.Printf("predecessor: %s\n", pred)
	} else {
		fmt.Println("predecessor: (none)")
	}
	fmt.Println("successors:")
	for i, s := range n.Successors() {
		fmt.Printf("  [%d] %s\n", i, s)
	}
	fmt.Println("fingers:")
	for _, f := range n.Fingers() {
		fmt.Printf("  [%d] %s\n", f.Index, f.Node)
	}
	fmt.Printf("alone: %v\n", n.IsAlone())
	fmt.Printf("stored keys: %d\n", len(n.Store().All()))
}
