package server

import (
	"context"
	"testing"
	"time"

	"chorddht/internal/config"
	"chorddht/internal/domain"
	"chorddht/internal/node"
)

func TestNewServerServesAndStops(t *testing.T) {
	self := domain.NewNodeInfo("127.0.0.1", 49600)
	cfg := config.Default().DHT
	n := node.New(self, cfg, nil, nil)
	n.InitAlone()

	srv, err := New(self.Addr(), n, nil)
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	time.Sleep(50 * time.Millisecond)
	srv.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestGracefulStopRunsNodeTerminate(t *testing.T) {
	self := domain.NewNodeInfo("127.0.0.1", 49601)
	cfg := config.Default().DHT
	n := node.New(self, cfg, nil, nil)
	n.InitAlone()
	n.StartPeriodic()

	srv, err := New(self.Addr(), n, nil)
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	go func() { _ = srv.Serve() }()
	time.Sleep(50 * time.Millisecond)

	srv.GracefulStop(context.Background())
}
