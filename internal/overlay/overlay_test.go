package overlay

import (
	"context"
	"testing"
	"time"

	"chorddht/internal/chorderr"
	"chorddht/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DHT.RPCTimeout = 2 * time.Second
	return cfg
}

func TestJoinSingleNodeIsAlone(t *testing.T) {
	o := New("127.0.0.1", testConfig(), nil, nil)
	ctx := context.Background()

	self, err := o.Join(ctx, 49500)
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	n, ok := o.Node(49500)
	if !ok || !n.Self().Equal(self) {
		t.Fatalf("expected node registered at port 49500")
	}
	if !n.IsAlone() {
		t.Fatalf("expected sole node to be alone")
	}
	o.Shutdown(ctx)
}

func TestPublishLookupDeleteThroughOverlay(t *testing.T) {
	o := New("127.0.0.1", testConfig(), nil, nil)
	ctx := context.Background()
	if _, err := o.Join(ctx, 49501); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	defer o.Shutdown(ctx)

	if err := o.Publish(ctx, "hello", "world"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	v, found, err := o.Lookup(ctx, "hello")
	if err != nil || !found || v != "world" {
		t.Fatalf("lookup = %q, %v, %v; want world, true, nil", v, found, err)
	}
	if err := o.Delete(ctx, "hello"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, found, err = o.Lookup(ctx, "hello")
	if err != nil || found {
		t.Fatalf("expected not-found after delete")
	}
}

func TestOperationsOnEmptyOverlayFailChordIsEmpty(t *testing.T) {
	o := New("127.0.0.1", testConfig(), nil, nil)
	ctx := context.Background()

	if err := o.Publish(ctx, "k", "v"); !chorderr.Is(err, chorderr.ChordIsEmpty) {
		t.Fatalf("expected chord-is-empty, got %v", err)
	}
}

func TestSetPeriodicIntervalRejectsOutOfRange(t *testing.T) {
	o := New("127.0.0.1", testConfig(), nil, nil)
	if err := o.SetPeriodicInterval(100 * time.Millisecond); !chorderr.Is(err, chorderr.InvalidTimeout) {
		t.Fatalf("expected invalid-timeout, got %v", err)
	}
}

func TestLeaveRemovesNode(t *testing.T) {
	o := New("127.0.0.1", testConfig(), nil, nil)
	ctx := context.Background()
	if _, err := o.Join(ctx, 49502); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := o.Leave(ctx, 49502); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if _, ok := o.Node(49502); ok {
		t.Fatalf("expected node removed after leave")
	}
}
