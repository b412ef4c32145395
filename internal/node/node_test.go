package node

import (
	"context"
	"testing"

	"chorddht/internal/config"
	"chorddht/internal/domain"
)

func testNode(t *testing.T, ip string, port int) *Node {
	t.Helper()
	self := domain.NewNodeInfo(ip, port)
	cfg := config.Default().DHT
	n := New(self, cfg, nil, nil)
	n.InitAlone()
	return n
}

func TestInitAlone(t *testing.T) {
	n := testNode(t, "10.0.0.1", 9000)

	if !n.isAlone() {
		t.Fatalf("expected alone = true after InitAlone")
	}
	pred, ok := n.getPredecessor()
	if !ok || !pred.Equal(n.self) {
		t.Fatalf("expected predecessor = self, got %v, %v", pred, ok)
	}
	for i := 0; i < n.successors.Len(); i++ {
		s, ok := n.successors.Get(i)
		if !ok || !s.Equal(n.self) {
			t.Fatalf("successors[%d] = %v, %v; want self", i, s, ok)
		}
	}
}

func TestFindKeySuccessorAlone(t *testing.T) {
	n := testNode(t, "10.0.0.1", 9000)

	got, err := n.FindKeySuccessor(context.Background(), domain.HashID("anything"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(n.self) {
		t.Fatalf("expected self, got %v", got)
	}
}

func TestPublishLookupDeleteAlone(t *testing.T) {
	n := testNode(t, "10.0.0.1", 9000)
	ctx := context.Background()

	if err := n.Publish(ctx, "hello", "world"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	v, found, err := n.Lookup(ctx, "hello")
	if err != nil || !found || v != "world" {
		t.Fatalf("lookup = %q, %v, %v; want world, true, nil", v, found, err)
	}

	n.Delete(ctx, "hello")

	_, found, err = n.Lookup(ctx, "hello")
	if err != nil || found {
		t.Fatalf("expected not-found after delete, got found=%v err=%v", found, err)
	}
}

func TestHandleNotifyAdoptsCloserPredecessor(t *testing.T) {
	self := domain.NodeInfo{IP: "10.0.0.1", Port: 9000, ID: domain.ID{0x80}}
	cfg := config.Default().DHT
	n := New(self, cfg, nil, nil)
	n.setPredecessor(domain.NodeInfo{IP: "10.0.0.3", Port: 9000, ID: domain.ID{0x90}})

	candidate := domain.NodeInfo{IP: "10.0.0.2", Port: 9000, ID: domain.ID{0x01}}
	n.handleNotify(candidate)

	pred, ok := n.getPredecessor()
	if !ok || !pred.Equal(candidate) {
		t.Fatalf("expected predecessor updated to candidate, got %v, %v", pred, ok)
	}
}

func TestImNotAloneAnymore(t *testing.T) {
	n := testNode(t, "10.0.0.1", 9000)
	other := domain.NewNodeInfo("10.0.0.2", 9000)

	n.ImNotAloneAnymore(other)

	if n.isAlone() {
		t.Fatalf("expected alone = false")
	}
	pred, ok := n.getPredecessor()
	if !ok || !pred.Equal(other) {
		t.Fatalf("expected predecessor = other, got %v, %v", pred, ok)
	}
	succ, ok := n.FirstSuccessor()
	if !ok || !succ.Equal(other) {
		t.Fatalf("expected first successor = other, got %v, %v", succ, ok)
	}
}
