package node

import (
	"context"
	"testing"

	"chorddht/internal/config"
	"chorddht/internal/domain"
	"chorddht/internal/wire"
)

func TestHandlerPing(t *testing.T) {
	self := domain.NewNodeInfo("10.0.0.1", 9000)
	n := New(self, config.Default().DHT, nil, nil)
	n.InitAlone()
	h := NewHandler(n)

	req := &wire.Envelope{Type: wire.Ping, Sender: self, Ticket: 42}
	out, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Ticket != 42 {
		t.Fatalf("expected ticket echoed, got %d", out.Ticket)
	}
}

func TestHandlerUnknownType(t *testing.T) {
	self := domain.NewNodeInfo("10.0.0.1", 9000)
	n := New(self, config.Default().DHT, nil, nil)
	n.InitAlone()
	h := NewHandler(n)

	req := &wire.Envelope{Type: wire.Type(200), Sender: self}
	if _, err := h.Handle(context.Background(), req); err == nil {
		t.Fatalf("expected error for unknown message type")
	}
}

func TestHandlerFindKeySuccessor(t *testing.T) {
	self := domain.NewNodeInfo("10.0.0.1", 9000)
	n := New(self, config.Default().DHT, nil, nil)
	n.InitAlone()
	h := NewHandler(n)

	req := &wire.Envelope{Type: wire.FindKeySuccessor, Sender: self, Key: domain.HashID("k")}
	out, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Found || !out.Node.Equal(self) {
		t.Fatalf("expected self as successor, got %v found=%v", out.Node, out.Found)
	}
}
