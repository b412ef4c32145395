package routingtable

import (
	"testing"

	"chorddht/internal/domain"
)

func TestFingerTableSetGet(t *testing.T) {
	self := domain.NewNodeInfo("10.0.0.1", 9000)
	ft := NewFingerTable(self.ID)

	if _, ok := ft.Get(1); ok {
		t.Fatalf("expected empty table to have no entry at 1")
	}

	peer := domain.NewNodeInfo("10.0.0.2", 9000)
	ft.Set(1, peer)

	got, ok := ft.Get(1)
	if !ok || !got.Equal(peer) {
		t.Fatalf("Get(1) = %v, %v; want %v, true", got, ok, peer)
	}

	succ, ok := ft.Successor()
	if !ok || !succ.Equal(peer) {
		t.Fatalf("Successor() = %v, %v; want %v, true", succ, ok, peer)
	}

	ft.Clear(1)
	if _, ok := ft.Get(1); ok {
		t.Fatalf("expected entry to be cleared")
	}
}

func TestFingerTableClosestPrecedingFinger(t *testing.T) {
	self := domain.NodeInfo{IP: "a", Port: 1, ID: domain.ID{0x00}}
	far := domain.NodeInfo{IP: "b", Port: 1, ID: domain.ID{0x80}}
	near := domain.NodeInfo{IP: "c", Port: 1, ID: domain.ID{0x10}}
	target := domain.ID{0xF0}

	ft := NewFingerTable(self.ID)
	ft.Set(1, near)
	ft.Set(2, far)

	got := ft.ClosestPrecedingFinger(target, self)
	if !got.Equal(far) {
		t.Fatalf("ClosestPrecedingFinger = %v, want %v", got, far)
	}
}

func TestFingerTableClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	self := domain.NodeInfo{IP: "a", Port: 1, ID: domain.ID{0x50}}
	target := domain.ID{0x51}

	ft := NewFingerTable(self.ID)
	got := ft.ClosestPrecedingFinger(target, self)
	if !got.Equal(self) {
		t.Fatalf("ClosestPrecedingFinger = %v, want self %v", got, self)
	}
}
