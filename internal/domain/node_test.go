package domain

import "testing"

func TestNewNodeInfoAddr(t *testing.T) {
	n := NewNodeInfo("127.0.0.1", 50000)
	if n.Addr() != "127.0.0.1:50000" {
		t.Fatalf("Addr() = %s", n.Addr())
	}
	if len(n.ID) != ByteLen {
		t.Fatalf("expected %d-byte id, got %d", ByteLen, len(n.ID))
	}
}

func TestNodeInfoEqualByID(t *testing.T) {
	a := NewNodeInfo("10.0.0.1", 1111)
	b := a
	b.Port = 9999 // same ID, different recorded port: Equal still compares ID only
	if !a.Equal(b) {
		t.Fatalf("expected equality by id")
	}
}
