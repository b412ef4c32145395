package server

import "testing"

func TestAdvertiseAddrReturnsSomeAddress(t *testing.T) {
	addr, err := AdvertiseAddr(9000)
	if err != nil {
		t.Skipf("no usable network interface in this environment: %v", err)
	}
	if addr == "" {
		t.Fatalf("expected non-empty address")
	}
}
