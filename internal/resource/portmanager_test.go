package resource

import (
	"testing"

	"chorddht/internal/chorderr"
)

func TestGetFreePortPrefersDynamicRange(t *testing.T) {
	pm := NewPortManager()
	p, err := pm.GetFreePort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != firstDynamicPort {
		t.Fatalf("expected first dynamic port %d, got %d", firstDynamicPort, p)
	}
}

func TestMarkUsedRejectsDuplicateAndInvalid(t *testing.T) {
	pm := NewPortManager()
	if err := pm.MarkUsed(50000); err != nil {
		t.Fatalf("unexpected error marking free port used: %v", err)
	}
	if err := pm.MarkUsed(50000); !chorderr.Is(err, chorderr.PortInUse) {
		t.Fatalf("expected port-in-use, got %v", err)
	}
	if err := pm.MarkUsed(80); !chorderr.Is(err, chorderr.InvalidPort) {
		t.Fatalf("expected invalid-port, got %v", err)
	}
}

func TestFreeReleasesAndRejectsDoubleFree(t *testing.T) {
	pm := NewPortManager()
	p, _ := pm.GetFreePort()
	if err := pm.Free(p); err != nil {
		t.Fatalf("unexpected error freeing used port: %v", err)
	}
	if err := pm.Free(p); !chorderr.Is(err, chorderr.FreeingUnusedPort) {
		t.Fatalf("expected freeing-unused-port, got %v", err)
	}
}

func TestIsUsed(t *testing.T) {
	pm := NewPortManager()
	p, _ := pm.GetFreePort()
	if !pm.IsUsed(p) {
		t.Fatalf("expected port marked used after GetFreePort")
	}
	_ = pm.Free(p)
	if pm.IsUsed(p) {
		t.Fatalf("expected port free after Free")
	}
}
