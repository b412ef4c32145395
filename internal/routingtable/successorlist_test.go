package routingtable

import (
	"testing"

	"chorddht/internal/domain"
)

func node(id byte) domain.NodeInfo {
	return domain.NodeInfo{IP: "10.0.0.1", Port: int(id), ID: domain.ID{id}}
}

func TestSuccessorListSetGetClear(t *testing.T) {
	self := node(0x00)
	sl := NewSuccessorList(self, 3, nil)

	if _, ok := sl.First(); ok {
		t.Fatalf("expected empty list")
	}

	n1 := node(0x10)
	sl.Set(0, n1)
	got, ok := sl.First()
	if !ok || !got.Equal(n1) {
		t.Fatalf("First() = %v, %v; want %v, true", got, ok, n1)
	}

	sl.Clear(0)
	if _, ok := sl.First(); ok {
		t.Fatalf("expected entry cleared")
	}
}

func TestSuccessorListReplaceAllTruncatesAndPads(t *testing.T) {
	self := node(0x00)
	sl := NewSuccessorList(self, 2, nil)

	sl.ReplaceAll([]domain.NodeInfo{node(0x10), node(0x20), node(0x30)})

	all := sl.All()
	if len(all) != 2 {
		t.Fatalf("expected truncation to capacity 2, got %d entries", len(all))
	}
	if !all[0].Equal(node(0x10)) || !all[1].Equal(node(0x20)) {
		t.Fatalf("unexpected entries: %v", all)
	}
}

func TestSuccessorListPromoteFrom(t *testing.T) {
	self := node(0x00)
	sl := NewSuccessorList(self, 3, nil)
	sl.ReplaceAll([]domain.NodeInfo{node(0x10), node(0x20), node(0x30)})

	sl.PromoteFrom(0)

	all := sl.All()
	if len(all) != 2 || !all[0].Equal(node(0x20)) || !all[1].Equal(node(0x30)) {
		t.Fatalf("unexpected list after PromoteFrom: %v", all)
	}
}

func TestSuccessorListClosestSuccessor(t *testing.T) {
	self := node(0x00)
	sl := NewSuccessorList(self, 3, nil)
	sl.ReplaceAll([]domain.NodeInfo{node(0x10), node(0x20)})

	got, ok := sl.ClosestSuccessor(domain.ID{0x05})
	if !ok || !got.Equal(node(0x10)) {
		t.Fatalf("ClosestSuccessor(0x05) = %v, %v; want %v, true", got, ok, node(0x10))
	}

	got, ok = sl.ClosestSuccessor(domain.ID{0x15})
	if !ok || !got.Equal(node(0x20)) {
		t.Fatalf("ClosestSuccessor(0x15) = %v, %v; want %v, true", got, ok, node(0x20))
	}
}
