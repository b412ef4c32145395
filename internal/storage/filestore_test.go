package storage

import (
	"testing"

	"chorddht/internal/domain"
)

func res(name, value string) domain.Resource {
	return domain.Resource{Key: domain.HashID(name), Name: name, Value: value}
}

func TestPutGetDelete(t *testing.T) {
	s := New(nil)
	r := res("a", "1")
	s.Put(r)

	got, err := s.Get(r.Key)
	if err != nil || got.Value != "1" {
		t.Fatalf("Get = %v, %v; want value 1", got, err)
	}

	if err := s.Delete(r.Key); err != nil {
		t.Fatalf("unexpected error deleting existing key: %v", err)
	}
	if _, err := s.Get(r.Key); err != domain.ErrResourceNotFound {
		t.Fatalf("expected ErrResourceNotFound after delete, got %v", err)
	}
}

func TestDeleteMissingIsNotFoundNotFatal(t *testing.T) {
	s := New(nil)
	if err := s.Delete(domain.HashID("missing")); err != domain.ErrResourceNotFound {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestDrainAllEmptiesStore(t *testing.T) {
	s := New(nil)
	s.Put(res("a", "1"))
	s.Put(res("b", "2"))

	drained := s.DrainAll()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained resources, got %d", len(drained))
	}
	if s.Len() != 0 {
		t.Fatalf("expected store empty after drain, got len=%d", s.Len())
	}
}

func TestAllIsSortedByKey(t *testing.T) {
	s := New(nil)
	s.Put(res("z", "1"))
	s.Put(res("a", "2"))

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(all))
	}
	if all[0].Key.String() > all[1].Key.String() {
		t.Fatalf("expected resources sorted by key")
	}
}

func TestExtractForNewOwnerOrdinaryInsertion(t *testing.T) {
	s := New(nil)
	// Keys chosen so their hash ordering is not something we control;
	// exercise the predicate structurally instead of with real hashes.
	pred := domain.ID{0x10}
	self := domain.ID{0x80}
	newID := domain.ID{0x40}

	owned := res("owned", "v")
	owned.Key = domain.ID{0x30} // between pred and newID, newID >= key
	notOwned := res("notowned", "v")
	notOwned.Key = domain.ID{0x90} // outside (pred, newID]

	s.Put(owned)
	s.Put(notOwned)

	transferred := s.ExtractForNewOwner(pred, self, newID)
	if len(transferred) != 1 || !transferred[0].Key.Equal(owned.Key) {
		t.Fatalf("expected exactly owned key transferred, got %v", transferred)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 resource remaining, got %d", s.Len())
	}
}

func TestBetweenReturnsArcSnapshot(t *testing.T) {
	s := New(nil)
	in := res("in", "v")
	in.Key = domain.ID{0x30}
	out := res("out", "v")
	out.Key = domain.ID{0x90}
	s.Put(in)
	s.Put(out)

	got := s.Between(domain.ID{0x10}, domain.ID{0x80})
	if len(got) != 1 || !got[0].Key.Equal(in.Key) {
		t.Fatalf("expected only the in-arc resource, got %v", got)
	}
}
