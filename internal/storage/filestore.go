// Package storage hosts the per-node key/value store and the key-range
// transfer logic used during joins, stabilization and graceful leave.
package storage

import (
	"sort"
	"sync"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// FileStore is an in-memory, concurrency-safe map from key identifier to
// resource. Each node owns exactly one FileStore holding the subset of
// the keyspace it currently serves.
type FileStore struct {
	lgr  logger.Logger
	mu   sync.RWMutex
	data map[string]domain.Resource // keyed by hex(ID)
}

// New creates an empty store.
func New(lgr logger.Logger) *FileStore {
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &FileStore{lgr: lgr, data: make(map[string]domain.Resource)}
}

// Put inserts or overwrites the resource under its key.
func (s *FileStore) Put(res domain.Resource) {
	s.mu.Lock()
	s.data[res.Key.String()] = res
	s.mu.Unlock()
	s.lgr.Debug("file stored", logger.F("key", res.Name))
}

// Get returns the resource stored under id, or ErrResourceNotFound.
func (s *FileStore) Get(id domain.ID) (domain.Resource, error) {
	s.mu.RLock()
	res, ok := s.data[id.String()]
	s.mu.RUnlock()
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return res, nil
}

// Delete removes the resource stored under id. Deleting a missing key is
// not an error -- the operation is idempotent from the caller's view; the
// not-found signal is returned so lookup/delete call sites can report it.
func (s *FileStore) Delete(id domain.ID) error {
	key := id.String()
	s.mu.Lock()
	_, ok := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()
	if !ok {
		return domain.ErrResourceNotFound
	}
	return nil
}

// DrainAll empties the store and returns everything it held. Used once, at
// graceful leave, to hand the whole key range to the successor.
func (s *FileStore) DrainAll() []domain.Resource {
	s.mu.Lock()
	out := make([]domain.Resource, 0, len(s.data))
	for _, res := range s.data {
		out = append(out, res)
	}
	s.data = make(map[string]domain.Resource)
	s.mu.Unlock()
	return out
}

// ExtractForNewOwner removes and returns every (k, v) that rightfully
// belongs to a newcomer with identifier newID, given that this node's own
// identifier is selfID. It implements the three disjunctive clauses of the
// specification's key-transfer predicate:
//
//	(a) newID >= k and newID is between predID and selfID
//	    (ordinary insertion of a new predecessor)
//	(b) this node's own arc wraps through zero (predID >= selfID) and
//	    k > selfID > newID (wrap-around: newcomer becomes the new first node)
//	(c) k <= newID and newID > selfID
//	    (symmetric wrap: newcomer becomes the new last node)
func (s *FileStore) ExtractForNewOwner(predID, selfID, newID domain.ID) []domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Resource
	for key, res := range s.data {
		k := res.Key
		owned := false
		switch {
		case newID.Cmp(k) >= 0 && newID.Between(predID, selfID):
			owned = true
		case predID.Cmp(selfID) >= 0 && k.Cmp(selfID) > 0 && selfID.Cmp(newID) > 0:
			owned = true
		case k.Cmp(newID) <= 0 && newID.Cmp(selfID) > 0:
			owned = true
		}
		if owned {
			out = append(out, res)
			delete(s.data, key)
		}
	}
	return out
}

// Between returns a snapshot of every resource whose key lies on the arc
// (from, to]. The store itself is not modified.
func (s *FileStore) Between(from, to domain.ID) []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Resource
	for _, res := range s.data {
		if res.Key.Between(from, to) {
			out = append(out, res)
		}
	}
	return out
}

// All returns a snapshot of every resource currently stored.
func (s *FileStore) All() []domain.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Resource, 0, len(s.data))
	for _, res := range s.data {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// Len reports how many resources are currently stored.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
