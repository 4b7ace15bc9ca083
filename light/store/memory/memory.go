// Package memory implements an in-memory store.Store, used as the
// ForkDetector's scoped per-witness scratch store (spec.md §4.4, §9) and as
// the store in tests. Grounded on
// original_source/light-client/src/fork_detector.rs's scoped `MemoryStore`.
package memory

import (
	"sort"
	"sync"

	"github.com/coinexchain/tm-light-client/light/store"
	"github.com/coinexchain/tm-light-client/types"
)

type Store struct {
	mtx sync.RWMutex
	// blocks[height][status] -> block
	blocks map[types.Height]map[store.Status]*types.LightBlock
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		blocks: make(map[types.Height]map[store.Status]*types.LightBlock),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Get(height types.Height, status store.Status) (*types.LightBlock, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	byStatus, ok := s.blocks[height]
	if !ok {
		return nil, false
	}
	lb, ok := byStatus[status]
	return lb, ok
}

func (s *Store) Insert(lb *types.LightBlock, status store.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.insertLocked(lb, status)
	return nil
}

func (s *Store) insertLocked(lb *types.LightBlock, status store.Status) {
	h := lb.Height()
	byStatus, ok := s.blocks[h]
	if !ok {
		byStatus = make(map[store.Status]*types.LightBlock)
		s.blocks[h] = byStatus
	}
	byStatus[status] = lb
}

// Update moves lb to status, clearing every other status recorded at
// lb.Height() in the same critical section so Get never observes lb at
// zero or two statuses (spec.md §8 invariant 6).
func (s *Store) Update(lb *types.LightBlock, status store.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.blocks, lb.Height())
	s.insertLocked(lb, status)
	return nil
}

func (s *Store) Remove(height types.Height, status store.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byStatus, ok := s.blocks[height]
	if !ok {
		return nil
	}
	delete(byStatus, status)
	if len(byStatus) == 0 {
		delete(s.blocks, height)
	}
	return nil
}

func (s *Store) Latest(status store.Status) (*types.LightBlock, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var (
		best    *types.LightBlock
		bestH   types.Height
		anyFind bool
	)
	for h, byStatus := range s.blocks {
		lb, ok := byStatus[status]
		if !ok {
			continue
		}
		if !anyFind || h > bestH {
			best, bestH, anyFind = lb, h, true
		}
	}
	return best, anyFind
}

func (s *Store) All(status store.Status) ([]*types.LightBlock, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make([]*types.LightBlock, 0, len(s.blocks))
	for _, byStatus := range s.blocks {
		if lb, ok := byStatus[status]; ok {
			out = append(out, lb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height() < out[j].Height() })
	return out, nil
}
