package light

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coinexchain/tm-light-client/types"
)

// VerificationTrace maps target height to the set of intermediate heights
// the verifier used to reach it, per spec.md §3. Grounded on
// original_source/light-client/src/state.rs's `VerificationTrace`.
type VerificationTrace map[types.Height]map[types.Height]struct{}

// State is a per-target verification workspace: a Store plus the trace of
// dependencies used to reach each target, per spec.md §3/§4.2.
type State struct {
	Store Store

	mtx   sync.Mutex
	trace VerificationTrace
}

// NewState wraps store in a fresh verification workspace.
func NewState(store Store) *State {
	return &State{
		Store: store,
		trace: make(VerificationTrace),
	}
}

// TraceBlock records that the block at height was needed to verify the
// block at targetHeight.
//
// Precondition (spec.md §9, Open Question (a)): height <= targetHeight.
func (s *State) TraceBlock(targetHeight, height types.Height) {
	if height > targetHeight {
		panic(fmt.Sprintf("trace_block precondition violated: height %d > target %d", height, targetHeight))
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	set, ok := s.trace[targetHeight]
	if !ok {
		set = make(map[types.Height]struct{})
		s.trace[targetHeight] = set
	}
	set[height] = struct{}{}
}

// Trace returns the Verified blocks recorded as dependencies of
// targetHeight, descending by height, per spec.md §3's invariant that
// every traced height has status Verified at read time.
func (s *State) Trace(targetHeight types.Height) []*types.LightBlock {
	s.mtx.Lock()
	heights := s.trace[targetHeight]
	hs := make([]types.Height, 0, len(heights))
	for h := range heights {
		hs = append(hs, h)
	}
	s.mtx.Unlock()

	sort.Slice(hs, func(i, j int) bool { return hs[i] > hs[j] })

	out := make([]*types.LightBlock, 0, len(hs))
	for _, h := range hs {
		if lb, ok := s.Store.Get(h, StatusVerified); ok {
			out = append(out, lb)
		}
	}
	return out
}
