// Package store defines the Status/Store vocabulary shared by the light
// package and its store backends (light/store/memory, light/store/db). It
// exists separately from light so those backends can depend on it without
// an import cycle back into the light package itself.
package store

import "github.com/coinexchain/tm-light-client/types"

// Status is a label a Store attaches to a block; it is not part of the
// block itself. Invariant (spec.md §3): for any (height, block), at most
// one status is recorded at a time.
type Status int

const (
	StatusUnverified Status = iota
	StatusVerified
	StatusTrusted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnverified:
		return "unverified"
	case StatusVerified:
		return "verified"
	case StatusTrusted:
		return "trusted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the LightStore of spec.md §3: a mapping (Height, Status) to
// LightBlock. Generalized from the teacher's FullCommit-only
// Provider/PersistentProvider interfaces (lite/provider.go) to the
// four-status model.
type Store interface {
	// Get returns the block recorded at (height, status), or (nil, false)
	// if none is recorded.
	Get(height types.Height, status Status) (*types.LightBlock, bool)

	// Insert records lb under status, without touching any other status
	// recorded for lb.Height().
	Insert(lb *types.LightBlock, status Status) error

	// Update moves lb to status, atomically clearing any other status
	// recorded for lb.Height() (spec.md §3, §8 invariant 6).
	Update(lb *types.LightBlock, status Status) error

	// Remove deletes the block recorded at (height, status), if any.
	Remove(height types.Height, status Status) error

	// Latest returns the block of maximum height recorded under status, if
	// any.
	Latest(status Status) (*types.LightBlock, bool)

	// All returns every block recorded under status, ascending by height.
	All(status Status) ([]*types.LightBlock, error)
}
