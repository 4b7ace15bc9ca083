package light

import "github.com/coinexchain/tm-light-client/light/store"

// Status is a label a LightStore attaches to a block; it is not part of the
// block itself. Invariant (spec.md §3): for any (height, block), at most
// one status is recorded at a time.
type Status = store.Status

const (
	StatusUnverified = store.StatusUnverified
	StatusVerified   = store.StatusVerified
	StatusTrusted    = store.StatusTrusted
	StatusFailed     = store.StatusFailed
)
