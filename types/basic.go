package types

import "time"

// Height identifies a block position. It is strictly positive for any
// block that has been produced.
type Height = int64

// Time is an absolute instant with at least millisecond resolution.
type Time = time.Time

// PeerId opaquely and uniquely identifies a remote node.
type PeerId string

func (p PeerId) String() string { return string(p) }
