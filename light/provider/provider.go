// Package provider defines the peer I/O collaborator of spec.md §6: wire
// encoding, TLS, retries within a single call, and timeout enforcement are
// all the provider's responsibility, not the core's.
package provider

import (
	"context"

	"github.com/coinexchain/tm-light-client/types"
)

// Provider fetches light blocks from, and reports evidence to, one remote
// peer. height == 0 means "latest", per spec.md §6.
type Provider interface {
	// ChainID is the chain this provider serves.
	ChainID() string

	// ID identifies the peer this provider talks to.
	ID() types.PeerId

	// LightBlock fetches the block at height (0 for latest). Errors are
	// classified by the caller via light.IsErrTimeout/light.IsErrIo.
	LightBlock(ctx context.Context, height types.Height) (*types.LightBlock, error)

	// ReportEvidence submits ev to this peer and returns the peer's receipt
	// hash. At-least-once semantics; the caller is responsible for
	// idempotence (spec.md §4.5).
	ReportEvidence(ctx context.Context, ev types.Evidence) (types.Hash, error)
}
