// Package http implements provider.Provider over an RPC client, grounded
// line-for-line on the teacher's lite/providers/http.go (chain-ID check,
// fillFullCommit, getValidatorSet), generalized to return *types.LightBlock
// and to classify I/O failures into the light package's typed errors.
package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/coinexchain/tm-light-client/light"
	"github.com/coinexchain/tm-light-client/types"
)

// SignStatusClient is the minimal RPC surface this provider needs: commit
// and validator-set lookups, plus evidence broadcast. Wire encoding, TLS,
// retries within a single call, and timeout enforcement are this client's
// responsibility, not the core's (spec.md §6).
type SignStatusClient interface {
	// Commit returns the signed header at height, or the latest if height
	// is 0.
	Commit(ctx context.Context, height types.Height) (*types.SignedHeader, error)

	// Validators returns the validator set active at height.
	Validators(ctx context.Context, height types.Height) (*types.ValidatorSet, error)

	// BroadcastEvidence submits ev and returns a receipt hash.
	BroadcastEvidence(ctx context.Context, ev types.Evidence) (types.Hash, error)
}

// Provider is an HTTP/RPC-backed provider.Provider.
type Provider struct {
	chainID string
	id      types.PeerId
	client  SignStatusClient

	logger log.Logger
}

// New wraps client as a provider for peer id on chainID.
func New(chainID string, id types.PeerId, client SignStatusClient) *Provider {
	return &Provider{
		chainID: chainID,
		id:      id,
		client:  client,
		logger:  log.NewNopLogger(),
	}
}

func (p *Provider) SetLogger(logger log.Logger) {
	p.logger = logger.With("module", "light", "peer", p.id)
}

func (p *Provider) ChainID() string  { return p.chainID }
func (p *Provider) ID() types.PeerId { return p.id }

func (p *Provider) LightBlock(ctx context.Context, height types.Height) (*types.LightBlock, error) {
	sh, err := p.client.Commit(ctx, height)
	if err != nil {
		return nil, classifyErr(err)
	}
	if sh.ChainID != p.chainID {
		return nil, fmt.Errorf("expected chainID %s, got %s", p.chainID, sh.ChainID)
	}
	lb, err := p.fillLightBlock(ctx, sh)
	if err != nil {
		return nil, classifyErr(err)
	}
	return lb, nil
}

// classifyErr maps a deadline or network timeout to light.ErrTimeout and any
// other transport failure to light.ErrIo.
func classifyErr(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return light.ErrTimeout(err)
	}
	return light.ErrIo(err)
}

func (p *Provider) fillLightBlock(ctx context.Context, sh *types.SignedHeader) (*types.LightBlock, error) {
	valset, err := p.client.Validators(ctx, sh.Height)
	if err != nil {
		return nil, fmt.Errorf("fetching validator set: %w", err)
	}
	nextValset, err := p.client.Validators(ctx, sh.Height+1)
	if err != nil {
		return nil, fmt.Errorf("fetching next validator set: %w", err)
	}
	return &types.LightBlock{
		SignedHeader:     sh,
		ValidatorSet:     valset,
		NextValidatorSet: nextValset,
		Provider:         p.id,
	}, nil
}

func (p *Provider) ReportEvidence(ctx context.Context, ev types.Evidence) (types.Hash, error) {
	return p.client.BroadcastEvidence(ctx, ev)
}
