// Package mock implements a canned in-memory provider.Provider, grounded
// on leejungho86-ostracon/light/detector_test.go's
// mockp.New(chainID, headers, validators) usage, which this package
// mirrors to serve blocks without a live network. The light package's own
// tests do not use it; they use an in-package fake instead.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/coinexchain/tm-light-client/light"
	"github.com/coinexchain/tm-light-client/types"
)

// Provider serves a fixed map of height -> LightBlock, plus recording any
// evidence reported to it (HasEvidence), exactly as ostracon's mockp does.
type Provider struct {
	chainID string
	id      types.PeerId

	mtx    sync.Mutex
	blocks map[types.Height]*types.LightBlock

	evidence []types.Evidence
}

// New builds a mock provider named id from the given headers, validator
// sets, and next-validator sets, all keyed by height.
func New(chainID string, id types.PeerId,
	headers map[types.Height]*types.SignedHeader,
	validators map[types.Height]*types.ValidatorSet,
	nextValidators map[types.Height]*types.ValidatorSet) *Provider {

	blocks := make(map[types.Height]*types.LightBlock, len(headers))
	for h, sh := range headers {
		blocks[h] = &types.LightBlock{
			SignedHeader:     sh,
			ValidatorSet:     validators[h],
			NextValidatorSet: nextValidators[h],
			Provider:         id,
		}
	}
	return &Provider{chainID: chainID, id: id, blocks: blocks}
}

func (p *Provider) ChainID() string  { return p.chainID }
func (p *Provider) ID() types.PeerId { return p.id }

func (p *Provider) LightBlock(ctx context.Context, height types.Height) (*types.LightBlock, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if height == 0 {
		return p.latestLocked()
	}
	lb, ok := p.blocks[height]
	if !ok {
		return nil, light.ErrIo(errNotFound(height))
	}
	return lb, nil
}

func (p *Provider) latestLocked() (*types.LightBlock, error) {
	var (
		best  *types.LightBlock
		bestH types.Height
		found bool
	)
	for h, lb := range p.blocks {
		if !found || h > bestH {
			best, bestH, found = lb, h, true
		}
	}
	if !found {
		return nil, light.ErrIo(errNotFound(0))
	}
	return best, nil
}

// ReportEvidence records ev and returns a canned receipt hash, standing in
// for a real chain's broadcast_evidence response.
func (p *Provider) ReportEvidence(ctx context.Context, ev types.Evidence) (types.Hash, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.evidence = append(p.evidence, ev)
	return types.DefaultHasher{}.HashBytes(ev.Bytes()), nil
}

// HasEvidence reports whether ev (by byte encoding) was reported to this
// provider, mirroring ostracon's witness.HasEvidence/primary.HasEvidence.
func (p *Provider) HasEvidence(ev types.Evidence) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for _, e := range p.evidence {
		if string(e.Bytes()) == string(ev.Bytes()) {
			return true
		}
	}
	return false
}

// Heights returns the provider's known heights, ascending, for tests.
func (p *Provider) Heights() []types.Height {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	out := make([]types.Height, 0, len(p.blocks))
	for h := range p.blocks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type errNotFound types.Height

func (e errNotFound) Error() string {
	if e == 0 {
		return "mock provider has no blocks"
	}
	return "mock provider has no block at requested height"
}
