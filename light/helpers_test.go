package light

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coinexchain/tm-light-client/light/store/memory"
	"github.com/coinexchain/tm-light-client/types"
)

// genKeys generates n ed25519 keypairs, grounded on the modern tendermint
// light-client test fixture's genPrivKeys helper
// (mattsu6666-tendermint__light-client_test.go).
func genKeys(n int) []types.PrivKey {
	keys := make([]types.PrivKey, n)
	for i := 0; i < n; i++ {
		_, sk, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			panic(err)
		}
		keys[i] = types.NewPrivKey(sk)
	}
	return keys
}

// toValidators builds a ValidatorSet where every key gets the same power,
// mirroring the test fixture's keys.ToValidators(power, ...) shape.
func toValidators(keys []types.PrivKey, power int64) *types.ValidatorSet {
	vals := make([]*types.Validator, len(keys))
	for i, k := range keys {
		pk := k.PubKey()
		vals[i] = &types.Validator{
			Address:     pk.Address(),
			PubKey:      pk,
			VotingPower: power,
		}
	}
	return types.NewValidatorSet(vals)
}

func hashBytes(s string) types.Hash {
	return types.DefaultHasher{}.HashBytes([]byte(s))
}

// genSignedHeader builds a SignedHeader at height, signed by the first
// numSigners of keys (assumed to correspond to vals), whose
// next_validators_hash is nextVals's hash.
func genSignedHeader(chainID string, height types.Height, t time.Time,
	vals *types.ValidatorSet, nextVals *types.ValidatorSet, keys []types.PrivKey, numSigners int,
	lastBlockID types.BlockID) *types.SignedHeader {
	return genSignedHeaderWithAppHash(chainID, height, t, vals, nextVals, keys, numSigners, lastBlockID, "app_hash")
}

// genSignedHeaderWithAppHash is genSignedHeader with an explicit app hash
// seed, letting tests build two otherwise-identical headers at the same
// height that hash differently (a conflicting-headers fixture).
func genSignedHeaderWithAppHash(chainID string, height types.Height, t time.Time,
	vals *types.ValidatorSet, nextVals *types.ValidatorSet, keys []types.PrivKey, numSigners int,
	lastBlockID types.BlockID, appHashSeed string) *types.SignedHeader {

	hasher := types.DefaultHasher{}
	header := &types.Header{
		ChainID:            chainID,
		Height:             height,
		Time:               t,
		LastBlockID:        lastBlockID,
		ValidatorsHash:     hasher.HashValidatorSet(vals),
		NextValidatorsHash: hasher.HashValidatorSet(nextVals),
		AppHash:            hashBytes(appHashSeed),
	}
	blockID := types.BlockID{Hash: hasher.HashHeader(header)}

	commit := &types.Commit{
		Height:  height,
		BlockID: blockID,
		ChainID: chainID,
	}
	msg := commit.VoteSignBytes()

	sigs := make([]types.CommitSig, 0, len(vals.Validators))
	for i, v := range vals.Validators {
		if i < numSigners && i < len(keys) {
			sigs = append(sigs, types.CommitSig{
				ValidatorAddress: v.Address,
				Signature:        keys[i].Sign(msg),
				Timestamp:        t,
			})
		} else {
			sigs = append(sigs, types.CommitSig{})
		}
	}
	commit.Sigs = sigs

	return &types.SignedHeader{Header: header, Commit: commit}
}

func lightBlock(sh *types.SignedHeader, vals, nextVals *types.ValidatorSet, provider types.PeerId) *types.LightBlock {
	return &types.LightBlock{
		SignedHeader:     sh,
		ValidatorSet:     vals,
		NextValidatorSet: nextVals,
		Provider:         provider,
	}
}

// memStore is a tiny alias to keep test call sites short.
func memStore() Store {
	return memory.New()
}

// fakeProvider is an in-package stand-in for provider.Provider, grounded on
// leejungho86-ostracon/light/detector_test.go's mockp.New(chainID, headers,
// validators) usage. Defined here (rather than reusing light/provider/mock)
// so internal (white-box) tests of this package can use it without
// introducing an import cycle back through light/provider/mock -> light.
type fakeProvider struct {
	chainID string
	id      types.PeerId
	blocks  map[types.Height]*types.LightBlock

	// errAt, when set for a height, is returned by LightBlock instead of
	// looking the height up, letting tests simulate a timed-out or
	// otherwise faulty peer.
	errAt map[types.Height]error

	mu       sync.Mutex
	evidence []types.Evidence
}

func newFakeProvider(chainID string, id types.PeerId, blocks map[types.Height]*types.LightBlock) *fakeProvider {
	return &fakeProvider{chainID: chainID, id: id, blocks: blocks}
}

func (p *fakeProvider) ChainID() string  { return p.chainID }
func (p *fakeProvider) ID() types.PeerId { return p.id }

func (p *fakeProvider) LightBlock(ctx context.Context, height types.Height) (*types.LightBlock, error) {
	if err, ok := p.errAt[height]; ok {
		return nil, err
	}
	if height == 0 {
		var best *types.LightBlock
		for h, lb := range p.blocks {
			if best == nil || h > best.Height() {
				best = lb
			}
		}
		if best == nil {
			return nil, ErrIo(fmt.Errorf("fake provider %s has no blocks", p.id))
		}
		return best, nil
	}
	lb, ok := p.blocks[height]
	if !ok {
		return nil, ErrIo(fmt.Errorf("fake provider %s has no block at height %d", p.id, height))
	}
	return lb, nil
}

func (p *fakeProvider) ReportEvidence(ctx context.Context, ev types.Evidence) (types.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evidence = append(p.evidence, ev)
	return types.DefaultHasher{}.HashBytes(ev.Bytes()), nil
}

func (p *fakeProvider) hasEvidence(ev types.Evidence) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.evidence {
		if string(e.Bytes()) == string(ev.Bytes()) {
			return true
		}
	}
	return false
}

// withFixedNow overrides timeNow for the duration of a test, restoring it on
// cleanup, so tests don't depend on wall-clock time.
func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}
