package types_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinexchain/tm-light-client/types"
)

func genKey(t *testing.T) types.PrivKey {
	t.Helper()
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return types.NewPrivKey(sk)
}

func genValSet(t *testing.T, n int, power int64) ([]types.PrivKey, *types.ValidatorSet) {
	t.Helper()
	keys := make([]types.PrivKey, n)
	vals := make([]*types.Validator, n)
	for i := range keys {
		keys[i] = genKey(t)
		pk := keys[i].PubKey()
		vals[i] = &types.Validator{Address: pk.Address(), PubKey: pk, VotingPower: power}
	}
	return keys, types.NewValidatorSet(vals)
}

func signedCommit(chainID string, height types.Height, blockID types.BlockID, keys []types.PrivKey, vals *types.ValidatorSet, numSigners int) *types.Commit {
	commit := &types.Commit{Height: height, BlockID: blockID, ChainID: chainID}
	msg := commit.VoteSignBytes()
	sigs := make([]types.CommitSig, 0, len(vals.Validators))
	for i, v := range vals.Validators {
		if i < numSigners {
			sigs = append(sigs, types.CommitSig{ValidatorAddress: v.Address, Signature: keys[i].Sign(msg)})
		} else {
			sigs = append(sigs, types.CommitSig{})
		}
	}
	commit.Sigs = sigs
	return commit
}

func TestValidatorSetTotalVotingPower(t *testing.T) {
	_, vals := genValSet(t, 4, 25)
	assert.Equal(t, int64(100), vals.TotalVotingPower())
}

func TestValidatorSetGetByAddress(t *testing.T) {
	_, vals := genValSet(t, 3, 10)
	v := vals.Validators[1]
	assert.Equal(t, v, vals.GetByAddress(v.Address))

	other := genKey(t).PubKey().Address()
	assert.Nil(t, vals.GetByAddress(other))
}

func TestVerifyCommitSufficientVotingPower(t *testing.T) {
	keys, vals := genValSet(t, 4, 25)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 10, blockID, keys, vals, 3) // 75/100 > 2/3

	err := vals.VerifyCommit("test-chain", blockID, 10, commit)
	assert.NoError(t, err)
}

func TestVerifyCommitInsufficientVotingPower(t *testing.T) {
	keys, vals := genValSet(t, 4, 25)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 10, blockID, keys, vals, 2) // 50/100, not > 2/3

	err := vals.VerifyCommit("test-chain", blockID, 10, commit)
	assert.Error(t, err)
}

func TestVerifyCommitWrongChainID(t *testing.T) {
	keys, vals := genValSet(t, 4, 25)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("other-chain", 10, blockID, keys, vals, 4)

	err := vals.VerifyCommit("test-chain", blockID, 10, commit)
	assert.Error(t, err)
}

func TestVerifyCommitWrongHeight(t *testing.T) {
	keys, vals := genValSet(t, 4, 25)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 10, blockID, keys, vals, 4)

	err := vals.VerifyCommit("test-chain", blockID, 11, commit)
	assert.Error(t, err)
}

func TestVerifyCommitWrongBlockID(t *testing.T) {
	keys, vals := genValSet(t, 4, 25)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 10, blockID, keys, vals, 4)

	err := vals.VerifyCommit("test-chain", types.BlockID{Hash: types.Hash("different")}, 10, commit)
	assert.Error(t, err)
}

func TestVotingPowerInCommonIgnoresUnknownSigner(t *testing.T) {
	keys, vals := genValSet(t, 3, 10)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 5, blockID, keys, vals, 3)

	// Append a signature from a validator vals doesn't know about.
	stranger := genKey(t)
	commit.Sigs = append(commit.Sigs, types.CommitSig{
		ValidatorAddress: stranger.PubKey().Address(),
		Signature:        stranger.Sign(commit.VoteSignBytes()),
	})

	assert.Equal(t, int64(30), vals.VotingPowerInCommon(commit))
}

func TestHasInvalidSignature(t *testing.T) {
	keys, vals := genValSet(t, 3, 10)
	blockID := types.BlockID{Hash: types.Hash("block")}
	commit := signedCommit("test-chain", 5, blockID, keys, vals, 3)
	assert.False(t, vals.HasInvalidSignature(commit))

	// Corrupt one signature so it no longer verifies.
	commit.Sigs[0].Signature = append([]byte{}, commit.Sigs[0].Signature...)
	commit.Sigs[0].Signature[0] ^= 0xFF
	assert.True(t, vals.HasInvalidSignature(commit))
}
