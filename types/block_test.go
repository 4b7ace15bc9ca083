package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinexchain/tm-light-client/types"
)

func TestSignedHeaderValidateBasic(t *testing.T) {
	header := &types.Header{ChainID: "test-chain", Height: 5}
	commit := &types.Commit{
		ChainID: "test-chain",
		Height:  5,
		Sigs:    []types.CommitSig{{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")}},
	}
	sh := &types.SignedHeader{Header: header, Commit: commit}

	require.NoError(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderValidateBasicMissingCommit(t *testing.T) {
	sh := &types.SignedHeader{Header: &types.Header{ChainID: "test-chain", Height: 5}}
	assert.Error(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderValidateBasicChainIDMismatch(t *testing.T) {
	sh := &types.SignedHeader{
		Header: &types.Header{ChainID: "wrong-chain", Height: 5},
		Commit: &types.Commit{ChainID: "test-chain", Height: 5, Sigs: []types.CommitSig{{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")}}},
	}
	assert.Error(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderValidateBasicHeightMismatch(t *testing.T) {
	sh := &types.SignedHeader{
		Header: &types.Header{ChainID: "test-chain", Height: 5},
		Commit: &types.Commit{ChainID: "test-chain", Height: 6, Sigs: []types.CommitSig{{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")}}},
	}
	assert.Error(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderValidateBasicNoSignatures(t *testing.T) {
	sh := &types.SignedHeader{
		Header: &types.Header{ChainID: "test-chain", Height: 5},
		Commit: &types.Commit{ChainID: "test-chain", Height: 5},
	}
	assert.Error(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderValidateBasicIgnoresAbsentDuplicates(t *testing.T) {
	sh := &types.SignedHeader{
		Header: &types.Header{ChainID: "test-chain", Height: 5},
		Commit: &types.Commit{
			ChainID: "test-chain",
			Height:  5,
			Sigs: []types.CommitSig{
				{},
				{},
				{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")},
			},
		},
	}
	assert.NoError(t, sh.ValidateBasic("test-chain"), "two absent slots are not duplicate signatures")
}

func TestSignedHeaderValidateBasicDuplicateSignature(t *testing.T) {
	sh := &types.SignedHeader{
		Header: &types.Header{ChainID: "test-chain", Height: 5},
		Commit: &types.Commit{
			ChainID: "test-chain",
			Height:  5,
			Sigs: []types.CommitSig{
				{ValidatorAddress: types.Address("v1"), Signature: []byte("sig1")},
				{ValidatorAddress: types.Address("v1"), Signature: []byte("sig2")},
			},
		},
	}
	assert.Error(t, sh.ValidateBasic("test-chain"))
}

func TestSignedHeaderHashDeterministic(t *testing.T) {
	header := &types.Header{
		ChainID:            "test-chain",
		Height:             5,
		ValidatorsHash:     types.Hash("vals"),
		NextValidatorsHash: types.Hash("next-vals"),
		AppHash:            types.Hash("app"),
	}
	sh := &types.SignedHeader{Header: header, Commit: &types.Commit{ChainID: "test-chain", Height: 5}}
	hasher := types.DefaultHasher{}

	h1 := sh.Hash(hasher)
	h2 := sh.Hash(hasher)
	assert.True(t, h1.Equals(h2))

	other := &types.SignedHeader{
		Header: &types.Header{ChainID: "test-chain", Height: 5, AppHash: types.Hash("different")},
		Commit: &types.Commit{ChainID: "test-chain", Height: 5},
	}
	assert.False(t, h1.Equals(other.Hash(hasher)), "differing app hash must produce a differing header hash")
}

func TestHashEqualsRejectsDifferingLengths(t *testing.T) {
	assert.False(t, types.Hash("abc").Equals(types.Hash("ab")))
}

func TestLightBlockValidateBasic(t *testing.T) {
	hasher := types.DefaultHasher{}
	vals := types.NewValidatorSet(nil)
	header := &types.Header{
		ChainID:            "test-chain",
		Height:             5,
		ValidatorsHash:     hasher.HashValidatorSet(vals),
		NextValidatorsHash: hasher.HashValidatorSet(vals),
	}
	commit := &types.Commit{ChainID: "test-chain", Height: 5, Sigs: []types.CommitSig{{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")}}}
	lb := &types.LightBlock{
		SignedHeader:     &types.SignedHeader{Header: header, Commit: commit},
		ValidatorSet:     vals,
		NextValidatorSet: vals,
	}
	assert.NoError(t, lb.ValidateBasic("test-chain", hasher))
}

func TestLightBlockValidateBasicValidatorsHashMismatch(t *testing.T) {
	hasher := types.DefaultHasher{}
	vals := types.NewValidatorSet(nil)
	header := &types.Header{
		ChainID:            "test-chain",
		Height:             5,
		ValidatorsHash:     types.Hash("wrong"),
		NextValidatorsHash: hasher.HashValidatorSet(vals),
	}
	commit := &types.Commit{ChainID: "test-chain", Height: 5, Sigs: []types.CommitSig{{ValidatorAddress: types.Address("v1"), Signature: []byte("sig")}}}
	lb := &types.LightBlock{
		SignedHeader:     &types.SignedHeader{Header: header, Commit: commit},
		ValidatorSet:     vals,
		NextValidatorSet: vals,
	}
	assert.Error(t, lb.ValidateBasic("test-chain", hasher))
}
