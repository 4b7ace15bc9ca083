package types

import (
	"crypto/sha256"
	"fmt"
)

// Hash is a fixed-size digest produced by a Hasher.
type Hash []byte

func (h Hash) String() string { return fmt.Sprintf("%X", []byte(h)) }

func (h Hash) Equals(o Hash) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if h[i] != o[i] {
			return false
		}
	}
	return true
}

// Hasher hashes headers and validator sets. It is the out-of-scope crypto
// collaborator named in spec.md §6: deterministic and collision-resistant,
// identical inputs from any peer yield identical hashes.
type Hasher interface {
	HashHeader(h *Header) Hash
	HashValidatorSet(vs *ValidatorSet) Hash
	HashBytes(b []byte) Hash
}

// DefaultHasher is the production Hasher, a thin sha256 wrapper. No
// ecosystem library in the example pack offers a better fit for a
// header-hash primitive than the standard library (see DESIGN.md).
type DefaultHasher struct{}

func (DefaultHasher) HashBytes(b []byte) Hash {
	sum := sha256.Sum256(b)
	return Hash(sum[:])
}

func (d DefaultHasher) HashHeader(h *Header) Hash {
	return d.HashBytes(h.canonicalBytes())
}

func (d DefaultHasher) HashValidatorSet(vs *ValidatorSet) Hash {
	return d.HashBytes(vs.canonicalBytes())
}

// LightBlock is the tuple (SignedHeader, ValidatorSet, NextValidatorSet,
// PeerId) from spec.md §3. Equality is structural on the first three
// fields; PeerId is metadata.
type LightBlock struct {
	SignedHeader     *SignedHeader
	ValidatorSet     *ValidatorSet
	NextValidatorSet *ValidatorSet
	Provider         PeerId
}

func (lb *LightBlock) Height() Height {
	return lb.SignedHeader.Height
}

func (lb *LightBlock) Time() Time {
	return lb.SignedHeader.Time
}

// ValidateBasic checks the LightBlock well-formedness invariant from
// spec.md §3: validators_hash and next_validators_hash must match the
// header, and the signed header itself must be structurally valid.
func (lb *LightBlock) ValidateBasic(chainID string, hasher Hasher) error {
	if lb.SignedHeader == nil {
		return fmt.Errorf("light block has no signed header")
	}
	if lb.ValidatorSet == nil || lb.NextValidatorSet == nil {
		return fmt.Errorf("light block is missing a validator set")
	}
	if err := lb.SignedHeader.ValidateBasic(chainID); err != nil {
		return fmt.Errorf("invalid signed header: %w", err)
	}
	gotVals := hasher.HashValidatorSet(lb.ValidatorSet)
	if !gotVals.Equals(lb.SignedHeader.ValidatorsHash) {
		return fmt.Errorf("validators hash mismatch: header has %X, set hashes to %X",
			lb.SignedHeader.ValidatorsHash, gotVals)
	}
	gotNext := hasher.HashValidatorSet(lb.NextValidatorSet)
	if !gotNext.Equals(lb.SignedHeader.NextValidatorsHash) {
		return fmt.Errorf("next validators hash mismatch: header has %X, set hashes to %X",
			lb.SignedHeader.NextValidatorsHash, gotNext)
	}
	return nil
}

// Equal implements the structural equality required by spec.md §3: the
// PeerId field is metadata and is excluded.
func (lb *LightBlock) Equal(o *LightBlock) bool {
	if lb == nil || o == nil {
		return lb == o
	}
	return lb.SignedHeader.Hash(DefaultHasher{}).Equals(o.SignedHeader.Hash(DefaultHasher{})) &&
		lb.ValidatorSet.Hash(DefaultHasher{}).Equals(o.ValidatorSet.Hash(DefaultHasher{})) &&
		lb.NextValidatorSet.Hash(DefaultHasher{}).Equals(o.NextValidatorSet.Hash(DefaultHasher{}))
}

func (lb *LightBlock) String() string {
	return fmt.Sprintf("LightBlock{height=%d provider=%s}", lb.Height(), lb.Provider)
}
