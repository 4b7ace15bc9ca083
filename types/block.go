package types

import (
	"bytes"
	"fmt"
)

// BlockID identifies a block by hash, the way a Commit's votes all refer
// back to the block they commit.
type BlockID struct {
	Hash Hash
}

// Header is a block header, per spec.md §3: height, time, chain
// identifier, previous-block hash, the active and next validator-set
// hashes, and an application state hash.
type Header struct {
	ChainID            string
	Height             Height
	Time               Time
	LastBlockID        BlockID
	ValidatorsHash     Hash
	NextValidatorsHash Hash
	AppHash            Hash
}

// canonicalBytes is the deterministic encoding hashed by Hasher.HashHeader.
// It is not wire format (wire/Merkle-proof decoding is out of scope per
// spec.md §1); it only needs to be a stable, injective encoding of the
// fields that matter for verification.
func (h *Header) canonicalBytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s|%d|%d|%X|%X|%X|%X",
		h.ChainID, h.Height, h.Time.UnixNano(),
		h.LastBlockID.Hash, h.ValidatorsHash, h.NextValidatorsHash, h.AppHash)
	return buf.Bytes()
}

// CommitSig is one signature slot in a Commit: either absent, or a
// signature by the named validator over the commit's canonical vote.
type CommitSig struct {
	ValidatorAddress Address
	Signature        []byte
	Timestamp        Time
}

func (cs CommitSig) Absent() bool {
	return len(cs.Signature) == 0 && len(cs.ValidatorAddress) == 0
}

// Commit carries one signature slot per validator of the active set for
// this height.
type Commit struct {
	Height  Height
	BlockID BlockID
	ChainID string
	Sigs    []CommitSig
}

// VoteSignBytes is the canonical message each non-absent CommitSig must
// have signed.
func (c *Commit) VoteSignBytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "vote|%s|%d|%X", c.ChainID, c.Height, c.BlockID.Hash)
	return buf.Bytes()
}

// SignedHeader is a Header plus its Commit.
type SignedHeader struct {
	*Header
	Commit *Commit
}

// Hash is the header hash used by ForkDetector to compare primary and
// witness blocks at the same height (spec.md §4.4).
func (sh *SignedHeader) Hash(hasher Hasher) Hash {
	return hasher.HashHeader(sh.Header)
}

// ValidateBasic checks structural well-formedness: chain ID and height
// consistency between header and commit, and that the commit isn't empty.
func (sh *SignedHeader) ValidateBasic(chainID string) error {
	if sh.Header == nil {
		return fmt.Errorf("missing header")
	}
	if sh.Commit == nil {
		return fmt.Errorf("missing commit")
	}
	if sh.Header.ChainID != chainID {
		return fmt.Errorf("header belongs to chain %q, expected %q", sh.Header.ChainID, chainID)
	}
	if sh.Commit.ChainID != chainID {
		return fmt.Errorf("commit belongs to chain %q, expected %q", sh.Commit.ChainID, chainID)
	}
	if sh.Commit.Height != sh.Header.Height {
		return fmt.Errorf("commit height %d does not match header height %d", sh.Commit.Height, sh.Header.Height)
	}
	if len(sh.Commit.Sigs) == 0 {
		return fmt.Errorf("commit has no signatures")
	}
	seen := make(map[string]bool, len(sh.Commit.Sigs))
	for _, sig := range sh.Commit.Sigs {
		if sig.Absent() {
			continue
		}
		addr := sig.ValidatorAddress.String()
		if seen[addr] {
			return fmt.Errorf("duplicate signature from validator %s", addr)
		}
		seen[addr] = true
	}
	return nil
}
