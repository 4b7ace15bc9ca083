package types

import (
	"bytes"
	"fmt"
)

// Validator is one member of a ValidatorSet: a public key and a
// nonnegative voting power.
type Validator struct {
	Address     Address
	PubKey      PubKey
	VotingPower int64
}

// ValidatorSet is a finite ordered set of validators.
type ValidatorSet struct {
	Validators []*Validator
}

func NewValidatorSet(vals []*Validator) *ValidatorSet {
	return &ValidatorSet{Validators: vals}
}

// TotalVotingPower is the sum of voting power across all members.
func (vs *ValidatorSet) TotalVotingPower() int64 {
	var total int64
	for _, v := range vs.Validators {
		total += v.VotingPower
	}
	return total
}

func (vs *ValidatorSet) GetByAddress(addr Address) *Validator {
	for _, v := range vs.Validators {
		if v.Address.Equals(addr) {
			return v
		}
	}
	return nil
}

func (vs *ValidatorSet) Hash(hasher Hasher) Hash {
	return hasher.HashValidatorSet(vs)
}

func (vs *ValidatorSet) canonicalBytes() []byte {
	var buf bytes.Buffer
	for _, v := range vs.Validators {
		fmt.Fprintf(&buf, "%X:%d;", v.Address, v.VotingPower)
	}
	return buf.Bytes()
}

// VotingPowerInCommon returns the combined voting power of validators in vs
// that signed commit, used by predicate rules 6 and 7 of spec.md §4.1.
func (vs *ValidatorSet) VotingPowerInCommon(commit *Commit) int64 {
	if commit == nil {
		return 0
	}
	msg := commit.VoteSignBytes()
	var power int64
	for _, sig := range commit.Sigs {
		if sig.Absent() {
			continue
		}
		val := vs.GetByAddress(sig.ValidatorAddress)
		if val == nil {
			continue
		}
		if !val.PubKey.VerifySignature(msg, sig.Signature) {
			continue
		}
		power += val.VotingPower
	}
	return power
}

// VerifyCommit checks that commit is structurally consistent with vs and
// carries more than 2/3 of vs's voting power in valid signatures
// (spec.md §4.1 rule 7, and the commit-validity half of §6).
func (vs *ValidatorSet) VerifyCommit(chainID string, blockID BlockID, height Height, commit *Commit) error {
	if commit == nil {
		return fmt.Errorf("commit is nil")
	}
	if commit.ChainID != chainID {
		return fmt.Errorf("commit belongs to chain %q, expected %q", commit.ChainID, chainID)
	}
	if commit.Height != height {
		return fmt.Errorf("commit height %d does not match expected height %d", commit.Height, height)
	}
	if !commit.BlockID.Hash.Equals(blockID.Hash) {
		return fmt.Errorf("commit is for a different block")
	}

	total := vs.TotalVotingPower()
	signed := vs.votingPowerVerified(commit)
	if 3*signed <= 2*total {
		return fmt.Errorf("insufficient voting power: got %d, need more than %d", signed, 2*total/3)
	}
	return nil
}

// votingPowerVerified is like VotingPowerInCommon but also rejects a
// commit carrying a present-but-invalid signature, per spec.md §4.1 rule 7
// ("each signature verifies").
func (vs *ValidatorSet) votingPowerVerified(commit *Commit) int64 {
	msg := commit.VoteSignBytes()
	var power int64
	for _, sig := range commit.Sigs {
		if sig.Absent() {
			continue
		}
		val := vs.GetByAddress(sig.ValidatorAddress)
		if val == nil {
			continue
		}
		if !val.PubKey.VerifySignature(msg, sig.Signature) {
			return 0
		}
		power += val.VotingPower
	}
	return power
}

// HasInvalidSignature reports whether any present signature in commit
// fails to verify against a validator known to vs.
func (vs *ValidatorSet) HasInvalidSignature(commit *Commit) bool {
	msg := commit.VoteSignBytes()
	for _, sig := range commit.Sigs {
		if sig.Absent() {
			continue
		}
		val := vs.GetByAddress(sig.ValidatorAddress)
		if val == nil {
			continue
		}
		if !val.PubKey.VerifySignature(msg, sig.Signature) {
			return true
		}
	}
	return false
}
