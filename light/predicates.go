// VerificationPredicates: pure checks over (trusted, untrusted, params),
// grounded on the teacher's verifyAndSave (lite/client.go) generalized into
// the seven discrete rules of spec.md §4.1.
package light

import (
	"time"

	"github.com/coinexchain/tm-light-client/types"
)

// TrustLevel is a rational in [1/3, 1], the fraction of a trusted
// next-validator-set's voting power that must also have signed a skipped
// header (spec.md §4.1 rule 6). The canonical default is 1/3.
type TrustLevel struct {
	Numerator, Denominator int64
}

// DefaultTrustLevel is the canonical 1/3 trust threshold.
var DefaultTrustLevel = TrustLevel{Numerator: 1, Denominator: 3}

func (tl TrustLevel) validate() error {
	if tl.Denominator <= 0 {
		return ErrInvalidCommit("trust level has non-positive denominator")
	}
	// 1/3 <= tl <= 1  <=>  denominator <= 3*numerator <= 3*denominator
	if 3*tl.Numerator < tl.Denominator || tl.Numerator > tl.Denominator {
		return ErrInvalidCommit("trust level must be within [1/3, 1]")
	}
	return nil
}

// thresholdPower returns trustLevel * total, rounded down: the power that
// rule 6 requires the overlap to strictly exceed.
func (tl TrustLevel) thresholdPower(total int64) int64 {
	return total * tl.Numerator / tl.Denominator
}

// VerificationParams bundles the parameters every predicate is checked
// against, per spec.md §4.1's function signature.
type VerificationParams struct {
	TrustLevel     TrustLevel
	ClockDrift     time.Duration
	TrustingPeriod time.Duration

	// MaxBlockLag bounds how long the ForkDetector waits for a witness that
	// doesn't yet have a block at the primary's height to catch up, before
	// giving up on it. Grounded on tenderdash's light.Client.maxBlockLag
	// (_examples/other_examples/51aa4375_Ehsan-saradar-tenderdash__light-detector.go.go),
	// whose compareNewHeaderWithWitness waits 2*maxClockDrift+maxBlockLag
	// for a lagging witness before concluding it is unresponsive.
	MaxBlockLag time.Duration
}

// DefaultVerificationParams mirrors the teacher's defaults (336h trusting
// period is the teacher's TestExample_MinimalSetup value; a conservative
// default here uses the more common 10 seconds of clock drift seen across
// the pack's tendermint-derived examples).
var DefaultVerificationParams = VerificationParams{
	TrustLevel:     DefaultTrustLevel,
	ClockDrift:     10 * time.Second,
	TrustingPeriod: 336 * time.Hour,
	MaxBlockLag:    10 * time.Second,
}

// CheckWellFormed is predicate 1: the untrusted block must satisfy the
// LightBlock invariants of spec.md §3. Structural commit defects (a
// missing header, wrong chain ID or height, no signatures, a duplicate
// validator signature) are reported as ErrInvalidCommit; a validator-set
// that doesn't hash to what the header claims is reported separately as
// ErrInvalidValidatorSet.
func CheckWellFormed(chainID string, hasher types.Hasher, untrusted *types.LightBlock) error {
	if untrusted.SignedHeader == nil || untrusted.ValidatorSet == nil || untrusted.NextValidatorSet == nil {
		return ErrInvalidCommit("light block is missing a signed header or a validator set")
	}
	if err := untrusted.SignedHeader.ValidateBasic(chainID); err != nil {
		return ErrInvalidCommit(err.Error())
	}
	if err := untrusted.ValidateBasic(chainID, hasher); err != nil {
		return ErrInvalidValidatorSet(err.Error())
	}
	return nil
}

// CheckMonotonicity is predicate 2: untrusted must be strictly newer, both
// in height and in time, than trusted.
func CheckMonotonicity(trusted, untrusted *types.LightBlock) error {
	if untrusted.Height() <= trusted.Height() {
		return ErrTargetLowerThanTrustedState(untrusted.Height(), trusted.Height())
	}
	if !untrusted.Time().After(trusted.Time()) {
		return ErrNonMonotonicBftTime(untrusted.Time(), trusted.Time())
	}
	return nil
}

// CheckNotExpired is predicate 3: trusted must still be within its
// trusting period as of now.
func CheckNotExpired(trusted *types.LightBlock, trustingPeriod time.Duration, now types.Time) error {
	expiry := trusted.Time().Add(trustingPeriod)
	if now.After(expiry) {
		return ErrTrustedStateOutsideTrustingPeriod(trusted.Time(), now)
	}
	return nil
}

// CheckNotFromFuture is predicate 4: untrusted.time must not exceed
// now + clockDrift.
func CheckNotFromFuture(untrusted *types.LightBlock, clockDrift time.Duration, now types.Time) error {
	if untrusted.Time().After(now.Add(clockDrift)) {
		return ErrHeaderFromTheFuture(untrusted.Time(), now)
	}
	return nil
}

// CheckValidatorSetContinuity is predicate 5, applied only when
// untrusted.height == trusted.height+1: the untrusted validator set must
// equal trusted's next validator set by hash.
func CheckValidatorSetContinuity(trusted, untrusted *types.LightBlock, hasher types.Hasher) error {
	if untrusted.Height() != trusted.Height()+1 {
		return nil
	}
	got := hasher.HashValidatorSet(untrusted.ValidatorSet)
	if !got.Equals(trusted.SignedHeader.NextValidatorsHash) {
		return ErrInvalidValidatorSet("validator set at adjacent height does not match trusted next_validators_hash")
	}
	return nil
}

// CheckTrustOverlap is predicate 6, applied only at non-adjacent heights:
// the voting power, in trusted.NextValidatorSet, of validators that also
// signed the untrusted commit must exceed trustLevel * total power.
func CheckTrustOverlap(trusted, untrusted *types.LightBlock, trustLevel TrustLevel) error {
	if untrusted.Height() == trusted.Height()+1 {
		return nil
	}
	if err := trustLevel.validate(); err != nil {
		return err
	}

	total := trusted.NextValidatorSet.TotalVotingPower()
	common := trusted.NextValidatorSet.VotingPowerInCommon(untrusted.SignedHeader.Commit)
	needed := trustLevel.thresholdPower(total)
	if common <= needed {
		return ErrInsufficientVotingPower(common, needed)
	}
	return nil
}

// CheckCommit is predicate 7: untrusted's own commit must carry more than
// 2/3 of untrusted.ValidatorSet's voting power in verified signatures.
func CheckCommit(untrusted *types.LightBlock) error {
	if untrusted.ValidatorSet.HasInvalidSignature(untrusted.SignedHeader.Commit) {
		return ErrInvalidSignature("a present signature failed to verify against its validator's key")
	}
	total := untrusted.ValidatorSet.TotalVotingPower()
	signed := untrusted.ValidatorSet.VotingPowerInCommon(untrusted.SignedHeader.Commit)
	if 3*signed <= 2*total {
		return ErrInsufficientVotingPower(signed, 2*total/3)
	}
	return nil
}

// Verify runs all seven predicates in order, short-circuiting on the
// first failure, per spec.md §4.1: "they MUST all pass for an untrusted
// block to be marked Verified".
func Verify(chainID string, hasher types.Hasher, trusted, untrusted *types.LightBlock,
	params VerificationParams, now types.Time) error {

	if err := CheckWellFormed(chainID, hasher, untrusted); err != nil {
		return err
	}
	if err := CheckMonotonicity(trusted, untrusted); err != nil {
		return err
	}
	if err := CheckNotExpired(trusted, params.TrustingPeriod, now); err != nil {
		return err
	}
	if err := CheckNotFromFuture(untrusted, params.ClockDrift, now); err != nil {
		return err
	}
	if err := CheckValidatorSetContinuity(trusted, untrusted, hasher); err != nil {
		return err
	}
	if err := CheckTrustOverlap(trusted, untrusted, params.TrustLevel); err != nil {
		return err
	}
	if err := CheckCommit(untrusted); err != nil {
		return err
	}
	return nil
}
