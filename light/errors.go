// Error kinds follow the teacher's lite/errors package idiom: unexported
// error structs, ErrXxx() constructors wrapping them with
// github.com/pkg/errors, and IsErrXxx(err) predicates built on
// errors.Cause. Extended here to the full taxonomy of spec.md §7, plus an
// ErrorKind/HasExpired/IsTimeout accessor set mirrored from
// tendermint-rs's ErrorKind/ErrorExt so the ForkDetector can classify
// witness failures without a type switch.
package light

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/coinexchain/tm-light-client/types"
)

// ErrorKind discriminates the error taxonomy of spec.md §7.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindIo
	KindTimeout
	KindNoTrustedState
	KindNoPrimary
	KindNoWitnesses
	KindTargetLowerThanTrustedState
	KindTrustedStateOutsideTrustingPeriod
	KindInsufficientVotingPower
	KindInvalidSignature
	KindInvalidValidatorSet
	KindInvalidCommit
	KindNonMonotonicBftTime
	KindHeaderFromTheFuture
	KindForkDetected
	KindChannelDisconnected
)

// HasExpired reports whether this kind represents an expired trust window,
// used by ForkDetector to treat expiry as a genuine Fork (spec.md §4.4).
func (k ErrorKind) HasExpired() bool {
	return k == KindTrustedStateOutsideTrustingPeriod
}

// IsTimeout reports whether this kind represents an I/O timeout, used by
// ForkDetector to record a Timeout fork classification instead of Faulty.
func (k ErrorKind) IsTimeout() bool {
	return k == KindTimeout
}

type kindedError struct {
	kind ErrorKind
	msg  string
}

func (e *kindedError) Error() string { return e.msg }

// ErrKind extracts the ErrorKind carried by err, if any, by looking
// through any github.com/pkg/errors wrapping via errors.Cause.
func ErrKind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	cause := pkgerrors.Cause(err)
	if ke, ok := cause.(*kindedError); ok {
		return ke.kind
	}
	return KindUnknown
}

func wrap(kind ErrorKind, msg string) error {
	return pkgerrors.WithStack(&kindedError{kind: kind, msg: msg})
}

func isKind(err error, kind ErrorKind) bool {
	return ErrKind(err) == kind
}

// ErrIo wraps a transport failure reported by a Provider.
func ErrIo(err error) error {
	return wrap(KindIo, fmt.Sprintf("io error: %v", err))
}

func IsErrIo(err error) bool { return isKind(err, KindIo) }

// ErrTimeout wraps a transport failure specifically due to a timeout.
func ErrTimeout(err error) error {
	return wrap(KindTimeout, fmt.Sprintf("io timeout: %v", err))
}

func IsErrTimeout(err error) bool { return isKind(err, KindTimeout) }

// ErrNoTrustedState reports that the required trust anchor is absent at
// the given status.
func ErrNoTrustedState(status Status) error {
	return wrap(KindNoTrustedState, fmt.Sprintf("no %s state found in the store", status))
}

func IsErrNoTrustedState(err error) bool { return isKind(err, KindNoTrustedState) }

// ErrNoPrimary reports that the PeerList has no primary to promote.
func ErrNoPrimary() error {
	return wrap(KindNoPrimary, "no primary available")
}

func IsErrNoPrimary(err error) bool { return isKind(err, KindNoPrimary) }

// ErrNoWitnesses reports that the PeerList has no witness to promote.
func ErrNoWitnesses() error {
	return wrap(KindNoWitnesses, "no witnesses left")
}

func IsErrNoWitnesses(err error) bool { return isKind(err, KindNoWitnesses) }

// ErrTargetLowerThanTrustedState reports target < trusted.height.
func ErrTargetLowerThanTrustedState(target, trusted types.Height) error {
	return wrap(KindTargetLowerThanTrustedState,
		fmt.Sprintf("target height %d is lower than trusted height %d", target, trusted))
}

func IsErrTargetLowerThanTrustedState(err error) bool {
	return isKind(err, KindTargetLowerThanTrustedState)
}

// ErrTrustedStateOutsideTrustingPeriod reports an expired trust anchor.
func ErrTrustedStateOutsideTrustingPeriod(trustedTime, now types.Time) error {
	return wrap(KindTrustedStateOutsideTrustingPeriod,
		fmt.Sprintf("trusted state at %s is outside the trusting period as of %s", trustedTime, now))
}

func IsErrTrustedStateOutsideTrustingPeriod(err error) bool {
	return isKind(err, KindTrustedStateOutsideTrustingPeriod)
}

// ErrInsufficientVotingPower reports a commit or trust-overlap quorum
// failure. Client treats it as a bisection signal, not a peer fault, and
// leaves the block unmarked while a closer pivot remains; it marks the
// block Failed only when the step is already adjacent and cannot be bisected.
func ErrInsufficientVotingPower(got, needed int64) error {
	return wrap(KindInsufficientVotingPower,
		fmt.Sprintf("insufficient voting power: got %d, needed more than %d", got, needed))
}

func IsErrInsufficientVotingPower(err error) bool {
	return isKind(err, KindInsufficientVotingPower)
}

// ErrInvalidSignature reports a present signature that failed to verify.
func ErrInvalidSignature(detail string) error {
	return wrap(KindInvalidSignature, fmt.Sprintf("invalid signature: %s", detail))
}

func IsErrInvalidSignature(err error) bool { return isKind(err, KindInvalidSignature) }

// ErrInvalidValidatorSet reports a validator-set hash mismatch.
func ErrInvalidValidatorSet(detail string) error {
	return wrap(KindInvalidValidatorSet, fmt.Sprintf("invalid validator set: %s", detail))
}

func IsErrInvalidValidatorSet(err error) bool { return isKind(err, KindInvalidValidatorSet) }

// ErrInvalidCommit reports a structural commit error.
func ErrInvalidCommit(detail string) error {
	return wrap(KindInvalidCommit, fmt.Sprintf("invalid commit: %s", detail))
}

func IsErrInvalidCommit(err error) bool { return isKind(err, KindInvalidCommit) }

// ErrNonMonotonicBftTime reports untrusted.time <= trusted.time.
func ErrNonMonotonicBftTime(untrusted, trusted types.Time) error {
	return wrap(KindNonMonotonicBftTime,
		fmt.Sprintf("header time %s is not after trusted time %s", untrusted, trusted))
}

func IsErrNonMonotonicBftTime(err error) bool { return isKind(err, KindNonMonotonicBftTime) }

// ErrHeaderFromTheFuture reports untrusted.time > now + clockDrift.
func ErrHeaderFromTheFuture(headerTime, now types.Time) error {
	return wrap(KindHeaderFromTheFuture,
		fmt.Sprintf("header time %s is too far in the future of local time %s", headerTime, now))
}

func IsErrHeaderFromTheFuture(err error) bool { return isKind(err, KindHeaderFromTheFuture) }

// ErrForkDetected is the terminal outcome of spec.md §7: never recovered,
// always surfaced to the caller.
type ErrForkDetected struct {
	Peers []types.PeerId
}

func (e *ErrForkDetected) Error() string {
	return fmt.Sprintf("fork detected, involving peers: %v", e.Peers)
}

func NewErrForkDetected(peers []types.PeerId) error {
	return &ErrForkDetected{Peers: peers}
}

func IsErrForkDetected(err error) bool {
	_, ok := err.(*ErrForkDetected)
	return ok
}

// ErrChannelDisconnected reports the Supervisor goroutine has exited.
func ErrChannelDisconnected() error {
	return wrap(KindChannelDisconnected, "supervisor channel disconnected")
}

func IsErrChannelDisconnected(err error) bool { return isKind(err, KindChannelDisconnected) }
