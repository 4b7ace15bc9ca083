package light

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/coinexchain/tm-light-client/types"
)

// TrustOptions seed the weak-subjectivity trust bootstrap for a new
// Client, grounded on the teacher's TrustOptions (lite/client.go Option 1).
type TrustOptions struct {
	// Period is the maximum age a Trusted block may have before it is
	// considered expired.
	Period time.Duration

	// Height and Hash pin the initial trust anchor; unless the store
	// already holds a Trusted block at Height, NewClient fetches the
	// corresponding LightBlock from the primary and checks that its hash
	// matches before trusting it.
	Height types.Height
	Hash   []byte
}

// ValidateBasic rejects an obviously malformed TrustOptions, grounded on
// the modern tendermint-go test fixture
// (mattsu6666-tendermint__light-client_test.go's TestValidateTrustOptions).
func (to TrustOptions) ValidateBasic() error {
	if to.Period <= 0 {
		return ErrInvalidCommit("trust period must be positive")
	}
	if to.Height <= 0 {
		return ErrInvalidCommit("trust height must be positive")
	}
	if len(to.Hash) == 0 {
		return ErrInvalidCommit("trust hash must not be empty")
	}
	return nil
}

// mode selects how the Client steps toward a target height.
type mode int

const (
	modeSkipping mode = iota
	modeSequential
)

// Option configures a Client, following the teacher's functional-option
// idiom (SequentialVerification/BisectingVerification in lite/client.go).
type Option func(*Client)

// SequentialVerification instructs the Client to fetch every intermediate
// header instead of bisecting. Slower, but never relies on trust overlap.
func SequentialVerification() Option {
	return func(c *Client) { c.mode = modeSequential }
}

// SkippingVerification instructs the Client to use the bisection algorithm
// of spec.md §4.2/§4.3 with the given trust level.
func SkippingVerification(trustLevel TrustLevel) Option {
	return func(c *Client) {
		c.mode = modeSkipping
		c.params.TrustLevel = trustLevel
	}
}

// MaxClockDrift overrides the default clock-drift allowance.
func MaxClockDrift(d time.Duration) Option {
	return func(c *Client) { c.params.ClockDrift = d }
}

// MaxBlockLag overrides how long the ForkDetector waits for a lagging
// witness to catch up to the primary's height before giving up on it
// (VerificationParams.MaxBlockLag).
func MaxBlockLag(d time.Duration) Option {
	return func(c *Client) { c.params.MaxBlockLag = d }
}

// MaxRetryAttempts bounds how many fetch attempts in total (at least one)
// the Client makes before surfacing an I/O error, mirroring leejungho86-ostracon's
// light.MaxRetryAttempts.
func MaxRetryAttempts(n int) Option {
	return func(c *Client) { c.maxRetryAttempts = n }
}

// Logger overrides the Client's logger.
func Logger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}
