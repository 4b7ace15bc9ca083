// Client is the LightClient of spec.md §4.3: it drives one peer through
// skipping verification toward a target height. Grounded on the teacher's
// Provider.UpdateToHeight/fetchAndVerifyToHeightBisecting (lite/client.go),
// restructured to make the Scheduler/Predicates/State collaboration
// explicit instead of inlining bisection into one recursive method.
package light

import (
	"context"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/coinexchain/tm-light-client/light/provider"
	"github.com/coinexchain/tm-light-client/types"
)

// Client drives a single peer (the "primary" from the Supervisor's point of
// view, though Client itself is peer-agnostic) through incremental header
// verification.
type Client struct {
	chainID string
	hasher  types.Hasher

	primary provider.Provider
	state   *State

	mode             mode
	params           VerificationParams
	maxRetryAttempts int

	logger log.Logger
}

// NewClient constructs a Client and seeds its trust anchor per
// trustOptions: either by trusting the block already recorded in store at
// trustOptions.Height, or by fetching it from primary and checking its
// hash, mirroring the teacher's getTrustedCommit (lite/client.go).
func NewClient(ctx context.Context, chainID string, trustOptions TrustOptions,
	primary provider.Provider, store Store, opts ...Option) (*Client, error) {

	if err := trustOptions.ValidateBasic(); err != nil {
		return nil, err
	}

	c := &Client{
		chainID:          chainID,
		hasher:           types.DefaultHasher{},
		primary:          primary,
		state:            NewState(store),
		mode:             modeSkipping,
		params:           DefaultVerificationParams,
		maxRetryAttempts: 1,
		logger:           log.NewNopLogger(),
	}
	c.params.TrustingPeriod = trustOptions.Period
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "light")

	if lb, ok := store.Get(trustOptions.Height, StatusTrusted); ok {
		c.logger.Info("using existing trusted state", "height", lb.Height())
		return c, nil
	}

	lb, err := c.fetchWithRetry(ctx, trustOptions.Height)
	if err != nil {
		return nil, err
	}
	got := lb.SignedHeader.Hash(c.hasher)
	if !got.Equals(types.Hash(trustOptions.Hash)) {
		return nil, ErrInvalidValidatorSet(
			fmt.Sprintf("trust hash mismatch: expected %X, got %X", trustOptions.Hash, got))
	}
	if err := store.Insert(lb, StatusTrusted); err != nil {
		return nil, err
	}
	c.logger.Info("bootstrapped trusted state", "height", lb.Height())
	return c, nil
}

// State returns the Client's verification workspace, used by ForkDetector
// and Supervisor.
func (c *Client) State() *State { return c.state }

// Primary returns the underlying Provider.
func (c *Client) Primary() provider.Provider { return c.primary }

// LatestTrusted returns the highest block currently recorded Trusted.
func (c *Client) LatestTrusted() (*types.LightBlock, bool) {
	return c.state.Store.Latest(StatusTrusted)
}

// TrustBlock moves lb to Trusted, accepted by the Supervisor as the new
// trust anchor once fork detection finds nothing (spec.md §4.7).
func (c *Client) TrustBlock(lb *types.LightBlock) error {
	return c.state.Store.Update(lb, StatusTrusted)
}

// VerifyToHighest fetches the peer's latest header, then verifies to it.
func (c *Client) VerifyToHighest(ctx context.Context) (*types.LightBlock, error) {
	latest, err := c.primary.LightBlock(ctx, 0)
	if err != nil {
		return nil, classifyIoError(err)
	}
	return c.VerifyToTarget(ctx, latest.Height())
}

// VerifyToTarget implements the algorithm of spec.md §4.3.
func (c *Client) VerifyToTarget(ctx context.Context, target types.Height) (*types.LightBlock, error) {
	trusted, ok := c.state.Store.Latest(StatusTrusted)
	if !ok {
		return nil, ErrNoTrustedState(StatusTrusted)
	}
	if trusted.Height() == target {
		return trusted, nil
	}
	if trusted.Height() > target {
		return nil, ErrTargetLowerThanTrustedState(target, trusted.Height())
	}
	// An expired trust anchor is rejected before anything is fetched.
	if err := CheckNotExpired(trusted, c.params.TrustingPeriod, timeNow()); err != nil {
		return nil, err
	}

	// pending is a stack of heights still to be verified, innermost
	// (nearest-term) height on top. It starts with just target; an
	// InsufficientVotingPower failure pushes a closer pivot on top instead
	// of abandoning the attempt, so the search narrows instead of retrying
	// the same height forever.
	pending := []types.Height{target}

	for len(pending) > 0 {
		attempt := pending[len(pending)-1]

		current, ok := c.latestUpTo(attempt)
		if !ok {
			// Unreachable: trusted itself is always <= target and recorded.
			return nil, ErrNoTrustedState(StatusTrusted)
		}
		if current.Height() == attempt {
			if err := c.state.Store.Update(current, StatusVerified); err != nil {
				return nil, err
			}
			pending = pending[:len(pending)-1]
			if len(pending) == 0 {
				return current, nil
			}
			continue
		}

		nextHeight := c.nextHeight(current.Height(), attempt)

		block, err := c.getOrFetchBlock(ctx, nextHeight)
		if err != nil {
			return nil, err
		}

		now := timeNow()
		verifyErr := Verify(c.chainID, c.hasher, current, block, c.params, now)
		switch {
		case verifyErr == nil:
			if err := c.state.Store.Update(block, StatusVerified); err != nil {
				return nil, err
			}
			if block.Height() != target {
				c.state.TraceBlock(target, block.Height())
			}
			c.logger.Info("verified block", "height", block.Height(), "target", attempt)

		case IsErrInsufficientVotingPower(verifyErr):
			// Bisection signal, not a peer fault (spec.md §9 Open
			// Question (b)): do not mark Failed. Narrow the search by
			// pushing this height as a new, closer pivot instead of
			// retrying the same (current, attempt) pair.
			c.logger.Debug("insufficient trust, bisecting", "current", current.Height(), "attempted", block.Height())
			if nextHeight == attempt {
				// No room left to bisect further: the failure is final.
				if err := c.state.Store.Update(block, StatusFailed); err != nil {
					return nil, err
				}
				return nil, verifyErr
			}
			pending = append(pending, nextHeight)

		default:
			if err := c.state.Store.Update(block, StatusFailed); err != nil {
				return nil, err
			}
			return nil, verifyErr
		}
	}

	// Unreachable: the loop only exits via an explicit return above.
	return nil, ErrNoTrustedState(StatusTrusted)
}

// latestUpTo returns the highest Verified-or-Trusted block at height <= target.
func (c *Client) latestUpTo(target types.Height) (*types.LightBlock, bool) {
	var best *types.LightBlock
	for _, status := range []Status{StatusVerified, StatusTrusted} {
		all, err := c.state.Store.All(status)
		if err != nil {
			continue
		}
		for _, lb := range all {
			if lb.Height() <= target && (best == nil || lb.Height() > best.Height()) {
				best = lb
			}
		}
	}
	return best, best != nil
}

func (c *Client) nextHeight(current, target types.Height) types.Height {
	if c.mode == modeSequential {
		if current+1 >= target {
			return target
		}
		return current + 1
	}
	return ScheduleNextHeight(current, target)
}

// getOrFetchBlock returns any block at height h already in the store
// (Verified, Trusted, or Unverified); else fetches from the peer, stores
// it Unverified, and returns it (spec.md §4.3).
func (c *Client) getOrFetchBlock(ctx context.Context, h types.Height) (*types.LightBlock, error) {
	for _, status := range []Status{StatusVerified, StatusTrusted, StatusUnverified} {
		if lb, ok := c.state.Store.Get(h, status); ok {
			return lb, nil
		}
	}

	lb, err := c.fetchWithRetry(ctx, h)
	if err != nil {
		return nil, err
	}
	if err := c.state.Store.Insert(lb, StatusUnverified); err != nil {
		return nil, err
	}
	return lb, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, h types.Height) (*types.LightBlock, error) {
	attempts := c.maxRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		lb, err := c.primary.LightBlock(ctx, h)
		if err == nil {
			return lb, nil
		}
		lastErr = err
		c.logger.Error("fetching light block failed", "height", h, "attempt", i+1, "err", err)
	}
	return nil, classifyIoError(lastErr)
}

func classifyIoError(err error) error {
	if err == nil {
		return nil
	}
	if ErrKind(err) != KindUnknown {
		// Already a classified light.Err*.
		return err
	}
	return ErrIo(err)
}
