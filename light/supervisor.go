// Supervisor is the event loop of spec.md §4.7: it serializes external
// requests, drives the primary Client, runs the Detector, and manages peer
// lifecycle through PeerList. Grounded on
// original_source/light-client/src/supervisor.rs's HandleInput enum,
// SupervisorHandle, and run() loop, translated to a goroutine plus a
// channel of request structs — idiomatic Go has no reason to reach for a
// channel library here the way the Rust original reaches for
// crossbeam_channel; the teacher pack never imports one either.
package light

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/coinexchain/tm-light-client/types"
)

type requestKind int

const (
	reqLatestTrusted requestKind = iota
	reqVerifyToHighest
	reqVerifyToTarget
	reqTerminate
)

type request struct {
	kind   requestKind
	target types.Height
	reply  chan response
}

type response struct {
	block   *types.LightBlock
	trusted *types.LightBlock
	err     error
}

// Handle lets external callers interact with a Supervisor across a thread
// (goroutine) boundary, per spec.md §4.7/§6.
type Handle interface {
	LatestTrusted() (*types.LightBlock, error)
	VerifyToHighest(ctx context.Context) (*types.LightBlock, error)
	VerifyToTarget(ctx context.Context, height types.Height) (*types.LightBlock, error)
	Terminate(ctx context.Context) error
}

// Supervisor manages one primary Client and a set of witness Clients via
// PeerList, cross-checking every verified block through Detector before
// trusting it.
type Supervisor struct {
	peers    *PeerList
	detector *Detector
	reporter EvidenceReporter

	requests chan request
	done     chan struct{}

	logger log.Logger
}

// NewSupervisor constructs a Supervisor. Call Run in its own goroutine,
// and interact with it only via the Handle returned by NewHandle.
func NewSupervisor(peers *PeerList, detector *Detector, reporter EvidenceReporter, logger log.Logger) *Supervisor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Supervisor{
		peers:    peers,
		detector: detector,
		reporter: reporter,
		requests: make(chan request),
		done:     make(chan struct{}),
		logger:   logger.With("module", "light"),
	}
}

// NewHandle returns a new Handle to this Supervisor. Safe to call from any
// goroutine, any number of times.
func (s *Supervisor) NewHandle() Handle {
	return &supervisorHandle{requests: s.requests}
}

// Run is the Supervisor's single dedicated thread (spec.md §5): every
// mutation of PeerList, Stores, and in-flight verification happens here.
// It blocks until a Terminate request arrives or ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req, ok := <-s.requests:
			if !ok {
				return nil
			}
			switch req.kind {
			case reqTerminate:
				req.reply <- response{}
				return nil

			case reqLatestTrusted:
				trusted, _ := s.latestTrusted()
				req.reply <- response{trusted: trusted}

			case reqVerifyToHighest:
				block, err := s.verify(ctx, nil)
				req.reply <- response{block: block, err: err}

			case reqVerifyToTarget:
				h := req.target
				block, err := s.verify(ctx, &h)
				req.reply <- response{block: block, err: err}
			}
		}
	}
}

func (s *Supervisor) latestTrusted() (*types.LightBlock, bool) {
	primary := s.peers.Primary()
	if primary == nil {
		return nil, false
	}
	return primary.LatestTrusted()
}

// verify implements the outer loop of spec.md §4.7.
func (s *Supervisor) verify(ctx context.Context, height *types.Height) (*types.LightBlock, error) {
	for {
		primary := s.peers.PrimaryMut()
		if primary == nil {
			return nil, ErrNoPrimary()
		}

		var (
			verdict *types.LightBlock
			err     error
		)
		if height == nil {
			verdict, err = primary.Client.VerifyToHighest(ctx)
		} else {
			verdict, err = primary.Client.VerifyToTarget(ctx, *height)
		}

		if err != nil {
			s.logger.Error("primary verification failed, replacing primary", "err", err)
			if rerr := s.peers.ReplaceFaultyPrimary(); rerr != nil {
				return nil, rerr
			}
			continue
		}

		trusted, ok := primary.LatestTrusted()
		if !ok {
			return nil, ErrNoTrustedState(StatusTrusted)
		}

		witnessIDs := s.peers.WitnessesIDs()
		if len(witnessIDs) == 0 {
			return nil, ErrNoWitnesses()
		}
		witnesses := make([]*Instance, 0, len(witnessIDs))
		for _, id := range witnessIDs {
			if inst, ok := s.peers.Get(id); ok {
				witnesses = append(witnesses, inst)
			}
		}

		detection, derr := s.detector.DetectForks(ctx, verdict, trusted, witnesses)
		if derr != nil {
			return nil, derr
		}

		if !detection.Detected() {
			if err := primary.TrustBlock(verdict); err != nil {
				return nil, err
			}
			return verdict, nil
		}

		forkedPeers, perr := s.processForks(ctx, detection.Forks)
		if perr != nil {
			return nil, perr
		}
		if len(forkedPeers) > 0 {
			return nil, NewErrForkDetected(forkedPeers)
		}
		// No hard forks, only faulty/timed-out witnesses were replaced;
		// retry the whole verification with the updated peer set.
	}
}

func (s *Supervisor) processForks(ctx context.Context, forks []Fork) ([]types.PeerId, error) {
	var forked []types.PeerId
	for _, f := range forks {
		switch f.Outcome {
		case ForkOutcomeForked:
			_, err := s.reportEvidence(ctx, f)
			if err != nil {
				return nil, err
			}
			forked = append(forked, f.Witness)

		case ForkOutcomeTimeout, ForkOutcomeFaulty:
			s.logger.Error("witness replaced", "peer", f.Witness, "outcome", f.Outcome, "err", f.Err)
			s.peers.ReplaceFaultyWitness(f.Witness)
		}
	}
	return forked, nil
}

func (s *Supervisor) reportEvidence(ctx context.Context, f Fork) (types.Hash, error) {
	ev := s.reporter.BuildConflictingHeadersEvidence(f.Primary.SignedHeader, f.WitnessBlock.SignedHeader)
	return s.reporter.Report(ctx, ev, f.Witness)
}

// supervisorHandle implements Handle by sending requests across s.requests
// and blocking on a per-request reply channel, per spec.md §4.7/§5.
type supervisorHandle struct {
	requests chan request
}

func (h *supervisorHandle) do(ctx context.Context, req request) (response, error) {
	select {
	case h.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

func (h *supervisorHandle) LatestTrusted() (*types.LightBlock, error) {
	resp, err := h.do(context.Background(), request{kind: reqLatestTrusted, reply: make(chan response, 1)})
	if err != nil {
		return nil, err
	}
	return resp.trusted, nil
}

func (h *supervisorHandle) VerifyToHighest(ctx context.Context) (*types.LightBlock, error) {
	resp, err := h.do(ctx, request{kind: reqVerifyToHighest, reply: make(chan response, 1)})
	if err != nil {
		return nil, err
	}
	return resp.block, resp.err
}

func (h *supervisorHandle) VerifyToTarget(ctx context.Context, height types.Height) (*types.LightBlock, error) {
	resp, err := h.do(ctx, request{kind: reqVerifyToTarget, target: height, reply: make(chan response, 1)})
	if err != nil {
		return nil, err
	}
	return resp.block, resp.err
}

func (h *supervisorHandle) Terminate(ctx context.Context) error {
	_, err := h.do(ctx, request{kind: reqTerminate, reply: make(chan response, 1)})
	return err
}
