// EvidenceReporter is grounded on
// original_source/light-client/src/evidence.rs's ProdEvidenceReporter: a
// fixed peer map, synchronous report() from the Supervisor's perspective
// (no tokio runtime-per-call is needed in Go since provider.Provider's
// ReportEvidence already blocks the calling goroutine, per spec.md §9).
package light

import (
	"context"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/coinexchain/tm-light-client/light/provider"
	"github.com/coinexchain/tm-light-client/types"
)

// EvidenceReporter builds and submits conflicting-header evidence.
type EvidenceReporter interface {
	BuildConflictingHeadersEvidence(primary, witness *types.SignedHeader) types.Evidence
	Report(ctx context.Context, ev types.Evidence, peer types.PeerId) (types.Hash, error)
}

// reporter is the production EvidenceReporter. The peer map is immutable
// after construction (spec.md §5): reporting to an unknown peer is a
// precondition violation, per spec.md §4.5.
type reporter struct {
	peers  map[types.PeerId]provider.Provider
	logger log.Logger
}

// NewEvidenceReporter constructs a reporter fixed to the given peer map.
func NewEvidenceReporter(peers map[types.PeerId]provider.Provider, logger log.Logger) EvidenceReporter {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &reporter{peers: peers, logger: logger.With("module", "light")}
}

func (r *reporter) BuildConflictingHeadersEvidence(primary, witness *types.SignedHeader) types.Evidence {
	return types.NewConflictingHeadersEvidence(primary, witness)
}

func (r *reporter) Report(ctx context.Context, ev types.Evidence, peer types.PeerId) (types.Hash, error) {
	p, ok := r.peers[peer]
	if !ok {
		panic(fmt.Sprintf("light: report_evidence precondition violated: unknown peer %s", peer))
	}

	receipt, err := p.ReportEvidence(ctx, ev)
	if err != nil {
		r.logger.Error("failed to report evidence", "peer", peer, "err", err)
		return nil, classifyIoError(err)
	}

	r.logger.Info("reported evidence", "peer", peer, "receipt", receipt)
	return receipt, nil
}
