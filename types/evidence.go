package types

// Evidence is a cryptographic artifact submitted to a peer to prove
// Byzantine behavior, per spec.md's GLOSSARY.
type Evidence interface {
	Height() Height
	Bytes() []byte
}

// ConflictingHeadersEvidence is structural: a pair of signed headers at the
// same height, each valid under the same trust anchor, with distinct
// header hashes. Grounded on original_source's
// tendermint::evidence::ConflictingHeadersEvidence.
type ConflictingHeadersEvidence struct {
	H1 *SignedHeader
	H2 *SignedHeader
}

func NewConflictingHeadersEvidence(h1, h2 *SignedHeader) *ConflictingHeadersEvidence {
	return &ConflictingHeadersEvidence{H1: h1, H2: h2}
}

func (e *ConflictingHeadersEvidence) Height() Height {
	return e.H1.Height
}

// Bytes is a deterministic encoding suitable for hashing into a receipt;
// wire encoding proper belongs to the transport, which is out of scope.
func (e *ConflictingHeadersEvidence) Bytes() []byte {
	hasher := DefaultHasher{}
	h1 := e.H1.Hash(hasher)
	h2 := e.H2.Hash(hasher)
	out := make([]byte, 0, len(h1)+len(h2))
	out = append(out, h1...)
	out = append(out, h2...)
	return out
}
