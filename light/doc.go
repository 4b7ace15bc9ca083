// Package light implements the verification and fork-detection core of a
// light client: a Client that drives one peer through skipping
// verification toward a target height, a Detector that cross-checks the
// result against witnesses, and a Supervisor that serializes requests from
// external callers across a goroutine boundary while managing peer
// lifecycle through a PeerList.
//
// The package trusts an initial header (TrustOptions) and extends trust to
// newer headers by checking validator-set signatures, subject to a
// time-bounded trusting period. It does not execute transactions,
// participate in consensus, or reason about chain finality beyond that
// window.
package light
