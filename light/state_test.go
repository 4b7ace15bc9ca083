package light

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinexchain/tm-light-client/types"
)

func TestTraceBlockPrecondition(t *testing.T) {
	s := NewState(memStore())
	assert.Panics(t, func() {
		s.TraceBlock(10, 11)
	}, "trace_block must reject height > targetHeight")
}

func TestTraceAndStateRoundTrip(t *testing.T) {
	s := NewState(memStore())

	keys := genKeys(4)
	vals := toValidators(keys, 10)
	h1 := genSignedHeader(testChainID, 1, bTime, vals, vals, keys, 4, types.BlockID{})
	lb1 := lightBlock(h1, vals, vals, "primary")
	h2 := genSignedHeader(testChainID, 2, bTime.Add(time.Minute), vals, vals, keys, 4,
		types.BlockID{Hash: h1.Hash(types.DefaultHasher{})})
	lb2 := lightBlock(h2, vals, vals, "primary")

	require.NoError(t, s.Store.Insert(lb1, StatusVerified))
	require.NoError(t, s.Store.Insert(lb2, StatusVerified))

	s.TraceBlock(10, 1)
	s.TraceBlock(10, 2)

	trace := s.Trace(10)
	require.Len(t, trace, 2)
	// Descending by height, per state.go's contract.
	assert.Equal(t, types.Height(2), trace[0].Height())
	assert.Equal(t, types.Height(1), trace[1].Height())
}

func TestTraceOmitsUnverifiedDependencies(t *testing.T) {
	s := NewState(memStore())

	keys := genKeys(4)
	vals := toValidators(keys, 10)
	h1 := genSignedHeader(testChainID, 1, bTime, vals, vals, keys, 4, types.BlockID{})
	lb1 := lightBlock(h1, vals, vals, "primary")

	require.NoError(t, s.Store.Insert(lb1, StatusUnverified))
	s.TraceBlock(10, 1)

	// lb1 is only Unverified, never Verified, so Trace must not surface it.
	assert.Empty(t, s.Trace(10))
}
