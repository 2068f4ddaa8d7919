package mixer

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRoot(i int64) Digest {
	return mimcSum(big.NewInt(i))
}

func TestRootRingLookup(t *testing.T) {
	ring := NewRootRing(4)
	base := time.Unix(1_700_000_000, 0)

	_, ok := ring.Lookup(testRoot(1))
	require.False(t, ok, "empty ring retains nothing")

	for i := int64(1); i <= 4; i++ {
		ring.Publish(testRoot(i), base.Add(time.Duration(i)*time.Minute))
	}
	require.Equal(t, 4, ring.Len())

	at, ok := ring.Lookup(testRoot(2))
	require.True(t, ok)
	require.Equal(t, base.Add(2*time.Minute).Unix(), at.Unix())

	latest, ok := ring.Latest()
	require.True(t, ok)
	require.Equal(t, testRoot(4), latest)
}

func TestRootRingEvictsOldest(t *testing.T) {
	ring := NewRootRing(3)
	base := time.Unix(1_700_000_000, 0)
	for i := int64(1); i <= 5; i++ {
		ring.Publish(testRoot(i), base.Add(time.Duration(i)*time.Minute))
	}

	require.Equal(t, 3, ring.Len())
	_, ok := ring.Lookup(testRoot(1))
	require.False(t, ok, "oldest roots are silently evicted")
	_, ok = ring.Lookup(testRoot(2))
	require.False(t, ok)
	for i := int64(3); i <= 5; i++ {
		_, ok := ring.Lookup(testRoot(i))
		require.True(t, ok, "root %d should be retained", i)
	}
}

func TestRootRingRepublishedRootUsesLatestTime(t *testing.T) {
	ring := NewRootRing(4)
	base := time.Unix(1_700_000_000, 0)
	ring.Publish(testRoot(7), base)
	ring.Publish(testRoot(8), base.Add(time.Minute))
	ring.Publish(testRoot(7), base.Add(2*time.Minute))

	at, ok := ring.Lookup(testRoot(7))
	require.True(t, ok)
	require.Equal(t, base.Add(2*time.Minute).Unix(), at.Unix())
}
