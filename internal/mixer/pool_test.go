package mixer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolFeeSplit(t *testing.T) {
	cases := []struct {
		name    string
		gross   uint64
		feeBps  uint16
		wantNet uint64
		wantFee uint64
	}{
		{"one percent", 1_000_000, 100, 990_000, 10_000},
		{"zero fee", 1_000_000, 0, 1_000_000, 0},
		{"max fee", 1_000_000, 500, 950_000, 50_000},
		{"large denomination", 100_000_000, 100, 99_000_000, 1_000_000},
		{"fee bucket absorbs rounding remainder", 999_999, 100, 989_999, 10_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPool([]uint64{tc.gross})
			require.NoError(t, p.AcceptDeposit(tc.gross))

			net, fee, err := p.SettleWithdrawal(tc.gross, tc.gross, tc.feeBps)
			require.NoError(t, err)
			require.Equal(t, tc.wantNet, net)
			require.Equal(t, tc.wantFee, fee)
			require.Equal(t, tc.gross, net+fee, "settlement must conserve value")
		})
	}
}

func TestPoolRejectsUnsupportedDenomination(t *testing.T) {
	p := NewPool(DefaultDenominations)
	require.ErrorIs(t, p.AcceptDeposit(1_234_567), ErrInvalidDenomination)
	_, _, err := p.SettleWithdrawal(1_234_567, 1_234_567, 0)
	require.ErrorIs(t, err, ErrPoolInsufficient)
}

func TestPoolInsufficientBalance(t *testing.T) {
	p := NewPool(DefaultDenominations)
	require.NoError(t, p.AcceptDeposit(1_000_000))

	_, _, err := p.SettleWithdrawal(10_000_000, 10_000_000, 100)
	require.ErrorIs(t, err, ErrPoolInsufficient, "other denominations hold nothing")

	_, _, err = p.SettleWithdrawal(1_000_000, 1_000_000, 100)
	require.NoError(t, err)
	_, _, err = p.SettleWithdrawal(1_000_000, 1_000_000, 100)
	require.ErrorIs(t, err, ErrPoolInsufficient, "pool is drained")
}

func TestPoolInvariantUnderMixedTraffic(t *testing.T) {
	p := NewPool(DefaultDenominations)
	check := func() {
		for _, e := range p.Stats() {
			require.LessOrEqual(t, e.TotalWithdrawn+e.AccumulatedFees, e.TotalDeposited,
				"denomination %d violates the pool invariant", e.Denomination)
		}
	}

	for i := 0; i < 6; i++ {
		require.NoError(t, p.AcceptDeposit(1_000_000))
		check()
	}
	require.NoError(t, p.AcceptDeposit(10_000_000))
	check()

	for i := 0; i < 6; i++ {
		_, _, err := p.SettleWithdrawal(1_000_000, 1_000_000, 250)
		require.NoError(t, err)
		check()
	}
	_, _, err := p.SettleWithdrawal(1_000_000, 1_000_000, 250)
	require.ErrorIs(t, err, ErrPoolInsufficient)
	check()
}

func TestPoolStatsSnapshot(t *testing.T) {
	p := NewPool(DefaultDenominations)
	require.NoError(t, p.AcceptDeposit(10_000_000))

	stats := p.Stats()
	require.Len(t, stats, len(DefaultDenominations))
	require.Equal(t, uint64(1_000_000), stats[0].Denomination, "stats sorted ascending")

	// Mutating the snapshot must not reach the pool.
	stats[1].TotalDeposited = 0
	require.Equal(t, uint64(10_000_000), p.Stats()[1].TotalDeposited)
}
