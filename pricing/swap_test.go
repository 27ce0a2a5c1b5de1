// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newFundedPool(t *testing.T) *Pool {
	p := newTestPool()
	_, err := p.Deposit(1_000_000_000, 1_000_000_000, 0)
	require.NoError(t, err)
	return p
}

func TestSwapBalancedPair(t *testing.T) {
	require := require.New(t)

	// 1,000 units offered against balanced 1,000-unit reserves at 0.3%
	// commission: return lands a few units under 997,000 and the output
	// decomposition is exact
	p := newFundedPool(t)
	ret, spread, commission, err := p.SwapPreview(true, 1_000_000)
	require.NoError(err)
	require.GreaterOrEqual(ret, uint64(996_985))
	require.LessOrEqual(ret, uint64(997_005))
	require.LessOrEqual(spread, uint64(15), "balanced reserves should price near parity")
	require.GreaterOrEqual(commission, uint64(2_995))
	require.LessOrEqual(commission, uint64(3_000))
	require.Equal(uint64(1_000_000), ret+spread+commission)
}

func TestSwapMutatesReserves(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	ret, _, _, err := p.Swap(true, 1_000_000, 0, 0)
	require.NoError(err)
	require.Equal(uint64(1_001_000_000), p.ReserveX)
	require.Equal(uint64(1_000_000_000)-ret, p.ReserveY, "commission should stay in the pool")
	require.Equal(uint64(2_000_000_000), p.TotalShare)
}

func TestSwapSimulationConsistency(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	pRet, pSpread, pCommission, err := p.SwapPreview(false, 25_000_000)
	require.NoError(err)
	ret, spread, commission, err := p.Swap(false, 25_000_000, 0, 0)
	require.NoError(err)
	require.Equal(pRet, ret)
	require.Equal(pSpread, spread)
	require.Equal(pCommission, commission)
}

func TestSwapInvariantNondecreasing(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	before, err := ComputeD(p.upscale(p.ReserveX, p.DecimalsX), p.upscale(p.ReserveY, p.DecimalsY), p.Amplification)
	require.NoError(err)

	_, _, _, err = p.Swap(true, 100_000_000, 0, MaxAllowedSpread)
	require.NoError(err)
	after, err := ComputeD(p.upscale(p.ReserveX, p.DecimalsX), p.upscale(p.ReserveY, p.DecimalsY), p.Amplification)
	require.NoError(err)
	require.GreaterOrEqual(after.Cmp(before), 0, "swaps should never shrink the invariant")
}

func TestReverseSwapInverse(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	ret, _, _, err := p.SwapPreview(true, 1_000_000)
	require.NoError(err)

	offer, _, _, err := p.ReverseSwapPreview(true, ret)
	require.NoError(err)
	var diff uint64
	if offer > 1_000_000 {
		diff = offer - 1_000_000
	} else {
		diff = 1_000_000 - offer
	}
	require.LessOrEqual(diff, uint64(3), "reverse simulation should invert the forward quote")
}

func TestReverseSwapDecomposition(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	offer, spread, commission, err := p.ReverseSwapPreview(true, 997_000)
	require.NoError(err)
	require.NotZero(offer)
	require.LessOrEqual(spread, uint64(15))
	// grossed-up output is desired/(1-0.3%), commission is 0.3% of that
	require.GreaterOrEqual(commission, uint64(2_995))
	require.LessOrEqual(commission, uint64(3_005))
}

func TestSwapSpreadBoundDefault(t *testing.T) {
	require := require.New(t)

	// Low amplification and a trade worth half the pool: spread far beyond
	// the 0.5% default bound
	p := &Pool{
		ReserveX:      1_000_000_000,
		ReserveY:      1_000_000_000,
		DecimalsX:     6,
		DecimalsY:     6,
		Amplification: 1,
		TotalShare:    2_000_000_000,
	}
	_, _, _, err := p.Swap(true, 500_000_000, 0, 0)
	require.ErrorIs(err, ErrSpreadExceeded)
	require.Equal(uint64(1_000_000_000), p.ReserveX, "rejected swap should not touch reserves")
}

func TestSwapMaxSpreadAboveCapRejected(t *testing.T) {
	require := require.New(t)

	// An over-cap bound is rejected outright rather than clamped: the same
	// swap clears comfortably at the 50% ceiling itself
	p := newFundedPool(t)
	_, _, _, err := p.Swap(true, 1_000_000, 0, MaxAllowedSpread+1)
	require.ErrorIs(err, ErrSpreadExceeded)
	require.Equal(uint64(1_000_000_000), p.ReserveX, "rejected swap should not touch reserves")

	_, _, _, err = p.Swap(true, 1_000_000, 0, MaxAllowedSpread)
	require.NoError(err)
}

func TestSwapBeliefPrice(t *testing.T) {
	require := require.New(t)

	// At a 1:1 belief the default bound comfortably covers the commission
	p := newFundedPool(t)
	ret, _, _, err := p.Swap(true, 1_000_000, RateScale, 0)
	require.NoError(err)
	require.NotZero(ret)

	// A belief expecting more than parity puts the net return under the
	// shaved expectation
	p = newFundedPool(t)
	_, _, _, err = p.Swap(true, 1_000_000, 990_000_000, 0)
	require.ErrorIs(err, ErrSpreadExceeded)
}

func TestSwapZeroAmount(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	_, _, _, err := p.Swap(true, 0, 0, 0)
	require.ErrorIs(err, ErrZeroAmount)
}

func TestSwapEmptyPool(t *testing.T) {
	require := require.New(t)

	p := newTestPool()
	_, _, _, err := p.Swap(true, 1_000_000, 0, 0)
	require.ErrorIs(err, ErrInsufficientLiquidity)
}

func TestSwapCannotEmptyAskReserve(t *testing.T) {
	require := require.New(t)

	// A fee-free dust pool at the amplification cap prices at parity, so a
	// whole-reserve offer would hand out the entire ask side
	p := &Pool{
		DecimalsX:     6,
		DecimalsY:     6,
		Amplification: MaxAmplification,
	}
	_, err := p.Deposit(1_000, 1_000, 0)
	require.NoError(err)

	_, _, _, err = p.Swap(true, 1_000, 0, 0)
	require.ErrorIs(err, ErrInsufficientLiquidity)
	require.Equal(uint64(1_000), p.ReserveX, "rejected swap should not touch reserves")
	require.Equal(uint64(1_000), p.ReserveY)

	// The pool stays two-sided, so deposits keep pricing
	minted, err := p.Deposit(100, 100, 0)
	require.NoError(err)
	require.NotZero(minted)
}

func TestReverseSwapInsufficientLiquidity(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	_, _, _, err := p.ReverseSwapPreview(true, p.ReserveY)
	require.ErrorIs(err, ErrInsufficientLiquidity)
	_, _, _, err = p.ReverseSwapPreview(true, 0)
	require.ErrorIs(err, ErrZeroAmount)
}

func TestSwapMixedDecimals(t *testing.T) {
	require := require.New(t)

	// 1,000 units of a 6-decimal asset pooled against 1,000 units of a
	// 9-decimal asset; one whole offered unit returns near one whole ask
	// unit in 9-decimal raw units
	p := &Pool{
		ReserveX:      1_000_000_000,
		ReserveY:      1_000_000_000_000,
		DecimalsX:     6,
		DecimalsY:     9,
		Amplification: 100,
		TotalShare:    2_000_000_000_000,
	}
	ret, spread, commission, err := p.SwapPreview(true, 1_000_000)
	require.NoError(err)
	require.Zero(commission)
	require.LessOrEqual(spread, uint64(15_000))
	require.GreaterOrEqual(ret, uint64(999_000_000))
	require.LessOrEqual(ret, uint64(1_000_000_000))
	require.Equal(uint64(1_000_000_000), ret+spread)
}

func TestSwapRoundTripLosesAtMostFees(t *testing.T) {
	require := require.New(t)

	p := newFundedPool(t)
	out, _, _, err := p.Swap(true, 10_000_000, 0, 0)
	require.NoError(err)
	back, _, _, err := p.Swap(false, out, 0, 0)
	require.NoError(err)
	require.Less(back, uint64(10_000_000), "round trip cannot profit")
	// two 0.3% commissions plus spread bound the loss
	require.GreaterOrEqual(back, uint64(9_900_000))
}
