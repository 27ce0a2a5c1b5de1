// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeDEmptyPool(t *testing.T) {
	require := require.New(t)

	d, err := ComputeD(new(big.Int), new(big.Int), 100)
	require.NoError(err)
	require.Zero(d.Sign(), "empty pool should have D=0")
}

func TestComputeDOneSided(t *testing.T) {
	require := require.New(t)

	_, err := ComputeD(big.NewInt(1_000_000_000), new(big.Int), 100)
	require.ErrorIs(err, ErrEmptyPool)
	_, err = ComputeD(new(big.Int), big.NewInt(1_000_000_000), 100)
	require.ErrorIs(err, ErrEmptyPool)
}

func TestComputeDBalanced(t *testing.T) {
	require := require.New(t)

	// Balanced reserves make D the exact sum
	d, err := ComputeD(big.NewInt(1_000_000_000), big.NewInt(1_000_000_000), 100)
	require.NoError(err)
	require.Equal(uint64(2_000_000_000), d.Uint64())
}

func TestComputeDImbalanced(t *testing.T) {
	require := require.New(t)

	x := big.NewInt(900_000_000)
	y := big.NewInt(1_100_000_000)
	d, err := ComputeD(x, y, 100)
	require.NoError(err)

	// D sits strictly between the constant-product bound 2*sqrt(x*y) and
	// the parity bound x+y
	require.Equal(-1, d.Cmp(big.NewInt(2_000_000_000)), "D should be below the sum")
	require.Equal(1, d.Cmp(big.NewInt(1_989_974_874)), "D should be above 2*sqrt(x*y)")
}

func TestComputeDMonotonic(t *testing.T) {
	require := require.New(t)

	base, err := ComputeD(big.NewInt(1_000_000_000), big.NewInt(1_000_000_000), 100)
	require.NoError(err)
	grown, err := ComputeD(big.NewInt(1_001_000_000), big.NewInt(1_000_000_000), 100)
	require.NoError(err)
	require.Equal(1, grown.Cmp(base), "D should grow with a reserve")
}

func TestComputeBalanceRecoversReserve(t *testing.T) {
	require := require.New(t)

	x := big.NewInt(1_000_000_000)
	y := big.NewInt(1_000_000_000)
	d, err := ComputeD(x, y, 100)
	require.NoError(err)

	solved, err := ComputeBalance(x, d, 100)
	require.NoError(err)
	diff := new(big.Int).Sub(solved, y)
	require.LessOrEqual(diff.CmpAbs(big.NewInt(2)), 0, "solved balance should match the reserve")
}

func TestComputeBalanceEmptyInputs(t *testing.T) {
	require := require.New(t)

	_, err := ComputeBalance(new(big.Int), big.NewInt(2_000_000_000), 100)
	require.ErrorIs(err, ErrEmptyPool)
	_, err = ComputeBalance(big.NewInt(1_000_000_000), new(big.Int), 100)
	require.ErrorIs(err, ErrEmptyPool)
}

func TestComputeBalanceAmplificationFlattens(t *testing.T) {
	require := require.New(t)

	// For the same trade, higher amplification keeps the output closer to
	// parity (more ask spent per offer, so a lower remaining ask balance).
	x := big.NewInt(1_000_000_000)
	y := big.NewInt(1_000_000_000)
	grown := big.NewInt(1_200_000_000)

	dLow, err := ComputeD(x, y, 1)
	require.NoError(err)
	lowAsk, err := ComputeBalance(grown, dLow, 1)
	require.NoError(err)

	dHigh, err := ComputeD(x, y, 1_000)
	require.NoError(err)
	highAsk, err := ComputeBalance(grown, dHigh, 1_000)
	require.NoError(err)

	require.Equal(-1, highAsk.Cmp(lowAsk), "high amplification should price nearer 1:1")
}
