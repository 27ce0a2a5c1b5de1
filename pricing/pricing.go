// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// pricing implements the stable-invariant engine used by metastable pairs:
// pools of two assets expected to trade near parity (e.g. a pair of
// liquid-staking derivatives). All state is caller-owned; every function here
// is deterministic arithmetic with no side effects outside the receiver.
package pricing

import "math/big"

const (
	// NCoins is fixed: a pair prices exactly two assets.
	NCoins = 2

	// MaxIterations bounds both fixed-point solvers. Convergence is reached
	// when successive estimates differ by at most one unit of the invariant
	// domain (far below one part in 10^10 for any pool worth pricing).
	MaxIterations = 64

	// RateScale is the fixed-point denominator for all fractional values
	// (commission rates, spreads, belief prices, spot prices): a value of
	// RateScale means 1.0.
	RateScale uint64 = 1_000_000_000

	// DefaultMaxSpread (0.5%) applies when a swap does not supply its own
	// bound. MaxAllowedSpread (50%) caps any caller-supplied bound.
	DefaultMaxSpread uint64 = 5_000_000
	MaxAllowedSpread uint64 = 500_000_000

	// MaxAllowedSlippage (50%) caps the deposit slippage tolerance.
	MaxAllowedSlippage uint64 = 500_000_000

	// MaxCommissionRate (10%) bounds the per-pair swap commission.
	MaxCommissionRate uint64 = 100_000_000

	// MinimumLiquidity is withheld from the first deposit and never
	// redeemable, so no depositor can own the entire share supply.
	MinimumLiquidity uint64 = 1_000

	// Amplification bounds. Amp controls how strongly pricing favors 1:1
	// exchange over constant-product behavior.
	MinAmplification uint64 = 1
	MaxAmplification uint64 = 1_000_000

	// MaxDecimals bounds asset denominations. The invariant runs at the
	// greater precision of the two pooled assets.
	MaxDecimals uint8 = 18
)

var (
	bigOne    = big.NewInt(1)
	bigTwo    = big.NewInt(2)
	bigThree  = big.NewInt(3)
	bigNCoins = big.NewInt(NCoins)

	bigRateScale = new(big.Int).SetUint64(RateScale)

	pow10 = [MaxDecimals + 1]uint64{
		1,
		10,
		100,
		1_000,
		10_000,
		100_000,
		1_000_000,
		10_000_000,
		100_000_000,
		1_000_000_000,
		10_000_000_000,
		100_000_000_000,
		1_000_000_000_000,
		10_000_000_000_000,
		100_000_000_000_000,
		1_000_000_000_000_000,
		10_000_000_000_000_000,
		100_000_000_000_000_000,
		1_000_000_000_000_000_000,
	}
)

// Pool is the in-memory view of a pair's economic state. Callers load it from
// storage at the start of an operation and persist it at the end; a failed
// operation discards the value.
type Pool struct {
	ReserveX uint64
	ReserveY uint64

	DecimalsX uint8
	DecimalsY uint8

	Amplification  uint64
	CommissionRate uint64 // RateScale-denominated fraction

	TotalShare uint64
}

// Precision is the decimal scale of the invariant domain: the greater
// precision of the two pooled assets. Share amounts are denominated in this
// domain.
func (p *Pool) Precision() uint8 {
	if p.DecimalsX > p.DecimalsY {
		return p.DecimalsX
	}
	return p.DecimalsY
}

// upscale converts a raw asset amount to the invariant domain.
func (p *Pool) upscale(amount uint64, decimals uint8) *big.Int {
	v := new(big.Int).SetUint64(amount)
	diff := p.Precision() - decimals
	if diff == 0 {
		return v
	}
	return v.Mul(v, new(big.Int).SetUint64(pow10[diff]))
}

// downscale converts an invariant-domain value back to raw asset units,
// truncating toward zero.
func (p *Pool) downscale(v *big.Int, decimals uint8) (uint64, error) {
	diff := p.Precision() - decimals
	if diff > 0 {
		v = new(big.Int).Div(v, new(big.Int).SetUint64(pow10[diff]))
	}
	if !v.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return v.Uint64(), nil
}
