// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Deposit adds [amountX]/[amountY] to the reserves and returns the shares
// minted to the depositor. Shares are denominated in the invariant domain:
// the first deposit mints D minus [MinimumLiquidity] (the withheld floor is
// accounted by the caller), later deposits mint proportionally to invariant
// growth so uneven deposits are priced fairly.
//
// A non-zero [slippageTolerance] (RateScale-denominated, capped at
// [MaxAllowedSlippage]) rejects deposits whose ratio deviates from the
// current reserve ratio by more than the tolerance.
func (p *Pool) Deposit(amountX uint64, amountY uint64, slippageTolerance uint64) (uint64, error) {
	if amountX == 0 || amountY == 0 {
		return 0, ErrZeroAmount
	}
	newX, err := smath.Add64(p.ReserveX, amountX)
	if err != nil {
		return 0, ErrAmountOverflow
	}
	newY, err := smath.Add64(p.ReserveY, amountY)
	if err != nil {
		return 0, ErrAmountOverflow
	}

	if p.TotalShare == 0 {
		d, err := ComputeD(p.upscale(amountX, p.DecimalsX), p.upscale(amountY, p.DecimalsY), p.Amplification)
		if err != nil {
			return 0, err
		}
		if !d.IsUint64() {
			return 0, ErrAmountOverflow
		}
		share := d.Uint64()
		if share <= MinimumLiquidity {
			return 0, ErrBelowMinimumLiquidity
		}
		p.ReserveX = newX
		p.ReserveY = newY
		p.TotalShare = share
		return share - MinimumLiquidity, nil
	}

	if slippageTolerance > 0 {
		if err := p.assertSlippage(amountX, amountY, slippageTolerance); err != nil {
			return 0, err
		}
	}

	dBefore, err := ComputeD(p.upscale(p.ReserveX, p.DecimalsX), p.upscale(p.ReserveY, p.DecimalsY), p.Amplification)
	if err != nil {
		return 0, err
	}
	dAfter, err := ComputeD(p.upscale(newX, p.DecimalsX), p.upscale(newY, p.DecimalsY), p.Amplification)
	if err != nil {
		return 0, err
	}

	// minted = totalShare * (dAfter - dBefore) / dBefore, floored
	growth := new(big.Int).Sub(dAfter, dBefore)
	if growth.Sign() <= 0 {
		return 0, ErrNoSharesMinted
	}
	minted := new(big.Int).SetUint64(p.TotalShare)
	minted.Mul(minted, growth)
	minted.Div(minted, dBefore)
	if minted.Sign() == 0 {
		return 0, ErrNoSharesMinted
	}
	if !minted.IsUint64() {
		return 0, ErrAmountOverflow
	}
	share, err := smath.Add64(p.TotalShare, minted.Uint64())
	if err != nil {
		return 0, ErrAmountOverflow
	}
	p.ReserveX = newX
	p.ReserveY = newY
	p.TotalShare = share
	return minted.Uint64(), nil
}

// assertSlippage cross-multiplies the deposit ratio against the reserve
// ratio (in the invariant domain, so mixed-precision pairs compare
// correctly) and rejects if either direction deviates beyond [tolerance].
func (p *Pool) assertSlippage(amountX uint64, amountY uint64, tolerance uint64) error {
	if tolerance > MaxAllowedSlippage {
		return ErrSlippageExceeded
	}
	var (
		depositX = p.upscale(amountX, p.DecimalsX)
		depositY = p.upscale(amountY, p.DecimalsY)
		reserveX = p.upscale(p.ReserveX, p.DecimalsX)
		reserveY = p.upscale(p.ReserveY, p.DecimalsY)

		oneMinus = new(big.Int).SetUint64(RateScale - tolerance)
		lhs      = new(big.Int)
		rhs      = new(big.Int)
	)
	// depositX/depositY scaled down by (1-tolerance) must not exceed
	// reserveX/reserveY, and symmetrically.
	lhs.Mul(depositX, reserveY)
	lhs.Mul(lhs, oneMinus)
	rhs.Mul(depositY, reserveX)
	rhs.Mul(rhs, bigRateScale)
	if lhs.Cmp(rhs) > 0 {
		return ErrSlippageExceeded
	}
	lhs.Mul(depositY, reserveX)
	lhs.Mul(lhs, oneMinus)
	rhs.Mul(depositX, reserveY)
	rhs.Mul(rhs, bigRateScale)
	if lhs.Cmp(rhs) > 0 {
		return ErrSlippageExceeded
	}
	return nil
}

// Withdraw burns [shares] and returns the proportional refund of both
// reserves, floored. The pool keeps the rounding remainder.
func (p *Pool) Withdraw(shares uint64) (uint64, uint64, error) {
	if shares == 0 {
		return 0, 0, ErrZeroAmount
	}
	if shares > p.TotalShare {
		return 0, 0, ErrInsufficientShares
	}
	refundX, refundY := p.ShareValue(shares)
	p.ReserveX -= refundX
	p.ReserveY -= refundY
	p.TotalShare -= shares
	return refundX, refundY, nil
}

// ShareValue previews the proportional withdrawal for [shares] without
// mutating the pool. Amounts are raw asset units; [shares] beyond the
// outstanding supply values as the whole pool.
func (p *Pool) ShareValue(shares uint64) (uint64, uint64) {
	if p.TotalShare == 0 {
		return 0, 0
	}
	if shares > p.TotalShare {
		shares = p.TotalShare
	}
	total := new(big.Int).SetUint64(p.TotalShare)
	refundX := new(big.Int).SetUint64(p.ReserveX)
	refundX.Mul(refundX, new(big.Int).SetUint64(shares))
	refundX.Div(refundX, total)
	refundY := new(big.Int).SetUint64(p.ReserveY)
	refundY.Mul(refundY, new(big.Int).SetUint64(shares))
	refundY.Div(refundY, total)
	// shares <= TotalShare, so both quotients fit
	return refundX.Uint64(), refundY.Uint64()
}
