// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math/big"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

type swapQuote struct {
	// ask-asset raw units
	ret        uint64
	spread     uint64
	commission uint64

	// invariant-domain values kept for the spread assertion
	offerDomain  *big.Int
	netDomain    *big.Int
	spreadDomain *big.Int
}

// quote prices a swap of [amountIn] of the offer asset ([offerIsX] selects
// the direction) without mutating the pool. The raw (pre-fee) output holds D
// fixed while the offer reserve grows; spread is the shortfall against a
// strict 1:1 exchange; commission is floored out of the raw output.
func (p *Pool) quote(offerIsX bool, amountIn uint64) (*swapQuote, error) {
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}
	if p.ReserveX == 0 || p.ReserveY == 0 {
		return nil, ErrInsufficientLiquidity
	}
	offerReserve, offerDecimals := p.ReserveX, p.DecimalsX
	askReserve, askDecimals := p.ReserveY, p.DecimalsY
	if !offerIsX {
		offerReserve, offerDecimals = p.ReserveY, p.DecimalsY
		askReserve, askDecimals = p.ReserveX, p.DecimalsX
	}
	newOfferReserve, err := smath.Add64(offerReserve, amountIn)
	if err != nil {
		return nil, ErrAmountOverflow
	}

	d, err := ComputeD(p.upscale(p.ReserveX, p.DecimalsX), p.upscale(p.ReserveY, p.DecimalsY), p.Amplification)
	if err != nil {
		return nil, err
	}
	newAsk, err := ComputeBalance(p.upscale(newOfferReserve, offerDecimals), d, p.Amplification)
	if err != nil {
		return nil, err
	}

	rawOut := p.upscale(askReserve, askDecimals)
	rawOut.Sub(rawOut, newAsk)
	if rawOut.Sign() < 0 {
		rawOut.SetUint64(0)
	}

	// spread = parityOutput - rawOutput, floored at zero: a drained ask side
	// prices below parity, a drained offer side above it
	offerDomain := p.upscale(amountIn, offerDecimals)
	spread := new(big.Int).Sub(offerDomain, rawOut)
	if spread.Sign() < 0 {
		spread.SetUint64(0)
	}

	commission := new(big.Int).SetUint64(p.CommissionRate)
	commission.Mul(commission, rawOut)
	commission.Div(commission, bigRateScale)
	net := new(big.Int).Sub(rawOut, commission)

	ret, err := p.downscale(net, askDecimals)
	if err != nil {
		return nil, err
	}
	// The pool must stay two-sided: reject a return that rounds to nothing
	// or would empty the ask reserve.
	if ret == 0 || ret >= askReserve {
		return nil, ErrInsufficientLiquidity
	}
	spreadOut, err := p.downscale(spread, askDecimals)
	if err != nil {
		return nil, err
	}
	commissionOut, err := p.downscale(commission, askDecimals)
	if err != nil {
		return nil, err
	}
	return &swapQuote{
		ret:          ret,
		spread:       spreadOut,
		commission:   commissionOut,
		offerDomain:  offerDomain,
		netDomain:    net,
		spreadDomain: spread,
	}, nil
}

// assertSpread enforces the swap's economic-safety bound. With a belief
// price (offer units per ask unit, RateScale-denominated) the return must
// reach the expected return shaved by the bound; otherwise the spread itself
// is measured against the offer amount. A zero [maxSpread] means
// [DefaultMaxSpread]; a bound above [MaxAllowedSpread] is rejected outright,
// matching the deposit tolerance cap.
func (p *Pool) assertSpread(q *swapQuote, beliefPrice uint64, maxSpread uint64) error {
	bound := maxSpread
	if bound == 0 {
		bound = DefaultMaxSpread
	}
	if bound > MaxAllowedSpread {
		return ErrSpreadExceeded
	}
	shaved := new(big.Int).SetUint64(RateScale - bound)
	if beliefPrice > 0 {
		expected := new(big.Int).Mul(q.offerDomain, bigRateScale)
		expected.Div(expected, new(big.Int).SetUint64(beliefPrice))
		// reject if net*RateScale < expected*(RateScale-bound)
		lhs := new(big.Int).Mul(q.netDomain, bigRateScale)
		if lhs.Cmp(shaved.Mul(shaved, expected)) < 0 {
			return ErrSpreadExceeded
		}
		return nil
	}
	// reject if spread/offer > bound
	lhs := new(big.Int).Mul(q.spreadDomain, bigRateScale)
	rhs := new(big.Int).SetUint64(bound)
	rhs.Mul(rhs, q.offerDomain)
	if lhs.Cmp(rhs) > 0 {
		return ErrSpreadExceeded
	}
	return nil
}

// Swap executes a swap against the pool: the offer reserve grows by the full
// [amountIn], the ask reserve shrinks by the net return (the commission
// stays in the pool, raising per-share value). Returns (return, spread,
// commission) in ask-asset raw units.
func (p *Pool) Swap(offerIsX bool, amountIn uint64, beliefPrice uint64, maxSpread uint64) (uint64, uint64, uint64, error) {
	q, err := p.quote(offerIsX, amountIn)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := p.assertSpread(q, beliefPrice, maxSpread); err != nil {
		return 0, 0, 0, err
	}
	if offerIsX {
		p.ReserveX += amountIn
		p.ReserveY -= q.ret
	} else {
		p.ReserveY += amountIn
		p.ReserveX -= q.ret
	}
	return q.ret, q.spread, q.commission, nil
}

// SwapPreview prices a swap without mutating the pool and without the
// spread assertion.
func (p *Pool) SwapPreview(offerIsX bool, amountIn uint64) (uint64, uint64, uint64, error) {
	q, err := p.quote(offerIsX, amountIn)
	if err != nil {
		return 0, 0, 0, err
	}
	return q.ret, q.spread, q.commission, nil
}

// ReverseSwapPreview inverts the pricing function: it returns the offer
// amount (plus spread and commission) that produces [desiredOut] of the ask
// asset. [offerIsX] selects the offer side, so the desired output is drawn
// from the opposite reserve.
func (p *Pool) ReverseSwapPreview(offerIsX bool, desiredOut uint64) (uint64, uint64, uint64, error) {
	if desiredOut == 0 {
		return 0, 0, 0, ErrZeroAmount
	}
	if p.ReserveX == 0 || p.ReserveY == 0 {
		return 0, 0, 0, ErrInsufficientLiquidity
	}
	offerReserve, offerDecimals := p.ReserveX, p.DecimalsX
	askReserve, askDecimals := p.ReserveY, p.DecimalsY
	if !offerIsX {
		offerReserve, offerDecimals = p.ReserveY, p.DecimalsY
		askReserve, askDecimals = p.ReserveX, p.DecimalsX
	}
	if desiredOut >= askReserve {
		return 0, 0, 0, ErrInsufficientLiquidity
	}

	// gross the desired output back up to the pre-commission amount
	beforeCommission := p.upscale(desiredOut, askDecimals)
	beforeCommission.Mul(beforeCommission, bigRateScale)
	beforeCommission.Div(beforeCommission, new(big.Int).SetUint64(RateScale-p.CommissionRate))

	d, err := ComputeD(p.upscale(p.ReserveX, p.DecimalsX), p.upscale(p.ReserveY, p.DecimalsY), p.Amplification)
	if err != nil {
		return 0, 0, 0, err
	}
	newAsk := p.upscale(askReserve, askDecimals)
	newAsk.Sub(newAsk, beforeCommission)
	if newAsk.Sign() <= 0 {
		return 0, 0, 0, ErrInsufficientLiquidity
	}
	newOffer, err := ComputeBalance(newAsk, d, p.Amplification)
	if err != nil {
		return 0, 0, 0, err
	}

	offerDomain := new(big.Int).Sub(newOffer, p.upscale(offerReserve, offerDecimals))
	if offerDomain.Sign() < 0 {
		offerDomain.SetUint64(0)
	}
	spread := new(big.Int).Sub(offerDomain, beforeCommission)
	if spread.Sign() < 0 {
		spread.SetUint64(0)
	}
	commission := new(big.Int).SetUint64(p.CommissionRate)
	commission.Mul(commission, beforeCommission)
	commission.Div(commission, bigRateScale)

	offer, err := p.downscale(offerDomain, offerDecimals)
	if err != nil {
		return 0, 0, 0, err
	}
	spreadOut, err := p.downscale(spread, askDecimals)
	if err != nil {
		return 0, 0, 0, err
	}
	commissionOut, err := p.downscale(commission, askDecimals)
	if err != nil {
		return 0, 0, 0, err
	}
	return offer, spreadOut, commissionOut, nil
}
