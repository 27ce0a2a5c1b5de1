// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"math"
	"math/big"
)

// CumulativePrices carries a pair's time-weighted price accumulators. The
// accumulators are uint64 and wrap on overflow; consumers derive a TWAP from
// the difference between two observations, which survives a single wrap
// between them.
type CumulativePrices struct {
	PriceX        uint64 `json:"priceX"`
	PriceY        uint64 `json:"priceY"`
	BlockTimeLast int64  `json:"blockTimeLast"`
}

var bigUint64Mask = new(big.Int).SetUint64(math.MaxUint64)

// Advance folds the spot prices implied by [p]'s reserves into the
// accumulators, weighted by the milliseconds since the last advance. The
// reserves must be pre-trade values, so callers advance before mutating the
// pool. A call at or before [BlockTimeLast] is a no-op; an empty reserve
// advances the clock without accumulating.
func (c *CumulativePrices) Advance(now int64, p *Pool) {
	if now <= c.BlockTimeLast {
		return
	}
	if p.ReserveX > 0 && p.ReserveY > 0 {
		elapsed := new(big.Int).SetUint64(uint64(now - c.BlockTimeLast))
		x := p.upscale(p.ReserveX, p.DecimalsX)
		y := p.upscale(p.ReserveY, p.DecimalsY)
		c.PriceX += weightedSpot(y, x, elapsed)
		c.PriceY += weightedSpot(x, y, elapsed)
	}
	c.BlockTimeLast = now
}

// weightedSpot returns elapsed * (num*RateScale/den) reduced mod 2^64. The
// spot rate resolves to 1/RateScale: a reserve ratio below that truncates to
// zero, so past a 10^9-fold imbalance one accumulator holds still while the
// clock and the opposite direction keep advancing.
func weightedSpot(num *big.Int, den *big.Int, elapsed *big.Int) uint64 {
	spot := new(big.Int).Mul(num, bigRateScale)
	spot.Div(spot, den)
	spot.Mul(spot, elapsed)
	return spot.And(spot, bigUint64Mask).Uint64()
}
