// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "math/big"

// The pool conserves the two-asset stable invariant
//
//	leverage*(x+y) + D = leverage*D + D^3/(4*x*y)
//
// where leverage = amplification * NCoins. High amplification keeps the
// marginal price near 1:1 across a wide balance range; as amplification
// falls the curve degrades toward constant product. Both solvers below run a
// bounded Newton fixed point over widened integers with every division
// truncating toward zero.

// ComputeD solves for the invariant D given both balances in the invariant
// domain. An empty pool has D = 0; a one-sided pool has no invariant and
// fails with [ErrEmptyPool].
func ComputeD(balanceX *big.Int, balanceY *big.Int, amplification uint64) (*big.Int, error) {
	sum := new(big.Int).Add(balanceX, balanceY)
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}
	if balanceX.Sign() == 0 || balanceY.Sign() == 0 {
		return nil, ErrEmptyPool
	}

	var (
		leverage = new(big.Int).SetUint64(amplification * NCoins)
		xn       = new(big.Int).Mul(balanceX, bigNCoins)
		yn       = new(big.Int).Mul(balanceY, bigNCoins)

		d     = new(big.Int).Set(sum)
		dPrev = new(big.Int)
		dp    = new(big.Int)
		num   = new(big.Int)
		den   = new(big.Int)
		diff  = new(big.Int)
	)
	for i := 0; i < MaxIterations; i++ {
		// dp = D^3 / (4xy), accumulated stepwise so intermediates stay small
		dp.Set(d)
		dp.Mul(dp, d)
		dp.Div(dp, xn)
		dp.Mul(dp, d)
		dp.Div(dp, yn)

		dPrev.Set(d)

		// D' = (leverage*sum + 2*dp) * D / ((leverage-1)*D + 3*dp)
		num.Mul(leverage, sum)
		num.Add(num, diff.Mul(dp, bigTwo))
		num.Mul(num, d)
		den.Sub(leverage, bigOne)
		den.Mul(den, d)
		den.Add(den, diff.Mul(dp, bigThree))
		d.Div(num, den)

		if diff.Sub(d, dPrev).CmpAbs(bigOne) <= 0 {
			return d, nil
		}
	}
	return nil, ErrNotConverged
}

// ComputeBalance solves the invariant for one balance given the other
// balance [known] and a target [d], both in the invariant domain. It is the
// swap primitive: fix D, grow the offer side, solve the ask side.
func ComputeBalance(known *big.Int, d *big.Int, amplification uint64) (*big.Int, error) {
	if known.Sign() == 0 || d.Sign() == 0 {
		return nil, ErrEmptyPool
	}

	leverage := new(big.Int).SetUint64(amplification * NCoins)

	// Solves y^2 + y*(b - D) = c with
	//	b = known + D/leverage
	//	c = D^3 / (4*known*leverage)
	c := new(big.Int).Mul(d, d)
	c.Div(c, new(big.Int).Mul(known, bigNCoins))
	c.Mul(c, d)
	c.Div(c, new(big.Int).Mul(leverage, bigNCoins))
	b := new(big.Int).Div(d, leverage)
	b.Add(b, known)

	var (
		y     = new(big.Int).Set(d)
		yPrev = new(big.Int)
		num   = new(big.Int)
		den   = new(big.Int)
		diff  = new(big.Int)
	)
	for i := 0; i < MaxIterations; i++ {
		yPrev.Set(y)

		// y' = (y^2 + c) / (2y + b - D)
		num.Mul(y, y)
		num.Add(num, c)
		den.Add(y, y)
		den.Add(den, b)
		den.Sub(den, d)
		y.Div(num, den)

		if diff.Sub(y, yPrev).CmpAbs(bigOne) <= 0 {
			return y, nil
		}
	}
	return nil, ErrNotConverged
}
