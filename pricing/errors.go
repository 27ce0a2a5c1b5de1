// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "errors"

var (
	// Defensive errors. These should be unreachable for any pool that was
	// created through [CreatePair] validation and are treated as fatal by
	// callers instead of being returned to users.
	ErrNotConverged = errors.New("invariant solver did not converge")
	ErrEmptyPool    = errors.New("invariant undefined for one-sided pool")

	// User-facing rejections.
	ErrZeroAmount            = errors.New("amount is zero")
	ErrBelowMinimumLiquidity = errors.New("initial deposit below minimum liquidity")
	ErrNoSharesMinted        = errors.New("deposit too small to mint shares")
	ErrSlippageExceeded      = errors.New("slippage tolerance exceeded")
	ErrSpreadExceeded        = errors.New("max spread exceeded")
	ErrInsufficientShares    = errors.New("insufficient pool shares")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrAmountOverflow        = errors.New("amount overflows")
)

// Fatal reports whether [err] is an internal-invariant violation rather than
// a routine rejection. Fatal errors abort execution instead of producing a
// failed result.
func Fatal(err error) bool {
	return errors.Is(err, ErrNotConverged) || errors.Is(err, ErrEmptyPool)
}
