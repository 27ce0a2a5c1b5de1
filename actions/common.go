// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/hypersdk/chain"

	"github.com/ava-labs/metastablevm/consts"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/storage"
)

// assetDecimals resolves the decimal precision of [asset]. Native decimals
// are fixed at genesis, so no state read is needed.
func assetDecimals(
	ctx context.Context,
	db chain.Database,
	asset ids.ID,
) (uint8, bool, error) {
	if asset == ids.Empty {
		return consts.Decimals, true, nil
	}
	exists, _, decimals, _, _, _, err := storage.GetAsset(ctx, db, asset)
	return decimals, exists, err
}

// pairPool assembles the pricing view of a stored pair. [supply] is the
// outstanding share supply read from the pair's share asset record.
func pairPool(pair *storage.Pair, decimalsX uint8, decimalsY uint8, supply uint64) *pricing.Pool {
	return &pricing.Pool{
		ReserveX:       pair.ReserveX,
		ReserveY:       pair.ReserveY,
		DecimalsX:      decimalsX,
		DecimalsY:      decimalsY,
		TotalShare:     supply,
		Amplification:  pair.Amplification,
		CommissionRate: pair.CommissionRate,
	}
}

func pairPrices(pair *storage.Pair) *pricing.CumulativePrices {
	return &pricing.CumulativePrices{
		PriceX:        pair.PriceXCumulative,
		PriceY:        pair.PriceYCumulative,
		BlockTimeLast: pair.BlockTimeLast,
	}
}

// applyPool copies the mutated pricing state back onto the pair record before
// it is persisted.
func applyPool(pair *storage.Pair, pool *pricing.Pool, prices *pricing.CumulativePrices) {
	pair.ReserveX = pool.ReserveX
	pair.ReserveY = pool.ReserveY
	pair.PriceXCumulative = prices.PriceX
	pair.PriceYCumulative = prices.PriceY
	pair.BlockTimeLast = prices.BlockTimeLast
}
