// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypersdk/crypto"

	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/storage"
)

func TestProvideLiquidityInitial(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  testAssetY,
		AmountX: 1_000_000_000,
		AmountY: 1_000_000_000,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	result, err := UnmarshalLiquidityResult(res.Output)
	require.NoError(err)
	require.Equal(uint64(1_999_999_000), result.Minted)

	// Deposits are escrowed in the pair record.
	pair, err := storage.GetPair(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_000_000_000), pair.ReserveX)
	require.Equal(uint64(1_000_000_000), pair.ReserveY)

	bal, err := storage.GetBalance(ctx, db, actorKey, testAssetX)
	require.NoError(err)
	require.Equal(uint64(9_000_000_000), bal)
	bal, err = storage.GetBalance(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_999_999_000), bal)

	// The withheld floor sits at the empty key.
	bal, err = storage.GetBalance(ctx, db, crypto.EmptyPublicKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(pricing.MinimumLiquidity), bal)

	_, _, _, _, supply, _, err := storage.GetAsset(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(2_000_000_000), supply)
}

func TestProvideLiquidityAutoStake(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	action := &ProvideLiquidity{
		Pair:      testPairID,
		AssetX:    testAssetX,
		AssetY:    testAssetY,
		AmountX:   1_000_000_000,
		AmountY:   1_000_000_000,
		AutoStake: true,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	stake, err := storage.GetStake(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_999_999_000), stake)
	bal, err := storage.GetBalance(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Zero(bal, "staked shares should not be transferable")
}

func TestProvideLiquidityReceiver(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	action := &ProvideLiquidity{
		Pair:     testPairID,
		AssetX:   testAssetX,
		AssetY:   testAssetY,
		AmountX:  1_000_000_000,
		AmountY:  1_000_000_000,
		Receiver: otherKey,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	// The actor pays, the receiver gets the shares.
	bal, err := storage.GetBalance(ctx, db, otherKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_999_999_000), bal)
	bal, err = storage.GetBalance(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Zero(bal)
}

func TestProvideLiquidityPairMissing(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()

	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  testAssetY,
		AmountX: 1_000,
		AmountY: 1_000,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
	require.Equal(OutputPairMissing, res.Output)
}

func TestProvideLiquiditySwappedOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	// Assets named in reverse of the stored pair: each amount follows its
	// named asset, not its field position.
	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetY,
		AssetY:  testAssetX,
		AmountX: 500_000_000,   // deposit of testAssetY
		AmountY: 1_000_000_000, // deposit of testAssetX
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	pair, err := storage.GetPair(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_000_000_000), pair.ReserveX)
	require.Equal(uint64(500_000_000), pair.ReserveY)

	bal, err := storage.GetBalance(ctx, db, actorKey, testAssetX)
	require.NoError(err)
	require.Equal(uint64(9_000_000_000), bal)
	bal, err = storage.GetBalance(ctx, db, actorKey, testAssetY)
	require.NoError(err)
	require.Equal(uint64(9_500_000_000), bal)
}

func TestProvideLiquidityAssetMismatch(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	// A foreign asset is not one of the pair's legs.
	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  ids.ID{0x99},
		AmountX: 1_000_000,
		AmountY: 1_000_000,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
	require.Equal(OutputAssetMismatch, res.Output)

	// Naming one leg twice is not set-equal to the pair either.
	action = &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  testAssetX,
		AmountX: 1_000_000,
		AmountY: 1_000_000,
	}
	res, err = action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
	require.Equal(OutputAssetMismatch, res.Output)
}

func TestProvideLiquiditySlippage(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	fundedPair(t, ctx, db)

	action := &ProvideLiquidity{
		Pair:              testPairID,
		AssetX:            testAssetX,
		AssetY:            testAssetY,
		AmountX:           120_000_000,
		AmountY:           100_000_000,
		SlippageTolerance: 100_000_000, // 10%
	}
	res, err := action.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
	require.Equal(pricing.ErrSlippageExceeded.Error(), string(res.Output))

	// Balances and reserves must be untouched by the rejection.
	pair, err := storage.GetPair(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_000_000_000), pair.ReserveX)
	bal, err := storage.GetBalance(ctx, db, actorKey, testAssetX)
	require.NoError(err)
	require.Equal(uint64(9_000_000_000), bal)
}

func TestProvideLiquidityInsufficientFunds(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 500_000_000)

	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  testAssetY,
		AmountX: 1_000_000_000,
		AmountY: 1_000_000_000,
	}
	res, err := action.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
}

func TestProvideLiquidityAdvancesPrices(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	fundedPair(t, ctx, db)

	action := &ProvideLiquidity{
		Pair:    testPairID,
		AssetX:  testAssetX,
		AssetY:  testAssetY,
		AmountX: 100_000_000,
		AmountY: 100_000_000,
	}
	res, err := action.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	// 1000ms at a balanced 1:1 rate accumulated over the pre-deposit reserves.
	pair, err := storage.GetPair(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(1000*pricing.RateScale), pair.PriceXCumulative)
	require.Equal(uint64(1000*pricing.RateScale), pair.PriceYCumulative)
	require.Equal(int64(2000), pair.BlockTimeLast)
}

func TestWithdrawLiquidityRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	fundedPair(t, ctx, db)

	action := &WithdrawLiquidity{
		Pair:   testPairID,
		AssetX: testAssetX,
		AssetY: testAssetY,
		Shares: 1_999_999_000,
	}
	res, err := action.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	result, err := UnmarshalWithdrawResult(res.Output)
	require.NoError(err)
	require.Equal(uint64(999_999_500), result.AmountX)
	require.Equal(uint64(999_999_500), result.AmountY)

	bal, err := storage.GetBalance(ctx, db, actorKey, testAssetX)
	require.NoError(err)
	require.Equal(uint64(9_999_999_500), bal)
	bal, err = storage.GetBalance(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Zero(bal)

	// Only the locked floor remains.
	_, _, _, _, supply, _, err := storage.GetAsset(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(pricing.MinimumLiquidity), supply)
	pair, err := storage.GetPair(ctx, db, testPairID)
	require.NoError(err)
	require.Equal(uint64(500_000), pair.ReserveX)
	require.Equal(uint64(500_000), pair.ReserveY)
}

func TestWithdrawLiquiditySwappedOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	fundedPair(t, ctx, db)

	// Reversed naming burns the same shares; refunds still land on the
	// stored legs.
	action := &WithdrawLiquidity{
		Pair:   testPairID,
		AssetX: testAssetY,
		AssetY: testAssetX,
		Shares: 1_999_999_000,
	}
	res, err := action.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	result, err := UnmarshalWithdrawResult(res.Output)
	require.NoError(err)
	require.Equal(uint64(999_999_500), result.AmountX)
	require.Equal(uint64(999_999_500), result.AmountY)

	bal, err := storage.GetBalance(ctx, db, actorKey, testAssetX)
	require.NoError(err)
	require.Equal(uint64(9_999_999_500), bal)
	bal, err = storage.GetBalance(ctx, db, actorKey, testAssetY)
	require.NoError(err)
	require.Equal(uint64(9_999_999_500), bal)
}

func TestWithdrawLiquidityInsufficientShares(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	fundedPair(t, ctx, db)

	action := &WithdrawLiquidity{
		Pair:   testPairID,
		AssetX: testAssetX,
		AssetY: testAssetY,
		Shares: 2_500_000_000,
	}
	res, err := action.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
}

func TestWithdrawLiquidityStakedSharesRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	provide := &ProvideLiquidity{
		Pair:      testPairID,
		AssetX:    testAssetX,
		AssetY:    testAssetY,
		AmountX:   1_000_000_000,
		AmountY:   1_000_000_000,
		AutoStake: true,
	}
	res, err := provide.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	// Staked shares are not in the transferable balance, so the burn fails.
	withdraw := &WithdrawLiquidity{
		Pair:   testPairID,
		AssetX: testAssetX,
		AssetY: testAssetY,
		Shares: 1_000_000,
	}
	res, err = withdraw.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
}

func TestUnstakeSharesExecute(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	provide := &ProvideLiquidity{
		Pair:      testPairID,
		AssetX:    testAssetX,
		AssetY:    testAssetY,
		AmountX:   1_000_000_000,
		AmountY:   1_000_000_000,
		AutoStake: true,
	}
	res, err := provide.Execute(ctx, nil, db, 1000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	unstake := &UnstakeShares{Pair: testPairID, Shares: 1_500_000_000}
	res, err = unstake.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.True(res.Success)

	stake, err := storage.GetStake(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(499_999_000), stake)
	bal, err := storage.GetBalance(ctx, db, actorKey, testPairID)
	require.NoError(err)
	require.Equal(uint64(1_500_000_000), bal)
}

func TestUnstakeSharesInsufficient(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := newTestDB()
	seedPair(t, ctx, db, 10_000_000_000)

	unstake := &UnstakeShares{Pair: testPairID, Shares: 1}
	res, err := unstake.Execute(ctx, nil, db, 2000, actorAuth, testTxID, false)
	require.NoError(err)
	require.False(res.Success)
}
