// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
	"github.com/ava-labs/hypersdk/consts"
	"github.com/ava-labs/hypersdk/crypto"
	"github.com/ava-labs/hypersdk/utils"

	"github.com/ava-labs/metastablevm/auth"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/storage"
)

var _ chain.Action = (*ProvideLiquidity)(nil)

// ProvideLiquidity deposits both assets of a pair and mints pool shares in
// return. The first deposit locks [pricing.MinimumLiquidity] shares forever.
type ProvideLiquidity struct {
	// Pair is the [TxID] that created the pair.
	Pair ids.ID `json:"pair"`

	// AssetX and AssetY restate the pair's assets so the touched balances are
	// declared up front. They may name the stored pair in either order.
	AssetX ids.ID `json:"assetX"`
	AssetY ids.ID `json:"assetY"`

	// AmountX and AmountY are the deposit amounts (raw units), each following
	// its named asset.
	AmountX uint64 `json:"amountX"`
	AmountY uint64 `json:"amountY"`

	// SlippageTolerance bounds how far the deposit ratio may drift from the
	// current reserve ratio (per [pricing.RateScale]). Zero disables the check.
	SlippageTolerance uint64 `json:"slippageTolerance"`

	// AutoStake credits minted shares to the stake ledger instead of the
	// share balance.
	AutoStake bool `json:"autoStake"`

	// Receiver of the minted shares. The empty key means the actor.
	Receiver crypto.PublicKey `json:"receiver"`
}

func (lp *ProvideLiquidity) StateKeys(rauth chain.Auth, _ ids.ID) [][]byte {
	actor := auth.GetActor(rauth)
	recipient := lp.Receiver
	if recipient == crypto.EmptyPublicKey {
		recipient = actor
	}
	return [][]byte{
		storage.PairKey(lp.Pair),
		storage.AssetKey(lp.Pair),
		storage.AssetKey(lp.AssetX),
		storage.AssetKey(lp.AssetY),
		storage.BalanceKey(actor, lp.AssetX),
		storage.BalanceKey(actor, lp.AssetY),
		storage.BalanceKey(crypto.EmptyPublicKey, lp.Pair),
		storage.BalanceKey(recipient, lp.Pair),
		storage.StakeKey(recipient, lp.Pair),
	}
}

func (lp *ProvideLiquidity) Execute(
	ctx context.Context,
	r chain.Rules,
	db chain.Database,
	t int64,
	rauth chain.Auth,
	_ ids.ID,
	_ bool,
) (*chain.Result, error) {
	actor := auth.GetActor(rauth)
	unitsUsed := lp.MaxUnits(r) // max units == units
	pair, err := storage.GetPair(ctx, db, lp.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if pair == nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}
	// The named assets must be the pair's two legs, in either order; each
	// amount travels with its named asset.
	amountX, amountY := lp.AmountX, lp.AmountY
	switch {
	case lp.AssetX == pair.AssetX && lp.AssetY == pair.AssetY:
	case lp.AssetX == pair.AssetY && lp.AssetY == pair.AssetX:
		amountX, amountY = lp.AmountY, lp.AmountX
	default:
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetMismatch}, nil
	}
	decimalsX, exists, err := assetDecimals(ctx, db, pair.AssetX)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !exists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetMissing}, nil
	}
	decimalsY, exists, err := assetDecimals(ctx, db, pair.AssetY)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !exists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetMissing}, nil
	}
	shareExists, sym, sdec, smeta, supply, sowner, err := storage.GetAsset(ctx, db, lp.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !shareExists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}

	pool := pairPool(pair, decimalsX, decimalsY, supply)
	prices := pairPrices(pair)
	// Accumulate time-weighted prices over the pre-deposit reserves.
	prices.Advance(t, pool)
	firstDeposit := pool.TotalShare == 0
	minted, err := pool.Deposit(amountX, amountY, lp.SlippageTolerance)
	if err != nil {
		if pricing.Fatal(err) {
			return nil, err
		}
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	if err := storage.SubBalance(ctx, db, actor, pair.AssetX, amountX); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if err := storage.SubBalance(ctx, db, actor, pair.AssetY, amountY); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	recipient := lp.Receiver
	if recipient == crypto.EmptyPublicKey {
		recipient = actor
	}
	if firstDeposit {
		// The locked floor is held by the empty key and can never be redeemed.
		if err := storage.AddBalance(
			ctx, db, crypto.EmptyPublicKey, lp.Pair, pricing.MinimumLiquidity, true,
		); err != nil {
			return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
		}
	}
	if lp.AutoStake {
		if err := storage.AddStake(ctx, db, recipient, lp.Pair, minted); err != nil {
			return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
		}
	} else {
		if err := storage.AddBalance(ctx, db, recipient, lp.Pair, minted, true); err != nil {
			return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
		}
	}
	if err := storage.SetAsset(ctx, db, lp.Pair, sym, sdec, smeta, pool.TotalShare, sowner); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	applyPool(pair, pool, prices)
	if err := storage.SetPair(ctx, db, lp.Pair, pair); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	res := &LiquidityResult{Minted: minted}
	output, err := res.Marshal()
	if err != nil {
		return nil, err
	}
	return &chain.Result{Success: true, Units: unitsUsed, Output: output}, nil
}

func (*ProvideLiquidity) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen*3 + consts.Uint64Len*3 + 1 + crypto.PublicKeyLen
}

func (lp *ProvideLiquidity) Marshal(p *codec.Packer) {
	p.PackID(lp.Pair)
	p.PackID(lp.AssetX)
	p.PackID(lp.AssetY)
	p.PackUint64(lp.AmountX)
	p.PackUint64(lp.AmountY)
	p.PackUint64(lp.SlippageTolerance)
	p.PackBool(lp.AutoStake)
	p.PackPublicKey(lp.Receiver)
}

func UnmarshalProvideLiquidity(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var lp ProvideLiquidity
	p.UnpackID(true, &lp.Pair)
	p.UnpackID(false, &lp.AssetX) // empty ID is the native asset
	p.UnpackID(false, &lp.AssetY)
	lp.AmountX = p.UnpackUint64(true)
	lp.AmountY = p.UnpackUint64(true)
	lp.SlippageTolerance = p.UnpackUint64(false)
	lp.AutoStake = p.UnpackBool()
	p.UnpackPublicKey(false, &lp.Receiver) // empty key means the actor
	return &lp, p.Err()
}

func (*ProvideLiquidity) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}

// LiquidityResult is a custom successful response output that reports the
// shares minted by a deposit.
type LiquidityResult struct {
	Minted uint64 `json:"minted"`
}

func UnmarshalLiquidityResult(b []byte) (*LiquidityResult, error) {
	p := codec.NewReader(b, consts.Uint64Len)
	var result LiquidityResult
	result.Minted = p.UnpackUint64(false)
	return &result, p.Err()
}

func (l *LiquidityResult) Marshal() ([]byte, error) {
	p := codec.NewWriter(consts.Uint64Len)
	p.PackUint64(l.Minted)
	return p.Bytes(), p.Err()
}
