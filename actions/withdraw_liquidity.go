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
	"github.com/ava-labs/hypersdk/utils"

	"github.com/ava-labs/metastablevm/auth"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/storage"
)

var _ chain.Action = (*WithdrawLiquidity)(nil)

// WithdrawLiquidity burns pool shares and refunds the proportional amount of
// both reserves. Staked shares must be unstaked before they can be withdrawn.
type WithdrawLiquidity struct {
	// Pair is the [TxID] that created the pair.
	Pair ids.ID `json:"pair"`

	// AssetX and AssetY restate the pair's assets so the touched balances are
	// declared up front. They may name the stored pair in either order.
	AssetX ids.ID `json:"assetX"`
	AssetY ids.ID `json:"assetY"`

	// Shares is the number of pool shares to burn.
	Shares uint64 `json:"shares"`
}

func (w *WithdrawLiquidity) StateKeys(rauth chain.Auth, _ ids.ID) [][]byte {
	actor := auth.GetActor(rauth)
	return [][]byte{
		storage.PairKey(w.Pair),
		storage.AssetKey(w.Pair),
		storage.AssetKey(w.AssetX),
		storage.AssetKey(w.AssetY),
		storage.BalanceKey(actor, w.Pair),
		storage.BalanceKey(actor, w.AssetX),
		storage.BalanceKey(actor, w.AssetY),
	}
}

func (w *WithdrawLiquidity) Execute(
	ctx context.Context,
	r chain.Rules,
	db chain.Database,
	t int64,
	rauth chain.Auth,
	_ ids.ID,
	_ bool,
) (*chain.Result, error) {
	actor := auth.GetActor(rauth)
	unitsUsed := w.MaxUnits(r) // max units == units
	pair, err := storage.GetPair(ctx, db, w.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if pair == nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}
	// The named assets must be the pair's two legs, in either order.
	sameOrder := w.AssetX == pair.AssetX && w.AssetY == pair.AssetY
	swappedOrder := w.AssetX == pair.AssetY && w.AssetY == pair.AssetX
	if !sameOrder && !swappedOrder {
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
	shareExists, sym, sdec, smeta, supply, sowner, err := storage.GetAsset(ctx, db, w.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !shareExists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}

	pool := pairPool(pair, decimalsX, decimalsY, supply)
	prices := pairPrices(pair)
	// Accumulate time-weighted prices over the pre-withdrawal reserves.
	prices.Advance(t, pool)
	refundX, refundY, err := pool.Withdraw(w.Shares)
	if err != nil {
		if pricing.Fatal(err) {
			return nil, err
		}
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	if err := storage.SubBalance(ctx, db, actor, w.Pair, w.Shares); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if err := storage.AddBalance(ctx, db, actor, pair.AssetX, refundX, true); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if err := storage.AddBalance(ctx, db, actor, pair.AssetY, refundY, true); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if err := storage.SetAsset(ctx, db, w.Pair, sym, sdec, smeta, pool.TotalShare, sowner); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	applyPool(pair, pool, prices)
	if err := storage.SetPair(ctx, db, w.Pair, pair); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	res := &WithdrawResult{AmountX: refundX, AmountY: refundY}
	output, err := res.Marshal()
	if err != nil {
		return nil, err
	}
	return &chain.Result{Success: true, Units: unitsUsed, Output: output}, nil
}

func (*WithdrawLiquidity) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen*3 + consts.Uint64Len
}

func (w *WithdrawLiquidity) Marshal(p *codec.Packer) {
	p.PackID(w.Pair)
	p.PackID(w.AssetX)
	p.PackID(w.AssetY)
	p.PackUint64(w.Shares)
}

func UnmarshalWithdrawLiquidity(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var w WithdrawLiquidity
	p.UnpackID(true, &w.Pair)
	p.UnpackID(false, &w.AssetX) // empty ID is the native asset
	p.UnpackID(false, &w.AssetY)
	w.Shares = p.UnpackUint64(true)
	return &w, p.Err()
}

func (*WithdrawLiquidity) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}

// WithdrawResult is a custom successful response output that reports the
// assets refunded for burned shares, ordered by the pair's stored assets.
type WithdrawResult struct {
	AmountX uint64 `json:"amountX"`
	AmountY uint64 `json:"amountY"`
}

func UnmarshalWithdrawResult(b []byte) (*WithdrawResult, error) {
	p := codec.NewReader(b, consts.Uint64Len*2)
	var result WithdrawResult
	result.AmountX = p.UnpackUint64(false)
	result.AmountY = p.UnpackUint64(false)
	return &result, p.Err()
}

func (w *WithdrawResult) Marshal() ([]byte, error) {
	p := codec.NewWriter(consts.Uint64Len * 2)
	p.PackUint64(w.AmountX)
	p.PackUint64(w.AmountY)
	return p.Bytes(), p.Err()
}
