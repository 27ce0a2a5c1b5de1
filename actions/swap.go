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

var _ chain.Action = (*Swap)(nil)

// Swap trades [AmountIn] of the offer asset against a pair's reserves.
type Swap struct {
	// Pair is the [TxID] that created the pair.
	Pair ids.ID `json:"pair"`

	// OfferAsset is the asset being sold. It must be one leg of the pair.
	OfferAsset ids.ID `json:"offerAsset"`

	// AskAsset is the asset being bought. It must be the other leg.
	AskAsset ids.ID `json:"askAsset"`

	// AmountIn is the amount of [OfferAsset] to sell.
	AmountIn uint64 `json:"amountIn"`

	// BeliefPrice, if non-zero, is the offer-per-ask price the actor believes
	// fair (per [pricing.RateScale]). The spread bound is then applied to the
	// shortfall from the implied return instead of the constant-rate parity.
	BeliefPrice uint64 `json:"beliefPrice"`

	// MaxSpread caps the tolerated spread (per [pricing.RateScale]). Zero
	// applies [pricing.DefaultMaxSpread].
	MaxSpread uint64 `json:"maxSpread"`

	// To is the recipient of the purchased assets. The empty key means the
	// actor.
	To crypto.PublicKey `json:"to"`
}

func (s *Swap) StateKeys(rauth chain.Auth, _ ids.ID) [][]byte {
	actor := auth.GetActor(rauth)
	recipient := s.To
	if recipient == crypto.EmptyPublicKey {
		recipient = actor
	}
	return [][]byte{
		storage.PairKey(s.Pair),
		storage.AssetKey(s.OfferAsset),
		storage.AssetKey(s.AskAsset),
		storage.BalanceKey(actor, s.OfferAsset),
		storage.BalanceKey(recipient, s.AskAsset),
	}
}

func (s *Swap) Execute(
	ctx context.Context,
	r chain.Rules,
	db chain.Database,
	t int64,
	rauth chain.Auth,
	_ ids.ID,
	_ bool,
) (*chain.Result, error) {
	actor := auth.GetActor(rauth)
	unitsUsed := s.MaxUnits(r) // max units == units
	pair, err := storage.GetPair(ctx, db, s.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if pair == nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}
	var offerIsX bool
	switch {
	case s.OfferAsset == pair.AssetX && s.AskAsset == pair.AssetY:
		offerIsX = true
	case s.OfferAsset == pair.AssetY && s.AskAsset == pair.AssetX:
		offerIsX = false
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

	// Share supply is irrelevant to swap pricing.
	pool := pairPool(pair, decimalsX, decimalsY, 0)
	prices := pairPrices(pair)
	// Accumulate time-weighted prices over the pre-swap reserves.
	prices.Advance(t, pool)
	ret, spread, commission, err := pool.Swap(offerIsX, s.AmountIn, s.BeliefPrice, s.MaxSpread)
	if err != nil {
		if pricing.Fatal(err) {
			return nil, err
		}
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	if err := storage.SubBalance(ctx, db, actor, s.OfferAsset, s.AmountIn); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	recipient := s.To
	if recipient == crypto.EmptyPublicKey {
		recipient = actor
	}
	if err := storage.AddBalance(ctx, db, recipient, s.AskAsset, ret, true); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	applyPool(pair, pool, prices)
	if err := storage.SetPair(ctx, db, s.Pair, pair); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}

	res := &SwapResult{Return: ret, Spread: spread, Commission: commission}
	output, err := res.Marshal()
	if err != nil {
		return nil, err
	}
	return &chain.Result{Success: true, Units: unitsUsed, Output: output}, nil
}

func (*Swap) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen*3 + consts.Uint64Len*3 + crypto.PublicKeyLen
}

func (s *Swap) Marshal(p *codec.Packer) {
	p.PackID(s.Pair)
	p.PackID(s.OfferAsset)
	p.PackID(s.AskAsset)
	p.PackUint64(s.AmountIn)
	p.PackUint64(s.BeliefPrice)
	p.PackUint64(s.MaxSpread)
	p.PackPublicKey(s.To)
}

func UnmarshalSwap(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var swap Swap
	p.UnpackID(true, &swap.Pair)
	p.UnpackID(false, &swap.OfferAsset) // empty ID is the native asset
	p.UnpackID(false, &swap.AskAsset)
	swap.AmountIn = p.UnpackUint64(true)
	swap.BeliefPrice = p.UnpackUint64(false)
	swap.MaxSpread = p.UnpackUint64(false)
	p.UnpackPublicKey(false, &swap.To) // empty key means the actor
	return &swap, p.Err()
}

func (*Swap) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}

// SwapResult is a custom successful response output that decomposes a trade
// into the amount returned, the spread suffered, and the commission kept by
// the pool.
type SwapResult struct {
	Return     uint64 `json:"return"`
	Spread     uint64 `json:"spread"`
	Commission uint64 `json:"commission"`
}

func UnmarshalSwapResult(b []byte) (*SwapResult, error) {
	p := codec.NewReader(b, consts.Uint64Len*3)
	var result SwapResult
	result.Return = p.UnpackUint64(false)
	result.Spread = p.UnpackUint64(false)
	result.Commission = p.UnpackUint64(false)
	return &result, p.Err()
}

func (s *SwapResult) Marshal() ([]byte, error) {
	p := codec.NewWriter(consts.Uint64Len * 3)
	p.PackUint64(s.Return)
	p.PackUint64(s.Spread)
	p.PackUint64(s.Commission)
	return p.Bytes(), p.Err()
}
