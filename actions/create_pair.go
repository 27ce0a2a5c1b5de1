// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"bytes"
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

var _ chain.Action = (*CreatePair)(nil)

// CreatePair registers a metastable pair for two existing assets. The [TxID]
// becomes both the pair ID and the ID of the share asset minted against
// deposits.
type CreatePair struct {
	// AssetX is the first asset of the pair. Assets must be provided in
	// ascending ID order so each pair has a single canonical form.
	AssetX ids.ID `json:"assetX"`

	// AssetY is the second asset of the pair.
	AssetY ids.ID `json:"assetY"`

	// Amplification determines how tightly pricing hugs the 1:1 rate.
	Amplification uint64 `json:"amplification"`

	// CommissionRate is the fee charged on swap output (per [pricing.RateScale]).
	CommissionRate uint64 `json:"commissionRate"`
}

func (c *CreatePair) StateKeys(_ chain.Auth, txID ids.ID) [][]byte {
	return [][]byte{
		storage.PairKey(txID),
		storage.AssetKey(txID),
		storage.AssetKey(c.AssetX),
		storage.AssetKey(c.AssetY),
	}
}

func (c *CreatePair) Execute(
	ctx context.Context,
	r chain.Rules,
	db chain.Database,
	t int64,
	rauth chain.Auth,
	txID ids.ID,
	_ bool,
) (*chain.Result, error) {
	actor := auth.GetActor(rauth)
	unitsUsed := c.MaxUnits(r) // max units == units
	if c.AssetX == c.AssetY {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputSameAsset}, nil
	}
	if bytes.Compare(c.AssetX[:], c.AssetY[:]) > 0 {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetsNotSorted}, nil
	}
	if c.Amplification < pricing.MinAmplification || c.Amplification > pricing.MaxAmplification {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputInvalidAmplification}, nil
	}
	if c.CommissionRate > pricing.MaxCommissionRate {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputInvalidCommission}, nil
	}
	decimalsX, exists, err := assetDecimals(ctx, db, c.AssetX)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !exists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetMissing}, nil
	}
	decimalsY, exists, err := assetDecimals(ctx, db, c.AssetY)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if !exists {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputAssetMissing}, nil
	}
	pair := &storage.Pair{
		AssetX:         c.AssetX,
		AssetY:         c.AssetY,
		Amplification:  c.Amplification,
		CommissionRate: c.CommissionRate,
		Owner:          actor,
		BlockTimeLast:  t,
	}
	if err := storage.SetPair(ctx, db, txID, pair); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	// Shares are tracked as a standard asset so they can be transferred like
	// any other. The empty owner key keeps them outside [MintAsset]'s reach.
	shareDecimals := decimalsX
	if decimalsY > shareDecimals {
		shareDecimals = decimalsY
	}
	shareMetadata := make([]byte, consts.IDLen*2)
	copy(shareMetadata, c.AssetX[:])
	copy(shareMetadata[consts.IDLen:], c.AssetY[:])
	if err := storage.SetAsset(
		ctx, db, txID,
		shareSymbol, shareDecimals, shareMetadata,
		0, crypto.EmptyPublicKey,
	); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	return &chain.Result{Success: true, Units: unitsUsed}, nil
}

func (*CreatePair) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen*2 + consts.Uint64Len*2
}

func (c *CreatePair) Marshal(p *codec.Packer) {
	p.PackID(c.AssetX)
	p.PackID(c.AssetY)
	p.PackUint64(c.Amplification)
	p.PackUint64(c.CommissionRate)
}

func UnmarshalCreatePair(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var create CreatePair
	p.UnpackID(false, &create.AssetX) // empty ID is the native asset
	p.UnpackID(false, &create.AssetY)
	create.Amplification = p.UnpackUint64(true)
	create.CommissionRate = p.UnpackUint64(false)
	return &create, p.Err()
}

func (*CreatePair) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}
