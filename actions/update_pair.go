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

var _ chain.Action = (*UpdatePair)(nil)

// UpdatePair replaces the economic parameters of a pair. Only the pair owner
// can do this. Reserves and accumulated prices are untouched.
type UpdatePair struct {
	// Pair is the [TxID] that created the pair.
	Pair ids.ID `json:"pair"`

	// Amplification is the new amplification coefficient.
	Amplification uint64 `json:"amplification"`

	// CommissionRate is the new commission rate (per [pricing.RateScale]).
	CommissionRate uint64 `json:"commissionRate"`
}

func (u *UpdatePair) StateKeys(chain.Auth, ids.ID) [][]byte {
	return [][]byte{storage.PairKey(u.Pair)}
}

func (u *UpdatePair) Execute(
	ctx context.Context,
	r chain.Rules,
	db chain.Database,
	_ int64,
	rauth chain.Auth,
	_ ids.ID,
	_ bool,
) (*chain.Result, error) {
	actor := auth.GetActor(rauth)
	unitsUsed := u.MaxUnits(r) // max units == units
	if u.Amplification < pricing.MinAmplification || u.Amplification > pricing.MaxAmplification {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputInvalidAmplification}, nil
	}
	if u.CommissionRate > pricing.MaxCommissionRate {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputInvalidCommission}, nil
	}
	pair, err := storage.GetPair(ctx, db, u.Pair)
	if err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if pair == nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputPairMissing}, nil
	}
	if pair.Owner != actor {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputWrongOwner}, nil
	}
	pair.Amplification = u.Amplification
	pair.CommissionRate = u.CommissionRate
	if err := storage.SetPair(ctx, db, u.Pair, pair); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	return &chain.Result{Success: true, Units: unitsUsed}, nil
}

func (*UpdatePair) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen + consts.Uint64Len*2
}

func (u *UpdatePair) Marshal(p *codec.Packer) {
	p.PackID(u.Pair)
	p.PackUint64(u.Amplification)
	p.PackUint64(u.CommissionRate)
}

func UnmarshalUpdatePair(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var update UpdatePair
	p.UnpackID(true, &update.Pair)
	update.Amplification = p.UnpackUint64(true)
	update.CommissionRate = p.UnpackUint64(false)
	return &update, p.Err()
}

func (*UpdatePair) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}
