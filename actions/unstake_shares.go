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
	"github.com/ava-labs/metastablevm/storage"
)

var _ chain.Action = (*UnstakeShares)(nil)

// UnstakeShares moves pool shares from the actor's stake ledger back to their
// transferable balance. Reserves are untouched, so accumulated prices are not
// advanced.
type UnstakeShares struct {
	// Pair is the [TxID] that created the pair.
	Pair ids.ID `json:"pair"`

	// Shares is the number of staked shares to release.
	Shares uint64 `json:"shares"`
}

func (u *UnstakeShares) StateKeys(rauth chain.Auth, _ ids.ID) [][]byte {
	actor := auth.GetActor(rauth)
	return [][]byte{
		storage.StakeKey(actor, u.Pair),
		storage.BalanceKey(actor, u.Pair),
	}
}

func (u *UnstakeShares) Execute(
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
	if u.Shares == 0 {
		return &chain.Result{Success: false, Units: unitsUsed, Output: OutputValueZero}, nil
	}
	if err := storage.SubStake(ctx, db, actor, u.Pair, u.Shares); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	if err := storage.AddBalance(ctx, db, actor, u.Pair, u.Shares, true); err != nil {
		return &chain.Result{Success: false, Units: unitsUsed, Output: utils.ErrBytes(err)}, nil
	}
	return &chain.Result{Success: true, Units: unitsUsed}, nil
}

func (*UnstakeShares) MaxUnits(chain.Rules) uint64 {
	// We use size as the price of this transaction but we could just as easily
	// use any other calculation.
	return consts.IDLen + consts.Uint64Len
}

func (u *UnstakeShares) Marshal(p *codec.Packer) {
	p.PackID(u.Pair)
	p.PackUint64(u.Shares)
}

func UnmarshalUnstakeShares(p *codec.Packer, _ *warp.Message) (chain.Action, error) {
	var unstake UnstakeShares
	p.UnpackID(true, &unstake.Pair)
	unstake.Shares = p.UnpackUint64(true)
	return &unstake, p.Err()
}

func (*UnstakeShares) ValidRange(chain.Rules) (int64, int64) {
	// Returning -1, -1 means that the action is always valid.
	return -1, -1
}
