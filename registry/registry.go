// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/auth"
	"github.com/ava-labs/metastablevm/consts"
)

// Setup types
func init() {
	consts.ActionRegistry = codec.NewTypeParser[chain.Action, *warp.Message]()
	consts.AuthRegistry = codec.NewTypeParser[chain.Auth, *warp.Message]()

	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		consts.ActionRegistry.Register(&actions.CreateAsset{}, actions.UnmarshalCreateAsset),
		consts.ActionRegistry.Register(&actions.MintAsset{}, actions.UnmarshalMintAsset),
		consts.ActionRegistry.Register(&actions.Transfer{}, actions.UnmarshalTransfer),
		consts.ActionRegistry.Register(&actions.CreatePair{}, actions.UnmarshalCreatePair),
		consts.ActionRegistry.Register(&actions.UpdatePair{}, actions.UnmarshalUpdatePair),
		consts.ActionRegistry.Register(&actions.ProvideLiquidity{}, actions.UnmarshalProvideLiquidity),
		consts.ActionRegistry.Register(&actions.WithdrawLiquidity{}, actions.UnmarshalWithdrawLiquidity),
		consts.ActionRegistry.Register(&actions.Swap{}, actions.UnmarshalSwap),
		consts.ActionRegistry.Register(&actions.UnstakeShares{}, actions.UnmarshalUnstakeShares),

		// When registering new auth, ALWAYS make sure to append at the end.
		consts.AuthRegistry.Register(&auth.ED25519{}, auth.UnmarshalED25519),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}
