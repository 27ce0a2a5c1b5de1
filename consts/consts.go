// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/codec"
)

const (
	HRP    = "mstable"
	Name   = "metastablevm"
	Symbol = "MSTB"

	// Decimals of the native asset (used to pay fees).
	Decimals = 9
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

// Instantiated in [registry/registry.go] so they can be imported by any
// package without an import cycle.
var (
	ActionRegistry *codec.TypeParser[chain.Action, *warp.Message]
	AuthRegistry   *codec.TypeParser[chain.Auth, *warp.Message]
)
