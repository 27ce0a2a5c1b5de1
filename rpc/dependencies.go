// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/hypersdk/crypto"

	"github.com/ava-labs/metastablevm/genesis"
	"github.com/ava-labs/metastablevm/pairs"
	"github.com/ava-labs/metastablevm/storage"
)

type Controller interface {
	Genesis() *genesis.Genesis
	Tracer() trace.Tracer
	GetTransaction(context.Context, ids.ID) (bool, int64, bool, uint64, error)
	GetAssetFromState(context.Context, ids.ID) (bool, []byte, uint8, []byte, uint64, crypto.PublicKey, error)
	GetBalanceFromState(context.Context, crypto.PublicKey, ids.ID) (uint64, error)
	GetPairFromState(context.Context, ids.ID) (*storage.Pair, error)
	GetStakeFromState(context.Context, crypto.PublicKey, ids.ID) (uint64, error)
	Pairs(limit int) []*pairs.Pair
}
