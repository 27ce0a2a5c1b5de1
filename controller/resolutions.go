// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/hypersdk/crypto"

	"github.com/ava-labs/metastablevm/genesis"
	"github.com/ava-labs/metastablevm/pairs"
	"github.com/ava-labs/metastablevm/storage"
)

func (c *Controller) Genesis() *genesis.Genesis {
	return c.genesis
}

func (c *Controller) Logger() logging.Logger {
	return c.inner.Logger()
}

func (c *Controller) Tracer() trace.Tracer {
	return c.inner.Tracer()
}

func (c *Controller) GetTransaction(
	ctx context.Context,
	txID ids.ID,
) (bool, int64, bool, uint64, error) {
	return storage.GetTransaction(ctx, c.metaDB, txID)
}

func (c *Controller) GetAssetFromState(
	ctx context.Context,
	asset ids.ID,
) (bool, []byte, uint8, []byte, uint64, crypto.PublicKey, error) {
	return storage.GetAssetFromState(ctx, c.inner.ReadState, asset)
}

func (c *Controller) GetBalanceFromState(
	ctx context.Context,
	pk crypto.PublicKey,
	asset ids.ID,
) (uint64, error) {
	return storage.GetBalanceFromState(ctx, c.inner.ReadState, pk, asset)
}

func (c *Controller) GetPairFromState(
	ctx context.Context,
	pair ids.ID,
) (*storage.Pair, error) {
	return storage.GetPairFromState(ctx, c.inner.ReadState, pair)
}

func (c *Controller) GetStakeFromState(
	ctx context.Context,
	pk crypto.PublicKey,
	pair ids.ID,
) (uint64, error) {
	return storage.GetStakeFromState(ctx, c.inner.ReadState, pk, pair)
}

func (c *Controller) Pairs(limit int) []*pairs.Pair {
	return c.pairs.Pairs(limit)
}
