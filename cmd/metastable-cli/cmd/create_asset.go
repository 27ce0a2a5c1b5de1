// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
)

var createAssetCmd = &cobra.Command{
	Use:   "create-asset",
	Short: "Creates a new asset",
	RunE:  createAssetFunc,
}

func createAssetFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, _, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Add symbol to asset
	symbol, err := promptString("symbol")
	if err != nil {
		return err
	}

	// Add decimals to asset
	decimals, err := promptRate("decimals", 0, uint64(pricing.MaxDecimals))
	if err != nil {
		return err
	}

	// Add metadata to asset
	metadata, err := promptString("metadata")
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	success, txID, err := sendAndWait(ctx, nil, &actions.CreateAsset{
		Symbol:   []byte(symbol),
		Decimals: uint8(decimals),
		Metadata: []byte(metadata),
	}, cli, mcli, factory)
	if err != nil {
		return err
	}
	if success {
		hutils.Outf("{{green}}assetID:{{/}} %s\n", txID)
	}
	return nil
}
