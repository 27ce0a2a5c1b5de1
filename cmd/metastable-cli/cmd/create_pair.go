// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"

	"github.com/ava-labs/avalanchego/ids"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
)

var createPairCmd = &cobra.Command{
	Use:   "create-pair",
	Short: "Creates a new metastable pair",
	RunE:  createPairFunc,
}

func createPairFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, _, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Select first asset
	assetX, err := promptAsset("asset X")
	if err != nil {
		return err
	}
	if assetX != ids.Empty {
		exists, symbol, decimals, _, _, _, err := mcli.Asset(ctx, assetX)
		if err != nil {
			return err
		}
		if !exists {
			hutils.Outf("{{red}}%s does not exist{{/}}\n", assetX)
			hutils.Outf("{{red}}exiting...{{/}}\n")
			return nil
		}
		hutils.Outf("{{yellow}}symbol:{{/}} %s {{yellow}}decimals:{{/}} %d\n", string(symbol), decimals)
	}

	// Select second asset
	assetY, err := promptAsset("asset Y")
	if err != nil {
		return err
	}
	if assetY == assetX {
		hutils.Outf("{{red}}assets must differ{{/}}\n")
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	if assetY != ids.Empty {
		exists, symbol, decimals, _, _, _, err := mcli.Asset(ctx, assetY)
		if err != nil {
			return err
		}
		if !exists {
			hutils.Outf("{{red}}%s does not exist{{/}}\n", assetY)
			hutils.Outf("{{red}}exiting...{{/}}\n")
			return nil
		}
		hutils.Outf("{{yellow}}symbol:{{/}} %s {{yellow}}decimals:{{/}} %d\n", string(symbol), decimals)
	}

	// Pairs are stored with assets in ascending ID order
	if bytes.Compare(assetX[:], assetY[:]) > 0 {
		assetX, assetY = assetY, assetX
		hutils.Outf("{{yellow}}assets reordered:{{/}} %s <> %s\n", assetString(assetX), assetString(assetY))
	}

	// Select amplification
	amplification, err := promptRate("amplification", pricing.MinAmplification, pricing.MaxAmplification)
	if err != nil {
		return err
	}

	// Select commission rate
	commissionRate, err := promptRate("commission rate", 0, pricing.MaxCommissionRate)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	success, txID, err := sendAndWait(ctx, nil, &actions.CreatePair{
		AssetX:         assetX,
		AssetY:         assetY,
		Amplification:  amplification,
		CommissionRate: commissionRate,
	}, cli, mcli, factory)
	if err != nil {
		return err
	}
	if success {
		hutils.Outf("{{green}}pairID:{{/}} %s\n", txID)
	}
	return nil
}
