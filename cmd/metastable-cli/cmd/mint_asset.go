// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hconsts "github.com/ava-labs/hypersdk/consts"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/utils"
)

var mintAssetCmd = &cobra.Command{
	Use:   "mint-asset",
	Short: "Mints an existing asset",
	RunE:  mintAssetFunc,
}

func mintAssetFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, priv, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Select token to mint
	assetID, err := promptID("assetID")
	if err != nil {
		return err
	}
	exists, symbol, decimals, metadata, supply, owner, err := mcli.Asset(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		hutils.Outf("{{red}}%s does not exist{{/}}\n", assetID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	if owner != utils.Address(priv.PublicKey()) {
		hutils.Outf("{{red}}%s is the owner of %s, you are not{{/}}\n", owner, assetID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	hutils.Outf(
		"{{yellow}}symbol:{{/}} %s {{yellow}}decimals:{{/}} %d {{yellow}}metadata:{{/}} %s {{yellow}}supply:{{/}} %d\n",
		string(symbol),
		decimals,
		string(metadata),
		supply,
	)

	// Select recipient
	recipient, err := promptAddress("recipient")
	if err != nil {
		return err
	}

	// Select amount
	amount, err := promptAmount("amount", assetID, hconsts.MaxUint64-supply, nil)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.MintAsset{
		Asset: assetID,
		To:    recipient,
		Value: amount,
	}, cli, mcli, factory)
	return err
}
