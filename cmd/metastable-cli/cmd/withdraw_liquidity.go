// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
)

var withdrawLiquidityCmd = &cobra.Command{
	Use:   "withdraw-liquidity",
	Short: "Burns pool shares for both assets of a pair",
	RunE:  withdrawLiquidityFunc,
}

func withdrawLiquidityFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, priv, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Select pair
	pairID, err := promptID("pairID")
	if err != nil {
		return err
	}
	exists, _, _, _, _, _, err := mcli.Pair(ctx, pairID)
	if err != nil {
		return err
	}
	if !exists {
		hutils.Outf("{{red}}%s does not exist{{/}}\n", pairID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	assetX, assetY, reserveX, reserveY, totalShare, err := mcli.Pool(ctx, pairID)
	if err != nil {
		return err
	}
	hutils.Outf(
		"{{yellow}}reserves:{{/}} %s %s / %s %s {{yellow}}total shares:{{/}} %d\n",
		valueString(assetX, reserveX),
		assetString(assetX),
		valueString(assetY, reserveY),
		assetString(assetY),
		totalShare,
	)

	// Check share balance (shares are the asset stored under the pairID)
	shareBalance, err := getBalance(ctx, mcli, priv.PublicKey(), pairID)
	if shareBalance == 0 || err != nil {
		return err
	}

	// Select shares to burn
	shares, err := promptAmount("shares", pairID, shareBalance, nil)
	if err != nil {
		return err
	}

	// Preview the refund at current reserves
	amountX, amountY, err := mcli.Share(ctx, pairID, shares)
	if err != nil {
		return err
	}
	hutils.Outf(
		"{{yellow}}expected return:{{/}} %s %s + %s %s\n",
		valueString(assetX, amountX),
		assetString(assetX),
		valueString(assetY, amountY),
		assetString(assetY),
	)

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.WithdrawLiquidity{
		Pair:   pairID,
		AssetX: assetX,
		AssetY: assetY,
		Shares: shares,
	}, cli, mcli, factory)
	return err
}
