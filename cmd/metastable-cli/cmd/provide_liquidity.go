// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/ava-labs/hypersdk/crypto"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
)

var provideLiquidityCmd = &cobra.Command{
	Use:   "provide-liquidity",
	Short: "Deposits both assets of a pair for shares",
	RunE:  provideLiquidityFunc,
}

func provideLiquidityFunc(*cobra.Command, []string) error {
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

	// Check balances
	balanceX, err := getBalance(ctx, mcli, priv.PublicKey(), assetX)
	if balanceX == 0 || err != nil {
		return err
	}
	balanceY, err := getBalance(ctx, mcli, priv.PublicKey(), assetY)
	if balanceY == 0 || err != nil {
		return err
	}

	// Select amounts
	amountX, err := promptAmount("amount X", assetX, balanceX, nil)
	if err != nil {
		return err
	}
	amountY, err := promptAmount("amount Y", assetY, balanceY, nil)
	if err != nil {
		return err
	}

	// Select slippage tolerance (0 disables the ratio check)
	slippageTolerance, err := promptRate("slippage tolerance", 0, pricing.MaxAllowedSlippage)
	if err != nil {
		return err
	}

	// Select staking mode
	autoStake, err := promptBool("auto-stake shares")
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.ProvideLiquidity{
		Pair:              pairID,
		AssetX:            assetX,
		AssetY:            assetY,
		AmountX:           amountX,
		AmountY:           amountY,
		SlippageTolerance: slippageTolerance,
		AutoStake:         autoStake,
		Receiver:          crypto.EmptyPublicKey,
	}, cli, mcli, factory)
	return err
}
