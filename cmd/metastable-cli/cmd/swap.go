// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hconsts "github.com/ava-labs/hypersdk/consts"
	"github.com/ava-labs/hypersdk/crypto"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swaps one asset of a pair for the other",
	RunE:  swapFunc,
}

func swapFunc(*cobra.Command, []string) error {
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
	assetX, assetY, reserveX, reserveY, _, err := mcli.Pool(ctx, pairID)
	if err != nil {
		return err
	}
	hutils.Outf(
		"{{yellow}}reserves:{{/}} %s %s / %s %s\n",
		valueString(assetX, reserveX),
		assetString(assetX),
		valueString(assetY, reserveY),
		assetString(assetY),
	)

	// Select asset to sell
	offerAsset, err := promptAsset("offer assetID")
	if err != nil {
		return err
	}
	var askAsset = assetY
	switch offerAsset {
	case assetX:
	case assetY:
		askAsset = assetX
	default:
		hutils.Outf("{{red}}%s is not part of %s{{/}}\n", assetString(offerAsset), pairID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	balance, err := getBalance(ctx, mcli, priv.PublicKey(), offerAsset)
	if balance == 0 || err != nil {
		return err
	}

	// Select amount to sell
	amountIn, err := promptAmount("amount in", offerAsset, balance, nil)
	if err != nil {
		return err
	}

	// Preview the swap at current reserves
	ret, spread, commission, err := mcli.Simulate(ctx, pairID, offerAsset, amountIn)
	if err != nil {
		return err
	}
	hutils.Outf(
		"{{yellow}}expected return:{{/}} %s %s {{yellow}}spread:{{/}} %s {{yellow}}commission:{{/}} %s\n",
		valueString(askAsset, ret),
		assetString(askAsset),
		valueString(askAsset, spread),
		valueString(askAsset, commission),
	)

	// Select belief price (0 uses the constant-rate parity)
	beliefPrice, err := promptRate("belief price", 0, hconsts.MaxUint64)
	if err != nil {
		return err
	}

	// Select max spread (0 uses the default bound)
	maxSpread, err := promptRate("max spread", 0, pricing.MaxAllowedSpread)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.Swap{
		Pair:        pairID,
		OfferAsset:  offerAsset,
		AskAsset:    askAsset,
		AmountIn:    amountIn,
		BeliefPrice: beliefPrice,
		MaxSpread:   maxSpread,
		To:          crypto.EmptyPublicKey,
	}, cli, mcli, factory)
	return err
}
