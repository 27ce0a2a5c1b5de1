// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hconsts "github.com/ava-labs/hypersdk/consts"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	mrpc "github.com/ava-labs/metastablevm/rpc"
)

var pairCmd = &cobra.Command{
	Use: "pair",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var pairInfoCmd = &cobra.Command{
	Use: "info",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)

		pairID, err := promptID("pairID")
		if err != nil {
			return err
		}
		exists, _, _, _, _, owner, err := mcli.Pair(ctx, pairID)
		if err != nil {
			return err
		}
		if !exists {
			hutils.Outf("{{red}}%s does not exist{{/}}\n", pairID)
			return nil
		}
		amplification, commissionRate, blockTimeLast, err := mcli.PairConfig(ctx, pairID)
		if err != nil {
			return err
		}
		assetX, assetY, reserveX, reserveY, totalShare, err := mcli.Pool(ctx, pairID)
		if err != nil {
			return err
		}
		hutils.Outf(
			"{{cyan}}assets:{{/}} %s/%s {{cyan}}owner:{{/}} %s\n",
			assetString(assetX),
			assetString(assetY),
			owner,
		)
		hutils.Outf(
			"{{cyan}}amplification:{{/}} %d {{cyan}}commission rate:{{/}} %d {{cyan}}last update:{{/}} %d\n",
			amplification,
			commissionRate,
			blockTimeLast,
		)
		hutils.Outf(
			"{{cyan}}reserves:{{/}} %s %s / %s %s {{cyan}}total shares:{{/}} %d\n",
			valueString(assetX, reserveX),
			assetString(assetX),
			valueString(assetY, reserveY),
			assetString(assetY),
			totalShare,
		)
		return nil
	},
}

var pairPricesCmd = &cobra.Command{
	Use: "prices",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)

		pairID, err := promptID("pairID")
		if err != nil {
			return err
		}
		_, _, _, priceX, priceY, blockTimeLast, err := mcli.CumulativePrices(ctx, pairID)
		if err != nil {
			return err
		}
		hutils.Outf(
			"{{cyan}}cumulative priceX:{{/}} %d {{cyan}}cumulative priceY:{{/}} %d {{cyan}}last update:{{/}} %d\n",
			priceX,
			priceY,
			blockTimeLast,
		)
		return nil
	},
}

var pairSimulateCmd = &cobra.Command{
	Use: "simulate",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)

		pairID, err := promptID("pairID")
		if err != nil {
			return err
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

		// Select amount to sell
		amountIn, err := promptAmount("amount in", offerAsset, hconsts.MaxUint64, nil)
		if err != nil {
			return err
		}
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
		return nil
	},
}

var pairReverseSimulateCmd = &cobra.Command{
	Use: "reverse-simulate",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)

		pairID, err := promptID("pairID")
		if err != nil {
			return err
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

		// Select asset to buy
		askAsset, err := promptAsset("ask assetID")
		if err != nil {
			return err
		}
		var offerAsset = assetY
		switch askAsset {
		case assetX:
		case assetY:
			offerAsset = assetX
		default:
			hutils.Outf("{{red}}%s is not part of %s{{/}}\n", assetString(askAsset), pairID)
			hutils.Outf("{{red}}exiting...{{/}}\n")
			return nil
		}

		// Select amount to buy
		amountOut, err := promptAmount("amount out", askAsset, hconsts.MaxUint64, nil)
		if err != nil {
			return err
		}
		offer, spread, commission, err := mcli.ReverseSimulate(ctx, pairID, askAsset, amountOut)
		if err != nil {
			return err
		}
		hutils.Outf(
			"{{yellow}}required offer:{{/}} %s %s {{yellow}}spread:{{/}} %s {{yellow}}commission:{{/}} %s\n",
			valueString(offerAsset, offer),
			assetString(offerAsset),
			valueString(askAsset, spread),
			valueString(askAsset, commission),
		)
		return nil
	},
}

var pairShareCmd = &cobra.Command{
	Use: "share",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)

		pairID, err := promptID("pairID")
		if err != nil {
			return err
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

		// Select shares to value
		shares, err := promptAmount("shares", pairID, totalShare, nil)
		if err != nil {
			return err
		}
		amountX, amountY, err := mcli.Share(ctx, pairID, shares)
		if err != nil {
			return err
		}
		hutils.Outf(
			"{{yellow}}redeemable:{{/}} %s %s + %s %s\n",
			valueString(assetX, amountX),
			assetString(assetX),
			valueString(assetY, amountY),
			assetString(assetY),
		)
		return nil
	},
}
