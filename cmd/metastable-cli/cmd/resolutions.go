// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/rpc"
	hutils "github.com/ava-labs/hypersdk/utils"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/auth"
	mrpc "github.com/ava-labs/metastablevm/rpc"
	"github.com/ava-labs/metastablevm/utils"
)

// TODO: use websockets
func sendAndWait(
	ctx context.Context, warpMsg *warp.Message, action chain.Action, cli *rpc.JSONRPCClient,
	mcli *mrpc.JSONRPCClient, factory chain.AuthFactory,
) (bool, ids.ID, error) {
	parser, err := mcli.Parser(ctx)
	if err != nil {
		return false, ids.Empty, err
	}
	submit, tx, _, err := cli.GenerateTransaction(ctx, parser, warpMsg, action, factory)
	if err != nil {
		return false, ids.Empty, err
	}
	if err := submit(ctx); err != nil {
		return false, ids.Empty, err
	}
	success, err := mcli.WaitForTransaction(ctx, tx.ID())
	if err != nil {
		return false, ids.Empty, err
	}
	printStatus(tx.ID(), success)
	return success, tx.ID(), nil
}

func handleTx(tx *chain.Transaction, result *chain.Result) {
	summaryStr := string(result.Output)
	actor := auth.GetActor(tx.Auth)
	status := "⚠️"
	if result.Success {
		status = "✅"
		switch action := tx.Action.(type) {
		case *actions.CreateAsset:
			summaryStr = fmt.Sprintf("assetID: %s symbol: %s decimals: %d metadata: %s", tx.ID(), action.Symbol, action.Decimals, action.Metadata)
		case *actions.MintAsset:
			summaryStr = fmt.Sprintf("%s %s -> %s", valueString(action.Asset, action.Value), assetString(action.Asset), utils.Address(action.To))
		case *actions.Transfer:
			summaryStr = fmt.Sprintf("%s %s -> %s", valueString(action.Asset, action.Value), assetString(action.Asset), utils.Address(action.To))

		case *actions.CreatePair:
			summaryStr = fmt.Sprintf("pairID: %s %s <> %s (amplification: %d)", tx.ID(), assetString(action.AssetX), assetString(action.AssetY), action.Amplification)
		case *actions.UpdatePair:
			summaryStr = fmt.Sprintf("pairID: %s amplification: %d commission: %d", action.Pair, action.Amplification, action.CommissionRate)
		case *actions.ProvideLiquidity:
			lr, _ := actions.UnmarshalLiquidityResult(result.Output)
			summaryStr = fmt.Sprintf(
				"%s %s + %s %s -> %d shares",
				valueString(action.AssetX, action.AmountX), assetString(action.AssetX),
				valueString(action.AssetY, action.AmountY), assetString(action.AssetY),
				lr.Minted,
			)
		case *actions.WithdrawLiquidity:
			wr, _ := actions.UnmarshalWithdrawResult(result.Output)
			summaryStr = fmt.Sprintf(
				"%d shares -> %s %s + %s %s",
				action.Shares,
				valueString(action.AssetX, wr.AmountX), assetString(action.AssetX),
				valueString(action.AssetY, wr.AmountY), assetString(action.AssetY),
			)
		case *actions.Swap:
			sr, _ := actions.UnmarshalSwapResult(result.Output)
			summaryStr = fmt.Sprintf(
				"%s %s -> %s %s (spread: %s, commission: %s)",
				valueString(action.OfferAsset, action.AmountIn), assetString(action.OfferAsset),
				valueString(action.AskAsset, sr.Return), assetString(action.AskAsset),
				valueString(action.AskAsset, sr.Spread), valueString(action.AskAsset, sr.Commission),
			)
		case *actions.UnstakeShares:
			summaryStr = fmt.Sprintf("pairID: %s unstaked: %d shares", action.Pair, action.Shares)
		}
	}
	hutils.Outf(
		"%s {{yellow}}%s{{/}} {{yellow}}actor:{{/}} %s {{yellow}}units:{{/}} %d {{yellow}}summary (%s):{{/}} [%s]\n",
		status,
		tx.ID(),
		utils.Address(actor),
		result.Units,
		reflect.TypeOf(tx.Action),
		summaryStr,
	)
}
