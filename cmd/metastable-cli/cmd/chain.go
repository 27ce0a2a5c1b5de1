// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"math"
	"time"

	hconsts "github.com/ava-labs/hypersdk/consts"
	"github.com/ava-labs/hypersdk/rpc"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/ava-labs/hypersdk/window"
	"github.com/spf13/cobra"

	mrpc "github.com/ava-labs/metastablevm/rpc"
)

var chainCmd = &cobra.Command{
	Use: "chain",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var importChainCmd = &cobra.Command{
	Use: "import",
	RunE: func(_ *cobra.Command, args []string) error {
		chainID, err := promptID("chainID")
		if err != nil {
			return err
		}
		uri, err := promptString("uri")
		if err != nil {
			return err
		}
		if err := StoreChain(chainID, uri); err != nil {
			return err
		}
		if err := StoreDefault(defaultChainKey, chainID[:]); err != nil {
			return err
		}
		return nil
	},
}

var setChainCmd = &cobra.Command{
	Use: "set",
	RunE: func(*cobra.Command, []string) error {
		chainID, _, err := promptChain("set default chain")
		if err != nil {
			return err
		}
		return StoreDefault(defaultChainKey, chainID[:])
	},
}

var chainInfoCmd = &cobra.Command{
	Use: "info",
	RunE: func(_ *cobra.Command, args []string) error {
		_, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		cli := rpc.NewJSONRPCClient(uris[0])
		networkID, subnetID, chainID, err := cli.Network(context.Background())
		if err != nil {
			return err
		}
		hutils.Outf(
			"{{cyan}}networkID:{{/}} %d {{cyan}}subnetID:{{/}} %s {{cyan}}chainID:{{/}} %s\n",
			networkID,
			subnetID,
			chainID,
		)
		return nil
	},
}

var watchChainCmd = &cobra.Command{
	Use: "watch",
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		chainID, uris, err := promptChain("select chainID")
		if err != nil {
			return err
		}
		if err := CloseDatabase(); err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)
		hutils.Outf("{{yellow}}uri:{{/}} %s\n", uris[0])
		scli, err := rpc.NewWebSocketClient(uris[0])
		if err != nil {
			return err
		}
		defer scli.Close()
		if err := scli.RegisterBlocks(); err != nil {
			return err
		}
		parser, err := mcli.Parser(ctx)
		if err != nil {
			return err
		}
		hutils.Outf("{{green}}watching for new blocks on %s 👀{{/}}\n", chainID)
		var (
			start             time.Time
			lastBlock         int64
			lastBlockDetailed time.Time
			tpsWindow         = window.Window{}
		)
		for ctx.Err() == nil {
			blk, results, err := scli.ListenBlock(ctx, parser)
			if err != nil {
				return err
			}
			now := time.Now()
			if start.IsZero() {
				start = now
			}
			if lastBlock != 0 {
				since := now.Unix() - lastBlock
				newWindow, err := window.Roll(tpsWindow, int(since))
				if err != nil {
					return err
				}
				tpsWindow = newWindow
				window.Update(&tpsWindow, window.WindowSliceSize-hconsts.Uint64Len, uint64(len(blk.Txs)))
				runningDuration := time.Since(start)
				tpsDivisor := math.Min(window.WindowSize, runningDuration.Seconds())
				hutils.Outf(
					"{{green}}height:{{/}}%d {{green}}txs:{{/}}%d {{green}}units:{{/}}%d {{green}}root:{{/}}%s {{green}}TPS:{{/}}%.2f {{green}}split:{{/}}%dms\n", //nolint:lll
					blk.Hght,
					len(blk.Txs),
					blk.UnitsConsumed,
					blk.StateRoot,
					float64(window.Sum(tpsWindow))/tpsDivisor,
					time.Since(lastBlockDetailed).Milliseconds(),
				)
			} else {
				hutils.Outf(
					"{{green}}height:{{/}}%d {{green}}txs:{{/}}%d {{green}}units:{{/}}%d {{green}}root:{{/}}%s\n", //nolint:lll
					blk.Hght,
					len(blk.Txs),
					blk.UnitsConsumed,
					blk.StateRoot,
				)
				window.Update(&tpsWindow, window.WindowSliceSize-hconsts.Uint64Len, uint64(len(blk.Txs)))
			}
			lastBlock = now.Unix()
			lastBlockDetailed = now
			if hideTxs {
				continue
			}
			for i, tx := range blk.Txs {
				handleTx(tx, results[i])
			}
		}
		return nil
	},
}
