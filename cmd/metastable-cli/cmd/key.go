// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/hypersdk/crypto"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/consts"
	mrpc "github.com/ava-labs/metastablevm/rpc"
	"github.com/ava-labs/metastablevm/utils"
)

var keyCmd = &cobra.Command{
	Use: "key",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var genKeyCmd = &cobra.Command{
	Use: "generate",
	RunE: func(*cobra.Command, []string) error {
		priv, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		if err := StoreKey(priv); err != nil {
			return err
		}
		publicKey := priv.PublicKey()
		if err := StoreDefault(defaultKeyKey, publicKey[:]); err != nil {
			return err
		}
		hutils.Outf(
			"{{green}}created address:{{/}} %s\n",
			utils.Address(publicKey),
		)
		return nil
	},
}

var importKeyCmd = &cobra.Command{
	Use: "import [path]",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(_ *cobra.Command, args []string) error {
		priv, err := crypto.LoadKey(args[0])
		if err != nil {
			return err
		}
		if err := StoreKey(priv); err != nil {
			return err
		}
		publicKey := priv.PublicKey()
		if err := StoreDefault(defaultKeyKey, publicKey[:]); err != nil {
			return err
		}
		hutils.Outf(
			"{{green}}imported address:{{/}} %s\n",
			utils.Address(publicKey),
		)
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use: "set",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		keys, err := GetKeys()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			hutils.Outf("{{red}}no stored keys{{/}}\n")
			return nil
		}
		chainID, uris, err := GetDefaultChain()
		if err != nil {
			return err
		}
		mcli := mrpc.NewJSONRPCClient(uris[0], chainID)
		hutils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
		for i := 0; i < len(keys); i++ {
			publicKey := keys[i].PublicKey()
			addr := utils.Address(publicKey)
			balance, err := mcli.Balance(ctx, addr, ids.Empty)
			if err != nil {
				return err
			}
			hutils.Outf(
				"%d) {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
				i,
				addr,
				hutils.FormatBalance(balance),
				consts.Symbol,
			)
		}

		// Select key
		keyIndex, err := promptChoice("set default key", len(keys))
		if err != nil {
			return err
		}
		key := keys[keyIndex]
		publicKey := key.PublicKey()
		return StoreDefault(defaultKeyKey, publicKey[:])
	},
}

var balanceKeyCmd = &cobra.Command{
	Use: "balance",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		priv, err := GetDefaultKey()
		if err != nil {
			return err
		}
		chainID, uris, err := GetDefaultChain()
		if err != nil {
			return err
		}
		assetID, err := promptAsset("assetID")
		if err != nil {
			return err
		}

		publicKey := priv.PublicKey()
		addr := utils.Address(publicKey)
		maxURIs := len(uris)
		if !checkAllChains {
			maxURIs = 1
		}
		for _, uri := range uris[:maxURIs] {
			hutils.Outf("{{yellow}}uri:{{/}} %s\n", uri)
			mcli := mrpc.NewJSONRPCClient(uri, chainID)
			balance, err := mcli.Balance(ctx, addr, assetID)
			if err != nil {
				return err
			}
			hutils.Outf(
				"{{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
				addr,
				valueString(assetID, balance),
				assetString(assetID),
			)
		}
		return nil
	},
}
