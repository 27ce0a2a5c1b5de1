// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "metastable-cli" implements metastablevm client operation interface.
package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/hypersdk/pebble"
	"github.com/spf13/cobra"
)

const (
	requestTimeout = 30 * time.Second
	fsModeWrite    = 0o600
	databaseFolder = ".metastable-cli"
)

var (
	db      database.Database
	workDir string

	genesisFile  string
	minUnitPrice int64

	checkAllChains bool
	hideTxs        bool

	rootCmd = &cobra.Command{
		Use:        "metastable-cli",
		Short:      "MetastableVM CLI",
		SuggestFor: []string{"metastable-cli", "metastablecli"},
	}
)

func init() {
	p, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	workDir = p
	dbPath := filepath.Join(workDir, databaseFolder)
	db, err = pebble.New(dbPath, pebble.NewDefaultConfig())
	if err != nil {
		panic(err)
	}

	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		genesisCmd,
		keyCmd,
		chainCmd,
		pairCmd,

		transferCmd,

		createAssetCmd,
		mintAssetCmd,

		createPairCmd,
		updatePairCmd,
		provideLiquidityCmd,
		withdrawLiquidityCmd,
		swapCmd,
		unstakeSharesCmd,
	)

	// genesis
	genesisCmd.AddCommand(
		genGenesisCmd,
	)
	genGenesisCmd.PersistentFlags().StringVar(
		&genesisFile,
		"genesis-file",
		filepath.Join(workDir, "genesis.json"),
		"genesis file path",
	)
	genGenesisCmd.PersistentFlags().Int64Var(
		&minUnitPrice,
		"min-unit-price",
		-1,
		"minimum price",
	)

	// key
	keyCmd.AddCommand(
		genKeyCmd,
		importKeyCmd,
		setKeyCmd,
		balanceKeyCmd,
	)
	balanceKeyCmd.PersistentFlags().BoolVar(
		&checkAllChains,
		"check-all-chains",
		false,
		"check balance on all chains",
	)

	// chain
	chainCmd.AddCommand(
		importChainCmd,
		setChainCmd,
		chainInfoCmd,
		watchChainCmd,
	)
	watchChainCmd.PersistentFlags().BoolVar(
		&hideTxs,
		"hide-txs",
		false,
		"hide transactions",
	)

	// pair
	pairCmd.AddCommand(
		pairInfoCmd,
		pairPricesCmd,
		pairSimulateCmd,
		pairReverseSimulateCmd,
		pairShareCmd,
	)
}

func Execute() error {
	defer db.Close()
	return rootCmd.Execute()
}
