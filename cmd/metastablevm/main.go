// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "metastablevm" implements the metastable AMM chain as an avalanchego
// plugin.
package main

import (
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/vms/rpcchainvm"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/cmd/metastablevm/version"
	"github.com/ava-labs/metastablevm/controller"
)

var rootCmd = &cobra.Command{
	Use:        "metastablevm",
	Short:      "MetastableVM agent",
	SuggestFor: []string{"metastablevm"},
	RunE:       runFunc,
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.AddCommand(
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "metastablevm failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(*cobra.Command, []string) error {
	rpcchainvm.Serve(controller.New())
	return nil
}
