// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/utils"
)

var unstakeSharesCmd = &cobra.Command{
	Use:   "unstake-shares",
	Short: "Unstakes pair shares back to a spendable balance",
	RunE:  unstakeSharesFunc,
}

func unstakeSharesFunc(*cobra.Command, []string) error {
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

	// Check staked shares
	staked, err := mcli.Stake(ctx, pairID, utils.Address(priv.PublicKey()))
	if err != nil {
		return err
	}
	if staked == 0 {
		hutils.Outf("{{red}}no staked shares on %s{{/}}\n", pairID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	hutils.Outf("{{yellow}}staked shares:{{/}} %d\n", staked)

	// Select shares to unstake
	shares, err := promptAmount("shares", pairID, staked, nil)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.UnstakeShares{
		Pair:   pairID,
		Shares: shares,
	}, cli, mcli, factory)
	return err
}
