// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/utils"
)

var updatePairCmd = &cobra.Command{
	Use:   "update-pair",
	Short: "Updates the parameters of a pair",
	RunE:  updatePairFunc,
}

func updatePairFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, priv, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Select pair to update
	pairID, err := promptID("pairID")
	if err != nil {
		return err
	}
	exists, assetX, assetY, amplification, commissionRate, owner, err := mcli.Pair(ctx, pairID)
	if err != nil {
		return err
	}
	if !exists {
		hutils.Outf("{{red}}%s does not exist{{/}}\n", pairID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	if owner != utils.Address(priv.PublicKey()) {
		hutils.Outf("{{red}}%s is the owner of %s, you are not{{/}}\n", owner, pairID)
		hutils.Outf("{{red}}exiting...{{/}}\n")
		return nil
	}
	hutils.Outf(
		"{{yellow}}pair:{{/}} %s <> %s {{yellow}}amplification:{{/}} %d {{yellow}}commission:{{/}} %d\n",
		assetString(assetX),
		assetString(assetY),
		amplification,
		commissionRate,
	)

	// Select new amplification
	newAmplification, err := promptRate("new amplification", pricing.MinAmplification, pricing.MaxAmplification)
	if err != nil {
		return err
	}

	// Select new commission rate
	newCommissionRate, err := promptRate("new commission rate", 0, pricing.MaxCommissionRate)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.UpdatePair{
		Pair:           pairID,
		Amplification:  newAmplification,
		CommissionRate: newCommissionRate,
	}, cli, mcli, factory)
	return err
}
