// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/metastablevm/actions"
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfers value to another address",
	RunE:  transferFunc,
}

func transferFunc(*cobra.Command, []string) error {
	ctx := context.Background()
	_, priv, factory, cli, mcli, err := defaultActor()
	if err != nil {
		return err
	}

	// Select token to send
	assetID, err := promptAsset("assetID")
	if err != nil {
		return err
	}
	balance, err := getBalance(ctx, mcli, priv.PublicKey(), assetID)
	if balance == 0 || err != nil {
		return err
	}

	// Select recipient
	recipient, err := promptAddress("recipient")
	if err != nil {
		return err
	}

	// Select amount
	amount, err := promptAmount("amount", assetID, balance, nil)
	if err != nil {
		return err
	}

	// Confirm action
	cont, err := promptContinue()
	if !cont || err != nil {
		return err
	}

	_, _, err = sendAndWait(ctx, nil, &actions.Transfer{
		To:    recipient,
		Asset: assetID,
		Value: amount,
	}, cli, mcli, factory)
	return err
}
