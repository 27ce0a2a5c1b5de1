// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

var (
	OutputValueZero        = []byte("value is zero")
	OutputSymbolEmpty      = []byte("symbol is empty")
	OutputSymbolTooLarge   = []byte("symbol is too large")
	OutputDecimalsTooLarge = []byte("decimal is too large")
	OutputMetadataEmpty    = []byte("metadata is empty")
	OutputMetadataTooLarge = []byte("metadata is too large")
	OutputAssetIsNative    = []byte("cannot mint native asset")
	OutputAssetMissing     = []byte("asset missing")
	OutputWrongOwner       = []byte("wrong owner")

	OutputPairMissing          = []byte("pair missing")
	OutputAssetMismatch        = []byte("asset does not belong to pair")
	OutputSameAsset            = []byte("assets are identical")
	OutputAssetsNotSorted      = []byte("assets are not sorted")
	OutputInvalidAmplification = []byte("amplification out of range")
	OutputInvalidCommission    = []byte("commission rate too high")
)
