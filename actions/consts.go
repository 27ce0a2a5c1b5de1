// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

const (
	MaxSymbolSize   = 8
	MaxMetadataSize = 256
)

// shareSymbol is the symbol given to the share asset minted for each pair.
var shareSymbol = []byte("MLP")
