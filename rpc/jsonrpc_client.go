// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/requester"
	"github.com/ava-labs/hypersdk/rpc"
	"github.com/ava-labs/hypersdk/utils"

	"github.com/ava-labs/metastablevm/consts"
	"github.com/ava-labs/metastablevm/genesis"
	"github.com/ava-labs/metastablevm/pairs"
	_ "github.com/ava-labs/metastablevm/registry" // ensure registry populated
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	chainID ids.ID
	g       *genesis.Genesis
}

// New creates a new client object.
func NewJSONRPCClient(uri string, chainID ids.ID) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, consts.Name)
	return &JSONRPCClient{req, chainID, nil}
}

func (cli *JSONRPCClient) Genesis(ctx context.Context) (*genesis.Genesis, error) {
	if cli.g != nil {
		return cli.g, nil
	}

	resp := new(GenesisReply)
	err := cli.requester.SendRequest(
		ctx,
		"genesis",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	cli.g = resp.Genesis
	return resp.Genesis, nil
}

func (cli *JSONRPCClient) Tx(ctx context.Context, id ids.ID) (bool, bool, int64, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"tx",
		&TxArgs{TxID: id},
		resp,
	)
	switch {
	// We use string parsing here because the JSON-RPC library we use may not
	// allows us to perform errors.Is.
	case err != nil && strings.Contains(err.Error(), ErrTxNotFound.Error()):
		return false, false, -1, nil
	case err != nil:
		return false, false, -1, err
	}
	return true, resp.Success, resp.Timestamp, nil
}

func (cli *JSONRPCClient) Asset(
	ctx context.Context,
	asset ids.ID,
) (bool, []byte, uint8, []byte, uint64, string, error) {
	resp := new(AssetReply)
	err := cli.requester.SendRequest(
		ctx,
		"asset",
		&AssetArgs{
			Asset: asset,
		},
		resp,
	)
	switch {
	// We use string parsing here because the JSON-RPC library we use may not
	// allows us to perform errors.Is.
	case err != nil && strings.Contains(err.Error(), ErrAssetNotFound.Error()):
		return false, nil, 0, nil, 0, "", nil
	case err != nil:
		return false, nil, 0, nil, 0, "", err
	}
	return true, resp.Symbol, resp.Decimals, resp.Metadata, resp.Supply, resp.Owner, nil
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr string, asset ids.ID) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{
			Address: addr,
			Asset:   asset,
		},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) Pairs(ctx context.Context) ([]*pairs.Pair, error) {
	resp := new(PairsReply)
	err := cli.requester.SendRequest(
		ctx,
		"pairs",
		nil,
		resp,
	)
	return resp.Pairs, err
}

func (cli *JSONRPCClient) Pair(
	ctx context.Context,
	pair ids.ID,
) (bool, ids.ID, ids.ID, uint64, uint64, string, error) {
	resp := new(PairReply)
	err := cli.requester.SendRequest(
		ctx,
		"pair",
		&PairArgs{
			Pair: pair,
		},
		resp,
	)
	switch {
	// We use string parsing here because the JSON-RPC library we use may not
	// allows us to perform errors.Is.
	case err != nil && strings.Contains(err.Error(), ErrPairNotFound.Error()):
		return false, ids.Empty, ids.Empty, 0, 0, "", nil
	case err != nil:
		return false, ids.Empty, ids.Empty, 0, 0, "", err
	}
	return true, resp.AssetX, resp.AssetY, resp.Amplification, resp.CommissionRate, resp.Owner, nil
}

func (cli *JSONRPCClient) Pool(
	ctx context.Context,
	pair ids.ID,
) (ids.ID, ids.ID, uint64, uint64, uint64, error) {
	resp := new(PoolReply)
	err := cli.requester.SendRequest(
		ctx,
		"pool",
		&PoolArgs{
			Pair: pair,
		},
		resp,
	)
	return resp.AssetX, resp.AssetY, resp.ReserveX, resp.ReserveY, resp.TotalShare, err
}

func (cli *JSONRPCClient) PairConfig(
	ctx context.Context,
	pair ids.ID,
) (uint64, uint64, int64, error) {
	resp := new(PairConfigReply)
	err := cli.requester.SendRequest(
		ctx,
		"pairConfig",
		&PairConfigArgs{
			Pair: pair,
		},
		resp,
	)
	return resp.Amplification, resp.CommissionRate, resp.BlockTimeLast, err
}

func (cli *JSONRPCClient) Share(
	ctx context.Context,
	pair ids.ID,
	amount uint64,
) (uint64, uint64, error) {
	resp := new(ShareReply)
	err := cli.requester.SendRequest(
		ctx,
		"share",
		&ShareArgs{
			Pair:   pair,
			Amount: amount,
		},
		resp,
	)
	return resp.AmountX, resp.AmountY, err
}

func (cli *JSONRPCClient) Simulate(
	ctx context.Context,
	pair ids.ID,
	tokenIn ids.ID,
	amountIn uint64,
) (uint64, uint64, uint64, error) {
	resp := new(SimulateReply)
	err := cli.requester.SendRequest(
		ctx,
		"simulate",
		&SimulateArgs{
			Pair:     pair,
			TokenIn:  tokenIn,
			AmountIn: amountIn,
		},
		resp,
	)
	return resp.Return, resp.Spread, resp.Commission, err
}

func (cli *JSONRPCClient) ReverseSimulate(
	ctx context.Context,
	pair ids.ID,
	tokenOut ids.ID,
	amountOut uint64,
) (uint64, uint64, uint64, error) {
	resp := new(ReverseSimulateReply)
	err := cli.requester.SendRequest(
		ctx,
		"reverseSimulate",
		&ReverseSimulateArgs{
			Pair:      pair,
			TokenOut:  tokenOut,
			AmountOut: amountOut,
		},
		resp,
	)
	return resp.Offer, resp.Spread, resp.Commission, err
}

func (cli *JSONRPCClient) CumulativePrices(
	ctx context.Context,
	pair ids.ID,
) (uint64, uint64, uint64, uint64, uint64, int64, error) {
	resp := new(CumulativePricesReply)
	err := cli.requester.SendRequest(
		ctx,
		"cumulativePrices",
		&CumulativePricesArgs{
			Pair: pair,
		},
		resp,
	)
	return resp.ReserveX, resp.ReserveY, resp.TotalShare, resp.PriceXCumulative, resp.PriceYCumulative, resp.BlockTimeLast, err
}

func (cli *JSONRPCClient) Stake(
	ctx context.Context,
	pair ids.ID,
	addr string,
) (uint64, error) {
	resp := new(StakeReply)
	err := cli.requester.SendRequest(
		ctx,
		"stake",
		&StakeArgs{
			Pair:    pair,
			Address: addr,
		},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) WaitForBalance(
	ctx context.Context,
	addr string,
	asset ids.ID,
	min uint64,
) error {
	return rpc.Wait(ctx, func(ctx context.Context) (bool, error) {
		balance, err := cli.Balance(ctx, addr, asset)
		if err != nil {
			return false, err
		}
		shouldExit := balance >= min
		if !shouldExit {
			utils.Outf(
				"{{yellow}}waiting for %s balance: %s{{/}}\n",
				utils.FormatBalance(min),
				addr,
			)
		}
		return shouldExit, nil
	})
}

func (cli *JSONRPCClient) WaitForTransaction(ctx context.Context, txID ids.ID) (bool, error) {
	var success bool
	if err := rpc.Wait(ctx, func(ctx context.Context) (bool, error) {
		found, isuccess, _, err := cli.Tx(ctx, txID)
		if err != nil {
			return false, err
		}
		success = isuccess
		return found, nil
	}); err != nil {
		return false, err
	}
	return success, nil
}

var _ chain.Parser = (*Parser)(nil)

type Parser struct {
	chainID ids.ID
	genesis *genesis.Genesis
}

func (p *Parser) ChainID() ids.ID {
	return p.chainID
}

func (p *Parser) Rules(t int64) chain.Rules {
	return p.genesis.Rules(t)
}

func (*Parser) Registry() (chain.ActionRegistry, chain.AuthRegistry) {
	return consts.ActionRegistry, consts.AuthRegistry
}

func (cli *JSONRPCClient) Parser(ctx context.Context) (chain.Parser, error) {
	g, err := cli.Genesis(ctx)
	if err != nil {
		return nil, err
	}
	return &Parser{cli.chainID, g}, nil
}
