// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/metastablevm/consts"
	"github.com/ava-labs/metastablevm/genesis"
	"github.com/ava-labs/metastablevm/pairs"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/storage"
	"github.com/ava-labs/metastablevm/utils"
)

const (
	JSONRPCEndpoint = "/metastableapi"

	pairsToSend = 128
)

type JSONRPCServer struct {
	c Controller
}

func NewJSONRPCServer(c Controller) *JSONRPCServer {
	return &JSONRPCServer{c}
}

type GenesisReply struct {
	Genesis *genesis.Genesis `json:"genesis"`
}

func (j *JSONRPCServer) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) (err error) {
	reply.Genesis = j.c.Genesis()
	return nil
}

type TxArgs struct {
	TxID ids.ID `json:"txId"`
}

type TxReply struct {
	Timestamp int64  `json:"timestamp"`
	Success   bool   `json:"success"`
	Units     uint64 `json:"units"`
}

func (j *JSONRPCServer) Tx(req *http.Request, args *TxArgs, reply *TxReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Tx")
	defer span.End()

	found, t, success, units, err := j.c.GetTransaction(ctx, args.TxID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTxNotFound
	}
	reply.Timestamp = t
	reply.Success = success
	reply.Units = units
	return nil
}

type AssetArgs struct {
	Asset ids.ID `json:"asset"`
}

type AssetReply struct {
	Symbol   []byte `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Metadata []byte `json:"metadata"`
	Supply   uint64 `json:"supply"`
	Owner    string `json:"owner"`
}

func (j *JSONRPCServer) Asset(req *http.Request, args *AssetArgs, reply *AssetReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Asset")
	defer span.End()

	exists, symbol, decimals, metadata, supply, owner, err := j.c.GetAssetFromState(ctx, args.Asset)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}
	reply.Symbol = symbol
	reply.Decimals = decimals
	reply.Metadata = metadata
	reply.Supply = supply
	reply.Owner = utils.Address(owner)
	return err
}

type BalanceArgs struct {
	Address string `json:"address"`
	Asset   ids.ID `json:"asset"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Balance")
	defer span.End()

	addr, err := utils.ParseAddress(args.Address)
	if err != nil {
		return err
	}
	balance, err := j.c.GetBalanceFromState(ctx, addr, args.Asset)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return err
}

type PairsReply struct {
	Pairs []*pairs.Pair `json:"pairs"`
}

func (j *JSONRPCServer) Pairs(req *http.Request, _ *struct{}, reply *PairsReply) error {
	_, span := j.c.Tracer().Start(req.Context(), "Server.Pairs")
	defer span.End()

	reply.Pairs = j.c.Pairs(pairsToSend)
	return nil
}

type PairArgs struct {
	Pair ids.ID `json:"pair"`
}

type PairReply struct {
	AssetX         ids.ID `json:"assetX"`
	AssetY         ids.ID `json:"assetY"`
	Amplification  uint64 `json:"amplification"`
	CommissionRate uint64 `json:"commissionRate"`
	Owner          string `json:"owner"`
	ShareAsset     ids.ID `json:"shareAsset"`
}

func (j *JSONRPCServer) Pair(req *http.Request, args *PairArgs, reply *PairReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Pair")
	defer span.End()

	pair, err := j.getPair(ctx, args.Pair)
	if err != nil {
		return err
	}
	reply.AssetX = pair.AssetX
	reply.AssetY = pair.AssetY
	reply.Amplification = pair.Amplification
	reply.CommissionRate = pair.CommissionRate
	reply.Owner = utils.Address(pair.Owner)
	// Shares are tracked as a standard asset under the pair ID.
	reply.ShareAsset = args.Pair
	return nil
}

type PoolArgs struct {
	Pair ids.ID `json:"pair"`
}

type PoolReply struct {
	AssetX     ids.ID `json:"assetX"`
	AssetY     ids.ID `json:"assetY"`
	ReserveX   uint64 `json:"reserveX"`
	ReserveY   uint64 `json:"reserveY"`
	TotalShare uint64 `json:"totalShare"`
}

func (j *JSONRPCServer) Pool(req *http.Request, args *PoolArgs, reply *PoolReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Pool")
	defer span.End()

	pair, pool, err := j.pairPool(ctx, args.Pair)
	if err != nil {
		return err
	}
	reply.AssetX = pair.AssetX
	reply.AssetY = pair.AssetY
	reply.ReserveX = pool.ReserveX
	reply.ReserveY = pool.ReserveY
	reply.TotalShare = pool.TotalShare
	return nil
}

type PairConfigArgs struct {
	Pair ids.ID `json:"pair"`
}

type PairConfigReply struct {
	Amplification  uint64 `json:"amplification"`
	CommissionRate uint64 `json:"commissionRate"`
	BlockTimeLast  int64  `json:"blockTimeLast"`
}

func (j *JSONRPCServer) PairConfig(req *http.Request, args *PairConfigArgs, reply *PairConfigReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.PairConfig")
	defer span.End()

	pair, err := j.getPair(ctx, args.Pair)
	if err != nil {
		return err
	}
	reply.Amplification = pair.Amplification
	reply.CommissionRate = pair.CommissionRate
	reply.BlockTimeLast = pair.BlockTimeLast
	return nil
}

type ShareArgs struct {
	Pair   ids.ID `json:"pair"`
	Amount uint64 `json:"amount"`
}

type ShareReply struct {
	AmountX uint64 `json:"amountX"`
	AmountY uint64 `json:"amountY"`
}

// Share previews the assets returned by withdrawing [Amount] shares at the
// current reserves.
func (j *JSONRPCServer) Share(req *http.Request, args *ShareArgs, reply *ShareReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Share")
	defer span.End()

	_, pool, err := j.pairPool(ctx, args.Pair)
	if err != nil {
		return err
	}
	reply.AmountX, reply.AmountY = pool.ShareValue(args.Amount)
	return nil
}

type SimulateArgs struct {
	Pair     ids.ID `json:"pair"`
	TokenIn  ids.ID `json:"tokenIn"`
	AmountIn uint64 `json:"amountIn"`
}

type SimulateReply struct {
	Return     uint64 `json:"return"`
	Spread     uint64 `json:"spread"`
	Commission uint64 `json:"commission"`
}

// Simulate prices a swap against current reserves without executing it.
func (j *JSONRPCServer) Simulate(req *http.Request, args *SimulateArgs, reply *SimulateReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Simulate")
	defer span.End()

	pair, pool, err := j.pairPool(ctx, args.Pair)
	if err != nil {
		return err
	}
	var offerIsX bool
	switch args.TokenIn {
	case pair.AssetX:
		offerIsX = true
	case pair.AssetY:
		offerIsX = false
	default:
		return ErrInvalidAsset
	}
	ret, spread, commission, err := pool.SwapPreview(offerIsX, args.AmountIn)
	if err != nil {
		return err
	}
	reply.Return = ret
	reply.Spread = spread
	reply.Commission = commission
	return nil
}

type ReverseSimulateArgs struct {
	Pair      ids.ID `json:"pair"`
	TokenOut  ids.ID `json:"tokenOut"`
	AmountOut uint64 `json:"amountOut"`
}

type ReverseSimulateReply struct {
	Offer      uint64 `json:"offer"`
	Spread     uint64 `json:"spread"`
	Commission uint64 `json:"commission"`
}

// ReverseSimulate finds the offer amount that produces [AmountOut] of
// [TokenOut] at current reserves.
func (j *JSONRPCServer) ReverseSimulate(req *http.Request, args *ReverseSimulateArgs, reply *ReverseSimulateReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.ReverseSimulate")
	defer span.End()

	pair, pool, err := j.pairPool(ctx, args.Pair)
	if err != nil {
		return err
	}
	var offerIsX bool
	switch args.TokenOut {
	case pair.AssetY:
		offerIsX = true
	case pair.AssetX:
		offerIsX = false
	default:
		return ErrInvalidAsset
	}
	offer, spread, commission, err := pool.ReverseSwapPreview(offerIsX, args.AmountOut)
	if err != nil {
		return err
	}
	reply.Offer = offer
	reply.Spread = spread
	reply.Commission = commission
	return nil
}

type CumulativePricesArgs struct {
	Pair ids.ID `json:"pair"`
}

type CumulativePricesReply struct {
	AssetX           ids.ID `json:"assetX"`
	AssetY           ids.ID `json:"assetY"`
	ReserveX         uint64 `json:"reserveX"`
	ReserveY         uint64 `json:"reserveY"`
	TotalShare       uint64 `json:"totalShare"`
	PriceXCumulative uint64 `json:"priceXCumulative"`
	PriceYCumulative uint64 `json:"priceYCumulative"`
	BlockTimeLast    int64  `json:"blockTimeLast"`
}

func (j *JSONRPCServer) CumulativePrices(req *http.Request, args *CumulativePricesArgs, reply *CumulativePricesReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.CumulativePrices")
	defer span.End()

	pair, pool, err := j.pairPool(ctx, args.Pair)
	if err != nil {
		return err
	}
	reply.AssetX = pair.AssetX
	reply.AssetY = pair.AssetY
	reply.ReserveX = pair.ReserveX
	reply.ReserveY = pair.ReserveY
	reply.TotalShare = pool.TotalShare
	reply.PriceXCumulative = pair.PriceXCumulative
	reply.PriceYCumulative = pair.PriceYCumulative
	reply.BlockTimeLast = pair.BlockTimeLast
	return nil
}

type StakeArgs struct {
	Pair    ids.ID `json:"pair"`
	Address string `json:"address"`
}

type StakeReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Stake(req *http.Request, args *StakeArgs, reply *StakeReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "Server.Stake")
	defer span.End()

	addr, err := utils.ParseAddress(args.Address)
	if err != nil {
		return err
	}
	stake, err := j.c.GetStakeFromState(ctx, addr, args.Pair)
	if err != nil {
		return err
	}
	reply.Amount = stake
	return nil
}

func (j *JSONRPCServer) getPair(ctx context.Context, pairID ids.ID) (*storage.Pair, error) {
	pair, err := j.c.GetPairFromState(ctx, pairID)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, ErrPairNotFound
	}
	return pair, nil
}

func (j *JSONRPCServer) assetDecimals(ctx context.Context, asset ids.ID) (uint8, error) {
	if asset == ids.Empty {
		return consts.Decimals, nil
	}
	exists, _, decimals, _, _, _, err := j.c.GetAssetFromState(ctx, asset)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrAssetNotFound
	}
	return decimals, nil
}

// pairPool loads a pair and assembles the pricing view used by previews. The
// share asset under the pair ID carries the outstanding share supply.
func (j *JSONRPCServer) pairPool(ctx context.Context, pairID ids.ID) (*storage.Pair, *pricing.Pool, error) {
	pair, err := j.getPair(ctx, pairID)
	if err != nil {
		return nil, nil, err
	}
	decimalsX, err := j.assetDecimals(ctx, pair.AssetX)
	if err != nil {
		return nil, nil, err
	}
	decimalsY, err := j.assetDecimals(ctx, pair.AssetY)
	if err != nil {
		return nil, nil, err
	}
	exists, _, _, _, supply, _, err := j.c.GetAssetFromState(ctx, pairID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrPairNotFound
	}
	return pair, &pricing.Pool{
		ReserveX:       pair.ReserveX,
		ReserveY:       pair.ReserveY,
		DecimalsX:      decimalsX,
		DecimalsY:      decimalsY,
		Amplification:  pair.Amplification,
		CommissionRate: pair.CommissionRate,
		TotalShare:     supply,
	}, nil
}
