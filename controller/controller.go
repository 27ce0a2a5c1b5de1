// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"context"
	"fmt"
	"net/http"

	ametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/snow"
	"github.com/ava-labs/hypersdk/builder"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/gossiper"
	"github.com/ava-labs/hypersdk/pebble"
	hrpc "github.com/ava-labs/hypersdk/rpc"
	hutils "github.com/ava-labs/hypersdk/utils"
	"github.com/ava-labs/hypersdk/vm"
	"go.uber.org/zap"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/auth"
	"github.com/ava-labs/metastablevm/config"
	"github.com/ava-labs/metastablevm/consts"
	"github.com/ava-labs/metastablevm/genesis"
	"github.com/ava-labs/metastablevm/pairs"
	_ "github.com/ava-labs/metastablevm/registry" // ensure registry populated
	"github.com/ava-labs/metastablevm/rpc"
	"github.com/ava-labs/metastablevm/storage"
	"github.com/ava-labs/metastablevm/version"
)

const (
	blockDB = "blockdb"
	stateDB = "statedb"
	metaDB  = "metadb"
)

var _ vm.Controller = (*Controller)(nil)

type Controller struct {
	inner *vm.VM

	snowCtx *snow.Context
	genesis *genesis.Genesis
	config  *config.Config

	metrics *metrics

	metaDB database.Database

	pairs *pairs.Tracker
}

func New() *vm.VM {
	return vm.New(&Controller{}, version.Version)
}

func (c *Controller) Initialize(
	inner *vm.VM,
	snowCtx *snow.Context,
	gatherer ametrics.MultiGatherer,
	genesisBytes []byte,
	upgradeBytes []byte,
	configBytes []byte,
) (
	vm.Config,
	vm.Genesis,
	builder.Builder,
	gossiper.Gossiper,
	database.Database,
	database.Database,
	vm.Handlers,
	chain.ActionRegistry,
	chain.AuthRegistry,
	error,
) {
	c.inner = inner
	c.snowCtx = snowCtx

	// Instantiate metrics
	var err error
	c.metrics, err = newMetrics(gatherer)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}

	// Load config and genesis
	c.config, err = config.New(c.snowCtx.NodeID, configBytes)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	c.snowCtx.Log.SetLevel(c.config.GetLogLevel())
	snowCtx.Log.Info("initialized config", zap.Bool("loaded", c.config.Loaded()), zap.Any("contents", c.config))

	c.genesis, err = genesis.New(genesisBytes, upgradeBytes)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, fmt.Errorf(
			"unable to read genesis: %w",
			err,
		)
	}
	snowCtx.Log.Info("loaded genesis", zap.Any("genesis", c.genesis))

	// Create DBs
	cfg := pebble.NewDefaultConfig()
	blockPath, err := hutils.InitSubDirectory(snowCtx.ChainDataDir, blockDB)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	blockDB, err := pebble.New(blockPath, cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	statePath, err := hutils.InitSubDirectory(snowCtx.ChainDataDir, stateDB)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	stateDB, err := pebble.New(statePath, cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	metaPath, err := hutils.InitSubDirectory(snowCtx.ChainDataDir, metaDB)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	c.metaDB, err = pebble.New(metaPath, cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}

	// Create handlers
	//
	// hypersdk handler are initiatlized automatically, you just need to
	// initialize custom handlers here.
	apis := map[string]http.Handler{}
	jsonRPCHandler, err := hrpc.NewJSONRPCHandler(
		consts.Name,
		rpc.NewJSONRPCServer(c),
	)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	apis[rpc.JSONRPCEndpoint] = jsonRPCHandler

	// Create builder and gossiper
	var (
		build  builder.Builder
		gossip gossiper.Gossiper
	)
	if c.config.TestMode {
		c.inner.Logger().Info("running build and gossip in test mode")
		build = builder.NewManual(inner)
		gossip = gossiper.NewManual(inner)
	} else {
		build = builder.NewTime(inner)
		gcfg := gossiper.DefaultProposerConfig()
		gcfg.GossipInterval = c.config.GossipInterval
		gcfg.GossipMaxSize = c.config.GossipMaxSize
		gcfg.GossipProposerDiff = c.config.GossipProposerDiff
		gcfg.GossipProposerDepth = c.config.GossipProposerDepth
		gcfg.BuildProposerDiff = c.config.BuildProposerDiff
		gcfg.VerifyTimeout = c.config.VerifyTimeout
		gossip = gossiper.NewProposer(inner, gcfg)
	}

	// Initialize tracker used to serve pair queries
	c.pairs = pairs.New(c, c.config.TrackedPairs)
	return c.config, c.genesis, build, gossip, blockDB, stateDB, apis, consts.ActionRegistry, consts.AuthRegistry, nil
}

func (c *Controller) Rules(t int64) chain.Rules {
	// TODO: extend with [UpgradeBytes]
	return c.genesis.Rules(t)
}

func (c *Controller) Accepted(ctx context.Context, blk *chain.StatelessBlock) error {
	batch := c.metaDB.NewBatch()
	defer batch.Reset()

	results := blk.Results()
	for i, tx := range blk.Txs {
		result := results[i]
		err := storage.StoreTransaction(
			ctx,
			batch,
			tx.ID(),
			blk.Tmstmp,
			result.Success,
			result.Units,
		)
		if err != nil {
			return err
		}
		if result.Success {
			switch action := tx.Action.(type) {
			case *actions.CreateAsset:
				c.metrics.createAsset.Inc()
			case *actions.MintAsset:
				c.metrics.mintAsset.Inc()
			case *actions.Transfer:
				c.metrics.transfer.Inc()
			case *actions.CreatePair:
				c.metrics.createPair.Inc()
				c.pairs.Add(tx.ID(), auth.GetActor(tx.Auth), action)
			case *actions.UpdatePair:
				c.metrics.updatePair.Inc()
				c.pairs.UpdateParams(action.Pair, action.Amplification, action.CommissionRate)
			case *actions.ProvideLiquidity:
				c.metrics.provideLiquidity.Inc()
				liquidityResult, err := actions.UnmarshalLiquidityResult(result.Output)
				if err != nil {
					// This should never happen
					return err
				}
				c.pairs.Deposit(action, liquidityResult.Minted)
			case *actions.WithdrawLiquidity:
				c.metrics.withdrawLiquidity.Inc()
				withdrawResult, err := actions.UnmarshalWithdrawResult(result.Output)
				if err != nil {
					// This should never happen
					return err
				}
				c.pairs.Withdraw(action, withdrawResult.AmountX, withdrawResult.AmountY)
			case *actions.Swap:
				c.metrics.swap.Inc()
				swapResult, err := actions.UnmarshalSwapResult(result.Output)
				if err != nil {
					// This should never happen
					return err
				}
				c.pairs.Fill(action, swapResult.Return)
			case *actions.UnstakeShares:
				c.metrics.unstakeShares.Inc()
			}
		}
	}
	return batch.Write()
}

func (*Controller) Rejected(context.Context, *chain.StatelessBlock) error {
	return nil
}

func (*Controller) Shutdown(context.Context) error {
	// Do not close any databases provided during initialization. The VM will
	// close any databases your provided.
	return nil
}
