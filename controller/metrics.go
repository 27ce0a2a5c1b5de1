// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	ametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/metastablevm/consts"
)

type metrics struct {
	createAsset prometheus.Counter
	mintAsset   prometheus.Counter

	transfer prometheus.Counter

	createPair prometheus.Counter
	updatePair prometheus.Counter

	provideLiquidity  prometheus.Counter
	withdrawLiquidity prometheus.Counter
	unstakeShares     prometheus.Counter

	swap prometheus.Counter
}

func newMetrics(gatherer ametrics.MultiGatherer) (*metrics, error) {
	m := &metrics{
		createAsset: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "create_asset",
			Help:      "number of create asset actions",
		}),
		mintAsset: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "mint_asset",
			Help:      "number of mint asset actions",
		}),
		transfer: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "transfer",
			Help:      "number of transfer actions",
		}),
		createPair: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "create_pair",
			Help:      "number of create pair actions",
		}),
		updatePair: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "update_pair",
			Help:      "number of update pair actions",
		}),
		provideLiquidity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "provide_liquidity",
			Help:      "number of provide liquidity actions",
		}),
		withdrawLiquidity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "withdraw_liquidity",
			Help:      "number of withdraw liquidity actions",
		}),
		unstakeShares: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "unstake_shares",
			Help:      "number of unstake shares actions",
		}),
		swap: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "actions",
			Name:      "swap",
			Help:      "number of swap actions",
		}),
	}
	r := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.createAsset),
		r.Register(m.mintAsset),

		r.Register(m.transfer),

		r.Register(m.createPair),
		r.Register(m.updatePair),

		r.Register(m.provideLiquidity),
		r.Register(m.withdrawLiquidity),
		r.Register(m.unstakeShares),

		r.Register(m.swap),
		gatherer.Register(consts.Name, r),
	)
	return m, errs.Err
}
