// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pairs

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/hypersdk/crypto"

	"github.com/ava-labs/metastablevm/actions"
	"github.com/ava-labs/metastablevm/pricing"
	"github.com/ava-labs/metastablevm/utils"
)

const allPairs = "*"

// Pair is the in-memory view of a tracked pair, refreshed as accepted blocks
// mutate it.
type Pair struct {
	ID     ids.ID `json:"id"`
	Owner  string `json:"owner"` // we always send address over RPC
	AssetX ids.ID `json:"assetX"`
	AssetY ids.ID `json:"assetY"`

	Amplification  uint64 `json:"amplification"`
	CommissionRate uint64 `json:"commissionRate"`

	ReserveX   uint64 `json:"reserveX"`
	ReserveY   uint64 `json:"reserveY"`
	TotalShare uint64 `json:"totalShare"`
}

type Tracker struct {
	c Controller

	pairs   map[ids.ID]*Pair
	tracked map[ids.ID]bool
	l       sync.RWMutex

	trackAll bool
}

func New(c Controller, trackedPairs []string) *Tracker {
	tracked := map[ids.ID]bool{}
	trackAll := false
	if len(trackedPairs) == 1 && trackedPairs[0] == allPairs {
		trackAll = true
		c.Logger().Info("tracking all pairs")
	} else {
		for _, raw := range trackedPairs {
			pair, err := ids.FromString(raw)
			if err != nil {
				c.Logger().Warn("unable to parse tracked pair", zap.String("pair", raw), zap.Error(err))
				continue
			}
			tracked[pair] = true
			c.Logger().Info("tracking pair", zap.Stringer("pair", pair))
		}
	}
	return &Tracker{
		c:        c,
		pairs:    map[ids.ID]*Pair{},
		tracked:  tracked,
		trackAll: trackAll,
	}
}

func (t *Tracker) Add(txID ids.ID, owner crypto.PublicKey, action *actions.CreatePair) {
	t.l.Lock()
	defer t.l.Unlock()

	if !t.trackAll && !t.tracked[txID] {
		return
	}
	if t.trackAll {
		t.c.Logger().Info("tracking pair", zap.Stringer("pair", txID))
	}
	t.pairs[txID] = &Pair{
		ID:             txID,
		Owner:          utils.Address(owner),
		AssetX:         action.AssetX,
		AssetY:         action.AssetY,
		Amplification:  action.Amplification,
		CommissionRate: action.CommissionRate,
	}
}

func (t *Tracker) UpdateParams(id ids.ID, amplification uint64, commissionRate uint64) {
	t.l.Lock()
	defer t.l.Unlock()

	p, ok := t.pairs[id]
	if !ok {
		return
	}
	p.Amplification = amplification
	p.CommissionRate = commissionRate
}

func (t *Tracker) Deposit(action *actions.ProvideLiquidity, minted uint64) {
	t.l.Lock()
	defer t.l.Unlock()

	p, ok := t.pairs[action.Pair]
	if !ok {
		return
	}
	if p.TotalShare == 0 {
		// First deposit also locks the minimum liquidity floor.
		p.TotalShare = pricing.MinimumLiquidity
	}
	p.ReserveX += action.AmountX
	p.ReserveY += action.AmountY
	p.TotalShare += minted
}

func (t *Tracker) Withdraw(action *actions.WithdrawLiquidity, refundX uint64, refundY uint64) {
	t.l.Lock()
	defer t.l.Unlock()

	p, ok := t.pairs[action.Pair]
	if !ok {
		return
	}
	p.ReserveX -= refundX
	p.ReserveY -= refundY
	p.TotalShare -= action.Shares
}

func (t *Tracker) Fill(action *actions.Swap, ret uint64) {
	t.l.Lock()
	defer t.l.Unlock()

	p, ok := t.pairs[action.Pair]
	if !ok {
		return
	}
	if action.OfferAsset == p.AssetX {
		p.ReserveX += action.AmountIn
		p.ReserveY -= ret
	} else {
		p.ReserveY += action.AmountIn
		p.ReserveX -= ret
	}
}

// Pairs returns up to [limit] tracked pair views.
func (t *Tracker) Pairs(limit int) []*Pair {
	t.l.RLock()
	defer t.l.RUnlock()

	pairs := make([]*Pair, 0, limit)
	for _, p := range t.pairs {
		cp := *p
		pairs = append(pairs, &cp)
		if len(pairs) >= limit {
			break
		}
	}
	return pairs
}

// Pair returns the tracked view of [id], if any.
func (t *Tracker) Pair(id ids.ID) *Pair {
	t.l.RLock()
	defer t.l.RUnlock()

	p, ok := t.pairs[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}
