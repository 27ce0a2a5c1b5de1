// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/ava-labs/hypersdk/chain"
	"github.com/ava-labs/hypersdk/consts"
	"github.com/ava-labs/hypersdk/crypto"

	"github.com/ava-labs/metastablevm/utils"
)

type ReadState func(context.Context, [][]byte) ([][]byte, []error)

// Metadata
// 0x0/ (tx)
//   -> [txID] => timestamp|success|units
//
// State
// 0x0/ (balance)
//   -> [owner|asset] => balance
// 0x1/ (assets)
//   -> [asset] => symbolLen|symbol|decimals|metadataLen|metadata|supply|owner
// 0x2/ (pairs)
//   -> [pairID] => assetX|assetY|amplification|commissionRate|owner|reserveX|reserveY|priceXCumulative|priceYCumulative|blockTimeLast
// 0x3/ (stakes)
//   -> [owner|pairID] => amount

const (
	// metaDB
	txPrefix = 0x0

	// stateDB
	balancePrefix = 0x0
	assetPrefix   = 0x1
	pairPrefix    = 0x2
	stakePrefix   = 0x3
)

const (
	BalanceChunks uint16 = 1
	AssetChunks   uint16 = 5
	PairChunks    uint16 = 3
	StakeChunks   uint16 = 1

	pairValueLen = consts.IDLen*2 + consts.Uint64Len*7 + crypto.PublicKeyLen
)

var (
	failureByte = byte(0x0)
	successByte = byte(0x1)

	balanceKeyPool = sync.Pool{
		New: func() any {
			return make([]byte, 1+crypto.PublicKeyLen+consts.IDLen+consts.Uint16Len)
		},
	}
	stakeKeyPool = sync.Pool{
		New: func() any {
			return make([]byte, 1+crypto.PublicKeyLen+consts.IDLen+consts.Uint16Len)
		},
	}
)

// [txPrefix] + [txID]
func TxKey(id ids.ID) (k []byte) {
	k = make([]byte, 1+consts.IDLen)
	k[0] = txPrefix
	copy(k[1:], id[:])
	return
}

func StoreTransaction(
	_ context.Context,
	db database.KeyValueWriter,
	id ids.ID,
	t int64,
	success bool,
	units uint64,
) error {
	k := TxKey(id)
	v := make([]byte, consts.Uint64Len+1+consts.Uint64Len)
	binary.BigEndian.PutUint64(v, uint64(t))
	if success {
		v[consts.Uint64Len] = successByte
	} else {
		v[consts.Uint64Len] = failureByte
	}
	binary.BigEndian.PutUint64(v[consts.Uint64Len+1:], units)
	return db.Put(k, v)
}

func GetTransaction(
	_ context.Context,
	db database.KeyValueReader,
	id ids.ID,
) (bool, int64, bool, uint64, error) {
	k := TxKey(id)
	v, err := db.Get(k)
	if errors.Is(err, database.ErrNotFound) {
		return false, 0, false, 0, nil
	}
	if err != nil {
		return false, 0, false, 0, err
	}
	t := int64(binary.BigEndian.Uint64(v))
	success := true
	if v[consts.Uint64Len] == failureByte {
		success = false
	}
	units := binary.BigEndian.Uint64(v[consts.Uint64Len+1:])
	return true, t, success, units, nil
}

// [balancePrefix] + [address] + [asset]
func BalanceKey(pk crypto.PublicKey, asset ids.ID) (k []byte) {
	k = balanceKeyPool.Get().([]byte)
	k[0] = balancePrefix
	copy(k[1:], pk[:])
	copy(k[1+crypto.PublicKeyLen:], asset[:])
	binary.BigEndian.PutUint16(k[1+crypto.PublicKeyLen+consts.IDLen:], BalanceChunks)
	return
}

func GetBalance(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	asset ids.ID,
) (uint64, error) {
	dbKey, bal, _, err := getBalance(ctx, db, pk, asset)
	balanceKeyPool.Put(dbKey)
	return bal, err
}

func getBalance(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	asset ids.ID,
) ([]byte, uint64, bool, error) {
	k := BalanceKey(pk, asset)
	bal, exists, err := innerGetBalance(db.GetValue(ctx, k))
	return k, bal, exists, err
}

// Used to serve RPC queries
func GetBalanceFromState(
	ctx context.Context,
	f ReadState,
	pk crypto.PublicKey,
	asset ids.ID,
) (uint64, error) {
	k := BalanceKey(pk, asset)
	values, errs := f(ctx, [][]byte{k})
	bal, _, err := innerGetBalance(values[0], errs[0])
	balanceKeyPool.Put(k)
	return bal, err
}

func innerGetBalance(
	v []byte,
	err error,
) (uint64, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(v), true, nil
}

func SetBalance(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	asset ids.ID,
	balance uint64,
) error {
	k := BalanceKey(pk, asset)
	return setBalance(ctx, db, k, balance)
}

func setBalance(
	ctx context.Context,
	db chain.Database,
	dbKey []byte,
	balance uint64,
) error {
	return db.Insert(ctx, dbKey, binary.BigEndian.AppendUint64(nil, balance))
}

func AddBalance(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	asset ids.ID,
	amount uint64,
	create bool,
) error {
	dbKey, bal, exists, err := getBalance(ctx, db, pk, asset)
	if err != nil {
		return err
	}
	// Don't add balance if account doesn't exist. This
	// can be useful when processing fee refunds.
	if !exists && !create {
		return nil
	}
	nbal, err := smath.Add64(bal, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not add balance (asset=%s, bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			asset,
			bal,
			utils.Address(pk),
			amount,
		)
	}
	return setBalance(ctx, db, dbKey, nbal)
}

func SubBalance(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	asset ids.ID,
	amount uint64,
) error {
	dbKey, bal, _, err := getBalance(ctx, db, pk, asset)
	if err != nil {
		return err
	}
	nbal, err := smath.Sub64(bal, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not subtract balance (asset=%s, bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			asset,
			bal,
			utils.Address(pk),
			amount,
		)
	}
	if nbal == 0 {
		// If there is no balance left, we should delete the record instead of
		// setting it to 0.
		return db.Remove(ctx, dbKey)
	}
	return setBalance(ctx, db, dbKey, nbal)
}

// [assetPrefix] + [asset]
func AssetKey(asset ids.ID) (k []byte) {
	k = make([]byte, 1+consts.IDLen+consts.Uint16Len)
	k[0] = assetPrefix
	copy(k[1:], asset[:])
	binary.BigEndian.PutUint16(k[1+consts.IDLen:], AssetChunks)
	return
}

// Used to serve RPC queries
func GetAssetFromState(
	ctx context.Context,
	f ReadState,
	asset ids.ID,
) (bool, []byte, uint8, []byte, uint64, crypto.PublicKey, error) {
	values, errs := f(ctx, [][]byte{AssetKey(asset)})
	return innerGetAsset(values[0], errs[0])
}

func GetAsset(
	ctx context.Context,
	db chain.Database,
	asset ids.ID,
) (bool, []byte, uint8, []byte, uint64, crypto.PublicKey, error) {
	k := AssetKey(asset)
	return innerGetAsset(db.GetValue(ctx, k))
}

func innerGetAsset(
	v []byte,
	err error,
) (bool, []byte, uint8, []byte, uint64, crypto.PublicKey, error) {
	if errors.Is(err, database.ErrNotFound) {
		return false, nil, 0, nil, 0, crypto.EmptyPublicKey, nil
	}
	if err != nil {
		return false, nil, 0, nil, 0, crypto.EmptyPublicKey, err
	}
	symbolLen := binary.BigEndian.Uint16(v)
	symbol := v[consts.Uint16Len : consts.Uint16Len+symbolLen]
	decimals := v[consts.Uint16Len+symbolLen]
	metadataStart := consts.Uint16Len + symbolLen + 1
	metadataLen := binary.BigEndian.Uint16(v[metadataStart:])
	metadata := v[metadataStart+consts.Uint16Len : metadataStart+consts.Uint16Len+metadataLen]
	supplyStart := metadataStart + consts.Uint16Len + metadataLen
	supply := binary.BigEndian.Uint64(v[supplyStart:])
	var pk crypto.PublicKey
	copy(pk[:], v[supplyStart+consts.Uint64Len:])
	return true, symbol, decimals, metadata, supply, pk, nil
}

func SetAsset(
	ctx context.Context,
	db chain.Database,
	asset ids.ID,
	symbol []byte,
	decimals uint8,
	metadata []byte,
	supply uint64,
	owner crypto.PublicKey,
) error {
	k := AssetKey(asset)
	symbolLen := len(symbol)
	metadataLen := len(metadata)
	v := make([]byte, consts.Uint16Len+symbolLen+1+consts.Uint16Len+metadataLen+consts.Uint64Len+crypto.PublicKeyLen)
	binary.BigEndian.PutUint16(v, uint16(symbolLen))
	copy(v[consts.Uint16Len:], symbol)
	v[consts.Uint16Len+symbolLen] = decimals
	metadataStart := consts.Uint16Len + symbolLen + 1
	binary.BigEndian.PutUint16(v[metadataStart:], uint16(metadataLen))
	copy(v[metadataStart+consts.Uint16Len:], metadata)
	supplyStart := metadataStart + consts.Uint16Len + metadataLen
	binary.BigEndian.PutUint64(v[supplyStart:], supply)
	copy(v[supplyStart+consts.Uint64Len:], owner[:])
	return db.Insert(ctx, k, v)
}

// Pair is the persisted configuration and economic state of a metastable
// pair. Reserves and cumulative prices mutate on every liquidity event;
// everything else is fixed at creation except through [UpdatePair].
type Pair struct {
	AssetX ids.ID
	AssetY ids.ID

	Amplification  uint64
	CommissionRate uint64
	Owner          crypto.PublicKey

	ReserveX uint64
	ReserveY uint64

	PriceXCumulative uint64
	PriceYCumulative uint64
	BlockTimeLast    int64
}

// [pairPrefix] + [pairID]
func PairKey(pair ids.ID) (k []byte) {
	k = make([]byte, 1+consts.IDLen+consts.Uint16Len)
	k[0] = pairPrefix
	copy(k[1:], pair[:])
	binary.BigEndian.PutUint16(k[1+consts.IDLen:], PairChunks)
	return
}

func SetPair(
	ctx context.Context,
	db chain.Database,
	pair ids.ID,
	p *Pair,
) error {
	k := PairKey(pair)
	v := make([]byte, pairValueLen)
	offset := 0
	copy(v[offset:], p.AssetX[:])
	offset += consts.IDLen
	copy(v[offset:], p.AssetY[:])
	offset += consts.IDLen
	binary.BigEndian.PutUint64(v[offset:], p.Amplification)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], p.CommissionRate)
	offset += consts.Uint64Len
	copy(v[offset:], p.Owner[:])
	offset += crypto.PublicKeyLen
	binary.BigEndian.PutUint64(v[offset:], p.ReserveX)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], p.ReserveY)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], p.PriceXCumulative)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], p.PriceYCumulative)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], uint64(p.BlockTimeLast))
	return db.Insert(ctx, k, v)
}

func GetPair(
	ctx context.Context,
	db chain.Database,
	pair ids.ID,
) (*Pair, error) {
	k := PairKey(pair)
	return innerGetPair(db.GetValue(ctx, k))
}

// Used to serve RPC queries
func GetPairFromState(
	ctx context.Context,
	f ReadState,
	pair ids.ID,
) (*Pair, error) {
	values, errs := f(ctx, [][]byte{PairKey(pair)})
	return innerGetPair(values[0], errs[0])
}

func innerGetPair(
	v []byte,
	err error,
) (*Pair, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Pair
	offset := 0
	copy(p.AssetX[:], v[offset:])
	offset += consts.IDLen
	copy(p.AssetY[:], v[offset:])
	offset += consts.IDLen
	p.Amplification = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	p.CommissionRate = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	copy(p.Owner[:], v[offset:])
	offset += crypto.PublicKeyLen
	p.ReserveX = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	p.ReserveY = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	p.PriceXCumulative = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	p.PriceYCumulative = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	p.BlockTimeLast = int64(binary.BigEndian.Uint64(v[offset:]))
	return &p, nil
}

// [stakePrefix] + [address] + [pairID]
func StakeKey(pk crypto.PublicKey, pair ids.ID) (k []byte) {
	k = stakeKeyPool.Get().([]byte)
	k[0] = stakePrefix
	copy(k[1:], pk[:])
	copy(k[1+crypto.PublicKeyLen:], pair[:])
	binary.BigEndian.PutUint16(k[1+crypto.PublicKeyLen+consts.IDLen:], StakeChunks)
	return
}

func GetStake(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	pair ids.ID,
) (uint64, error) {
	dbKey, stake, err := getStake(ctx, db, pk, pair)
	stakeKeyPool.Put(dbKey)
	return stake, err
}

func getStake(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	pair ids.ID,
) ([]byte, uint64, error) {
	k := StakeKey(pk, pair)
	stake, _, err := innerGetBalance(db.GetValue(ctx, k))
	return k, stake, err
}

// Used to serve RPC queries
func GetStakeFromState(
	ctx context.Context,
	f ReadState,
	pk crypto.PublicKey,
	pair ids.ID,
) (uint64, error) {
	k := StakeKey(pk, pair)
	values, errs := f(ctx, [][]byte{k})
	stake, _, err := innerGetBalance(values[0], errs[0])
	stakeKeyPool.Put(k)
	return stake, err
}

func AddStake(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	pair ids.ID,
	amount uint64,
) error {
	dbKey, stake, err := getStake(ctx, db, pk, pair)
	if err != nil {
		return err
	}
	nstake, err := smath.Add64(stake, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not add stake (pair=%s, stake=%d, addr=%v, amount=%d)",
			ErrInvalidStake,
			pair,
			stake,
			utils.Address(pk),
			amount,
		)
	}
	return db.Insert(ctx, dbKey, binary.BigEndian.AppendUint64(nil, nstake))
}

func SubStake(
	ctx context.Context,
	db chain.Database,
	pk crypto.PublicKey,
	pair ids.ID,
	amount uint64,
) error {
	dbKey, stake, err := getStake(ctx, db, pk, pair)
	if err != nil {
		return err
	}
	nstake, err := smath.Sub64(stake, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not subtract stake (pair=%s, stake=%d, addr=%v, amount=%d)",
			ErrInvalidStake,
			pair,
			stake,
			utils.Address(pk),
			amount,
		)
	}
	if nstake == 0 {
		// If there is no stake left, we should delete the record instead of
		// setting it to 0.
		return db.Remove(ctx, dbKey)
	}
	return db.Insert(ctx, dbKey, binary.BigEndian.AppendUint64(nil, nstake))
}
