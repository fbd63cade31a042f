// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events builds and decodes the logs emitted by the staking contract.
package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/abi"
	"github.com/vechain/mtstake/builtin/gen"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// ABI of the staking contract events.
var ABI = abi.MustNew(gen.MustABI("Staking"))

var (
	stakedEvent           = mustEvent("Staked")
	unstakedEvent         = mustEvent("Unstaked")
	rewardClaimedEvent    = mustEvent("RewardClaimed")
	rewardFundsAddedEvent = mustEvent("RewardFundsAdded")
	pausedEvent           = mustEvent("Paused")
	unpausedEvent         = mustEvent("Unpaused")
	adminTransferredEvent = mustEvent("AdminTransferred")
)

func mustEvent(name string) *abi.Event {
	ev, ok := ABI.EventByName(name)
	if !ok {
		panic("event not found: " + name)
	}
	return ev
}

// build panics on encoding failure, which only happens on a type mismatch with the ABI.
func build(contract mts.Address, ev *abi.Event, indexed []any, data ...any) *tx.Event {
	topics, err := ev.Topics(indexed...)
	if err != nil {
		panic(err)
	}
	encoded, err := ev.Encode(data...)
	if err != nil {
		panic(errors.Wrapf(err, "encode %s", ev.Name()))
	}
	return &tx.Event{
		Address: contract,
		Topics:  topics,
		Data:    encoded,
	}
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func Staked(contract, user mts.Address, amount *big.Int, asset mts.Asset, tier uint8) *tx.Event {
	return build(contract, stakedEvent, []any{common.Address(user)}, amountOrZero(amount), uint8(asset), tier)
}

func Unstaked(contract, user mts.Address, amount *big.Int, asset mts.Asset) *tx.Event {
	return build(contract, unstakedEvent, []any{common.Address(user)}, amountOrZero(amount), uint8(asset))
}

func RewardClaimed(contract, user mts.Address, amount *big.Int, asset mts.Asset) *tx.Event {
	return build(contract, rewardClaimedEvent, []any{common.Address(user)}, amountOrZero(amount), uint8(asset))
}

func RewardFundsAdded(contract, admin mts.Address, amounts [mts.AssetCount]*big.Int) *tx.Event {
	return build(contract, rewardFundsAddedEvent, []any{common.Address(admin)},
		amountOrZero(amounts[mts.AssetA]),
		amountOrZero(amounts[mts.AssetB]),
		amountOrZero(amounts[mts.AssetC]),
	)
}

func Paused(contract, account mts.Address) *tx.Event {
	return build(contract, pausedEvent, nil, common.Address(account))
}

func Unpaused(contract, account mts.Address) *tx.Event {
	return build(contract, unpausedEvent, nil, common.Address(account))
}

func AdminTransferred(contract, previous, next mts.Address) *tx.Event {
	return build(contract, adminTransferredEvent, []any{common.Address(previous), common.Address(next)})
}

// Decode resolves ev against the staking ABI and returns the event name with its fields.
func Decode(ev *tx.Event) (string, map[string]any, error) {
	if len(ev.Topics) == 0 {
		return "", nil, errors.New("missing event id")
	}
	def, ok := ABI.EventByID(ev.Topics[0])
	if !ok {
		return "", nil, errors.Errorf("unknown event %v", ev.Topics[0])
	}
	fields, err := def.DecodeMap(ev.Topics, ev.Data)
	if err != nil {
		return "", nil, errors.Wrapf(err, "decode %s", def.Name())
	}
	return def.Name(), fields, nil
}
