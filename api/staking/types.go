// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/builtin/staking/ledger"
	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/mts"
)

// Asset is a staked asset and its token binding.
type Asset struct {
	Asset       string      `json:"asset"`
	Address     mts.Address `json:"address"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Decimals    uint8       `json:"decimals"`
	TotalStaked *api.Amount `json:"totalStaked"`
}

// Contract summarizes the staking contract.
type Contract struct {
	Address       mts.Address `json:"address"`
	Admin         mts.Address `json:"admin"`
	Paused        bool        `json:"paused"`
	SchemaVersion uint64      `json:"schemaVersion"`
	Assets        []*Asset    `json:"assets"`
}

type Tier struct {
	Index          uint8       `json:"index"`
	MinStakeAmount *api.Amount `json:"minStakeAmount"`
	APY            uint64      `json:"apy"`
	LockPeriod     uint64      `json:"lockPeriod"`
}

func convertTier(index uint8, t *tier.Tier) *Tier {
	return &Tier{
		Index:          index,
		MinStakeAmount: api.NewAmount(t.MinStakeAmount),
		APY:            t.APY,
		LockPeriod:     t.LockPeriod,
	}
}

// PoolBalance is the reward pool balance of one asset.
type PoolBalance struct {
	Asset     string      `json:"asset"`
	Balance   *api.Amount `json:"balance"`
	Formatted string      `json:"formatted"`
}

// Stake is a position of a user, with the reward accrued until the query time.
type Stake struct {
	Index           uint64      `json:"index"`
	ID              uint64      `json:"id"`
	Asset           string      `json:"asset"`
	Tier            uint8       `json:"tier"`
	Principal       *api.Amount `json:"principal"`
	StartTime       uint64      `json:"startTime"`
	LastAccrualTime uint64      `json:"lastAccrualTime"`
	UnlockTime      uint64      `json:"unlockTime"`
	PendingReward   *api.Amount `json:"pendingReward"`
}

func convertStake(index uint64, pos *ledger.Position, t *tier.Tier) *Stake {
	return &Stake{
		Index:           index,
		ID:              pos.ID,
		Asset:           pos.Asset.String(),
		Tier:            pos.Tier,
		Principal:       api.NewAmount(pos.Principal),
		StartTime:       pos.StartTime,
		LastAccrualTime: pos.LastAccrualTime,
		UnlockTime:      pos.UnlockTime(t.LockPeriod),
	}
}

// Reward is the reward a position would pay at the given time.
type Reward struct {
	Asset  string      `json:"asset"`
	Amount *api.Amount `json:"amount"`
	At     uint64      `json:"at"`
}
