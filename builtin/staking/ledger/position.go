// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/vechain/mtstake/mts"
)

// Position is a single stake: principal locked in one asset under one tier.
type Position struct {
	ID              uint64
	Owner           mts.Address
	Asset           mts.Asset
	Tier            uint8
	Principal       *big.Int
	StartTime       uint64
	LastAccrualTime uint64
	Active          bool
}

// Copy returns a deep copy of the position.
func (p *Position) Copy() *Position {
	cpy := *p
	cpy.Principal = new(big.Int).Set(p.Principal)
	return &cpy
}

// Unlocked reports whether the lock period has elapsed at now.
func (p *Position) Unlocked(lockPeriod, now uint64) bool {
	return now >= p.StartTime && now-p.StartTime >= lockPeriod
}

// UnlockTime is the first timestamp at which the position can be closed.
func (p *Position) UnlockTime(lockPeriod uint64) uint64 {
	return p.StartTime + lockPeriod
}

type idKey uint64

func (k idKey) Bytes() []byte {
	return new(big.Int).SetUint64(uint64(k)).Bytes()
}
