// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mts

import "math/big"

// Constants of the staking ledger.
const (
	SecondsPerDay  uint64 = 86400
	SecondsPerYear uint64 = SecondsPerDay * 365

	// BasisPoints is the denominator of APY values (1 bps = 1/10000).
	BasisPoints uint64 = 10000
)

// RewardDenominator is BasisPoints * SecondsPerYear.
var RewardDenominator = new(big.Int).Mul(
	new(big.Int).SetUint64(BasisPoints),
	new(big.Int).SetUint64(SecondsPerYear),
)
