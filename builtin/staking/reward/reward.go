// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes simple-interest accrual of stake positions.
package reward

import (
	"math/big"

	"github.com/vechain/mtstake/mts"
)

// Accrued returns principal * apy * (now - lastAccrual) / (BasisPoints * SecondsPerYear),
// rounded down. It is zero when now is not after lastAccrual.
func Accrued(principal *big.Int, apy uint64, lastAccrual, now uint64) *big.Int {
	if principal == nil || principal.Sign() <= 0 || apy == 0 || now <= lastAccrual {
		return new(big.Int)
	}
	elapsed := new(big.Int).SetUint64(now - lastAccrual)

	r := new(big.Int).Mul(principal, new(big.Int).SetUint64(apy))
	r.Mul(r, elapsed)
	return r.Quo(r, mts.RewardDenominator)
}
