// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardpool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/mts"
)

var ErrInsufficientPool = reverts.New("Insufficient reward pool")

var slotPool = solidity.Slot("reward-pool")

// Service holds one reward balance per asset. Balances only change through Fund and Debit.
type Service struct {
	balances [mts.AssetCount]*solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	s := &Service{}
	for _, asset := range mts.Assets {
		s.balances[asset] = solidity.NewUint256(sctx, mts.Blake2b(slotPool.Bytes(), []byte{byte(asset)}))
	}
	return s
}

func (s *Service) slot(asset mts.Asset) (*solidity.Uint256, error) {
	if !asset.Valid() {
		return nil, errors.Errorf("invalid asset %d", asset)
	}
	return s.balances[asset], nil
}

// Fund credits amount to the asset's balance.
func (s *Service) Fund(asset mts.Asset, amount *big.Int) error {
	slot, err := s.slot(asset)
	if err != nil {
		return err
	}
	return slot.Add(amount)
}

// Debit removes amount from the asset's balance, failing with ErrInsufficientPool
// and leaving the balance untouched when it cannot be covered in full.
func (s *Service) Debit(asset mts.Asset, amount *big.Int) error {
	slot, err := s.slot(asset)
	if err != nil {
		return err
	}
	if err := slot.Sub(amount); err != nil {
		if errors.Is(err, solidity.ErrUnderflow) {
			return ErrInsufficientPool
		}
		return err
	}
	return nil
}

// Balance returns the asset's balance.
func (s *Service) Balance(asset mts.Asset) (*big.Int, error) {
	slot, err := s.slot(asset)
	if err != nil {
		return nil, err
	}
	return slot.Get()
}

// Balances returns all balances indexed by asset.
func (s *Service) Balances() ([mts.AssetCount]*big.Int, error) {
	var out [mts.AssetCount]*big.Int
	for _, asset := range mts.Assets {
		b, err := s.balances[asset].Get()
		if err != nil {
			return out, err
		}
		out[asset] = b
	}
	return out, nil
}
