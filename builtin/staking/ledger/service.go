// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/mts"
)

var (
	ErrNotFound     = reverts.New("Invalid stake index")
	ErrNotOwner     = reverts.New("Not stake owner")
	ErrLockNotEnded = reverts.New("Lock period not ended")
	ErrZeroAmount   = reverts.New("Amount must be greater than zero")
)

var (
	slotPositions = solidity.Slot("positions")
	slotOwners    = solidity.Slot("position-owners")
	slotSequence  = solidity.Slot("position-seq")
	slotStaked    = solidity.Slot("total-staked")
)

// Service keeps the active positions of every user, ordered by creation.
// A position is addressed by its index in the owner's list; closing removes it
// and shifts later entries down by one.
type Service struct {
	positions *solidity.Mapping[mts.Address, []*Position]
	owners    *solidity.Mapping[idKey, mts.Address]
	sequence  *solidity.Raw[uint64]
	staked    [mts.AssetCount]*solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	s := &Service{
		positions: solidity.NewMapping[mts.Address, []*Position](sctx, slotPositions),
		owners:    solidity.NewMapping[idKey, mts.Address](sctx, slotOwners),
		sequence:  solidity.NewRaw[uint64](sctx, slotSequence),
	}
	for _, asset := range mts.Assets {
		s.staked[asset] = solidity.NewUint256(sctx, mts.Blake2b(slotStaked.Bytes(), []byte{byte(asset)}))
	}
	return s
}

// Open appends a new active position for owner.
func (s *Service) Open(owner mts.Address, asset mts.Asset, tier uint8, amount *big.Int, now uint64) (*Position, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if !asset.Valid() {
		return nil, errors.Errorf("invalid asset %d", asset)
	}
	list, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	id, err := s.sequence.Get()
	if err != nil {
		return nil, err
	}
	id++

	pos := &Position{
		ID:              id,
		Owner:           owner,
		Asset:           asset,
		Tier:            tier,
		Principal:       new(big.Int).Set(amount),
		StartTime:       now,
		LastAccrualTime: now,
		Active:          true,
	}
	if err := s.staked[asset].Add(amount); err != nil {
		return nil, errors.Wrap(err, "total staked")
	}
	if err := s.sequence.Set(id); err != nil {
		return nil, err
	}
	if err := s.owners.Set(idKey(id), owner); err != nil {
		return nil, err
	}
	if err := s.positions.Set(owner, append(list, pos)); err != nil {
		return nil, err
	}
	return pos.Copy(), nil
}

// Get lists the active positions of owner in creation order.
func (s *Service) Get(owner mts.Address) ([]*Position, error) {
	list, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Position{}
	}
	return list, nil
}

// Position returns the position at index in the owner's list.
func (s *Service) Position(owner mts.Address, index uint64) (*Position, error) {
	list, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(list)) {
		return nil, ErrNotFound
	}
	return list[index], nil
}

// Locate resolves a position id to its current index in the owner's list.
func (s *Service) Locate(owner mts.Address, id uint64) (uint64, *Position, error) {
	holder, err := s.owners.Get(idKey(id))
	if err != nil {
		return 0, nil, err
	}
	if holder.IsZero() {
		return 0, nil, ErrNotFound
	}
	if holder != owner {
		return 0, nil, ErrNotOwner
	}
	list, err := s.positions.Get(owner)
	if err != nil {
		return 0, nil, err
	}
	for i, p := range list {
		if p.ID == id {
			return uint64(i), p, nil
		}
	}
	return 0, nil, ErrNotFound
}

// Checkpoint advances the accrual checkpoint of the position at index to now.
func (s *Service) Checkpoint(owner mts.Address, index uint64, now uint64) error {
	list, err := s.positions.Get(owner)
	if err != nil {
		return err
	}
	if index >= uint64(len(list)) {
		return ErrNotFound
	}
	if now > list[index].LastAccrualTime {
		list[index].LastAccrualTime = now
	}
	return s.positions.Set(owner, list)
}

// Close removes the position at index once its lock period has elapsed.
// The returned position is marked inactive.
func (s *Service) Close(owner mts.Address, index uint64, lockPeriod uint64, now uint64) (*Position, error) {
	list, err := s.positions.Get(owner)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(list)) {
		return nil, ErrNotFound
	}
	pos := list[index]
	if pos.Owner != owner {
		return nil, ErrNotOwner
	}
	if !pos.Unlocked(lockPeriod, now) {
		return nil, ErrLockNotEnded
	}

	if err := s.staked[pos.Asset].Sub(pos.Principal); err != nil {
		return nil, errors.Wrap(err, "total staked")
	}
	s.owners.Delete(idKey(pos.ID))

	remaining := append(list[:index:index], list[index+1:]...)
	if len(remaining) == 0 {
		s.positions.Delete(owner)
	} else if err := s.positions.Set(owner, remaining); err != nil {
		return nil, err
	}

	pos.Active = false
	return pos, nil
}

// TotalStaked returns the principal held in active positions of asset.
func (s *Service) TotalStaked(asset mts.Asset) (*big.Int, error) {
	if !asset.Valid() {
		return nil, errors.Errorf("invalid asset %d", asset)
	}
	return s.staked[asset].Get()
}
