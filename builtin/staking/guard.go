// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// call runs fn as one all-or-nothing operation: storage writes are reverted and
// events dropped if fn fails. The storage lock rejects re-entry from token callbacks.
func (s *Staking) call(method string, fn func() error) error {
	locked, err := s.lock.Get()
	if err != nil {
		return err
	}
	if locked {
		return ErrReentrantCall
	}

	checkpoint := s.state.NewCheckpoint()
	s.lock.Set(true)
	s.pending = s.pending[:0]

	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		s.pending = s.pending[:0]
		logger.Debug("call reverted", "method", method, "err", err)
		return err
	}

	s.lock.Set(false)
	if s.emit != nil {
		for _, ev := range s.pending {
			s.emit(ev)
		}
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *Staking) log(ev *tx.Event) {
	s.pending = append(s.pending, ev)
}

// requireReady checks the contract is initialized with a known schema.
func (s *Staking) requireReady() error {
	version, err := s.schema.Get()
	if err != nil {
		return err
	}
	if version == 0 {
		return ErrNotInitialized
	}
	if version > SchemaVersion {
		return errors.Wrapf(ErrUnsupportedSchema, "stored %d, supported %d", version, SchemaVersion)
	}
	return nil
}

// requireActive is the entry check of stake, claimReward and unstake.
// The pause switch is checked first so a paused contract fails before touching anything else.
func (s *Staking) requireActive() error {
	if err := s.pauseService.Require(); err != nil {
		return err
	}
	return s.requireReady()
}

func (s *Staking) requireAdmin(caller mts.Address) error {
	admin, err := s.admin.Get()
	if err != nil {
		return err
	}
	if caller != admin {
		return ErrUnauthorized
	}
	return nil
}

func (s *Staking) token(asset mts.Asset) (Token, error) {
	addr, err := s.AssetAddress(asset)
	if err != nil {
		return nil, err
	}
	if s.bank == nil {
		return nil, errors.New("no token bank")
	}
	return s.bank.Token(addr, s.log)
}

// pull moves amount of asset from user into contract custody.
func (s *Staking) pull(asset mts.Asset, from mts.Address, amount *big.Int) error {
	token, err := s.token(asset)
	if err != nil {
		return err
	}
	return errors.WithMessagef(token.TransferFrom(s.addr, from, s.addr, amount), "pull %v", asset)
}

// push pays amount of asset out of contract custody.
func (s *Staking) push(asset mts.Asset, to mts.Address, amount *big.Int) error {
	token, err := s.token(asset)
	if err != nil {
		return err
	}
	return errors.WithMessagef(token.Transfer(s.addr, to, amount), "push %v", asset)
}
