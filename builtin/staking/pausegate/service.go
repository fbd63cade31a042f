// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pausegate

import (
	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
)

var (
	ErrPaused    = reverts.New("Pausable: paused")
	ErrNotPaused = reverts.New("Pausable: not paused")
)

var slotPaused = solidity.Slot("paused")

// Service is the global pause switch.
type Service struct {
	paused *solidity.Bool
}

func New(sctx *solidity.Context) *Service {
	return &Service{paused: solidity.NewBool(sctx, slotPaused)}
}

func (s *Service) IsPaused() (bool, error) {
	return s.paused.Get()
}

// Require fails with ErrPaused while paused.
func (s *Service) Require() error {
	paused, err := s.paused.Get()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

func (s *Service) Pause() error {
	if err := s.Require(); err != nil {
		return err
	}
	s.paused.Set(true)
	return nil
}

func (s *Service) Unpause() error {
	paused, err := s.paused.Get()
	if err != nil {
		return err
	}
	if !paused {
		return ErrNotPaused
	}
	s.paused.Set(false)
	return nil
}
