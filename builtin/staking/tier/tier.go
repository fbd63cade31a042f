// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tier

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/mts"
)

// Count is the fixed number of tiers, identified by index.
const Count = 3

var (
	ErrInvalidAsset       = reverts.New("Invalid token type")
	ErrInvalidTier        = reverts.New("Invalid tier")
	ErrBelowMinimum       = reverts.New("Amount below minimum for tier")
	ErrAlreadyInitialized = reverts.New("tiers already initialized")
	ErrNotInitialized     = reverts.New("tiers not initialized")
	ErrInvalidConfig      = reverts.New("invalid tier configuration")
)

var slotTiers = solidity.Slot("tiers")

// Tier is a staking configuration: minimum principal, yield in basis points and lock duration in seconds.
type Tier struct {
	MinStakeAmount *big.Int
	APY            uint64
	LockPeriod     uint64
}

// Validate checks the tier parameters themselves. Any APY is accepted.
func (t *Tier) Validate() error {
	if t == nil || t.MinStakeAmount == nil || t.MinStakeAmount.Sign() < 0 {
		return errors.WithMessage(ErrInvalidConfig, "minimum stake must be set and non-negative")
	}
	return nil
}

func (t *Tier) Copy() *Tier {
	return &Tier{
		MinStakeAmount: new(big.Int).Set(t.MinStakeAmount),
		APY:            t.APY,
		LockPeriod:     t.LockPeriod,
	}
}

// Service is the tier registry. Tiers are written once and immutable afterwards.
type Service struct {
	tiers *solidity.Raw[[]*Tier]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		tiers: solidity.NewRaw[[]*Tier](sctx, slotTiers),
	}
}

// Initialize stores the tier table.
func (s *Service) Initialize(tiers [Count]*Tier) error {
	existing, err := s.tiers.Get()
	if err != nil {
		return err
	}
	if len(existing) != 0 {
		return ErrAlreadyInitialized
	}
	list := make([]*Tier, 0, Count)
	for i, t := range tiers {
		if err := t.Validate(); err != nil {
			return errors.WithMessagef(err, "tier %d", i)
		}
		list = append(list, t.Copy())
	}
	return s.tiers.Set(list)
}

func (s *Service) load() ([]*Tier, error) {
	list, err := s.tiers.Get()
	if err != nil {
		return nil, err
	}
	if len(list) != Count {
		return nil, ErrNotInitialized
	}
	return list, nil
}

// Get returns the tier at index.
func (s *Service) Get(index uint8) (*Tier, error) {
	if index >= Count {
		return nil, ErrInvalidTier
	}
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	return list[index], nil
}

// All returns the whole tier table.
func (s *Service) All() ([Count]*Tier, error) {
	var out [Count]*Tier
	list, err := s.load()
	if err != nil {
		return out, err
	}
	copy(out[:], list)
	return out, nil
}

// Validate checks a stake request against the registry and returns the selected tier.
func (s *Service) Validate(asset mts.Asset, index uint8, amount *big.Int) (*Tier, error) {
	if !asset.Valid() {
		return nil, ErrInvalidAsset
	}
	t, err := s.Get(index)
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Cmp(t.MinStakeAmount) < 0 {
		return nil, ErrBelowMinimum
	}
	return t, nil
}
