// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/builtin/staking/events"
	"github.com/vechain/mtstake/builtin/staking/ledger"
	"github.com/vechain/mtstake/builtin/staking/pausegate"
	"github.com/vechain/mtstake/builtin/staking/reward"
	"github.com/vechain/mtstake/builtin/staking/rewardpool"
	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
)

// SchemaVersion is the storage layout written by this code.
const SchemaVersion uint64 = 1

var logger = log.WithContext("pkg", "staking")

func SetLogger(l log.Logger) {
	logger = l
}

var (
	ErrUnauthorized       = reverts.New("Ownable: caller is not the owner")
	ErrNotInitialized     = reverts.New("staking not initialized")
	ErrAlreadyInitialized = reverts.New("Initializable: contract is already initialized")
	ErrReentrantCall      = reverts.New("ReentrancyGuard: reentrant call")
	ErrZeroAmount         = reverts.New("Amount must be greater than zero")
	ErrZeroAddress        = reverts.New("zero address")

	ErrUnsupportedSchema = errors.New("unsupported storage schema")
)

var (
	slotAdmin  = solidity.Slot("admin")
	slotAssets = solidity.Slot("assets")
	slotSchema = solidity.Slot("schema-version")
	slotLock   = solidity.Slot("reentrancy-lock")
)

// Token is the transfer capability of one asset.
type Token interface {
	BalanceOf(owner mts.Address) (*big.Int, error)
	Transfer(from, to mts.Address, amount *big.Int) error
	// TransferFrom moves amount on behalf of from, consuming the spender's allowance.
	TransferFrom(spender, from, to mts.Address, amount *big.Int) error
}

// Bank resolves the token deployed at an address. The token reports its events to emit.
type Bank interface {
	Token(addr mts.Address, emit func(*tx.Event)) (Token, error)
}

// Staking implements the multi-asset tiered staking contract.
// It is a stateless binder: everything it knows lives in state under its address.
type Staking struct {
	addr  mts.Address
	state *state.State
	bank  Bank
	emit  func(*tx.Event)

	admin  *solidity.Address
	assets *solidity.Raw[[]mts.Address]
	schema *solidity.Raw[uint64]
	lock   *solidity.Bool

	tierService   *tier.Service
	ledgerService *ledger.Service
	poolService   *rewardpool.Service
	pauseService  *pausegate.Service

	pending []*tx.Event
}

// New create a new instance. emit receives the events of every successful call and may be nil.
// usage is optional and accumulates storage slot accesses.
func New(addr mts.Address, st *state.State, bank Bank, emit func(*tx.Event), usage *solidity.Usage) *Staking {
	sctx := solidity.NewContext(addr, st, usage)

	return &Staking{
		addr:  addr,
		state: st,
		bank:  bank,
		emit:  emit,

		admin:  solidity.NewAddress(sctx, slotAdmin),
		assets: solidity.NewRaw[[]mts.Address](sctx, slotAssets),
		schema: solidity.NewRaw[uint64](sctx, slotSchema),
		lock:   solidity.NewBool(sctx, slotLock),

		tierService:   tier.New(sctx),
		ledgerService: ledger.New(sctx),
		poolService:   rewardpool.New(sctx),
		pauseService:  pausegate.New(sctx),
	}
}

// Address returns the contract address.
func (s *Staking) Address() mts.Address {
	return s.addr
}

//
// Getters - no state change
//

// Schema returns the storage schema version, 0 if not initialized.
func (s *Staking) Schema() (uint64, error) {
	return s.schema.Get()
}

// Admin returns the address allowed to fund, pause and transfer administration.
func (s *Staking) Admin() (mts.Address, error) {
	return s.admin.Get()
}

// IsPaused returns whether mutating calls are blocked.
func (s *Staking) IsPaused() (bool, error) {
	return s.pauseService.IsPaused()
}

// Tiers returns the tier table.
func (s *Staking) Tiers() ([tier.Count]*tier.Tier, error) {
	return s.tierService.All()
}

// Tier returns a single tier.
func (s *Staking) Tier(index uint8) (*tier.Tier, error) {
	return s.tierService.Get(index)
}

// RewardPool returns the reward balance of every asset.
func (s *Staking) RewardPool() ([mts.AssetCount]*big.Int, error) {
	return s.poolService.Balances()
}

// TotalStaked returns the principal locked in active positions of asset.
func (s *Staking) TotalStaked(asset mts.Asset) (*big.Int, error) {
	return s.ledgerService.TotalStaked(asset)
}

// Assets returns the token address bound to each asset.
func (s *Staking) Assets() ([mts.AssetCount]mts.Address, error) {
	var out [mts.AssetCount]mts.Address
	list, err := s.assets.Get()
	if err != nil {
		return out, err
	}
	if len(list) != int(mts.AssetCount) {
		return out, ErrNotInitialized
	}
	copy(out[:], list)
	return out, nil
}

// AssetAddress returns the token address bound to asset.
func (s *Staking) AssetAddress(asset mts.Asset) (mts.Address, error) {
	if !asset.Valid() {
		return mts.Address{}, tier.ErrInvalidAsset
	}
	assets, err := s.Assets()
	if err != nil {
		return mts.Address{}, err
	}
	return assets[asset], nil
}

// GetUserStakes lists the active positions of user in creation order.
func (s *Staking) GetUserStakes(user mts.Address) ([]*ledger.Position, error) {
	return s.ledgerService.Get(user)
}

// Locate resolves a position id to its current index in the user's list.
func (s *Staking) Locate(user mts.Address, id uint64) (uint64, *ledger.Position, error) {
	return s.ledgerService.Locate(user, id)
}

// CalculateReward returns the reward accrued by the position at index up to now.
func (s *Staking) CalculateReward(user mts.Address, index uint64, now uint64) (*big.Int, error) {
	pos, err := s.ledgerService.Position(user, index)
	if err != nil {
		return nil, err
	}
	t, err := s.tierService.Get(pos.Tier)
	if err != nil {
		return nil, err
	}
	return reward.Accrued(pos.Principal, t.APY, pos.LastAccrualTime, now), nil
}

//
// Setters - state change
//

// Initialize binds the asset tokens, stores the tier table and sets admin.
func (s *Staking) Initialize(admin mts.Address, assets [mts.AssetCount]mts.Address, tiers [tier.Count]*tier.Tier) error {
	return s.call("initialize", func() error {
		version, err := s.schema.Get()
		if err != nil {
			return err
		}
		if version != 0 {
			return ErrAlreadyInitialized
		}
		if admin.IsZero() {
			return errors.WithMessage(ErrZeroAddress, "admin")
		}
		for i, addr := range assets {
			if addr.IsZero() {
				return errors.WithMessagef(ErrZeroAddress, "asset %v", mts.Asset(i))
			}
		}
		if err := s.tierService.Initialize(tiers); err != nil {
			return err
		}
		if err := s.assets.Set(assets[:]); err != nil {
			return err
		}
		if err := s.schema.Set(SchemaVersion); err != nil {
			return err
		}
		s.admin.Set(admin)

		logger.Info("staking initialized", "admin", admin, "schema", SchemaVersion)
		return nil
	})
}

// AddRewardFunds pulls the non-zero amounts from the admin into the reward pool.
// The admin must have approved the contract for each amount beforehand.
func (s *Staking) AddRewardFunds(caller mts.Address, amounts [mts.AssetCount]*big.Int) error {
	return s.call("addRewardFunds", func() error {
		if err := s.requireReady(); err != nil {
			return err
		}
		if err := s.requireAdmin(caller); err != nil {
			return err
		}

		funded := false
		for _, asset := range mts.Assets {
			amount := amounts[asset]
			if amount == nil || amount.Sign() == 0 {
				continue
			}
			if amount.Sign() < 0 {
				return errors.WithMessagef(ErrZeroAmount, "asset %v", asset)
			}
			if err := s.poolService.Fund(asset, amount); err != nil {
				return err
			}
			funded = true
		}
		if !funded {
			return ErrZeroAmount
		}

		for _, asset := range mts.Assets {
			amount := amounts[asset]
			if amount == nil || amount.Sign() == 0 {
				continue
			}
			if err := s.pull(asset, caller, amount); err != nil {
				return err
			}
		}

		s.log(events.RewardFundsAdded(s.addr, caller, amounts))
		logger.Debug("reward funds added", "admin", caller, "a", amounts[mts.AssetA], "b", amounts[mts.AssetB], "c", amounts[mts.AssetC])
		return nil
	})
}

// Stake opens a position of amount in asset under the tier at tierIndex.
// The caller must have approved the contract for amount beforehand.
func (s *Staking) Stake(caller mts.Address, amount *big.Int, asset mts.Asset, tierIndex uint8, now uint64) (*ledger.Position, error) {
	var pos *ledger.Position
	err := s.call("stake", func() error {
		if err := s.requireActive(); err != nil {
			return err
		}
		if _, err := s.tierService.Validate(asset, tierIndex, amount); err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return ErrZeroAmount
		}

		var err error
		if pos, err = s.ledgerService.Open(caller, asset, tierIndex, amount, now); err != nil {
			return err
		}
		if err := s.pull(asset, caller, amount); err != nil {
			return err
		}

		s.log(events.Staked(s.addr, caller, amount, asset, tierIndex))
		logger.Debug("staked", "user", caller, "id", pos.ID, "asset", asset, "tier", tierIndex, "amount", amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// ClaimReward pays the reward accrued by the position at index and resets its accrual checkpoint.
// A zero reward still advances the checkpoint.
func (s *Staking) ClaimReward(caller mts.Address, index uint64, now uint64) (*big.Int, error) {
	var amount *big.Int
	err := s.call("claimReward", func() error {
		if err := s.requireActive(); err != nil {
			return err
		}
		pos, err := s.ledgerService.Position(caller, index)
		if err != nil {
			return err
		}
		if pos.Owner != caller {
			return ledger.ErrNotOwner
		}
		t, err := s.tierService.Get(pos.Tier)
		if err != nil {
			return err
		}

		amount = reward.Accrued(pos.Principal, t.APY, pos.LastAccrualTime, now)
		if amount.Sign() > 0 {
			if err := s.poolService.Debit(pos.Asset, amount); err != nil {
				return err
			}
		}
		if err := s.ledgerService.Checkpoint(caller, index, now); err != nil {
			return err
		}
		if amount.Sign() > 0 {
			if err := s.push(pos.Asset, caller, amount); err != nil {
				return err
			}
		}

		s.log(events.RewardClaimed(s.addr, caller, amount, pos.Asset))
		logger.Debug("reward claimed", "user", caller, "id", pos.ID, "asset", pos.Asset, "amount", amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// Unstake closes the position at index once its lock has elapsed, settling the pending
// reward and returning the principal. It fails as a whole if the pool cannot cover the reward.
func (s *Staking) Unstake(caller mts.Address, index uint64, now uint64) (principal, rewardAmount *big.Int, err error) {
	err = s.call("unstake", func() error {
		if err := s.requireActive(); err != nil {
			return err
		}
		pos, err := s.ledgerService.Position(caller, index)
		if err != nil {
			return err
		}
		t, err := s.tierService.Get(pos.Tier)
		if err != nil {
			return err
		}

		accrued := reward.Accrued(pos.Principal, t.APY, pos.LastAccrualTime, now)
		closed, err := s.ledgerService.Close(caller, index, t.LockPeriod, now)
		if err != nil {
			return err
		}
		if accrued.Sign() > 0 {
			if err := s.poolService.Debit(closed.Asset, accrued); err != nil {
				return err
			}
		}

		if accrued.Sign() > 0 {
			if err := s.push(closed.Asset, caller, accrued); err != nil {
				return err
			}
			s.log(events.RewardClaimed(s.addr, caller, accrued, closed.Asset))
		}
		if err := s.push(closed.Asset, caller, closed.Principal); err != nil {
			return err
		}
		s.log(events.Unstaked(s.addr, caller, closed.Principal, closed.Asset))

		principal, rewardAmount = closed.Principal, accrued
		logger.Debug("unstaked", "user", caller, "id", closed.ID, "asset", closed.Asset, "principal", principal, "reward", rewardAmount)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return principal, rewardAmount, nil
}

// Pause blocks stake, claimReward and unstake.
func (s *Staking) Pause(caller mts.Address) error {
	return s.call("pause", func() error {
		if err := s.requireReady(); err != nil {
			return err
		}
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if err := s.pauseService.Pause(); err != nil {
			return err
		}
		s.log(events.Paused(s.addr, caller))
		logger.Info("staking paused", "by", caller)
		return nil
	})
}

// Unpause lifts a pause.
func (s *Staking) Unpause(caller mts.Address) error {
	return s.call("unpause", func() error {
		if err := s.requireReady(); err != nil {
			return err
		}
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if err := s.pauseService.Unpause(); err != nil {
			return err
		}
		s.log(events.Unpaused(s.addr, caller))
		logger.Info("staking unpaused", "by", caller)
		return nil
	})
}

// TransferAdmin hands administration over to next.
func (s *Staking) TransferAdmin(caller, next mts.Address) error {
	return s.call("transferAdmin", func() error {
		if err := s.requireReady(); err != nil {
			return err
		}
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if next.IsZero() {
			return errors.WithMessage(ErrZeroAddress, "new admin")
		}
		s.admin.Set(next)
		s.log(events.AdminTransferred(s.addr, caller, next))
		logger.Info("admin transferred", "from", caller, "to", next)
		return nil
	})
}
