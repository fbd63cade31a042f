// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mtstake/builtin/staking/events"
	"github.com/vechain/mtstake/builtin/staking/ledger"
	"github.com/vechain/mtstake/builtin/staking/pausegate"
	"github.com/vechain/mtstake/builtin/staking/rewardpool"
	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/builtin/token"
	"github.com/vechain/mtstake/lvldb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/test/datagen"
	"github.com/vechain/mtstake/tx"
)

const (
	day = mts.SecondsPerDay
	t0  = uint64(1_700_000_000)
)

func M(a ...any) []any {
	return a
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func bigStr(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

type testBank struct {
	st       *state.State
	deployed map[mts.Address]bool
	wrap     map[mts.Address]func(Token) Token
}

func (b *testBank) Token(addr mts.Address, emit func(*tx.Event)) (Token, error) {
	if !b.deployed[addr] {
		return nil, errors.Errorf("no token at %v", addr)
	}
	var tk Token = token.New(addr, b.st, emit, nil)
	if wrap, ok := b.wrap[addr]; ok {
		tk = wrap(tk)
	}
	return tk, nil
}

type testEnv struct {
	t      *testing.T
	st     *state.State
	addr   mts.Address
	bank   *testBank
	tokens [mts.AssetCount]*token.Token
	events tx.Events

	admin mts.Address
	alice mts.Address
	bob   mts.Address
}

func devnetTiers() [tier.Count]*tier.Tier {
	return [tier.Count]*tier.Tier{
		{MinStakeAmount: ether(100), APY: 500, LockPeriod: 30 * day},
		{MinStakeAmount: ether(1000), APY: 800, LockPeriod: 90 * day},
		{MinStakeAmount: ether(5000), APY: 1200, LockPeriod: 180 * day},
	}
}

// newTestEnv deploys three tokens, gives every account 1,000,000 of each and
// initializes staking with the devnet tiers. The reward pool is left empty.
func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	bank := &testBank{
		st:       st,
		deployed: make(map[mts.Address]bool),
		wrap:     make(map[mts.Address]func(Token) Token),
	}
	env := &testEnv{
		t:     t,
		st:    st,
		addr:  mts.BytesToAddress([]byte("Staking")),
		bank:  bank,
		admin: datagen.RandAddress(),
		alice: datagen.RandAddress(),
		bob:   datagen.RandAddress(),
	}

	var assets [mts.AssetCount]mts.Address
	for _, asset := range mts.Assets {
		addr := mts.BytesToAddress([]byte("Token" + asset.String()))
		tk := token.New(addr, env.st, nil, nil)
		for _, acc := range []mts.Address{env.admin, env.alice, env.bob} {
			require.NoError(t, tk.Mint(acc, ether(1_000_000)))
		}
		env.tokens[asset] = tk
		env.bank.deployed[addr] = true
		assets[asset] = addr
	}

	require.NoError(t, env.staking().Initialize(env.admin, assets, devnetTiers()))
	env.events = nil
	return env
}

func (e *testEnv) staking() *Staking {
	return New(e.addr, e.st, e.bank, func(ev *tx.Event) {
		e.events = append(e.events, ev)
	}, nil)
}

func (e *testEnv) approve(owner mts.Address, asset mts.Asset, amount *big.Int) {
	require.NoError(e.t, e.tokens[asset].Approve(owner, e.addr, amount))
}

func (e *testEnv) balance(owner mts.Address, asset mts.Asset) *big.Int {
	bal, err := e.tokens[asset].BalanceOf(owner)
	require.NoError(e.t, err)
	return bal
}

// fund adds the devnet reward funding 5000/3000/2000.
func (e *testEnv) fund() {
	amounts := [mts.AssetCount]*big.Int{ether(5000), ether(3000), ether(2000)}
	for _, asset := range mts.Assets {
		e.approve(e.admin, asset, amounts[asset])
	}
	require.NoError(e.t, e.staking().AddRewardFunds(e.admin, amounts))
	e.events = nil
}

func (e *testEnv) stake(user mts.Address, amount *big.Int, asset mts.Asset, tierIndex uint8, now uint64) *ledger.Position {
	e.approve(user, asset, amount)
	pos, err := e.staking().Stake(user, amount, asset, tierIndex, now)
	require.NoError(e.t, err)
	return pos
}

func (e *testEnv) eventNames() []string {
	names := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		decode := events.Decode
		if ev.Address != e.addr {
			decode = token.Decode
		}
		name, _, err := decode(ev)
		require.NoError(e.t, err)
		names = append(names, name)
	}
	return names
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()

	assert.Equal(t, M(SchemaVersion, nil), M(s.Schema()))
	assert.Equal(t, M(env.admin, nil), M(s.Admin()))
	assert.Equal(t, M(false, nil), M(s.IsPaused()))

	tiers, err := s.Tiers()
	require.NoError(t, err)
	for i, expected := range devnetTiers() {
		assert.Equal(t, expected.MinStakeAmount.String(), tiers[i].MinStakeAmount.String())
		assert.Equal(t, expected.APY, tiers[i].APY)
		assert.Equal(t, expected.LockPeriod, tiers[i].LockPeriod)
	}

	for _, asset := range mts.Assets {
		addr, err := s.AssetAddress(asset)
		require.NoError(t, err)
		assert.Equal(t, env.tokens[asset].Address(), addr)
	}
	_, err = s.AssetAddress(mts.Asset(3))
	assert.ErrorIs(t, err, tier.ErrInvalidAsset)

	pool, err := s.RewardPool()
	require.NoError(t, err)
	for _, b := range pool {
		assert.Equal(t, "0", b.String())
	}

	assets, err := s.Assets()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Initialize(env.alice, assets, devnetTiers()), ErrAlreadyInitialized)
	assert.Equal(t, M(env.admin, nil), M(s.Admin()))
}

func TestInitializeInvalid(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	s := New(mts.BytesToAddress([]byte("Staking")), state.New(db, nil), &testBank{}, nil, nil)
	assets := [mts.AssetCount]mts.Address{datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()}

	assert.ErrorIs(t, s.Initialize(mts.Address{}, assets, devnetTiers()), ErrZeroAddress)
	assert.ErrorIs(t, s.Initialize(datagen.RandAddress(), [mts.AssetCount]mts.Address{}, devnetTiers()), ErrZeroAddress)

	bad := devnetTiers()
	bad[1].MinStakeAmount = nil
	assert.ErrorIs(t, s.Initialize(datagen.RandAddress(), assets, bad), tier.ErrInvalidConfig)

	// nothing was written by the failed attempts
	assert.Equal(t, M(uint64(0), nil), M(s.Schema()))
	_, err = s.Tiers()
	assert.ErrorIs(t, err, tier.ErrNotInitialized)

	_, err = s.Stake(datagen.RandAddress(), ether(100), mts.AssetA, 0, t0)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, s.Pause(datagen.RandAddress()), ErrNotInitialized)
}

func TestAddRewardFunds(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()
	amounts := [mts.AssetCount]*big.Int{ether(5000), ether(3000), ether(2000)}

	assert.ErrorIs(t, s.AddRewardFunds(env.alice, amounts), ErrUnauthorized)

	// no approval
	assert.ErrorIs(t, s.AddRewardFunds(env.admin, amounts), token.ErrInsufficientAllowance)
	pool, err := s.RewardPool()
	require.NoError(t, err)
	assert.Equal(t, "0", pool[mts.AssetA].String())
	assert.Empty(t, env.events)

	assert.ErrorIs(t, s.AddRewardFunds(env.admin, [mts.AssetCount]*big.Int{}), ErrZeroAmount)

	env.fund()

	pool, err = s.RewardPool()
	require.NoError(t, err)
	assert.Equal(t, ether(5000).String(), pool[mts.AssetA].String())
	assert.Equal(t, ether(3000).String(), pool[mts.AssetB].String())
	assert.Equal(t, ether(2000).String(), pool[mts.AssetC].String())

	assert.Equal(t, ether(5000).String(), env.balance(env.addr, mts.AssetA).String())
	assert.Equal(t, ether(1_000_000-3000).String(), env.balance(env.admin, mts.AssetB).String())

	// a single asset top-up
	env.approve(env.admin, mts.AssetC, ether(1))
	require.NoError(t, s.AddRewardFunds(env.admin, [mts.AssetCount]*big.Int{nil, nil, ether(1)}))
	assert.Equal(t, []string{"Transfer", "RewardFundsAdded"}, env.eventNames())

	pool, err = s.RewardPool()
	require.NoError(t, err)
	assert.Equal(t, ether(2001).String(), pool[mts.AssetC].String())
}

func TestStakeValidation(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()
	env.approve(env.alice, mts.AssetA, ether(1_000_000))

	tests := []struct {
		name   string
		amount *big.Int
		asset  mts.Asset
		tier   uint8
		err    error
	}{
		{"invalid asset", ether(100), mts.Asset(3), 0, tier.ErrInvalidAsset},
		{"invalid asset before tier", ether(100), mts.Asset(3), 3, tier.ErrInvalidAsset},
		{"invalid tier", ether(100), mts.AssetA, 3, tier.ErrInvalidTier},
		{"below minimum", ether(99), mts.AssetA, 0, tier.ErrBelowMinimum},
		{"below tier 1 minimum", ether(999), mts.AssetA, 1, tier.ErrBelowMinimum},
		{"below tier 2 minimum", ether(4999), mts.AssetA, 2, tier.ErrBelowMinimum},
		{"negative", big.NewInt(-1), mts.AssetA, 0, tier.ErrBelowMinimum},
		{"nil", nil, mts.AssetA, 0, tier.ErrBelowMinimum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Stake(env.alice, tt.amount, tt.asset, tt.tier, t0)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	stakes, err := s.GetUserStakes(env.alice)
	require.NoError(t, err)
	assert.Empty(t, stakes)
	assert.Empty(t, env.events)

	// not approved for asset B
	_, err = s.Stake(env.alice, ether(100), mts.AssetB, 0, t0)
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.Equal(t, M(0, nil), M(lenOf(s.GetUserStakes(env.alice))))

	// not enough balance
	env.approve(env.alice, mts.AssetC, ether(2_000_000))
	_, err = s.Stake(env.alice, ether(2_000_000), mts.AssetC, 2, t0)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	assert.Equal(t, "0", mustBig(s.TotalStaked(mts.AssetC)).String())
}

func lenOf(list []*ledger.Position, err error) (int, error) {
	return len(list), err
}

func mustBig(v *big.Int, err error) *big.Int {
	if err != nil {
		panic(err)
	}
	return v
}

func mustPool(v [mts.AssetCount]*big.Int, err error) [mts.AssetCount]*big.Int {
	if err != nil {
		panic(err)
	}
	return v
}

func TestStake(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()

	pos := env.stake(env.alice, ether(100), mts.AssetA, 0, t0)
	assert.Equal(t, uint64(1), pos.ID)
	assert.Equal(t, env.alice, pos.Owner)
	assert.Equal(t, mts.AssetA, pos.Asset)
	assert.Equal(t, uint8(0), pos.Tier)
	assert.Equal(t, ether(100).String(), pos.Principal.String())
	assert.Equal(t, t0, pos.StartTime)
	assert.Equal(t, t0, pos.LastAccrualTime)
	assert.True(t, pos.Active)

	assert.Equal(t, ether(1_000_000-100).String(), env.balance(env.alice, mts.AssetA).String())
	assert.Equal(t, ether(100).String(), env.balance(env.addr, mts.AssetA).String())
	assert.Equal(t, ether(100).String(), mustBig(s.TotalStaked(mts.AssetA)).String())

	assert.Equal(t, []string{"Transfer", "Staked"}, env.eventNames())
	name, fields, err := events.Decode(env.events[1])
	require.NoError(t, err)
	assert.Equal(t, "Staked", name)
	assert.Equal(t, ether(100).String(), fields["amount"].(*big.Int).String())
	assert.Equal(t, uint8(mts.AssetA), fields["tokenType"])
	assert.Equal(t, uint8(0), fields["tier"])

	// multiple positions across assets and tiers
	env.stake(env.alice, ether(1000), mts.AssetB, 1, t0+1)
	env.stake(env.alice, ether(5000), mts.AssetC, 2, t0+2)
	env.stake(env.bob, ether(100), mts.AssetA, 0, t0+3)

	stakes, err := s.GetUserStakes(env.alice)
	require.NoError(t, err)
	require.Len(t, stakes, 3)
	assert.Equal(t, []mts.Asset{mts.AssetA, mts.AssetB, mts.AssetC}, []mts.Asset{stakes[0].Asset, stakes[1].Asset, stakes[2].Asset})
	assert.Equal(t, []uint8{0, 1, 2}, []uint8{stakes[0].Tier, stakes[1].Tier, stakes[2].Tier})

	bobStakes, err := s.GetUserStakes(env.bob)
	require.NoError(t, err)
	require.Len(t, bobStakes, 1)
	assert.Equal(t, uint64(4), bobStakes[0].ID)

	idx, found, err := s.Locate(env.alice, stakes[2].ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), idx)
	assert.Equal(t, stakes[2].ID, found.ID)

	_, _, err = s.Locate(env.alice, bobStakes[0].ID)
	assert.ErrorIs(t, err, ledger.ErrNotOwner)
	_, _, err = s.Locate(env.alice, 99)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRewardScenario(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)

	assert.Equal(t, M(big.NewInt(0), nil), M(s.CalculateReward(env.alice, 0, t0)))
	assert.Equal(t, M(bigStr("13698630136986301"), nil), M(s.CalculateReward(env.alice, 0, t0+day)))
	assert.Equal(t, M(bigStr("27397260273972602"), nil), M(s.CalculateReward(env.alice, 0, t0+2*day)))
	// floor(100e18 * 500 * 2592000 / (10000 * 31536000))
	assert.Equal(t, M(bigStr("410958904109589041"), nil), M(s.CalculateReward(env.alice, 0, t0+30*day)))
	// before the stake started
	assert.Equal(t, M(big.NewInt(0), nil), M(s.CalculateReward(env.alice, 0, t0-1)))

	_, err := s.CalculateReward(env.alice, 1, t0)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = s.CalculateReward(env.bob, 0, t0)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	env.stake(env.alice, ether(1000), mts.AssetB, 1, t0)
	env.stake(env.alice, ether(5000), mts.AssetC, 2, t0)
	assert.Equal(t, M(bigStr("19726027397260273972"), nil), M(s.CalculateReward(env.alice, 1, t0+90*day)))
	assert.Equal(t, M(bigStr("295890410958904109589"), nil), M(s.CalculateReward(env.alice, 2, t0+180*day)))
}

func TestClaimReward(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)
	env.events = nil

	reward, err := s.ClaimReward(env.alice, 0, t0+30*day)
	require.NoError(t, err)
	assert.Equal(t, "410958904109589041", reward.String())

	before := new(big.Int).Sub(ether(1_000_000), ether(100))
	assert.Equal(t, new(big.Int).Add(before, reward).String(), env.balance(env.alice, mts.AssetA).String())

	pool, err := s.RewardPool()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(ether(5000), reward).String(), pool[mts.AssetA].String())
	assert.Equal(t, ether(3000).String(), pool[mts.AssetB].String())

	stakes, err := s.GetUserStakes(env.alice)
	require.NoError(t, err)
	assert.Equal(t, t0+30*day, stakes[0].LastAccrualTime)
	assert.Equal(t, t0, stakes[0].StartTime)
	assert.Equal(t, M(big.NewInt(0), nil), M(s.CalculateReward(env.alice, 0, t0+30*day)))

	// a zero claim succeeds and emits a zero event
	reward, err = s.ClaimReward(env.alice, 0, t0+30*day)
	require.NoError(t, err)
	assert.Equal(t, "0", reward.String())
	assert.Equal(t, []string{"Transfer", "RewardClaimed", "RewardClaimed"}, env.eventNames())

	// a checkpoint in the past does not rewind accrual
	_, err = s.ClaimReward(env.alice, 0, t0)
	require.NoError(t, err)
	stakes, err = s.GetUserStakes(env.alice)
	require.NoError(t, err)
	assert.Equal(t, t0+30*day, stakes[0].LastAccrualTime)

	_, err = s.ClaimReward(env.bob, 0, t0+30*day)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = s.ClaimReward(env.alice, 1, t0+30*day)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestClaimSplitNeverExceedsWhole(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)
	env.stake(env.bob, ether(100), mts.AssetA, 0, t0)

	whole, err := s.CalculateReward(env.bob, 0, t0+30*day)
	require.NoError(t, err)

	total := new(big.Int)
	for now := t0 + 7; now <= t0+30*day; now += 3 * day {
		r, err := s.ClaimReward(env.alice, 0, now)
		require.NoError(t, err)
		total.Add(total, r)
	}
	r, err := s.ClaimReward(env.alice, 0, t0+30*day)
	require.NoError(t, err)
	total.Add(total, r)

	assert.True(t, total.Cmp(whole) <= 0)
	assert.True(t, new(big.Int).Sub(whole, total).Cmp(big.NewInt(20)) <= 0)
}

func TestLockPeriod(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)

	_, _, err := s.Unstake(env.alice, 0, t0+30*day-1)
	assert.ErrorIs(t, err, ledger.ErrLockNotEnded)
	_, _, err = s.Unstake(env.alice, 0, t0)
	assert.ErrorIs(t, err, ledger.ErrLockNotEnded)
	assert.Equal(t, M(1, nil), M(lenOf(s.GetUserStakes(env.alice))))

	env.events = nil
	principal, reward, err := s.Unstake(env.alice, 0, t0+30*day)
	require.NoError(t, err)
	assert.Equal(t, ether(100).String(), principal.String())
	assert.Equal(t, "410958904109589041", reward.String())

	assert.Equal(t, new(big.Int).Add(ether(1_000_000), reward).String(), env.balance(env.alice, mts.AssetA).String())
	assert.Equal(t, M(0, nil), M(lenOf(s.GetUserStakes(env.alice))))
	assert.Equal(t, "0", mustBig(s.TotalStaked(mts.AssetA)).String())
	assert.Equal(t, []string{"Transfer", "RewardClaimed", "Transfer", "Unstaked"}, env.eventNames())

	_, _, err = s.Unstake(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUnstakeAfterClaim(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)
	_, err := s.ClaimReward(env.alice, 0, t0+30*day)
	require.NoError(t, err)

	// nothing accrued since the claim: only the principal is paid
	env.events = nil
	principal, reward, err := s.Unstake(env.alice, 0, t0+30*day)
	require.NoError(t, err)
	assert.Equal(t, ether(100).String(), principal.String())
	assert.Equal(t, "0", reward.String())
	assert.Equal(t, []string{"Transfer", "Unstaked"}, env.eventNames())
}

func TestInsufficientPool(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)
	env.events = nil

	_, err := s.ClaimReward(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, rewardpool.ErrInsufficientPool)

	stakes, err := s.GetUserStakes(env.alice)
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	assert.Equal(t, t0, stakes[0].LastAccrualTime)
	assert.Equal(t, ether(1_000_000-100).String(), env.balance(env.alice, mts.AssetA).String())
	assert.Empty(t, env.events)

	_, _, err = s.Unstake(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, rewardpool.ErrInsufficientPool)
	assert.Equal(t, M(1, nil), M(lenOf(s.GetUserStakes(env.alice))))
	assert.Equal(t, ether(100).String(), mustBig(s.TotalStaked(mts.AssetA)).String())
	assert.Equal(t, ether(100).String(), env.balance(env.addr, mts.AssetA).String())

	// another asset's funding does not help
	env.approve(env.admin, mts.AssetB, ether(10))
	require.NoError(t, s.AddRewardFunds(env.admin, [mts.AssetCount]*big.Int{nil, ether(10), nil}))
	_, err = s.ClaimReward(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, rewardpool.ErrInsufficientPool)

	// partially funded is still insufficient
	env.approve(env.admin, mts.AssetA, big.NewInt(1000))
	require.NoError(t, s.AddRewardFunds(env.admin, [mts.AssetCount]*big.Int{big.NewInt(1000), nil, nil}))
	_, err = s.ClaimReward(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, rewardpool.ErrInsufficientPool)
	assert.Equal(t, "1000", mustPool(s.RewardPool())[mts.AssetA].String())
}

func TestPause(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)

	assert.ErrorIs(t, s.Pause(env.alice), ErrUnauthorized)
	assert.ErrorIs(t, s.Unpause(env.admin), pausegate.ErrNotPaused)

	env.events = nil
	require.NoError(t, s.Pause(env.admin))
	assert.Equal(t, M(true, nil), M(s.IsPaused()))
	assert.ErrorIs(t, s.Pause(env.admin), pausegate.ErrPaused)

	env.approve(env.alice, mts.AssetA, ether(100))
	_, err := s.Stake(env.alice, ether(100), mts.AssetA, 0, t0)
	assert.ErrorIs(t, err, pausegate.ErrPaused)
	// paused is reported before any validation
	_, err = s.Stake(env.alice, nil, mts.Asset(9), 9, t0)
	assert.ErrorIs(t, err, pausegate.ErrPaused)
	_, err = s.ClaimReward(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, pausegate.ErrPaused)
	_, _, err = s.Unstake(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, pausegate.ErrPaused)

	// reads stay available
	assert.Equal(t, M(bigStr("410958904109589041"), nil), M(s.CalculateReward(env.alice, 0, t0+30*day)))
	assert.Equal(t, M(1, nil), M(lenOf(s.GetUserStakes(env.alice))))

	assert.ErrorIs(t, s.Unpause(env.bob), ErrUnauthorized)
	require.NoError(t, s.Unpause(env.admin))
	assert.Equal(t, M(false, nil), M(s.IsPaused()))

	_, err = s.ClaimReward(env.alice, 0, t0+30*day)
	assert.NoError(t, err)

	assert.Equal(t, []string{"Paused", "Unpaused", "Transfer", "RewardClaimed"}, env.eventNames())
}

func TestListingOrder(t *testing.T) {
	env := newTestEnv(t)
	env.fund()
	s := env.staking()

	amounts := []*big.Int{ether(100), ether(200), ether(300), ether(400)}
	for i, amount := range amounts {
		env.stake(env.alice, amount, mts.AssetA, 0, t0+uint64(i))
	}

	principals := func() []string {
		stakes, err := s.GetUserStakes(env.alice)
		require.NoError(t, err)
		out := make([]string, 0, len(stakes))
		for _, p := range stakes {
			out = append(out, p.Principal.String())
		}
		return out
	}

	now := t0 + 31*day
	_, _, err := s.Unstake(env.alice, 1, now)
	require.NoError(t, err)
	assert.Equal(t, []string{ether(100).String(), ether(300).String(), ether(400).String()}, principals())

	// unstaking index 0 twice closes the first two remaining entries
	principal, _, err := s.Unstake(env.alice, 0, now)
	require.NoError(t, err)
	assert.Equal(t, ether(100).String(), principal.String())
	principal, _, err = s.Unstake(env.alice, 0, now)
	require.NoError(t, err)
	assert.Equal(t, ether(300).String(), principal.String())
	assert.Equal(t, []string{ether(400).String()}, principals())

	assert.Equal(t, ether(400).String(), mustBig(s.TotalStaked(mts.AssetA)).String())
}

func TestTransferAdmin(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()

	assert.ErrorIs(t, s.TransferAdmin(env.alice, env.alice), ErrUnauthorized)
	assert.ErrorIs(t, s.TransferAdmin(env.admin, mts.Address{}), ErrZeroAddress)

	require.NoError(t, s.TransferAdmin(env.admin, env.bob))
	assert.Equal(t, M(env.bob, nil), M(s.Admin()))
	assert.Equal(t, []string{"AdminTransferred"}, env.eventNames())

	assert.ErrorIs(t, s.Pause(env.admin), ErrUnauthorized)
	assert.NoError(t, s.Pause(env.bob))
}

// reentrantToken calls back into staking while moving funds.
type reentrantToken struct {
	Token
	reenter func() error
}

func (r *reentrantToken) TransferFrom(spender, from, to mts.Address, amount *big.Int) error {
	if err := r.reenter(); err != nil {
		return err
	}
	return r.Token.TransferFrom(spender, from, to, amount)
}

func (r *reentrantToken) Transfer(from, to mts.Address, amount *big.Int) error {
	if err := r.reenter(); err != nil {
		return err
	}
	return r.Token.Transfer(from, to, amount)
}

func TestReentrancy(t *testing.T) {
	env := newTestEnv(t)
	env.fund()

	env.stake(env.alice, ether(100), mts.AssetA, 0, t0)

	addrA := env.tokens[mts.AssetA].Address()
	var observed []error
	env.bank.wrap[addrA] = func(tk Token) Token {
		return &reentrantToken{Token: tk, reenter: func() error {
			// the callee sees the position already closed or checkpointed
			_, _, err := env.staking().Unstake(env.alice, 0, t0+30*day)
			observed = append(observed, err)
			return err
		}}
	}
	env.events = nil

	s := env.staking()
	_, err := s.ClaimReward(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, ErrReentrantCall)

	_, _, err = s.Unstake(env.alice, 0, t0+30*day)
	assert.ErrorIs(t, err, ErrReentrantCall)

	env.approve(env.alice, mts.AssetA, ether(100))
	_, err = s.Stake(env.alice, ether(100), mts.AssetA, 0, t0)
	assert.ErrorIs(t, err, ErrReentrantCall)

	require.Len(t, observed, 3)
	for _, err := range observed {
		assert.ErrorIs(t, err, ErrReentrantCall)
	}

	// all failed calls left no trace
	assert.Empty(t, env.events)
	stakes, err := s.GetUserStakes(env.alice)
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	assert.Equal(t, t0, stakes[0].LastAccrualTime)
	assert.Equal(t, ether(5000).String(), mustPool(s.RewardPool())[mts.AssetA].String())

	// the lock was released
	delete(env.bank.wrap, addrA)
	_, err = s.ClaimReward(env.alice, 0, t0+30*day)
	assert.NoError(t, err)
}

func TestMonotonicAccrual(t *testing.T) {
	env := newTestEnv(t)
	s := env.staking()

	env.stake(env.alice, ether(5000), mts.AssetC, 2, t0)

	prev := new(big.Int)
	for now := t0; now <= t0+400*day; now += 7*day + 13 {
		r, err := s.CalculateReward(env.alice, 0, now)
		require.NoError(t, err)
		assert.True(t, r.Cmp(prev) >= 0, "reward decreased at %d", now)
		prev = r
	}
}
