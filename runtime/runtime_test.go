// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/builtin/staking"
	"github.com/vechain/mtstake/genesis"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/lvldb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
)

const launchTime = 1_700_000_000

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testEnv struct {
	t     *testing.T
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	clock *runtime.SoloClock
	rt    *runtime.Runtime
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logDB.Close()
		db.Close()
	})

	clock := runtime.NewSoloClock(func() time.Time { return time.Unix(launchTime, 0) })
	rt, err := runtime.New(db, runtime.Options{Clock: clock, LogDB: logDB})
	require.NoError(t, err)
	require.NoError(t, rt.Bootstrap(genesis.NewDevnet().Apply))

	return &testEnv{t, db, logDB, clock, rt}
}

// exec signs and executes a call from dev account acc with its current nonce.
func (e *testEnv) exec(acc int, method string, args ...any) *tx.Receipt {
	dev := genesis.DevAccounts()[acc]
	nonce, err := e.rt.Nonce(dev.Address)
	require.NoError(e.t, err)

	call := tx.MustSign(tx.NewBuilder(method).Args(args...).Nonce(nonce).Build(), dev.PrivateKey)
	receipt, err := e.rt.Execute(call)
	require.NoError(e.t, err)
	return receipt
}

func (e *testEnv) balance(asset mts.Asset, owner mts.Address) *big.Int {
	var bal *big.Int
	require.NoError(e.t, e.rt.View(func(st *state.State) (err error) {
		bal, err = builtin.Tokens[asset].Native(st, nil, nil).BalanceOf(owner)
		return
	}))
	return bal
}

func eventNames(t *testing.T, receipt *tx.Receipt) []string {
	names := make([]string, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		name, _, err := builtin.DecodeEvent(ev)
		require.NoError(t, err)
		names = append(names, name)
	}
	return names
}

func TestBootstrap(t *testing.T) {
	env := newTestEnv(t)

	ok, err := env.rt.Bootstrapped()
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, env.rt.Bootstrap(genesis.NewDevnet().Apply), runtime.ErrAlreadyBootstrapped)

	num, err := env.rt.CallNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), num)
}

func TestStakeAndClaim(t *testing.T) {
	env := newTestEnv(t)
	alice := genesis.DevAccounts()[1].Address

	receipt := env.exec(1, "approve", uint8(mts.AssetA), builtin.Staking.Address, ether(100))
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, []string{"Approval"}, eventNames(t, receipt))

	receipt = env.exec(1, "stake", ether(100), uint8(mts.AssetA), uint8(0))
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, "1", receipt.Outputs[0].String())
	assert.Equal(t, ether(100).String(), receipt.Outputs[1].String())
	assert.Equal(t, []string{"Transfer", "Staked"}, eventNames(t, receipt))
	assert.Equal(t, uint64(launchTime), receipt.Timestamp)
	assert.NotZero(t, receipt.Writes)

	assert.Equal(t, ether(1_000_000-100).String(), env.balance(mts.AssetA, alice).String())

	env.clock.Advance(30 * mts.SecondsPerDay)
	receipt = env.exec(1, "claimReward", uint64(0))
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, "410958904109589041", receipt.Outputs[0].String())
	assert.Equal(t, []string{"Transfer", "RewardClaimed"}, eventNames(t, receipt))

	nonce, err := env.rt.Nonce(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)

	num, err := env.rt.CallNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), num)

	// indexed
	addr := builtin.Staking.Address
	events, err := env.logDB.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &addr}},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint32(2), events[0].CallNumber)
	assert.Equal(t, alice, events[1].Origin)
	assert.Equal(t, uint64(launchTime+30*mts.SecondsPerDay), events[1].CallTime)
}

func TestRevertedCall(t *testing.T) {
	env := newTestEnv(t)
	alice := genesis.DevAccounts()[1].Address

	env.exec(1, "approve", uint8(mts.AssetA), builtin.Staking.Address, ether(1000))

	tests := []struct {
		name   string
		method string
		args   []any
		reason string
	}{
		{"below minimum", "stake", []any{ether(99), uint8(mts.AssetA), uint8(0)}, "Amount below minimum for tier"},
		{"invalid tier", "stake", []any{ether(100), uint8(mts.AssetA), uint8(3)}, "Invalid tier"},
		{"invalid asset", "stake", []any{ether(100), uint8(3), uint8(0)}, "Invalid token type"},
		{"no allowance", "stake", []any{ether(100), uint8(mts.AssetB), uint8(0)}, "ERC20: insufficient allowance"},
		{"no position", "unstake", []any{uint64(0)}, "Invalid stake index"},
		{"not admin", "pause", nil, "Ownable: caller is not the owner"},
		{"token asset", "transfer", []any{uint8(7), alice, ether(1)}, "Invalid token type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt := env.exec(1, tt.method, tt.args...)
			assert.True(t, receipt.Reverted)
			assert.Equal(t, tt.reason, receipt.RevertReason)
			assert.Empty(t, receipt.Events)
			assert.Empty(t, receipt.Outputs)
		})
	}

	// nothing was kept
	nonce, err := env.rt.Nonce(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
	assert.Equal(t, ether(1_000_000).String(), env.balance(mts.AssetA, alice).String())
}

func TestUnstakeAfterLock(t *testing.T) {
	env := newTestEnv(t)
	bob := genesis.DevAccounts()[2].Address

	env.exec(2, "approve", uint8(mts.AssetB), builtin.Staking.Address, ether(1000))
	env.exec(2, "stake", ether(1000), uint8(mts.AssetB), uint8(1))

	env.clock.Advance(89 * mts.SecondsPerDay)
	receipt := env.exec(2, "unstake", uint64(0))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Lock period not ended", receipt.RevertReason)

	env.clock.Advance(mts.SecondsPerDay)
	receipt = env.exec(2, "unstake", uint64(0))
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, ether(1000).String(), receipt.Outputs[0].String())
	assert.Equal(t, "19726027397260273972", receipt.Outputs[1].String())
	assert.Equal(t, []string{"Transfer", "RewardClaimed", "Transfer", "Unstaked"}, eventNames(t, receipt))

	expected := new(big.Int).Add(ether(1_000_000), receipt.Outputs[1])
	assert.Equal(t, expected.String(), env.balance(mts.AssetB, bob).String())
}

func TestAdminCalls(t *testing.T) {
	env := newTestEnv(t)
	next := genesis.DevAccounts()[3].Address

	receipt := env.exec(0, "pause")
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, []string{"Paused"}, eventNames(t, receipt))

	receipt = env.exec(1, "stake", ether(100), uint8(mts.AssetA), uint8(0))
	assert.Equal(t, "Pausable: paused", receipt.RevertReason)

	receipt = env.exec(0, "unpause")
	require.False(t, receipt.Reverted, receipt.RevertReason)

	receipt = env.exec(0, "transferAdmin", next)
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, []string{"AdminTransferred"}, eventNames(t, receipt))

	receipt = env.exec(0, "pause")
	assert.True(t, receipt.Reverted)

	env.exec(3, "approve", uint8(mts.AssetC), builtin.Staking.Address, ether(10))
	receipt = env.exec(3, "addRewardFunds", big.NewInt(0), big.NewInt(0), ether(10))
	require.False(t, receipt.Reverted, receipt.RevertReason)
	assert.Equal(t, []string{"Transfer", "RewardFundsAdded"}, eventNames(t, receipt))

	var pool [mts.AssetCount]*big.Int
	require.NoError(t, env.rt.View(func(st *state.State) (err error) {
		pool, err = builtin.Staking.Native(st, nil, nil).RewardPool()
		return
	}))
	assert.Equal(t, ether(2010).String(), pool[mts.AssetC].String())
}

func TestRejectedCalls(t *testing.T) {
	env := newTestEnv(t)
	dev := genesis.DevAccounts()[1]

	// unsigned
	_, err := env.rt.Execute(tx.NewBuilder("pause").Build())
	assert.ErrorIs(t, err, tx.ErrInvalidSignature)

	// unknown method
	_, err = env.rt.Execute(tx.MustSign(tx.NewBuilder("mint").Build(), dev.PrivateKey))
	assert.ErrorIs(t, err, runtime.ErrUnknownMethod)

	// nonce from the future
	_, err = env.rt.Execute(tx.MustSign(tx.NewBuilder("pause").Nonce(5).Build(), dev.PrivateKey))
	assert.ErrorIs(t, err, runtime.ErrBadNonce)

	// malformed arguments
	_, err = env.rt.Execute(tx.MustSign(tx.NewBuilder("stake").Args("x").Build(), dev.PrivateKey))
	assert.Error(t, err)

	nonce, err := env.rt.Nonce(dev.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestSubscribeReceipts(t *testing.T) {
	env := newTestEnv(t)

	ch := make(chan *tx.Receipt, 4)
	sub := env.rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	sent := env.exec(1, "approve", uint8(mts.AssetA), builtin.Staking.Address, ether(1))
	// reverted calls are not published
	env.exec(1, "unstake", uint64(0))

	select {
	case got := <-ch:
		assert.Equal(t, sent.CallID, got.CallID)
	case <-time.After(time.Second):
		t.Fatal("receipt not published")
	}
	assert.Len(t, ch, 0)
}

func TestReopen(t *testing.T) {
	env := newTestEnv(t)
	env.exec(1, "approve", uint8(mts.AssetA), builtin.Staking.Address, ether(100))
	env.exec(1, "stake", ether(100), uint8(mts.AssetA), uint8(0))

	rt, err := runtime.New(env.db, runtime.Options{Clock: env.clock})
	require.NoError(t, err)

	ok, err := rt.Bootstrapped()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, rt.View(func(st *state.State) error {
		stakes, err := builtin.Staking.Native(st, nil, nil).GetUserStakes(genesis.DevAccounts()[1].Address)
		require.NoError(t, err)
		require.Len(t, stakes, 1)
		assert.Equal(t, ether(100).String(), stakes[0].Principal.String())
		return nil
	}))
}

func TestUnsupportedSchema(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db, nil)
	schema := solidity.NewRaw[uint64](solidity.NewContext(builtin.Staking.Address, st, nil), solidity.Slot("schema-version"))
	require.NoError(t, schema.Set(staking.SchemaVersion+1))
	require.NoError(t, st.Stage().Commit(db.Bulk()))

	_, err = runtime.New(db, runtime.Options{})
	assert.ErrorIs(t, err, staking.ErrUnsupportedSchema)
}

func TestSoloClock(t *testing.T) {
	clock := runtime.NewSoloClock(func() time.Time { return time.Unix(100, 0) })
	assert.Equal(t, uint64(100), clock.Now())
	assert.Equal(t, uint64(160), clock.Advance(60))
	assert.Equal(t, uint64(160), clock.Now())
	assert.Equal(t, uint64(60), clock.Offset())
}
