// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/genesis"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/lvldb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/tx"
)

// LaunchTime is the clock start of a test chain.
const LaunchTime = 1_700_000_000

// Chain is an in-memory devnet ledger for tests: leveldb state, sqlite event index and a solo clock.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	clock   *runtime.SoloClock
	rt      *runtime.Runtime
	genesis *genesis.Genesis
}

// New creates a chain bootstrapped with the devnet genesis.
func New() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a chain bootstrapped with gene.
func NewWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	clock := runtime.NewSoloClock(func() time.Time { return time.Unix(LaunchTime, 0) })
	rt, err := runtime.New(db, runtime.Options{Clock: clock, LogDB: logDB})
	if err != nil {
		return nil, err
	}
	if err := rt.Bootstrap(gene.Apply); err != nil {
		return nil, err
	}
	return &Chain{db, logDB, clock, rt, gene}, nil
}

func (c *Chain) Runtime() *runtime.Runtime { return c.rt }
func (c *Chain) LogDB() *logdb.LogDB       { return c.logDB }
func (c *Chain) Clock() *runtime.SoloClock { return c.clock }
func (c *Chain) Database() *lvldb.LevelDB  { return c.db }
func (c *Chain) GenesisName() string       { return c.genesis.Name() }
func (c *Chain) Account(i int) mts.Address { return genesis.DevAccounts()[i].Address }

// Close releases the databases.
func (c *Chain) Close() {
	c.rt.Close()
	c.logDB.Close()
	c.db.Close()
}

// NewCall builds a call from dev account acc, signed with its current nonce.
func (c *Chain) NewCall(acc int, method string, args ...any) (*tx.Call, error) {
	dev := genesis.DevAccounts()[acc]
	nonce, err := c.rt.Nonce(dev.Address)
	if err != nil {
		return nil, err
	}
	return tx.Sign(tx.NewBuilder(method).Args(args...).Nonce(nonce).Build(), dev.PrivateKey)
}

// Exec signs and executes a call from dev account acc.
func (c *Chain) Exec(acc int, method string, args ...any) (*tx.Receipt, error) {
	call, err := c.NewCall(acc, method, args...)
	if err != nil {
		return nil, err
	}
	return c.rt.Execute(call)
}

// MustExec is like Exec but fails on error or revert.
func (c *Chain) MustExec(acc int, method string, args ...any) *tx.Receipt {
	receipt, err := c.Exec(acc, method, args...)
	if err != nil {
		panic(err)
	}
	if receipt.Reverted {
		panic(errors.Errorf("%s reverted: %s", method, receipt.RevertReason))
	}
	return receipt
}
