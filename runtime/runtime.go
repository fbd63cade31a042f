// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/builtin/staking"
	"github.com/vechain/mtstake/kv"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
	"github.com/vechain/mtstake/xenv"
)

var logger = log.WithContext("pkg", "runtime")

var (
	ErrUnknownMethod       = errors.New("unknown method")
	ErrBadNonce            = errors.New("bad nonce")
	ErrAlreadyBootstrapped = errors.New("already bootstrapped")
)

// Address holds runtime bookkeeping: account nonces and the call counter.
var Address = mts.BytesToAddress([]byte("Runtime"))

var (
	slotNonces  = solidity.Slot("nonces")
	slotCallNum = solidity.Slot("call-number")
)

// Options for the runtime.
type Options struct {
	Clock Clock
	// LogDB indexes events of executed calls, optional.
	LogDB *logdb.LogDB
	// CacheSize is the number of storage slots kept in the read cache.
	CacheSize int
}

// Runtime executes signed calls against the builtin contracts, one at a time.
type Runtime struct {
	lock  sync.Mutex
	db    kv.Store
	cache *state.Cache
	logDB *logdb.LogDB
	clock Clock
	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a runtime over db. It refuses storage written by a newer schema.
func New(db kv.Store, opts Options) (*Runtime, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 4096
	}
	rt := &Runtime{
		db:    db,
		cache: state.NewCache(opts.CacheSize),
		logDB: opts.LogDB,
		clock: opts.Clock,
	}

	schema, err := builtin.Staking.Native(rt.newState(), nil, nil).Schema()
	if err != nil {
		return nil, err
	}
	if schema > staking.SchemaVersion {
		return nil, errors.Wrapf(staking.ErrUnsupportedSchema, "found %d, supported %d", schema, staking.SchemaVersion)
	}
	return rt, nil
}

func (rt *Runtime) newState() *state.State {
	return state.New(rt.db, rt.cache)
}

// Clock returns the clock calls execute at.
func (rt *Runtime) Clock() Clock {
	return rt.clock
}

// LogDB returns the event index, nil if none was configured.
func (rt *Runtime) LogDB() *logdb.LogDB {
	return rt.logDB
}

// Bootstrapped reports whether the staking contract was initialized.
func (rt *Runtime) Bootstrapped() (bool, error) {
	var schema uint64
	err := rt.View(func(st *state.State) (err error) {
		schema, err = builtin.Staking.Native(st, nil, nil).Schema()
		return
	})
	return schema > 0, err
}

// Bootstrap applies build to an empty store and commits the result.
// Events emitted by build are not indexed.
func (rt *Runtime) Bootstrap(build func(st *state.State, now uint64) error) error {
	rt.lock.Lock()
	defer rt.lock.Unlock()

	st := rt.newState()
	schema, err := builtin.Staking.Native(st, nil, nil).Schema()
	if err != nil {
		return err
	}
	if schema > 0 {
		return ErrAlreadyBootstrapped
	}
	if err := build(st, rt.clock.Now()); err != nil {
		return errors.WithMessage(err, "build genesis")
	}
	stage := st.Stage()
	if err := stage.Commit(rt.db.Bulk()); err != nil {
		return err
	}
	logger.Info("bootstrapped", "slots", stage.Len())
	return nil
}

// View runs fn against a read-only snapshot of the committed state.
// Changes made by fn are discarded.
func (rt *Runtime) View(fn func(st *state.State) error) error {
	rt.lock.Lock()
	defer rt.lock.Unlock()
	return fn(rt.newState())
}

// Nonce returns the nonce the next call of addr must carry.
func (rt *Runtime) Nonce(addr mts.Address) (nonce uint64, err error) {
	err = rt.View(func(st *state.State) (err error) {
		nonce, err = nonces(st).Get(addr)
		return
	})
	return
}

// CallNumber returns the number of calls committed so far.
func (rt *Runtime) CallNumber() (n uint32, err error) {
	err = rt.View(func(st *state.State) (err error) {
		n, err = callNumber(st).Get()
		return
	})
	return
}

// SubscribeReceipts registers ch to receive the receipt of every committed call.
func (rt *Runtime) SubscribeReceipts(ch chan<- *tx.Receipt) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close unsubscribes all receipt subscribers.
func (rt *Runtime) Close() {
	rt.scope.Close()
}

// Execute runs a signed call. A call rejected by a contract yields a reverted receipt and leaves
// no trace in storage. Any other failure is returned as error.
func (rt *Runtime) Execute(call *tx.Call) (*tx.Receipt, error) {
	origin, err := call.Origin()
	if err != nil {
		return nil, err
	}
	run, ok := builtin.FindNativeCall(call.Method())
	if !ok {
		return nil, errors.Wrap(ErrUnknownMethod, call.Method())
	}

	start := time.Now()
	receipt, err := rt.execute(call, origin, run)
	if err != nil {
		metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method(), "status": "error"})
		return nil, err
	}
	metricCallDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"method": call.Method()})

	if receipt.Reverted {
		metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method(), "status": "reverted"})
		logger.Debug("call reverted", "id", receipt.CallID, "method", receipt.Method, "origin", origin, "reason", receipt.RevertReason)
		return receipt, nil
	}
	metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method(), "status": "success"})
	metricStorageOps().AddWithLabel(int64(receipt.Reads), map[string]string{"op": "read"})
	metricStorageOps().AddWithLabel(int64(receipt.Writes), map[string]string{"op": "write"})
	logger.Debug("call executed", "id", receipt.CallID, "method", receipt.Method, "origin", origin, "events", len(receipt.Events))

	rt.feed.Send(receipt)
	return receipt, nil
}

func (rt *Runtime) execute(call *tx.Call, origin mts.Address, run func(env *xenv.Environment) ([]*big.Int, error)) (*tx.Receipt, error) {
	rt.lock.Lock()
	defer rt.lock.Unlock()

	st := rt.newState()
	nonce, err := nonces(st).Get(origin)
	if err != nil {
		return nil, err
	}
	if call.Nonce() != nonce {
		return nil, errors.Wrapf(ErrBadNonce, "want %d, got %d", nonce, call.Nonce())
	}

	now := rt.clock.Now()
	env := xenv.New(call, st, &xenv.CallContext{
		ID:     call.ID(),
		Origin: origin,
		Method: call.Method(),
		Nonce:  nonce,
		Time:   now,
	})
	receipt := &tx.Receipt{
		CallID:    call.ID(),
		Origin:    origin,
		Method:    call.Method(),
		Nonce:     nonce,
		Timestamp: now,
	}

	checkpoint := st.NewCheckpoint()
	outputs, err := env.Run(run)
	receipt.Reads, receipt.Writes = env.Usage().Reads, env.Usage().Writes
	if err != nil {
		st.RevertTo(checkpoint)
		if !reverts.IsRevertErr(err) {
			return nil, err
		}
		receipt.Reverted = true
		receipt.RevertReason, _ = reverts.Reason(err)
		return receipt, nil
	}
	receipt.Outputs = outputs
	receipt.Events = env.Events()

	if err := nonces(st).Set(origin, nonce+1); err != nil {
		return nil, err
	}
	num, err := callNumber(st).Get()
	if err != nil {
		return nil, err
	}
	num++
	if err := callNumber(st).Set(num); err != nil {
		return nil, err
	}
	if err := st.Stage().Commit(rt.db.Bulk()); err != nil {
		return nil, err
	}

	if rt.logDB != nil {
		if err := rt.logDB.Write(num, receipt); err != nil {
			logger.Warn("failed to index events", "call", num, "err", err)
		}
	}
	return receipt, nil
}

func nonces(st *state.State) *solidity.Mapping[mts.Address, uint64] {
	return solidity.NewMapping[mts.Address, uint64](solidity.NewContext(Address, st, nil), slotNonces)
}

func callNumber(st *state.State) *solidity.Raw[uint32] {
	return solidity.NewRaw[uint32](solidity.NewContext(Address, st, nil), slotCallNum)
}
