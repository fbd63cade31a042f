// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
)

// ErrBadArgs is returned when native call arguments cannot be decoded.
var ErrBadArgs = errors.New("bad native input")

// CallContext describes the call being executed.
type CallContext struct {
	ID     mts.Bytes32
	Origin mts.Address
	Method string
	Nonce  uint64
	// clock time the call executes at, in seconds
	Time uint64
}

type argError struct {
	cause error
}

// Environment an env to execute native method.
type Environment struct {
	call    *tx.Call
	state   *state.State
	callCtx *CallContext
	usage   *solidity.Usage
	events  tx.Events
}

// New create a new env.
func New(call *tx.Call, state *state.State, callCtx *CallContext) *Environment {
	return &Environment{
		call:    call,
		state:   state,
		callCtx: callCtx,
		usage:   &solidity.Usage{},
	}
}

func (env *Environment) State() *state.State       { return env.state }
func (env *Environment) CallContext() *CallContext { return env.callCtx }
func (env *Environment) Origin() mts.Address       { return env.callCtx.Origin }
func (env *Environment) Now() uint64               { return env.callCtx.Time }
func (env *Environment) Usage() *solidity.Usage    { return env.usage }
func (env *Environment) Events() tx.Events         { return env.events }
func (env *Environment) Log(ev *tx.Event)          { env.events = append(env.events, ev) }

// ParseArgs decodes the call arguments into val. A malformed argument list aborts the call.
func (env *Environment) ParseArgs(val any) {
	if err := env.call.DecodeArgs(val); err != nil {
		panic(&argError{errors.WithMessage(ErrBadArgs, err.Error())})
	}
}

// Run executes proc, turning argument decoding failures into an error.
func (env *Environment) Run(proc func(env *Environment) ([]*big.Int, error)) (output []*big.Int, err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*argError); ok {
				output, err = nil, rec.cause
				return
			}
			panic(e)
		}
	}()
	return proc(env)
}
