// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/builtin/staking"
	"github.com/vechain/mtstake/builtin/staking/events"
	"github.com/vechain/mtstake/builtin/token"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
)

// Builtin contracts binding.
var (
	Staking = &stakingContract{mustLoadContract("Staking", "Staking")}
	Tokens  = [mts.AssetCount]*tokenContract{
		{mustLoadContract("TokenA", "Token")},
		{mustLoadContract("TokenB", "Token")},
		{mustLoadContract("TokenC", "Token")},
	}
)

type (
	stakingContract struct{ *contract }
	tokenContract   struct{ *contract }
)

// Native binds the staking contract to st. Token transfers made by staking are
// emitted with its own events, in call order.
func (s *stakingContract) Native(st *state.State, emit func(*tx.Event), usage *solidity.Usage) *staking.Staking {
	return staking.New(s.Address, st, &bank{st, usage}, emit, usage)
}

// Native binds the token to st.
func (t *tokenContract) Native(st *state.State, emit func(*tx.Event), usage *solidity.Usage) *token.Token {
	return token.New(t.Address, st, emit, usage)
}

// TokenAt returns the builtin token deployed at addr.
func TokenAt(addr mts.Address) (*tokenContract, bool) {
	for _, t := range Tokens {
		if t.Address == addr {
			return t, true
		}
	}
	return nil, false
}

// bank resolves builtin tokens for the staking contract.
type bank struct {
	state *state.State
	usage *solidity.Usage
}

func (b *bank) Token(addr mts.Address, emit func(*tx.Event)) (staking.Token, error) {
	t, ok := TokenAt(addr)
	if !ok {
		return nil, errors.Errorf("no token deployed at %v", addr)
	}
	return t.Native(b.state, emit, b.usage), nil
}

// DecodeEvent decodes an event emitted by any builtin contract.
func DecodeEvent(ev *tx.Event) (string, map[string]any, error) {
	if ev.Address == Staking.Address {
		return events.Decode(ev)
	}
	if _, ok := TokenAt(ev.Address); ok {
		return token.Decode(ev)
	}
	return "", nil, errors.Errorf("unknown contract %v", ev.Address)
}
