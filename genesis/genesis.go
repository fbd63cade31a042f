// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/state"
)

// Genesis describes the initial state of the ledger.
type Genesis struct {
	name  string
	procs []func(st *state.State, now uint64) error
}

// Builder helper to build genesis.
type Builder struct {
	name  string
	procs []func(st *state.State, now uint64) error
}

// Name set the genesis name.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// State add a state process. Processes run in the order they were added.
func (b *Builder) State(proc func(st *state.State, now uint64) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// Build returns the genesis.
func (b *Builder) Build() *Genesis {
	procs := make([]func(st *state.State, now uint64) error, len(b.procs))
	copy(procs, b.procs)
	return &Genesis{b.name, procs}
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// Apply writes the genesis state into st. now is the bootstrap time.
func (g *Genesis) Apply(st *state.State, now uint64) error {
	for i, proc := range g.procs {
		if err := proc(st, now); err != nil {
			return errors.WithMessagef(err, "genesis %s: process %d", g.name, i)
		}
	}
	return nil
}
