// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
)

// Usage counts storage slots touched through a Context.
type Usage struct {
	Reads  uint64
	Writes uint64
}

// Context binds storage helpers to a contract address within a state.
type Context struct {
	address mts.Address
	state   *state.State
	usage   *Usage
}

// NewContext creates a context. usage is optional and accumulates slot accesses.
func NewContext(address mts.Address, state *state.State, usage *Usage) *Context {
	return &Context{
		address: address,
		state:   state,
		usage:   usage,
	}
}

func (c *Context) Address() mts.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) read(size int) {
	if c.usage != nil {
		c.usage.Reads += slots(size)
	}
}

func (c *Context) write(size int) {
	if c.usage != nil {
		c.usage.Writes += slots(size)
	}
}

// slots returns the number of 32-byte words needed for size bytes, at least one.
func slots(size int) uint64 {
	if size <= 32 {
		return 1
	}
	return (uint64(size) + 31) / 32
}

// Slot derives a fixed slot position from a name.
func Slot(name string) mts.Bytes32 {
	return mts.BytesToBytes32([]byte(name))
}
