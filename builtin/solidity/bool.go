// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/mtstake/mts"
)

// Bool is a boolean slot, stored as 1 or cleared.
type Bool struct {
	context *Context
	pos     mts.Bytes32
}

func NewBool(context *Context, pos mts.Bytes32) *Bool {
	return &Bool{context: context, pos: pos}
}

func (b *Bool) Get() (bool, error) {
	storage, err := b.context.state.GetStorage(b.context.address, b.pos)
	if err != nil {
		return false, err
	}
	b.context.read(32)
	return !storage.IsZero(), nil
}

func (b *Bool) Set(v bool) {
	var storage mts.Bytes32
	if v {
		storage[31] = 1
	}
	b.context.write(32)
	b.context.state.SetStorage(b.context.address, b.pos, storage)
}
