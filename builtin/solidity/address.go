// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/mtstake/mts"
)

type Address struct {
	context *Context
	pos     mts.Bytes32
}

func NewAddress(context *Context, pos mts.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (mts.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return mts.Address{}, err
	}
	a.context.read(32)
	return storage.Address(), nil
}

func (a *Address) Set(addr mts.Address) {
	a.context.write(32)
	a.context.state.SetStorage(a.context.address, a.pos, mts.BytesToBytes32(addr.Bytes()))
}
