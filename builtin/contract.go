// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"

	"github.com/vechain/mtstake/abi"
	"github.com/vechain/mtstake/builtin/gen"
	"github.com/vechain/mtstake/mts"
)

type contract struct {
	name    string
	Address mts.Address
	ABI     *abi.ABI
}

func mustLoadContract(name, abiName string) *contract {
	abi, err := abi.New(gen.MustABI(abiName))
	if err != nil {
		panic(fmt.Errorf("load ABI for '%s': %w", name, err))
	}

	return &contract{
		name,
		mts.BytesToAddress([]byte(name)),
		abi,
	}
}

// Name returns the name the contract address is derived from.
func (c *contract) Name() string {
	return c.name
}
