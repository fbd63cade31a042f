// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/abi"
	"github.com/vechain/mtstake/builtin/gen"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// ABI of the token events.
var ABI = abi.MustNew(gen.MustABI("Token"))

var (
	transferABI, _ = ABI.EventByName("Transfer")
	approvalABI, _ = ABI.EventByName("Approval")
)

func newEvent(contract mts.Address, ev *abi.Event, a, b mts.Address, value *big.Int) *tx.Event {
	topics, err := ev.Topics(common.Address(a), common.Address(b))
	if err != nil {
		panic(err)
	}
	data, err := ev.Encode(value)
	if err != nil {
		panic(err)
	}
	return &tx.Event{Address: contract, Topics: topics, Data: data}
}

func transferEvent(contract, from, to mts.Address, value *big.Int) *tx.Event {
	return newEvent(contract, transferABI, from, to, value)
}

func approvalEvent(contract, owner, spender mts.Address, value *big.Int) *tx.Event {
	return newEvent(contract, approvalABI, owner, spender, value)
}

// Decode resolves ev against the token ABI and returns the event name with its fields.
func Decode(ev *tx.Event) (string, map[string]any, error) {
	if len(ev.Topics) == 0 {
		return "", nil, errors.New("missing event id")
	}
	def, ok := ABI.EventByID(ev.Topics[0])
	if !ok {
		return "", nil, errors.Errorf("unknown event %v", ev.Topics[0])
	}
	fields, err := def.DecodeMap(ev.Topics, ev.Data)
	if err != nil {
		return "", nil, errors.Wrapf(err, "decode %s", def.Name())
	}
	return def.Name(), fields, nil
}
