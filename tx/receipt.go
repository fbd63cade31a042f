// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/vechain/mtstake/mts"
)

// Event is emitted by a contract during a call.
type Event struct {
	// address of the contract that emitted the event
	Address mts.Address
	// first topic is the event id
	Topics []mts.Bytes32
	// ABI encoded non-indexed fields
	Data []byte
}

// Events slice of event logs.
type Events []*Event

// Receipt represents the result of a call.
type Receipt struct {
	CallID mts.Bytes32
	Origin mts.Address
	Method string
	Nonce  uint64
	// clock time the call executed at
	Timestamp uint64
	// true if the call aborted; no state change was kept
	Reverted     bool
	RevertReason string
	// return values of the method, empty if reverted
	Outputs []*big.Int
	// storage slots touched
	Reads  uint64
	Writes uint64
	Events Events
}
