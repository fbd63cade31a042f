// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/mtstake/mts"
)

// Event is an indexed contract event.
type Event struct {
	CallNumber uint32
	Index      uint32
	CallID     mts.Bytes32
	CallTime   uint64
	Origin     mts.Address
	Address    mts.Address // always a contract address
	Topics     [5]*mts.Bytes32
	Data       []byte
}

type RangeType string

const (
	Call RangeType = "call"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds a query by call number or call time, both inclusive.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *mts.Address
	Origin  *mts.Address
	Topics  [5]*mts.Bytes32
}

type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
