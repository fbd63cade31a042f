// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// EventMeta locates a streamed event.
type EventMeta struct {
	CallID   mts.Bytes32 `json:"callID"`
	CallTime uint64      `json:"callTime"`
	Origin   mts.Address `json:"origin"`
	Index    uint32      `json:"index"`
}

type EventMessage struct {
	*api.Event
	Meta EventMeta `json:"meta"`
}

// CallMessage is pushed for each committed call.
type CallMessage struct {
	*api.Receipt
}

// EventFilter selects events from committed calls. Nil fields match anything.
type EventFilter struct {
	Address *mts.Address
	Origin  *mts.Address
	Topics  [5]*mts.Bytes32
}

func parseAddress(query url.Values, key string) (*mts.Address, error) {
	s := query.Get(key)
	if s == "" {
		return nil, nil
	}
	addr, err := mts.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return addr, nil
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	var (
		filter EventFilter
		err    error
	)
	if filter.Address, err = parseAddress(query, "addr"); err != nil {
		return nil, err
	}
	if filter.Origin, err = parseAddress(query, "origin"); err != nil {
		return nil, err
	}
	for i, key := range []string{"t0", "t1", "t2", "t3", "t4"} {
		s := query.Get(key)
		if s == "" {
			continue
		}
		topic, err := mts.ParseBytes32(s)
		if err != nil {
			return nil, errors.WithMessage(err, key)
		}
		filter.Topics[i] = &topic
	}
	return &filter, nil
}

// Match reports whether the event emitted by the call passes the filter.
func (f *EventFilter) Match(receipt *tx.Receipt, ev *tx.Event) bool {
	if f.Address != nil && *f.Address != ev.Address {
		return false
	}
	if f.Origin != nil && *f.Origin != receipt.Origin {
		return false
	}
	for i, topic := range f.Topics {
		if topic == nil {
			continue
		}
		if i >= len(ev.Topics) || ev.Topics[i] != *topic {
			return false
		}
	}
	return true
}

func convertEvent(receipt *tx.Receipt, index int) *EventMessage {
	return &EventMessage{
		Event: api.ConvertEvent(receipt.Events[index]),
		Meta: EventMeta{
			CallID:   receipt.CallID,
			CallTime: receipt.Timestamp,
			Origin:   receipt.Origin,
			Index:    uint32(index),
		},
	}
}
