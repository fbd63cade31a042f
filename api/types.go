// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// Amount is an integer token amount, rendered as a decimal string.
type Amount big.Int

// NewAmount wraps v, nil is treated as zero.
func NewAmount(v *big.Int) *Amount {
	if v == nil {
		return (*Amount)(new(big.Int))
	}
	return (*Amount)(new(big.Int).Set(v))
}

func (a *Amount) Int() *big.Int {
	return (*big.Int)(a)
}

func (a *Amount) String() string {
	return (*big.Int)(a).String()
}

func (a *Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a string or a number; exponent notation such as "100e18" is allowed
// as long as the result is integral.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrap(err, "amount")
	}
	if !d.IsInteger() {
		return errors.Errorf("amount %s is not integral", s)
	}
	(*big.Int)(a).Set(d.BigInt())
	return nil
}

// FormatUnits renders v scaled down by decimals, e.g. 1500000 with 6 decimals is "1.5".
func FormatUnits(v *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// Event is an event emitted by a call.
type Event struct {
	Address mts.Address    `json:"address"`
	Topics  []mts.Bytes32  `json:"topics"`
	Data    string         `json:"data"`
	Name    string         `json:"name,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
}

// ConvertEvent converts ev and decodes it when it was emitted by a builtin contract.
func ConvertEvent(ev *tx.Event) *Event {
	out := &Event{
		Address: ev.Address,
		Topics:  ev.Topics,
		Data:    hexutil.Encode(ev.Data),
	}
	if name, args, err := builtin.DecodeEvent(ev); err == nil {
		out.Name = name
		out.Args = args
	}
	return out
}

// Receipt is the result of a submitted call.
type Receipt struct {
	CallID       mts.Bytes32 `json:"callID"`
	Origin       mts.Address `json:"origin"`
	Method       string      `json:"method"`
	Nonce        uint64      `json:"nonce"`
	Timestamp    uint64      `json:"timestamp"`
	Reverted     bool        `json:"reverted"`
	RevertReason string      `json:"revertReason,omitempty"`
	Outputs      []*Amount   `json:"outputs"`
	Reads        uint64      `json:"reads"`
	Writes       uint64      `json:"writes"`
	Events       []*Event    `json:"events"`
}

// ConvertReceipt converts a runtime receipt.
func ConvertReceipt(r *tx.Receipt) *Receipt {
	out := &Receipt{
		CallID:       r.CallID,
		Origin:       r.Origin,
		Method:       r.Method,
		Nonce:        r.Nonce,
		Timestamp:    r.Timestamp,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Outputs:      make([]*Amount, 0, len(r.Outputs)),
		Reads:        r.Reads,
		Writes:       r.Writes,
		Events:       make([]*Event, 0, len(r.Events)),
	}
	for _, o := range r.Outputs {
		out.Outputs = append(out.Outputs, NewAmount(o))
	}
	for _, ev := range r.Events {
		out.Events = append(out.Events, ConvertEvent(ev))
	}
	return out
}

// LogMeta locates an indexed event.
type LogMeta struct {
	CallNumber uint32      `json:"callNumber"`
	CallID     mts.Bytes32 `json:"callID"`
	CallTime   uint64      `json:"callTime"`
	Origin     mts.Address `json:"origin"`
	Index      uint32      `json:"index"`
}

// FilteredEvent is an indexed event.
type FilteredEvent struct {
	*Event
	Meta LogMeta `json:"meta"`
}

// ConvertFilteredEvent converts an indexed event.
func ConvertFilteredEvent(e *logdb.Event) *FilteredEvent {
	ev := &tx.Event{Address: e.Address, Data: e.Data}
	for _, topic := range e.Topics {
		if topic != nil {
			ev.Topics = append(ev.Topics, *topic)
		}
	}
	return &FilteredEvent{
		Event: ConvertEvent(ev),
		Meta: LogMeta{
			CallNumber: e.CallNumber,
			CallID:     e.CallID,
			CallTime:   e.CallTime,
			Origin:     e.Origin,
			Index:      e.Index,
		},
	}
}

// EventCriteria matches events by emitter, caller and topics.
type EventCriteria struct {
	Address *mts.Address `json:"address"`
	Origin  *mts.Address `json:"origin"`
	Topic0  *mts.Bytes32 `json:"topic0"`
	Topic1  *mts.Bytes32 `json:"topic1"`
	Topic2  *mts.Bytes32 `json:"topic2"`
	Topic3  *mts.Bytes32 `json:"topic3"`
	Topic4  *mts.Bytes32 `json:"topic4"`
}

// Range limits events by call number or call time, both bounds inclusive.
type Range struct {
	Unit string  `json:"unit"`
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter is the body of an event query.
type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

// ConvertEventFilter converts a query into a logdb filter.
func ConvertEventFilter(f *EventFilter) (*logdb.EventFilter, error) {
	out := &logdb.EventFilter{Order: f.Order}
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return nil, errors.Errorf("order: unsupported value %q", f.Order)
	}
	if f.Range != nil {
		r := &logdb.Range{Unit: logdb.Call}
		switch f.Range.Unit {
		case "", string(logdb.Call):
		case string(logdb.Time):
			r.Unit = logdb.Time
		default:
			return nil, errors.Errorf("range.unit: unsupported value %q", f.Range.Unit)
		}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		r.To = ^uint64(0)
		if f.Range.To != nil {
			r.To = *f.Range.To
		}
		if r.From > r.To {
			return nil, errors.New("range.to must be greater than or equal to range.from")
		}
		out.Range = r
	}
	if f.Options != nil {
		out.Options = &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	for _, c := range f.CriteriaSet {
		out.CriteriaSet = append(out.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Origin:  c.Origin,
			Topics:  [5]*mts.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4},
		})
	}
	return out, nil
}
