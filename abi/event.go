// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/mts"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 mts.Bytes32
	event              *ethabi.Event
	argsWithoutIndexed ethabi.Arguments
	indexedArgs        ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var argsWithoutIndexed, indexedArgs ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexedArgs = append(indexedArgs, arg)
		} else {
			argsWithoutIndexed = append(argsWithoutIndexed, arg)
		}
	}
	return &Event{
		mts.Bytes32(event.ID),
		event,
		argsWithoutIndexed,
		indexedArgs,
	}
}

// ID returns event id.
func (e *Event) ID() mts.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Signature returns the canonical event signature, e.g. Transfer(address,address,uint256).
func (e *Event) Signature() string {
	return e.event.Sig
}

// Encode encodes non-indexed args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(args...)
}

// Topics builds the topic list: event id followed by one topic per indexed arg.
func (e *Event) Topics(indexed ...any) ([]mts.Bytes32, error) {
	if len(indexed) != len(e.indexedArgs) {
		return nil, errors.Errorf("event %s: want %d indexed args, got %d", e.Name(), len(e.indexedArgs), len(indexed))
	}
	topics := make([]mts.Bytes32, 0, len(indexed)+1)
	topics = append(topics, e.id)
	for _, arg := range indexed {
		rules, err := ethabi.MakeTopics([]any{arg})
		if err != nil {
			return nil, errors.Wrapf(err, "event %s", e.Name())
		}
		topics = append(topics, mts.Bytes32(rules[0][0]))
	}
	return topics, nil
}

// Decode decodes event data into v.
func (e *Event) Decode(data []byte, v any) error {
	values, err := e.argsWithoutIndexed.Unpack(data)
	if err != nil {
		return err
	}
	return e.argsWithoutIndexed.Copy(v, values)
}

// DecodeMap decodes both topics and data into a name keyed map.
func (e *Event) DecodeMap(topics []mts.Bytes32, data []byte) (map[string]any, error) {
	if len(topics) == 0 || topics[0] != e.id {
		return nil, errors.Errorf("event %s: topic mismatch", e.Name())
	}
	out := make(map[string]any, len(e.event.Inputs))
	if err := e.argsWithoutIndexed.UnpackIntoMap(out, data); err != nil {
		return nil, err
	}
	hashes := make([]common.Hash, 0, len(topics)-1)
	for _, t := range topics[1:] {
		hashes = append(hashes, common.Hash(t))
	}
	if err := ethabi.ParseTopicsIntoMap(out, e.indexedArgs, hashes); err != nil {
		return nil, err
	}
	return out, nil
}
