// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Builder to make it easy to build a call.
type Builder struct {
	body body
}

// NewBuilder creates a builder for method.
func NewBuilder(method string) *Builder {
	return &Builder{body: body{Method: method}}
}

// Args encodes args as an RLP list. Args must be RLP encodable, otherwise it panics.
func (b *Builder) Args(args ...any) *Builder {
	if args == nil {
		args = []any{}
	}
	data, err := rlp.EncodeToBytes(args)
	if err != nil {
		panic(err)
	}
	b.body.Args = data
	return b
}

// RawArgs sets already encoded args.
func (b *Builder) RawArgs(data []byte) *Builder {
	b.body.Args = append([]byte(nil), data...)
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Build build call object.
func (b *Builder) Build() *Call {
	if b.body.Args == nil {
		b.Args()
	}
	c := Call{body: b.body}
	return &c
}
