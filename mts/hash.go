// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mts

import (
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

// Blake2b derives storage keys and call ids. Parts are hashed back to back.
func Blake2b(parts ...[]byte) Bytes32 {
	switch len(parts) {
	case 0:
		return blake2b.Sum256(nil)
	case 1:
		return blake2b.Sum256(parts[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, p := range parts {
			w.Write(p)
		}
	})
}

// Blake2bFn hashes whatever fn streams into w.
func Blake2bFn(fn func(w io.Writer)) Bytes32 {
	h, err := blake2b.New256(nil)
	if err != nil {
		// unkeyed construction never fails
		panic(err)
	}
	fn(h)
	var out Bytes32
	h.Sum(out[:0])
	return out
}

// Keccak256 hashes event signatures into topic 0.
func Keccak256(parts ...[]byte) Bytes32 {
	return Bytes32(crypto.Keccak256Hash(parts...))
}
