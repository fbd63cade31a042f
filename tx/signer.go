// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// MustSign signs a call using the provided private key.
// It panics if the signing process fails.
func MustSign(call *Call, pk *ecdsa.PrivateKey) *Call {
	c, err := Sign(call, pk)
	if err != nil {
		panic(err)
	}
	return c
}

// Sign signs a call using the provided private key and returns the signed copy.
func Sign(call *Call, pk *ecdsa.PrivateKey) (*Call, error) {
	sig, err := crypto.Sign(call.SigningHash().Bytes(), pk)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sign call")
	}
	return call.WithSignature(sig), nil
}
