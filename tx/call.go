// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/mts"
)

var ErrInvalidSignature = errors.New("invalid signature")

// Call is an immutable, signed invocation of a named contract method.
type Call struct {
	body body

	cache struct {
		signingHash atomic.Value
		origin      atomic.Value
		id          atomic.Value
	}
}

// body describes details of a call.
type body struct {
	Method    string
	Args      []byte
	Nonce     uint64
	Signature []byte
}

// Method returns the method name.
func (c *Call) Method() string {
	return c.body.Method
}

// Args returns the RLP encoded argument list.
func (c *Call) Args() []byte {
	return append([]byte(nil), c.body.Args...)
}

// DecodeArgs decodes the argument list into v, which should point to a struct or slice.
func (c *Call) DecodeArgs(v any) error {
	if len(c.body.Args) == 0 {
		return errors.New("empty args")
	}
	return rlp.DecodeBytes(c.body.Args, v)
}

// Nonce returns the nonce the origin's account must be at.
func (c *Call) Nonce() uint64 {
	return c.body.Nonce
}

// Signature returns the signature.
func (c *Call) Signature() []byte {
	return append([]byte(nil), c.body.Signature...)
}

// SigningHash returns hash of the call excluding signature.
func (c *Call) SigningHash() (hash mts.Bytes32) {
	if cached := c.cache.signingHash.Load(); cached != nil {
		return cached.(mts.Bytes32)
	}
	defer func() { c.cache.signingHash.Store(hash) }()

	return mts.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			c.body.Method,
			c.body.Args,
			c.body.Nonce,
		})
	})
}

// WithSignature create a new call object with signature set.
func (c *Call) WithSignature(sig []byte) *Call {
	cpy := Call{body: c.body}
	cpy.body.Signature = append([]byte(nil), sig...)
	return &cpy
}

// Origin extracts the address of the signer.
func (c *Call) Origin() (origin mts.Address, err error) {
	if cached := c.cache.origin.Load(); cached != nil {
		return cached.(mts.Address), nil
	}
	defer func() {
		if err == nil {
			c.cache.origin.Store(origin)
		}
	}()

	if len(c.body.Signature) != crypto.SignatureLength {
		return mts.Address{}, ErrInvalidSignature
	}
	pub, err := crypto.SigToPub(c.SigningHash().Bytes(), c.body.Signature)
	if err != nil {
		return mts.Address{}, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return mts.Address(crypto.PubkeyToAddress(*pub)), nil
}

// ID returns id of call.
// ID = hash(signingHash, origin).
// It returns zero Bytes32 if origin not available.
func (c *Call) ID() (id mts.Bytes32) {
	if cached := c.cache.id.Load(); cached != nil {
		return cached.(mts.Bytes32)
	}
	defer func() { c.cache.id.Store(id) }()

	origin, err := c.Origin()
	if err != nil {
		return
	}
	return mts.Blake2b(c.SigningHash().Bytes(), origin.Bytes())
}

// EncodeRLP implements rlp.Encoder
func (c *Call) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder
func (c *Call) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*c = Call{body: body}
	return nil
}

func (c *Call) String() string {
	origin, _ := c.Origin()
	return fmt.Sprintf(`Call(%v)
	Method:    %v
	Origin:    %v
	Nonce:     %v
	Args:      0x%x`, c.ID(), c.body.Method, origin, c.body.Nonce, c.body.Args)
}
