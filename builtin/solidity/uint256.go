// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/mts"
)

var (
	ErrOverflow  = errors.New("uint256 overflow")
	ErrUnderflow = errors.New("uint256 underflow")
	ErrNegative  = errors.New("negative uint256")
)

// Uint256 is an unsigned 256-bit integer slot with checked arithmetic.
type Uint256 struct {
	context *Context
	pos     mts.Bytes32
}

func NewUint256(context *Context, pos mts.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) load() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	u.context.read(32)
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) store(v *uint256.Int) {
	u.context.write(32)
	u.context.state.SetStorage(u.context.address, u.pos, v.Bytes32())
}

// ToUint256 converts a non-negative big integer, failing on values beyond 256 bits.
func ToUint256(value *big.Int) (*uint256.Int, error) {
	if value.Sign() < 0 {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(value)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.load()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) Set(value *big.Int) error {
	v, err := ToUint256(value)
	if err != nil {
		return err
	}
	u.store(v)
	return nil
}

// Add increases the slot by value, failing without side effects on overflow.
func (u *Uint256) Add(value *big.Int) error {
	delta, err := ToUint256(value)
	if err != nil {
		return err
	}
	current, err := u.load()
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(current, delta)
	if overflow {
		return ErrOverflow
	}
	u.store(sum)
	return nil
}

// Sub decreases the slot by value, failing without side effects when value exceeds the stored amount.
func (u *Uint256) Sub(value *big.Int) error {
	delta, err := ToUint256(value)
	if err != nil {
		return err
	}
	current, err := u.load()
	if err != nil {
		return err
	}
	diff, underflow := new(uint256.Int).SubOverflow(current, delta)
	if underflow {
		return ErrUnderflow
	}
	u.store(diff)
	return nil
}
