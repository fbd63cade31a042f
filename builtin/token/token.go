// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the reference fungible token used as staking asset.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/solidity"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
	"github.com/vechain/mtstake/tx"
)

var (
	ErrInsufficientBalance   = reverts.New("ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = reverts.New("ERC20: insufficient allowance")
	ErrZeroAddress           = reverts.New("ERC20: zero address")
	ErrNegativeAmount        = reverts.New("ERC20: negative amount")
	ErrAlreadyInitialized    = reverts.New("token already initialized")
)

var (
	slotMetadata   = solidity.Slot("metadata")
	slotSupply     = solidity.Slot("total-supply")
	slotBalances   = solidity.Slot("balances")
	slotAllowances = solidity.Slot("allowances")
)

// Metadata describes a token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

type allowanceKey mts.Bytes32

func (k allowanceKey) Bytes() []byte {
	return k[:]
}

func newAllowanceKey(owner, spender mts.Address) allowanceKey {
	return allowanceKey(mts.Blake2b(owner.Bytes(), spender.Bytes()))
}

// Token is an ERC20 style ledger stored under its own address.
type Token struct {
	addr mts.Address
	emit func(*tx.Event)

	metadata   *solidity.Raw[*Metadata]
	supply     *solidity.Uint256
	balances   *solidity.Mapping[mts.Address, *big.Int]
	allowances *solidity.Mapping[allowanceKey, *big.Int]
}

// New create a new instance. emit receives Transfer and Approval events and may be nil.
func New(addr mts.Address, st *state.State, emit func(*tx.Event), usage *solidity.Usage) *Token {
	sctx := solidity.NewContext(addr, st, usage)
	return &Token{
		addr:       addr,
		emit:       emit,
		metadata:   solidity.NewRaw[*Metadata](sctx, slotMetadata),
		supply:     solidity.NewUint256(sctx, slotSupply),
		balances:   solidity.NewMapping[mts.Address, *big.Int](sctx, slotBalances),
		allowances: solidity.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
	}
}

func (t *Token) Address() mts.Address {
	return t.addr
}

func (t *Token) log(ev *tx.Event) {
	if t.emit != nil {
		t.emit(ev)
	}
}

// Initialize stores the token metadata.
func (t *Token) Initialize(meta Metadata) error {
	existing, err := t.metadata.Get()
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyInitialized
	}
	return t.metadata.Set(&meta)
}

// Metadata returns name, symbol and decimals, or nil if not initialized.
func (t *Token) Metadata() (*Metadata, error) {
	return t.metadata.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(owner mts.Address) (*big.Int, error) {
	return orZero(t.balances.Get(owner))
}

func (t *Token) Allowance(owner, spender mts.Address) (*big.Int, error) {
	return orZero(t.allowances.Get(newAllowanceKey(owner, spender)))
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(to mts.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	if err := t.supply.Add(amount); err != nil {
		return errors.Wrap(err, "total supply")
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	t.log(transferEvent(t.addr, mts.Address{}, to, amount))
	return nil
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender mts.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if err := t.setAllowance(owner, spender, amount); err != nil {
		return err
	}
	t.log(approvalEvent(t.addr, owner, spender, amount))
	return nil
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to mts.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if err := t.subBalance(from, amount); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	t.log(transferEvent(t.addr, from, to, amount))
	return nil
}

// TransferFrom moves amount from from to to, consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to mts.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	return t.setAllowance(from, spender, new(big.Int).Sub(allowance, amount))
}

func (t *Token) setAllowance(owner, spender mts.Address, amount *big.Int) error {
	key := newAllowanceKey(owner, spender)
	if amount.Sign() == 0 {
		t.allowances.Delete(key)
		return nil
	}
	return t.allowances.Set(key, amount)
}

func (t *Token) addBalance(owner mts.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(owner)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)
	if _, err := solidity.ToUint256(bal); err != nil {
		return errors.Wrap(err, "balance")
	}
	return t.balances.Set(owner, bal)
}

func (t *Token) subBalance(owner mts.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(owner)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	if bal.Sign() == 0 {
		t.balances.Delete(owner)
		return nil
	}
	return t.balances.Set(owner, bal)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func orZero(v *big.Int, err error) (*big.Int, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}
