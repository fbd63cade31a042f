// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/xenv"
)

type nativeMethod struct {
	name string
	run  func(env *xenv.Environment) ([]*big.Int, error)
}

var nativeMethods = make(map[string]*nativeMethod)

// FindNativeCall returns the native method registered under name.
func FindNativeCall(name string) (func(env *xenv.Environment) ([]*big.Int, error), bool) {
	m, ok := nativeMethods[name]
	if !ok {
		return nil, false
	}
	return m.run, true
}

// NativeCalls lists the registered method names in order.
func NativeCalls() []string {
	names := make([]string, 0, len(nativeMethods))
	for name := range nativeMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func assetOf(v uint8) (mts.Asset, error) {
	asset := mts.Asset(v)
	if !asset.Valid() {
		return 0, tier.ErrInvalidAsset
	}
	return asset, nil
}

func init() {
	defines := []struct {
		name string
		run  func(env *xenv.Environment) ([]*big.Int, error)
	}{
		{"stake", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Amount *big.Int
				Asset  uint8
				Tier   uint8
			}
			env.ParseArgs(&args)
			pos, err := Staking.Native(env.State(), env.Log, env.Usage()).
				Stake(env.Origin(), args.Amount, mts.Asset(args.Asset), args.Tier, env.Now())
			if err != nil {
				return nil, err
			}
			return []*big.Int{new(big.Int).SetUint64(pos.ID), pos.Principal}, nil
		}},
		{"unstake", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Index uint64
			}
			env.ParseArgs(&args)
			principal, reward, err := Staking.Native(env.State(), env.Log, env.Usage()).
				Unstake(env.Origin(), args.Index, env.Now())
			if err != nil {
				return nil, err
			}
			return []*big.Int{principal, reward}, nil
		}},
		{"claimReward", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Index uint64
			}
			env.ParseArgs(&args)
			reward, err := Staking.Native(env.State(), env.Log, env.Usage()).
				ClaimReward(env.Origin(), args.Index, env.Now())
			if err != nil {
				return nil, err
			}
			return []*big.Int{reward}, nil
		}},
		{"addRewardFunds", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				AmountA *big.Int
				AmountB *big.Int
				AmountC *big.Int
			}
			env.ParseArgs(&args)
			amounts := [mts.AssetCount]*big.Int{args.AmountA, args.AmountB, args.AmountC}
			return nil, Staking.Native(env.State(), env.Log, env.Usage()).AddRewardFunds(env.Origin(), amounts)
		}},
		{"pause", func(env *xenv.Environment) ([]*big.Int, error) {
			return nil, Staking.Native(env.State(), env.Log, env.Usage()).Pause(env.Origin())
		}},
		{"unpause", func(env *xenv.Environment) ([]*big.Int, error) {
			return nil, Staking.Native(env.State(), env.Log, env.Usage()).Unpause(env.Origin())
		}},
		{"transferAdmin", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Admin mts.Address
			}
			env.ParseArgs(&args)
			return nil, Staking.Native(env.State(), env.Log, env.Usage()).TransferAdmin(env.Origin(), args.Admin)
		}},
		{"approve", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Asset   uint8
				Spender mts.Address
				Amount  *big.Int
			}
			env.ParseArgs(&args)
			asset, err := assetOf(args.Asset)
			if err != nil {
				return nil, err
			}
			return nil, Tokens[asset].Native(env.State(), env.Log, env.Usage()).Approve(env.Origin(), args.Spender, args.Amount)
		}},
		{"transfer", func(env *xenv.Environment) ([]*big.Int, error) {
			var args struct {
				Asset  uint8
				To     mts.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			asset, err := assetOf(args.Asset)
			if err != nil {
				return nil, err
			}
			return nil, Tokens[asset].Native(env.State(), env.Log, env.Usage()).Transfer(env.Origin(), args.To, args.Amount)
		}},
	}
	for _, def := range defines {
		if _, dup := nativeMethods[def.name]; dup {
			panic(errors.Errorf("native method %q registered twice", def.name))
		}
		nativeMethods[def.name] = &nativeMethod{def.name, def.run}
	}
}
