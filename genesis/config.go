// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/builtin/token"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/state"
)

// Config is the user supplied genesis, usually loaded from YAML.
// Amounts are integers in the token's smallest unit; exponent notation such as "100e18" is accepted.
type Config struct {
	Name        string        `yaml:"name"`
	Admin       string        `yaml:"admin"`
	Tokens      []TokenConfig `yaml:"tokens"`
	Tiers       []TierConfig  `yaml:"tiers"`
	Funding     []string      `yaml:"rewardFunding"`
	Allocations []Allocation  `yaml:"allocations"`
}

// TokenConfig describes one of the three staked assets.
type TokenConfig struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
}

// TierConfig describes one staking tier.
type TierConfig struct {
	MinStake string `yaml:"minStake"`
	APY      uint64 `yaml:"apy"`
	LockDays uint64 `yaml:"lockDays"`
}

// Allocation mints the given amounts of each asset to an address.
type Allocation struct {
	Address string   `yaml:"address"`
	Amounts []string `yaml:"amounts"`
}

// LoadConfig reads a YAML genesis file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return &cfg, nil
}

// ParseAmount parses an integer amount, allowing decimal exponent notation.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "amount %q", s)
	}
	if !d.IsInteger() || d.Sign() < 0 {
		return nil, errors.Errorf("amount %q must be a non-negative integer", s)
	}
	return d.BigInt(), nil
}

func parseAmounts(list []string) (out [mts.AssetCount]*big.Int, err error) {
	if len(list) > int(mts.AssetCount) {
		return out, errors.Errorf("expected at most %d amounts, got %d", mts.AssetCount, len(list))
	}
	for i := range out {
		out[i] = new(big.Int)
		if i < len(list) {
			if out[i], err = ParseAmount(list[i]); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// NewCustomNet validates cfg and creates the genesis it describes.
func NewCustomNet(cfg *Config) (*Genesis, error) {
	admin, err := mts.ParseAddress(cfg.Admin)
	if err != nil {
		return nil, errors.WithMessage(err, "admin")
	}
	if admin.IsZero() {
		return nil, errors.New("admin must not be zero")
	}
	if len(cfg.Tokens) != int(mts.AssetCount) {
		return nil, errors.Errorf("expected %d tokens, got %d", mts.AssetCount, len(cfg.Tokens))
	}
	if len(cfg.Tiers) != tier.Count {
		return nil, errors.Errorf("expected %d tiers, got %d", tier.Count, len(cfg.Tiers))
	}

	var metas [mts.AssetCount]token.Metadata
	for i, t := range cfg.Tokens {
		metas[i] = token.Metadata{Name: t.Name, Symbol: t.Symbol, Decimals: t.Decimals}
	}

	var tiers [tier.Count]*tier.Tier
	for i, t := range cfg.Tiers {
		minStake, err := ParseAmount(t.MinStake)
		if err != nil {
			return nil, errors.WithMessagef(err, "tier %d", i)
		}
		tiers[i] = &tier.Tier{MinStakeAmount: minStake, APY: t.APY, LockPeriod: t.LockDays * mts.SecondsPerDay}
		if err := tiers[i].Validate(); err != nil {
			return nil, errors.WithMessagef(err, "tier %d", i)
		}
	}

	funding, err := parseAmounts(cfg.Funding)
	if err != nil {
		return nil, errors.WithMessage(err, "reward funding")
	}

	type alloc struct {
		addr    mts.Address
		amounts [mts.AssetCount]*big.Int
	}
	allocs := make([]alloc, 0, len(cfg.Allocations))
	for _, a := range cfg.Allocations {
		addr, err := mts.ParseAddress(a.Address)
		if err != nil {
			return nil, errors.WithMessage(err, "allocation")
		}
		amounts, err := parseAmounts(a.Amounts)
		if err != nil {
			return nil, errors.WithMessagef(err, "allocation %v", addr)
		}
		allocs = append(allocs, alloc{*addr, amounts})
	}

	name := cfg.Name
	if name == "" {
		name = "customnet"
	}

	return new(Builder).
		Name(name).
		State(func(st *state.State, _ uint64) error {
			for _, asset := range mts.Assets {
				if err := builtin.Tokens[asset].Native(st, nil, nil).Initialize(metas[asset]); err != nil {
					return errors.WithMessagef(err, "token %v", asset)
				}
			}
			return nil
		}).
		State(func(st *state.State, _ uint64) error {
			for _, a := range allocs {
				for _, asset := range mts.Assets {
					if a.amounts[asset].Sign() == 0 {
						continue
					}
					if err := builtin.Tokens[asset].Native(st, nil, nil).Mint(a.addr, a.amounts[asset]); err != nil {
						return err
					}
				}
			}
			return nil
		}).
		State(func(st *state.State, _ uint64) error {
			var assets [mts.AssetCount]mts.Address
			for _, asset := range mts.Assets {
				assets[asset] = builtin.Tokens[asset].Address
			}
			return builtin.Staking.Native(st, nil, nil).Initialize(*admin, assets, tiers)
		}).
		State(func(st *state.State, _ uint64) error {
			return fundRewards(st, *admin, funding)
		}).
		Build(), nil
}

// fundRewards mints the funding to admin, then approves and deposits it like an admin would.
func fundRewards(st *state.State, admin mts.Address, funding [mts.AssetCount]*big.Int) error {
	total := new(big.Int)
	for _, asset := range mts.Assets {
		if funding[asset].Sign() == 0 {
			continue
		}
		total.Add(total, funding[asset])
		tk := builtin.Tokens[asset].Native(st, nil, nil)
		if err := tk.Mint(admin, funding[asset]); err != nil {
			return err
		}
		if err := tk.Approve(admin, builtin.Staking.Address, funding[asset]); err != nil {
			return err
		}
	}
	if total.Sign() == 0 {
		return nil
	}
	return builtin.Staking.Native(st, nil, nil).AddRewardFunds(admin, funding)
}
