// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/mtstake/mts"
)

// DevAccount account for development.
type DevAccount struct {
	Address    mts.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode. The first one is the staking admin.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{mts.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevnetConfig returns the configuration of the development network: three 18-decimal stablecoins,
// the reference tiers, a 5000/3000/2000 reward pool and 1,000,000 of each token for every dev account.
func DevnetConfig() *Config {
	cfg := &Config{
		Name:  "devnet",
		Admin: DevAccounts()[0].Address.String(),
		Tokens: []TokenConfig{
			{Name: "Tether USD", Symbol: "USDT", Decimals: 18},
			{Name: "USD Coin", Symbol: "USDC", Decimals: 18},
			{Name: "Dai Stablecoin", Symbol: "DAI", Decimals: 18},
		},
		Tiers: []TierConfig{
			{MinStake: "100e18", APY: 500, LockDays: 30},
			{MinStake: "1000e18", APY: 800, LockDays: 90},
			{MinStake: "5000e18", APY: 1200, LockDays: 180},
		},
		Funding: []string{"5000e18", "3000e18", "2000e18"},
	}
	for _, acc := range DevAccounts() {
		cfg.Allocations = append(cfg.Allocations, Allocation{
			Address: acc.Address.String(),
			Amounts: []string{"1000000e18", "1000000e18", "1000000e18"},
		})
	}
	return cfg
}

// NewDevnet create genesis for solo mode.
func NewDevnet() *Genesis {
	gene, err := NewCustomNet(DevnetConfig())
	if err != nil {
		panic(err)
	}
	return gene
}
