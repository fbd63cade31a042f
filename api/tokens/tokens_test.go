// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/test/testchain"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func httpGet(t *testing.T, url string, v any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(body, v), string(body))
	}
	return res.StatusCode
}

func TestTokens(t *testing.T) {
	chain, err := testchain.New()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	New(chain.Runtime()).Mount(router, "/tokens")
	ts := httptest.NewServer(router)
	defer ts.Close()

	alice, bob := chain.Account(1), chain.Account(2)

	var tk Token
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/tokens/c", &tk))
	assert.Equal(t, "C", tk.Asset)
	assert.Equal(t, "DAI", tk.Symbol)
	assert.Equal(t, builtin.Tokens[mts.AssetC].Address, tk.Address)
	// five dev accounts plus the admin's reward funding
	assert.Equal(t, new(big.Int).Add(ether(5_000_000), ether(2000)).String(), tk.TotalSupply.String())

	chain.MustExec(1, "transfer", uint8(mts.AssetB), bob, big.NewInt(1_500_000_000_000_000_000))
	chain.MustExec(1, "approve", uint8(mts.AssetB), bob, ether(7))

	var bal Balance
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/tokens/B/balances/"+bob.String(), &bal))
	assert.Equal(t, "1000001500000000000000000", bal.Amount.String())
	assert.Equal(t, "1000001.5", bal.Formatted)

	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/tokens/1/allowances/"+alice.String()+"/"+bob.String(), &bal))
	assert.Equal(t, ether(7).String(), bal.Amount.String())
	assert.Equal(t, "7", bal.Formatted)

	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/tokens/A/allowances/"+alice.String()+"/"+bob.String(), &bal))
	assert.Equal(t, "0", bal.Amount.String())

	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/tokens/D", nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/tokens/A/balances/0xzz", nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/tokens/A/allowances/"+alice.String()+"/nope", nil))
}
