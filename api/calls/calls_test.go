// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/test/testchain"
	"github.com/vechain/mtstake/tx"
)

func httpPost(t *testing.T, url string, body any) (int, []byte) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func encode(t *testing.T, call *tx.Call) RawCall {
	data, err := rlp.EncodeToBytes(call)
	require.NoError(t, err)
	return RawCall{Raw: hexutil.Encode(data)}
}

func TestSendCall(t *testing.T) {
	chain, err := testchain.New()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	New(chain.Runtime()).Mount(router, "/calls")
	ts := httptest.NewServer(router)
	defer ts.Close()

	hundred := new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))

	call, err := chain.NewCall(1, "approve", uint8(mts.AssetA), builtin.Staking.Address, hundred)
	require.NoError(t, err)
	code, body := httpPost(t, ts.URL+"/calls", encode(t, call))
	require.Equal(t, http.StatusOK, code, string(body))

	var receipt api.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.False(t, receipt.Reverted)
	assert.Equal(t, "approve", receipt.Method)
	assert.Equal(t, chain.Account(1), receipt.Origin)
	assert.Equal(t, call.ID(), receipt.CallID)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "Approval", receipt.Events[0].Name)

	// replaying the same call has a stale nonce
	code, _ = httpPost(t, ts.URL+"/calls", encode(t, call))
	assert.Equal(t, http.StatusBadRequest, code)

	// a revert is still a successful request
	call, err = chain.NewCall(1, "stake", hundred, uint8(mts.AssetA), uint8(7))
	require.NoError(t, err)
	code, body = httpPost(t, ts.URL+"/calls", encode(t, call))
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Invalid tier", receipt.RevertReason)
	assert.Empty(t, receipt.Events)
}

func TestSendCallRejected(t *testing.T) {
	chain, err := testchain.New()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	New(chain.Runtime()).Mount(router, "/calls")
	ts := httptest.NewServer(router)
	defer ts.Close()

	unknown, err := chain.NewCall(1, "selfdestruct")
	require.NoError(t, err)
	unsigned := tx.NewBuilder("pause").Build()

	tests := []struct {
		name string
		body any
	}{
		{"not hex", RawCall{Raw: "zz"}},
		{"not rlp", RawCall{Raw: "0x0102"}},
		{"unknown field", map[string]string{"raw": "0x", "extra": "1"}},
		{"unknown method", encode(t, unknown)},
		{"unsigned", encode(t, unsigned)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := httpPost(t, ts.URL+"/calls", tt.body)
			assert.Equal(t, http.StatusBadRequest, code, string(body))
		})
	}

	nonce, err := chain.Runtime().Nonce(chain.Account(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}
