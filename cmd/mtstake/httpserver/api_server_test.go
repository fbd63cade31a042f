// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mtstake/api/middleware"
	"github.com/vechain/mtstake/test/testchain"
)

func newTestServer(t *testing.T, opts APIOptions) *httptest.Server {
	chain, err := testchain.New()
	require.NoError(t, err)

	opts.GenesisName = chain.GenesisName()
	handler, closeSubs := NewAPIHandler(chain.Runtime(), chain.LogDB(), opts)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
		chain.Close()
	})
	return ts
}

func TestAPIRoutes(t *testing.T) {
	var apiLogs atomic.Bool
	ts := newTestServer(t, APIOptions{
		AllowedOrigins:  "*",
		LogsLimit:       100,
		EnableReqLogger: &apiLogs,
	})

	for _, path := range []string{"/staking", "/staking/tiers", "/staking/pool", "/tokens/A"} {
		res, err := http.Get(ts.URL + path) //#nosec G107
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Equal(t, "devnet", res.Header.Get(GenesisHeader), path)
		assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader), path)
	}

	res, err := http.Post(ts.URL+"/logs/event", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// debug routes are solo only
	res, err = http.Get(ts.URL + "/debug/time")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAPISoloMode(t *testing.T) {
	ts := newTestServer(t, APIOptions{SoloMode: true, SkipLogs: true})

	res, err := http.Get(ts.URL + "/debug/time")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Post(ts.URL+"/logs/event", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRequestBodyLimit(t *testing.T) {
	ts := newTestServer(t, APIOptions{})

	body := `{"raw":"0x` + strings.Repeat("00", maxBodySize) + `"}`
	res, err := http.Post(ts.URL+"/calls", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, APIOptions{AllowedOrigins: "https://stake.example.org"})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/calls", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://stake.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "https://stake.example.org", res.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.org")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}
