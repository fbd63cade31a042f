// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad address")), http.StatusBadRequest, "bad address\n"},
		{"forbidden", Forbidden(errors.New("disabled")), http.StatusForbidden, "disabled\n"},
		{"not found", NotFound(errors.New("no stake")), http.StatusNotFound, "no stake\n"},
		{"custom", HTTPError(errors.New("teapot"), http.StatusTeapot), http.StatusTeapot, "teapot\n"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Seconds uint64 `json:"seconds"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"seconds": 60}`), &v))
	assert.Equal(t, uint64(60), v.Seconds)

	assert.Error(t, ParseJSON(strings.NewReader(`{"second": 60}`), &v))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, M{"paused": true}))
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"paused\":true}\n", rec.Body.String())
}
