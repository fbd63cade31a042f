// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sink []byte

func TestPrettyNumbers(t *testing.T) {
	tests := []struct {
		got  []byte
		want string
	}{
		{appendInt64(nil, 99999), "99999"},
		{appendInt64(nil, 100000), "100,000"},
		{appendInt64(nil, -1234567), "-1,234,567"},
		{appendUint64(nil, 18446744073709551615, false), "18,446,744,073,709,551,615"},
		{appendBigInt(nil, new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))), "100,000,000,000,000,000,000"},
		{appendBigInt(nil, new(big.Int).Neg(new(big.Int).Mul(big.NewInt(5000), big.NewInt(1e18)))), "-5,000,000,000,000,000,000,000"},
		{appendU256(nil, uint256.NewInt(42)), "42"},
		{appendU256(nil, new(uint256.Int).Mul(uint256.NewInt(1000), uint256.NewInt(1e18))), "1,000,000,000,000,000,000,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(tt.got))
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", string(appendEscapeString(nil, "plain")))
	assert.Equal(t, `"has space"`, string(appendEscapeString(nil, "has space")))
	assert.Equal(t, `"quote\"d"`, string(appendEscapeString(nil, `quote"d`)))
	assert.Equal(t, "multi\nline", escapeMessage("multi\nline"))
	assert.Equal(t, `"a=b"`, escapeMessage("a=b"))
}

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)

	l := NewLogger(NewHandler(&out, &lvl, FormatTerminal, false)).With("pkg", "staking")
	l.Debug("hidden")
	l.Info("staked", "amount", new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)), "tier", 0)

	line := out.String()
	require.Equal(t, 1, strings.Count(line, "\n"))
	assert.True(t, strings.HasPrefix(line, "INFO ["))
	assert.Contains(t, line, "pkg=staking")
	assert.Contains(t, line, "amount=100,000,000,000,000,000,000")
	assert.Contains(t, line, "tier=0")
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelTrace)

	NewLogger(NewHandler(&out, &lvl, FormatJSON, false)).Trace("accrued", "reward", big.NewInt(4), "nilInt", (*big.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "trace", rec["lvl"])
	assert.Equal(t, "4", rec["reward"])
	assert.Equal(t, "<nil>", rec["nilInt"])
	assert.Contains(t, rec, "t")
}

func TestWithContextFollowsRoot(t *testing.T) {
	defer SetDefault(NewLogger(DiscardHandler()))

	l := WithContext("pkg", "test")

	var out bytes.Buffer
	SetDefault(NewLogger(NewHandler(&out, new(slog.LevelVar), FormatLogfmt, false)))
	l.Info("hello", "k", "v")

	assert.Contains(t, out.String(), "pkg=test")
	assert.Contains(t, out.String(), "k=v")
	assert.Contains(t, out.String(), "lvl=info")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func BenchmarkPrettyInt64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendInt64(buf, rand.Int64()) //#nosec G404
	}
}

func BenchmarkPrettyUint64Logfmt(b *testing.B) {
	buf := make([]byte, 100)
	b.ReportAllocs()
	for b.Loop() {
		sink = appendUint64(buf, rand.Uint64(), false) //#nosec G404
	}
}
