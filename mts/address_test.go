// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in  string
		ok  bool
		out string
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", true, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"},
		{"0X7567D83B7B8D80ADDCB281A71D54FC7B3364FFED", true, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false, ""},
		{"0x7567d83b", false, ""},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", false, ""},
	}
	for _, tt := range tests {
		addr, err := ParseAddress(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.out, addr.String())
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))

	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &decoded))
	assert.True(t, Address{}.IsZero())
	assert.False(t, addr.IsZero())
}

func TestParseBytes32(t *testing.T) {
	const hex64 = "00000000000000000000000000000000000000000000000000000000000000ff"
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"prefixed", "0x" + hex64, true},
		{"bare", hex64, true},
		{"upper prefix", "0X" + hex64, true},
		{"bad prefix", "1x" + hex64, false},
		{"short", "0xff", false},
		{"not hex", "0x" + hex64[:62] + "zz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBytes32(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x"+hex64, b.String())
		})
	}
}

func TestBytes32Address(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))
	topic := BytesToBytes32(addr.Bytes())
	assert.Equal(t, addr, topic.Address())

	data, err := json.Marshal(&topic)
	require.NoError(t, err)
	var decoded Bytes32
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, topic, decoded)
	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}

func TestAsset(t *testing.T) {
	for i, a := range Assets {
		assert.Equal(t, Asset(i), a)
		assert.True(t, a.Valid())
	}
	assert.False(t, Asset(3).Valid())
	assert.Equal(t, "Asset(7)", Asset(7).String())

	for in, want := range map[string]Asset{"0": AssetA, "b": AssetB, " C ": AssetC, "2": AssetC} {
		got, err := ParseAsset(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAsset("3")
	assert.Error(t, err)
}

func TestBlake2b(t *testing.T) {
	joined := Blake2b([]byte("slot"), []byte("key"))
	assert.Equal(t, Blake2b([]byte("slotkey")), joined)
	assert.NotEqual(t, Blake2b([]byte("slot")), joined)
}

func TestRewardDenominator(t *testing.T) {
	assert.Equal(t, "315360000000", RewardDenominator.String())
}

func TestAddressMapKey(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))
	data, err := json.Marshal(map[Address]int{addr: 1})
	require.NoError(t, err)
	assert.Equal(t, `{"`+addr.String()+`":1}`, string(data))

	var decoded map[Address]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded[addr])
}
