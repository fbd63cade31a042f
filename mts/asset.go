// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mts

import (
	"fmt"
	"strconv"
	"strings"
)

// Asset selects one of the three supported tokens.
// The set is closed: pool balances and asset bindings are fixed-size arrays indexed by Asset.
type Asset uint8

const (
	AssetA Asset = iota
	AssetB
	AssetC

	// AssetCount is the number of supported assets.
	AssetCount = 3
)

// Assets lists all supported assets in selector order.
var Assets = [AssetCount]Asset{AssetA, AssetB, AssetC}

// Valid returns whether the selector is one of the supported assets.
func (a Asset) Valid() bool {
	return a < AssetCount
}

func (a Asset) String() string {
	switch a {
	case AssetA:
		return "A"
	case AssetB:
		return "B"
	case AssetC:
		return "C"
	}
	return "Asset(" + strconv.Itoa(int(a)) + ")"
}

// ParseAsset accepts either the selector index ("0".."2") or the letter name ("a".."c").
func ParseAsset(s string) (Asset, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0", "A":
		return AssetA, nil
	case "1", "B":
		return AssetB, nil
	case "2", "C":
		return AssetC, nil
	}
	return 0, fmt.Errorf("invalid asset %q", s)
}
