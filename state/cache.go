// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache caches committed storage values. It is safe for concurrent use and
// may be shared by all states built over the same store.
type Cache struct {
	lru *lru.Cache[storageKey, rlp.RawValue]
}

// NewCache creates a cache holding up to size entries.
func NewCache(size int) *Cache {
	c, err := lru.New[storageKey, rlp.RawValue](size)
	if err != nil {
		panic(err) // only on non-positive size
	}
	return &Cache{lru: c}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *Cache) get(key storageKey) (rlp.RawValue, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *Cache) add(key storageKey, value rlp.RawValue) {
	if c == nil {
		return
	}
	c.lru.Add(key, value)
}
