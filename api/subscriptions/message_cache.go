// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

// messageCache keeps the encoded messages of recent calls so that every
// subscriber does not encode the same receipt again.
type messageCache struct {
	cache *lru.Cache[mts.Bytes32, [][]byte]
	mu    sync.Mutex
}

func newMessageCache(size int) *messageCache {
	if size > 1000 {
		size = 1000
	}
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[mts.Bytes32, [][]byte](size)
	if err != nil {
		panic(fmt.Errorf("failed to create message cache: %v", err))
	}
	return &messageCache{cache: cache}
}

// GetOrAdd returns the encoded event messages of the receipt, one per event.
// The second return value indicates whether the messages were newly encoded.
func (mc *messageCache) GetOrAdd(receipt *tx.Receipt) ([][]byte, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if msgs, ok := mc.cache.Get(receipt.CallID); ok {
		return msgs, false, nil
	}
	msgs := make([][]byte, len(receipt.Events))
	for i := range receipt.Events {
		data, err := json.Marshal(convertEvent(receipt, i))
		if err != nil {
			return nil, false, err
		}
		msgs[i] = data
	}
	mc.cache.Add(receipt.CallID, msgs)
	return msgs, true, nil
}
