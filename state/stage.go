// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/kv"
)

// Stage abstracts the net changes of a state, ready to be committed.
type Stage struct {
	changes map[storageKey]rlp.RawValue
	cache   *Cache
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the given bulk and flushes it.
// The shared cache is updated only after the write succeeded.
func (s *Stage) Commit(bulk kv.Bulk) error {
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return errors.Wrap(err, "stage changes")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write changes")
	}
	for k, v := range s.changes {
		s.cache.add(k, v)
	}
	metricStageCounter().Add(int64(len(s.changes)))
	return nil
}
