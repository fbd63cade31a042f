// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/tx"
)

type CallIngestion struct {
	CallNumber    uint32     `json:"callNumber"`
	IndexedNumber *uint32    `json:"indexedNumber"`
	LastCallTime  *time.Time `json:"lastCallTime"`
}

type Status struct {
	Healthy       bool           `json:"healthy"`
	Bootstrapped  bool           `json:"bootstrapped"`
	CallIngestion *CallIngestion `json:"callIngestion"`
	Error         string         `json:"error,omitempty"`
}

type Health struct {
	rt    *runtime.Runtime
	logDB *logdb.LogDB

	lock     sync.RWMutex
	lastCall *time.Time
}

func New(rt *runtime.Runtime, logDB *logdb.LogDB) *Health {
	return &Health{rt: rt, logDB: logDB}
}

// Watch records the wall time of each committed call until done is closed.
func (h *Health) Watch(done <-chan struct{}) {
	ch := make(chan *tx.Receipt, 16)
	sub := h.rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ch:
			now := time.Now()
			h.lock.Lock()
			h.lastCall = &now
			h.lock.Unlock()
		case <-sub.Err():
			return
		case <-done:
			return
		}
	}
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	lastCall := h.lastCall
	h.lock.RUnlock()

	status := &Status{CallIngestion: &CallIngestion{LastCallTime: lastCall}}
	fail := func(err error) *Status {
		status.Error = err.Error()
		return status
	}

	bootstrapped, err := h.rt.Bootstrapped()
	if err != nil {
		return fail(err)
	}
	status.Bootstrapped = bootstrapped

	num, err := h.rt.CallNumber()
	if err != nil {
		return fail(err)
	}
	status.CallIngestion.CallNumber = num

	if h.logDB != nil {
		indexed, ok, err := h.logDB.NewestCallNumber()
		if err != nil {
			return fail(err)
		}
		if ok {
			status.CallIngestion.IndexedNumber = &indexed
			// events indexed beyond the committed state mean a stale store
			if indexed > num {
				return fail(errIndexAhead)
			}
		}
	}
	status.Healthy = bootstrapped
	return status
}
