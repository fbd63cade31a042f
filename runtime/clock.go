// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"
	"time"
)

// Clock provides the timestamp calls execute at, in seconds.
type Clock interface {
	Now() uint64
}

// SystemClock follows the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// SoloClock is a wall clock that can be moved forward, for local development.
type SoloClock struct {
	lock   sync.Mutex
	base   func() time.Time
	offset uint64
}

// NewSoloClock creates a solo clock. base defaults to time.Now.
func NewSoloClock(base func() time.Time) *SoloClock {
	if base == nil {
		base = time.Now
	}
	return &SoloClock{base: base}
}

func (c *SoloClock) Now() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return uint64(c.base().Unix()) + c.offset
}

// Advance moves the clock forward by seconds and returns the new time.
func (c *SoloClock) Advance(seconds uint64) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.offset += seconds
	return uint64(c.base().Unix()) + c.offset
}

// Offset returns the total time the clock was advanced by.
func (c *SoloClock) Offset() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.offset
}
