/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package client

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// pool is the DataSource's idle-Port registry: a fixed-capacity slot array
// plus a bitset marking which slots are occupied (the free-list), and a
// SlaveID index for O(1) popPort-by-id and duplicate-push detection. Slots
// are handed out oldest-first via order, so the reaper's "oldest N" eviction
// is a simple prefix scan.
type pool struct {
	mu sync.Mutex

	capacity int
	occupied *bitset.BitSet
	slots    []*Port
	index    map[int32]int // SlaveID -> slot
	order    []int32       // SlaveIDs, oldest first

	expunged []int32
}

func newPool(capacity int) *pool {
	if capacity <= 0 {
		capacity = 1
	}
	return &pool{
		capacity: capacity,
		occupied: bitset.New(uint(capacity)),
		slots:    make([]*Port, capacity),
		index:    make(map[int32]int, capacity),
	}
}

// pushPort resets the port's reuse-flag, then inserts it by SlaveID. It is
// an error to push a port whose SlaveID is already in the pool. If the pool
// is at capacity, the port is closed instead of queued (the reaper is
// expected to keep the pool under capacity in steady state; this is the
// overflow backstop).
func (p *pool) pushPort(port *Port) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := port.SlaveID()
	if _, exists := p.index[id]; exists {
		return errPoolDuplicatePush.Error(nil)
	}

	slot := -1
	for i := 0; i < p.capacity; i++ {
		if !p.occupied.Test(uint(i)) {
			slot = i
			break
		}
	}
	if slot == -1 {
		return port.Close()
	}

	port.resetReusable()
	p.occupied.Set(uint(slot))
	p.slots[slot] = port
	p.index[id] = slot
	p.order = append(p.order, id)
	return nil
}

// popPort removes and returns an arbitrary idle port, marking it in-use.
// It returns nil if the pool is empty.
func (p *pool) popPort() *Port {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.order) == 0 {
		return nil
	}

	id := p.order[0]
	p.order = p.order[1:]
	slot := p.index[id]
	port := p.slots[slot]

	delete(p.index, id)
	p.slots[slot] = nil
	p.occupied.Clear(uint(slot))

	port.markInUse()
	return port
}

// popPortByID removes and returns the idle port registered under id, if
// still present.
func (p *pool) popPortByID(id int32) *Port {
	p.mu.Lock()
	defer p.mu.Unlock()

	slot, ok := p.index[id]
	if !ok {
		return nil
	}
	port := p.slots[slot]

	delete(p.index, id)
	p.slots[slot] = nil
	p.occupied.Clear(uint(slot))
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}

	port.markInUse()
	return port
}

// expungePort records the port's SlaveID as unilaterally closed by the
// client, then closes it. Used when a port is dropped outside the normal
// pool lifecycle (e.g. a port that failed with a system-level error, or a
// ResultSet that ended Canceled).
func (p *pool) expungePort(port *Port) error {
	p.mu.Lock()
	p.expunged = append(p.expunged, port.SlaveID())
	p.mu.Unlock()
	return port.Close()
}

// len returns the number of idle ports currently pooled.
func (p *pool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// drainExpunged returns and clears the accumulated expunged SlaveID list,
// for the reaper's NoReuseConnection report.
func (p *pool) drainExpunged() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.expunged
	p.expunged = nil
	return out
}

// pendingExpungedCount is a non-destructive peek at the number of SlaveIDs
// awaiting a NoReuseConnection report, used alongside len() to reproduce the
// original "pool.size() + expunged.size()" eviction gate without draining
// the list as a side effect of just checking it.
func (p *pool) pendingExpungedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.expunged)
}

// evictOldest closes and removes the oldest n idle ports, returning their
// SlaveIDs. Used by the reaper when |pool| exceeds MaxPoolCount.
func (p *pool) evictOldest(n int) []int32 {
	p.mu.Lock()
	if n > len(p.order) {
		n = len(p.order)
	}
	ids := make([]int32, 0, n)
	victims := make([]*Port, 0, n)
	for i := 0; i < n; i++ {
		id := p.order[i]
		slot := p.index[id]
		victims = append(victims, p.slots[slot])
		ids = append(ids, id)
		delete(p.index, id)
		p.slots[slot] = nil
		p.occupied.Clear(uint(slot))
	}
	p.order = p.order[n:]
	p.mu.Unlock()

	for _, v := range victims {
		_ = v.Close()
	}
	return ids
}
