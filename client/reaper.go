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
	"time"

	"github.com/nabbar/sydney-client/logger"
	"github.com/nabbar/sydney-client/metrics"
)

const reaperTimeUnit = 500 * time.Millisecond

// reaper periodically trims the idle-port pool to maxPoolCount and reports
// closed SlaveIDs to the server over a control connection. It honours
// cooperative abort: the sleep wakes every reaperTimeUnit to check done,
// so abort()-then-join() completes within one period.
type reaper struct {
	pool         *pool
	period       time.Duration
	maxPoolCount int
	controlConn  func() (*controlConnection, error)
	log          logger.Logger
	metrics      *metrics.Recorder

	done    chan struct{}
	stopped chan struct{}
}

func newReaper(p *pool, period time.Duration, maxPoolCount int, controlConn func() (*controlConnection, error), log logger.Logger, rec *metrics.Recorder) *reaper {
	if period < reaperTimeUnit {
		period = reaperTimeUnit
	}
	if rec == nil {
		rec = metrics.NewNop()
	}
	return &reaper{
		pool:         p,
		period:       period,
		maxPoolCount: maxPoolCount,
		controlConn:  controlConn,
		log:          log,
		metrics:      rec,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

func (r *reaper) start() {
	go r.run()
}

func (r *reaper) run() {
	defer close(r.stopped)

	elapsed := time.Duration(0)
	for {
		select {
		case <-r.done:
			return
		case <-time.After(reaperTimeUnit):
			elapsed += reaperTimeUnit
			if elapsed < r.period {
				continue
			}
			elapsed = 0
			r.tick()
		}
	}
}

// tick reproduces the original DataSource::runnable() gate: eviction and
// the expunged-port report only run at all when pool.size() +
// expunged.size() exceeds maxPoolCount, and the number of idle ports to
// evict is pool.size() - maxPoolCount - expunged.size(), not pool.size() -
// maxPoolCount alone. A pool sitting right at capacity with a handful of
// already-expunged ports awaiting report must not evict fresh idle ports on
// top of those already-gone ones.
func (r *reaper) tick() {
	expunged := r.pool.pendingExpungedCount()
	poolSize := r.pool.len()
	if poolSize+expunged <= r.maxPoolCount {
		return
	}

	var toReport []int32
	if n := poolSize - r.maxPoolCount - expunged; n > 0 {
		evicted := r.pool.evictOldest(n)
		toReport = append(toReport, evicted...)
		r.metrics.AddReaperEvictions(len(evicted))
	}
	toReport = append(toReport, r.pool.drainExpunged()...)
	r.metrics.SetPoolSize(r.pool.len())

	if len(toReport) == 0 {
		return
	}

	cc, err := r.controlConn()
	if err != nil {
		r.log.Warning("reaper: no control connection available to report evicted ports", logger.Field("error", err))
		return
	}
	if err = cc.noReuseConnection(toReport); err != nil {
		r.log.Warning("reaper: NoReuseConnection report failed, reported SlaveIDs dropped", logger.Field("error", err))
		return
	}
	r.metrics.AddNoReuseReported(len(toReport))
}

// abort signals the reaper goroutine to stop at its next wake-up.
func (r *reaper) abort() {
	close(r.done)
}

// join blocks until the reaper goroutine has returned.
func (r *reaper) join() {
	<-r.stopped
}
