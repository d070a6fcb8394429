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

// Package metrics exposes the pool/reaper/control-connection gauges a
// process embedding client.DataSource would want to scrape: idle-port
// count, evictions, control-connection count and session count. None of
// this is read by client itself — a DataSource is handed a Recorder and
// calls its setters at the same points the reaper and DataSource already
// touch their own internal counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the seam client.DataSource/reaper would call into. A nil
// *Recorder is never passed around; callers use NewNop() instead so every
// call site can unconditionally record without a presence check.
type Recorder struct {
	poolSize          prometheus.Gauge
	reaperEvictions   prometheus.Counter
	controlConnCount  prometheus.Gauge
	sessionCount      prometheus.Gauge
	noReuseReported   prometheus.Counter
}

// New registers the gauges/counters on reg and returns a Recorder backed by
// them. namespace/subsystem follow the usual prometheus client convention,
// e.g. New(reg, "sydney", "client").
func New(reg prometheus.Registerer, namespace, subsystem string) *Recorder {
	r := &Recorder{
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "pool_size",
			Help: "Number of idle Ports currently held in the pool.",
		}),
		reaperEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "reaper_evictions_total",
			Help: "Number of Ports the reaper has closed for exceeding MaximumConnectionPoolCount.",
		}),
		controlConnCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "control_connections",
			Help: "Number of control connections currently open on the DataSource.",
		}),
		sessionCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "sessions",
			Help: "Number of Sessions currently registered on the DataSource.",
		}),
		noReuseReported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "no_reuse_reported_total",
			Help: "Number of SlaveIDs reported to the server via NoReuseConnection.",
		}),
	}
	reg.MustRegister(r.poolSize, r.reaperEvictions, r.controlConnCount, r.sessionCount, r.noReuseReported)
	return r
}

// NewNop returns a Recorder whose gauges/counters are never registered
// anywhere, for call sites that want an unconditional Recorder without a
// metrics backend.
func NewNop() *Recorder {
	return &Recorder{
		poolSize:         prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_pool_size"}),
		reaperEvictions:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_reaper_evictions"}),
		controlConnCount: prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_control_connections"}),
		sessionCount:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_sessions"}),
		noReuseReported:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_no_reuse_reported"}),
	}
}

func (r *Recorder) SetPoolSize(n int)         { r.poolSize.Set(float64(n)) }
func (r *Recorder) AddReaperEvictions(n int)  { r.reaperEvictions.Add(float64(n)) }
func (r *Recorder) SetControlConnCount(n int) { r.controlConnCount.Set(float64(n)) }
func (r *Recorder) SetSessionCount(n int)     { r.sessionCount.Set(float64(n)) }
func (r *Recorder) AddNoReuseReported(n int)  { r.noReuseReported.Add(float64(n)) }
