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

	"github.com/nabbar/sydney-client/wire"
)

// ResultSetState is one state of the streamed-cursor state machine
// described in §4.6.
type ResultSetState int

const (
	StateUndefined ResultSetState = iota
	StateData
	StateMetaData
	StateEndOfData
	StateSuccess
	StateCanceled
	StateError
)

func (s ResultSetState) String() string {
	switch s {
	case StateData:
		return "Data"
	case StateMetaData:
		return "MetaData"
	case StateEndOfData:
		return "EndOfData"
	case StateSuccess:
		return "Success"
	case StateCanceled:
		return "Canceled"
	case StateError:
		return "Error"
	}
	return "Undefined"
}

// ResultSet is a streamed cursor: it owns a worker Port exclusively from
// ExecuteStatement/ExecutePrepareStatement until it reaches a terminal
// state, at which point the Port is returned to the pool (Success), closed
// (Canceled or an unexpected frame), or, after a read error, pooled or
// closed according to its reuse-flag.
type ResultSet struct {
	ds   *DataSource
	port *Port

	mu       sync.Mutex
	state    ResultSetState
	meta     *wire.ResultSetMetaData
	workerID int32
	done     bool
}

func newResultSet(ds *DataSource, port *Port) *ResultSet {
	return &ResultSet{ds: ds, port: port, state: StateData, workerID: port.WorkerID()}
}

func (r *ResultSet) State() ResultSetState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// MetaData returns the column metadata observed so far. It remains valid
// even after a cancellation, per scenario S3.
func (r *ResultSet) MetaData() *wire.ResultSetMetaData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta
}

// Next advances the state machine by one frame and returns the tuple, if
// the frame carried one. ok is false once a terminal state is reached;
// callers should stop calling Next and inspect State()/Err() instead.
func (r *ResultSet) Next() (tuple *wire.DataArrayData, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isTerminalLocked() {
		return nil, false, nil
	}

	obj, rerr := r.port.readObject()
	if rerr != nil {
		r.state = StateError
		r.done = true
		r.ds.releaseOnError(r.port)
		return nil, false, rerr
	}

	switch v := obj.(type) {
	case wire.ResultSetMetaData:
		r.meta = &v
		r.state = StateMetaData
		return nil, true, nil
	case wire.DataArrayData:
		r.state = StateData
		return &v, true, nil
	case wire.Status:
		serr := r.applyStatusLocked(v.Value)
		return nil, !r.done, serr
	case nil:
		r.state = StateEndOfData
		return nil, true, nil
	}

	r.state = StateError
	r.done = true
	_ = r.ds.pool.expungePort(r.port)
	return nil, false, errResultSet.Error(nil)
}

func (r *ResultSet) applyStatusLocked(v wire.StatusValue) error {
	switch v {
	case wire.StatusSuccess:
		r.state = StateSuccess
	case wire.StatusCanceled:
		r.state = StateCanceled
	case wire.StatusHasMoreData:
		r.state = StateData
		return nil
	}
	r.done = true

	if r.state == StateSuccess {
		r.ds.release(r.port)
	} else {
		_ = r.ds.pool.expungePort(r.port)
	}
	return nil
}

func (r *ResultSet) isTerminalLocked() bool {
	return r.done
}

// Cancel issues CancelWorker on a different control connection than the
// one streaming this ResultSet, then drains remaining frames (discarding
// tuples) until a terminal Status appears. Cancellation is advisory: the
// server may still answer Success, which is treated as "cancellation
// ignored".
func (r *ResultSet) Cancel() error {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return nil
	}
	workerID := r.workerID
	r.mu.Unlock()

	cc, err := r.ds.getControlConnection()
	if err != nil {
		return err
	}
	if _, err = cc.cancelWorker(workerID); err != nil {
		return err
	}

	for {
		_, ok, err := r.Next()
		if err != nil || !ok {
			return err
		}
	}
}

// Close drives the state machine to a terminal state. If still in Data or
// MetaData, it first issues CancelWorker (on a different control
// connection, never on the streaming Port itself), then drains remaining
// frames, discarding tuples, until a terminal Status appears. Idempotent.
func (r *ResultSet) Close() error {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return nil
	}
	needsCancel := r.state == StateData || r.state == StateMetaData
	workerID := r.workerID
	r.mu.Unlock()

	if needsCancel {
		if cc, err := r.ds.getControlConnection(); err == nil {
			_, _ = cc.cancelWorker(workerID)
		}
	}

	for {
		_, ok, err := r.Next()
		if err != nil || !ok {
			return err
		}
	}
}
