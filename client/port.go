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

// Package client implements the connection/session/result-set subsystem:
// Port, the port pool and its reaper, control connections, DataSource,
// Session, PrepareStatement and ResultSet.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/nabbar/sydney-client/wire"
)

// ServerException is the typed error surfaced when the server writes an
// ErrorLevel followed by an ExceptionObject. Reusable mirrors the
// ErrorLevel: User-level exceptions leave the port reusable, System-level
// ones do not.
type ServerException struct {
	Code     int32
	Message  string
	Reusable bool
}

func (e *ServerException) Error() string {
	return fmt.Sprintf("server exception %d: %s", e.Code, e.Message)
}

// Port is one SlaveID-tagged byte channel plus its framing codec. It is
// either idle in the pool, held as a control connection, or exclusively
// owned by the goroutine that obtained it via beginWorker.
type Port struct {
	mu sync.Mutex

	transport Transport
	slaveID   int32
	workerID  int32
	masterID  wire.MasterID
	reusable  bool
	key       []byte
}

// Transport is the subset of transport.Transport a Port needs; declared
// locally so this package does not import transport's Remote/Local
// concrete constructors, only the contract.
type Transport interface {
	Connect(ctx context.Context) error
	Close() error
	IsConnected() bool
	Codec() *wire.Codec
	Address() string
}

// newPort wraps a transport, connected or not. open() connects it if
// needed and runs the handshake that assigns slaveID.
func newPort(t Transport) *Port {
	return &Port{transport: t, slaveID: wire.AnySlaveID, reusable: true}
}

// open performs the per-Port handshake: write the requested masterID and
// slaveID as raw integers, then read back the server-agreed masterID and
// assigned slaveID.
func (p *Port) open(ctx context.Context, requested wire.MasterID, requestedSlaveID int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.transport.IsConnected() {
		if err := p.transport.Connect(ctx); err != nil {
			return err
		}
	}

	codec := p.transport.Codec()
	if err := codec.WriteInteger(int32(requested)); err != nil {
		return err
	}
	if err := codec.WriteInteger(requestedSlaveID); err != nil {
		return err
	}

	agreed, err := codec.ReadInteger()
	if err != nil {
		return err
	}
	assigned, err := codec.ReadInteger()
	if err != nil {
		return err
	}

	p.masterID = wire.MasterID(uint32(agreed))
	p.slaveID = assigned
	p.reusable = true
	return nil
}

// setKey installs an optional session-key on a freshly-opened worker port.
// The no-crypt implementation shipped here is a no-op; the seam exists so a
// future crypto codec has somewhere to plug in.
func (p *Port) setKey(key []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key = key
}

func (p *Port) SlaveID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slaveID
}

func (p *Port) WorkerID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workerID
}

func (p *Port) setWorkerID(id int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workerID = id
}

func (p *Port) MasterID() wire.MasterID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.masterID
}

// IsReusable reports the current reuse-flag.
func (p *Port) IsReusable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reusable
}

func (p *Port) resetReusable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reusable = true
}

// markInUse clears the reuse-flag on acquisition from the pool. It is the
// safe default: until a User-level ErrorLevel explicitly says otherwise, an
// exception encountered while this Port is checked out closes it rather
// than risking a desynced stream being pooled.
func (p *Port) markInUse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reusable = false
}

func (p *Port) Close() error {
	return p.transport.Close()
}

// writeRequest sends a Request frame with the given code and positional
// arguments.
func (p *Port) writeRequest(code wire.RequestCode, args ...wire.Object) error {
	return p.transport.Codec().WriteObject(wire.Request{Code: code, Args: args})
}

// readObject reads the next frame. If it is an ErrorLevel sentinel, it also
// consumes the following ExceptionObject, updates the reuse-flag from the
// error level, and returns a *ServerException.
func (p *Port) readObject() (wire.Object, error) {
	obj, err := p.transport.Codec().ReadObject()
	if err != nil {
		return nil, err
	}

	if lvl, ok := obj.(wire.ErrorLevel); ok {
		p.mu.Lock()
		p.reusable = lvl.Value.Reusable()
		p.mu.Unlock()

		next, err := p.transport.Codec().ReadObject()
		if err != nil {
			return nil, err
		}
		exc, ok := next.(wire.ExceptionObject)
		if !ok {
			return nil, errPortHandshake.Error(nil)
		}
		return nil, &ServerException{Code: exc.Code, Message: exc.Message, Reusable: lvl.Value.Reusable()}
	}

	return obj, nil
}

// readStatus reads exactly one terminal Status frame, or surfaces a
// *ServerException if the server sent one instead.
func (p *Port) readStatus() (wire.StatusValue, error) {
	obj, err := p.readObject()
	if err != nil {
		return 0, err
	}
	st, ok := obj.(wire.Status)
	if !ok {
		return 0, errPortHandshake.Error(nil)
	}
	return st.Value, nil
}
