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

// controlConnection is a long-lived Port reserved for meta-requests:
// session lifecycle, cancellation, availability checks. Every exchange is
// serialized under PortLatch so the request and its entire response are
// atomic from the caller's perspective.
type controlConnection struct {
	port *Port

	// PortLatch. I/O never happens elsewhere while this is held by someone
	// other than the goroutine currently inside do().
	latch sync.Mutex
}

func newControlConnection(port *Port) *controlConnection {
	return &controlConnection{port: port}
}

// do runs fn with exclusive access to the control Port.
func (c *controlConnection) do(fn func(*Port) error) error {
	c.latch.Lock()
	defer c.latch.Unlock()
	return fn(c.port)
}

func (c *controlConnection) close() error {
	return c.port.Close()
}

// cancelWorker sends CancelWorker(workerID) and reads the terminating
// Status. Deliberately called on a *different* control connection than the
// one streaming the statement being cancelled, so it never blocks behind
// the streaming read.
func (c *controlConnection) cancelWorker(workerID int32) (wire.StatusValue, error) {
	var status wire.StatusValue
	err := c.do(func(p *Port) error {
		if err := p.writeRequest(wire.CancelWorker, wire.IntegerData{Value: workerID}); err != nil {
			return err
		}
		st, err := p.readStatus()
		status = st
		return err
	})
	return status, err
}

// noReuseConnection reports SlaveIDs the client closed unilaterally so the
// server can discard its side. Best-effort: callers ignore transport
// errors per §4.3 step 3.
func (c *controlConnection) noReuseConnection(slaveIDs []int32) error {
	return c.do(func(p *Port) error {
		if err := p.writeRequest(wire.NoReuseConnection, wire.IntegerArrayData{Value: slaveIDs}); err != nil {
			return err
		}
		_, err := p.readStatus()
		return err
	})
}

func (c *controlConnection) erasePrepareStatement(dbName string, prepareID int32) error {
	return c.do(func(p *Port) error {
		if err := p.writeRequest(wire.ErasePrepareStatement,
			wire.StringData{Value: dbName}, wire.IntegerData{Value: prepareID}); err != nil {
			return err
		}
		_, err := p.readStatus()
		return err
	})
}

func (c *controlConnection) erasePrepareStatement2(sessionID, prepareID int32) error {
	return c.do(func(p *Port) error {
		if err := p.writeRequest(wire.ErasePrepareStatement2,
			wire.IntegerData{Value: sessionID}, wire.IntegerData{Value: prepareID}); err != nil {
			return err
		}
		_, err := p.readStatus()
		return err
	})
}

func (c *controlConnection) checkAvailability(target wire.AvailabilityTarget, id int32) (bool, error) {
	var available bool
	err := c.do(func(p *Port) error {
		args := []wire.Object{wire.IntegerData{Value: int32(target)}}
		if target == wire.AvailabilityDatabase {
			args = append(args, wire.IntegerData{Value: id})
		}
		if err := p.writeRequest(wire.CheckAvailability, args...); err != nil {
			return err
		}
		obj, err := p.readObject()
		if err != nil {
			return err
		}
		result, ok := obj.(wire.IntegerData)
		if !ok {
			return errControl.Error(nil)
		}
		available = result.Value != 0
		_, err = p.readStatus()
		return err
	})
	return available, err
}

func (c *controlConnection) endConnection() error {
	return c.do(func(p *Port) error {
		if err := p.writeRequest(wire.EndConnection); err != nil {
			return err
		}
		_, err := p.readStatus()
		return err
	})
}

func (c *controlConnection) beginSession(dbName string) (int32, error) {
	var sessionID int32
	err := c.do(func(p *Port) error {
		if err := p.writeRequest(wire.BeginSession, wire.StringData{Value: dbName}); err != nil {
			return err
		}
		obj, err := p.readObject()
		if err != nil {
			return err
		}
		id, ok := obj.(wire.IntegerData)
		if !ok {
			return errControl.Error(nil)
		}
		sessionID = id.Value
		_, err = p.readStatus()
		return err
	})
	return sessionID, err
}

func (c *controlConnection) beginSession2(dbName, user, password string) (int32, error) {
	var sessionID int32
	err := c.do(func(p *Port) error {
		if err := p.writeRequest(wire.BeginSession2,
			wire.StringData{Value: dbName}, wire.StringData{Value: user}, wire.StringData{Value: password}); err != nil {
			return err
		}
		obj, err := p.readObject()
		if err != nil {
			return err
		}
		id, ok := obj.(wire.IntegerData)
		if !ok {
			return errControl.Error(nil)
		}
		sessionID = id.Value
		_, err = p.readStatus()
		return err
	})
	return sessionID, err
}

// workerPrepareStatement, workerPrepareStatement2, workerCreateUser,
// workerDropUser, workerChangeOwnPassword and workerChangePassword write and
// read directly on a worker Port obtained from beginWorker, the same way
// Session.cpp's createPrepareStatement/createUser write on pPort rather than
// the meta-request control connection: these six requests carry session or
// statement payloads, not connection bookkeeping, so they have no business
// serializing behind the control Port's latch.

func workerPrepareStatement(p *Port, sql string) (int32, error) {
	if err := p.writeRequest(wire.PrepareStatement, wire.StringData{Value: sql}); err != nil {
		return 0, err
	}
	obj, err := p.readObject()
	if err != nil {
		return 0, err
	}
	id, ok := obj.(wire.IntegerData)
	if !ok {
		return 0, errControl.Error(nil)
	}
	_, err = p.readStatus()
	return id.Value, err
}

func workerPrepareStatement2(p *Port, sessionID int32, sql string) (int32, error) {
	if err := p.writeRequest(wire.PrepareStatement2,
		wire.IntegerData{Value: sessionID}, wire.StringData{Value: sql}); err != nil {
		return 0, err
	}
	obj, err := p.readObject()
	if err != nil {
		return 0, err
	}
	id, ok := obj.(wire.IntegerData)
	if !ok {
		return 0, errControl.Error(nil)
	}
	_, err = p.readStatus()
	return id.Value, err
}

func workerCreateUser(p *Port, sessionID int32, name, password string, userID int32) error {
	if err := p.writeRequest(wire.CreateUser,
		wire.IntegerData{Value: sessionID}, wire.StringData{Value: name},
		wire.StringData{Value: password}, wire.IntegerData{Value: userID}); err != nil {
		return err
	}
	_, err := p.readStatus()
	return err
}

func workerDropUser(p *Port, sessionID int32, name string, behavior int32) error {
	if err := p.writeRequest(wire.DropUser,
		wire.IntegerData{Value: sessionID}, wire.StringData{Value: name}, wire.IntegerData{Value: behavior}); err != nil {
		return err
	}
	_, err := p.readStatus()
	return err
}

func workerChangeOwnPassword(p *Port, sessionID int32, password string) error {
	if err := p.writeRequest(wire.ChangeOwnPassword,
		wire.IntegerData{Value: sessionID}, wire.StringData{Value: password}); err != nil {
		return err
	}
	_, err := p.readStatus()
	return err
}

func workerChangePassword(p *Port, sessionID int32, name, password string) error {
	if err := p.writeRequest(wire.ChangePassword,
		wire.IntegerData{Value: sessionID}, wire.StringData{Value: name}, wire.StringData{Value: password}); err != nil {
		return err
	}
	_, err := p.readStatus()
	return err
}
