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
	"context"
	"sync"

	"github.com/nabbar/sydney-client/sydnerr"
	"github.com/nabbar/sydney-client/wire"
)

// Session is a request builder bound to one server-side SessionID. All of
// its operations acquire a worker Port via beginWorker, issue one request,
// and either return the Port to the pool (ExecuteStatement hands ownership
// to a ResultSet instead) or close it, based on the exception discipline in
// §4.6/§4.7.
type Session struct {
	ds *DataSource

	mu        sync.Mutex
	sessionID int32
	closed    bool
}

func newSession(ds *DataSource, sessionID int32) *Session {
	return &Session{ds: ds, sessionID: sessionID}
}

// ID returns the server-assigned, non-zero SessionID.
func (s *Session) ID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Session) isValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// ExecuteStatement sends ExecuteStatement(sessionID, sql, params) and
// transfers ownership of the worker Port to a new ResultSet. It does not
// read any response frame itself — the ResultSet streams them.
func (s *Session) ExecuteStatement(ctx context.Context, sql string, params [][]byte) (*ResultSet, error) {
	if !s.isValid() {
		return nil, sydnerr.SessionNotAvailable.Error(nil)
	}

	cc, err := s.ds.getControlConnection()
	if err != nil {
		return nil, err
	}
	port, err := s.ds.beginWorker(ctx, cc)
	if err != nil {
		return nil, err
	}

	if err = port.writeRequest(wire.ExecuteStatement,
		wire.IntegerData{Value: s.sessionID},
		wire.StringData{Value: sql},
		wire.DataArrayData{Value: params}); err != nil {
		s.ds.releaseOnError(port)
		return nil, err
	}

	return newResultSet(s.ds, port), nil
}

// ExecutePrepareStatement sends ExecutePrepare(sessionID, prepareID,
// params) and transfers ownership of the worker Port to a new ResultSet,
// the same shape as ExecuteStatement with PrepareID in place of sql.
func (s *Session) ExecutePrepareStatement(ctx context.Context, ps *PrepareStatement, params [][]byte) (*ResultSet, error) {
	if !s.isValid() {
		return nil, sydnerr.SessionNotAvailable.Error(nil)
	}

	cc, err := s.ds.getControlConnection()
	if err != nil {
		return nil, err
	}
	port, err := s.ds.beginWorker(ctx, cc)
	if err != nil {
		return nil, err
	}

	if err = port.writeRequest(wire.ExecutePrepare,
		wire.IntegerData{Value: s.sessionID},
		wire.IntegerData{Value: ps.ID()},
		wire.DataArrayData{Value: params}); err != nil {
		s.ds.releaseOnError(port)
		return nil, err
	}

	return newResultSet(s.ds, port), nil
}

// CreatePrepareStatement prepares sql, server-side, scoped to this
// session when the negotiated protocol supports PrepareStatement2, falling
// back to the DataSource-wide PrepareStatement otherwise (scenario S6).
func (s *Session) CreatePrepareStatement(ctx context.Context, sql string) (*PrepareStatement, error) {
	if !s.isValid() {
		return nil, sydnerr.SessionNotAvailable.Error(nil)
	}

	cc, err := s.ds.getControlConnection()
	if err != nil {
		return nil, err
	}
	port, err := s.ds.beginWorker(ctx, cc)
	if err != nil {
		return nil, err
	}

	sessionScoped := s.ds.supportsSessionScopedPrepare()

	var prepareID int32
	if sessionScoped {
		prepareID, err = workerPrepareStatement2(port, s.sessionID, sql)
	} else {
		prepareID, err = workerPrepareStatement(port, sql)
	}
	if err != nil {
		s.ds.releaseOnError(port)
		return nil, err
	}
	s.ds.release(port)

	return newPrepareStatement(s.ds, s, prepareID, sessionScoped), nil
}

func (s *Session) requireAuthorized() error {
	if s.ds.NegotiatedMasterID().Authorize() != wire.AuthorizePassword {
		return sydnerr.NotSupported.Error(nil)
	}
	return nil
}

// CreateUser is only valid when the negotiated authorization mode is
// Password; otherwise NotSupported.
func (s *Session) CreateUser(ctx context.Context, name, password string, userID int32) error {
	if err := s.requireAuthorized(); err != nil {
		return err
	}
	return s.withWorker(ctx, func(port *Port) error {
		return workerCreateUser(port, s.sessionID, name, password, userID)
	})
}

func (s *Session) DropUser(ctx context.Context, name string, behavior int32) error {
	if err := s.requireAuthorized(); err != nil {
		return err
	}
	return s.withWorker(ctx, func(port *Port) error {
		return workerDropUser(port, s.sessionID, name, behavior)
	})
}

func (s *Session) ChangeOwnPassword(ctx context.Context, password string) error {
	if err := s.requireAuthorized(); err != nil {
		return err
	}
	return s.withWorker(ctx, func(port *Port) error {
		return workerChangeOwnPassword(port, s.sessionID, password)
	})
}

func (s *Session) ChangePassword(ctx context.Context, name, password string) error {
	if err := s.requireAuthorized(); err != nil {
		return err
	}
	return s.withWorker(ctx, func(port *Port) error {
		return workerChangePassword(port, s.sessionID, name, password)
	})
}

// withWorker acquires a worker Port on any control connection, runs fn
// against that worker Port directly, and applies the pool-or-close
// discipline to it afterward.
func (s *Session) withWorker(ctx context.Context, fn func(port *Port) error) error {
	if !s.isValid() {
		return sydnerr.SessionNotAvailable.Error(nil)
	}

	cc, err := s.ds.getControlConnection()
	if err != nil {
		return err
	}
	port, err := s.ds.beginWorker(ctx, cc)
	if err != nil {
		return err
	}

	if err = fn(port); err != nil {
		s.ds.releaseOnError(port)
		return err
	}
	s.ds.release(port)
	return nil
}

// Close ends the session server-side and is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sessionID := s.sessionID
	s.mu.Unlock()

	s.ds.forgetSession(sessionID)

	cc, err := s.ds.getControlConnection()
	if err != nil {
		return nil
	}
	port, err := s.ds.beginWorker(context.Background(), cc)
	if err != nil {
		return nil
	}

	err = port.writeRequest(wire.EndSession, wire.IntegerData{Value: sessionID})
	if err != nil {
		s.ds.releaseOnError(port)
		return nil
	}
	if _, err = port.readStatus(); err != nil {
		s.ds.releaseOnError(port)
		return nil
	}
	s.ds.release(port)
	return nil
}
