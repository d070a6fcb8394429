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
)

// PrepareStatement is a server-side prepared statement handle, either
// session-scoped (PrepareStatement2) or DataSource-scoped
// (PrepareStatement, used as the v1-compatible fallback per scenario S6).
type PrepareStatement struct {
	ds            *DataSource
	session       *Session // nil for a DataSource-scoped handle
	sessionScoped bool

	mu        sync.Mutex
	prepareID int32
	closed    bool
}

func newPrepareStatement(ds *DataSource, session *Session, prepareID int32, sessionScoped bool) *PrepareStatement {
	return &PrepareStatement{ds: ds, session: session, prepareID: prepareID, sessionScoped: sessionScoped}
}

// ID returns the server-assigned PrepareID.
func (p *PrepareStatement) ID() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prepareID
}

// Close is idempotent and erases the prepared statement server-side: on
// the session-scoped path, via ErasePrepareStatement2(sessionID, id); on
// the DataSource-scoped path, via the cross-session erase transform in
// eraseDataSourceScoped.
func (p *PrepareStatement) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	id := p.prepareID
	scoped := p.sessionScoped
	p.mu.Unlock()

	cc, err := p.ds.getControlConnection()
	if err != nil {
		return nil
	}

	if scoped {
		_ = cc.erasePrepareStatement2(p.session.ID(), id)
		return nil
	}
	_ = p.eraseDataSourceScoped(cc, id)
	return nil
}

// eraseDataSourceScoped preserves, verbatim, the arithmetic transform found
// in the cross-session erase path of the original implementation:
// "iID = (pPrepareID - 1) / 2" with a parity check on the raw ID — odd IDs
// are DataSource-scoped (the only case reachable from this type, since a
// session-scoped PrepareStatement uses ErasePrepareStatement2 instead), and
// even IDs are rejected as InvalidStatementIdentifier. The resulting
// optimizer-erase index is sent as the PrepareID argument of
// ErasePrepareStatement.
func (p *PrepareStatement) eraseDataSourceScoped(cc *controlConnection, prepareID int32) error {
	if prepareID%2 == 0 {
		return sydnerr.InvalidStatementIdentifier.Error(nil)
	}
	optimizerID := (prepareID - 1) / 2
	return cc.erasePrepareStatement("", optimizerID)
}

// CreateDataSourcePrepareStatement prepares sql without a session, using
// the DataSource-wide PrepareStatement request. This is the v1-compatible
// path every session falls back to when the negotiated protocol predates
// PrepareStatement2 (scenario S6).
func (ds *DataSource) CreateDataSourcePrepareStatement(ctx context.Context, sql string) (*PrepareStatement, error) {
	cc, err := ds.getControlConnection()
	if err != nil {
		return nil, err
	}
	port, err := ds.beginWorker(ctx, cc)
	if err != nil {
		return nil, err
	}

	prepareID, err := workerPrepareStatement(port, sql)
	if err != nil {
		ds.releaseOnError(port)
		return nil, err
	}
	ds.release(port)

	return newPrepareStatement(ds, nil, prepareID, false), nil
}
