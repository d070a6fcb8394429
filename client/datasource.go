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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	uuid "github.com/hashicorp/go-uuid"
	"github.com/hashicorp/go-version"
	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/sync/errgroup"

	liberr "github.com/nabbar/sydney-client/errors"
	"github.com/nabbar/sydney-client/logger"
	"github.com/nabbar/sydney-client/metrics"
	"github.com/nabbar/sydney-client/sydnerr"
	"github.com/nabbar/sydney-client/transport"
	"github.com/nabbar/sydney-client/wire"
)

// Connector builds a fresh, unconnected Transport bound to the DataSource's
// remote endpoint. DataSource calls it once per Port it needs to open
// (control connections and brand-new worker ports); Connect() is called on
// the result.
type Connector func(ctx context.Context) (Transport, error)

// Config holds the process-wide configurable parameters from the external
// interface table: pool sizing, reaper cadence, session-per-control
// threshold.
type Config struct {
	ConnectionThreshold        int
	MaximumConnectionPoolCount int
	CheckConnectionPoolPeriod  time.Duration
	TimeUnit                   time.Duration
	LogConnectionException     bool

	// Metrics receives pool/reaper/control-connection gauge updates. A nil
	// Metrics is replaced with metrics.NewNop() so call sites never need a
	// presence check.
	Metrics *metrics.Recorder
}

// DefaultConfig returns the §6 documented defaults.
func DefaultConfig() Config {
	return Config{
		ConnectionThreshold:        20,
		MaximumConnectionPoolCount: 10,
		CheckConnectionPoolPeriod:  60 * time.Second,
		TimeUnit:                   500 * time.Millisecond,
		LogConnectionException:     true,
	}
}

// DataSource is the client-side handle representing one server endpoint:
// the control-connection array, the idle-port pool and reaper, and the
// session registry.
type DataSource struct {
	connector Connector
	cfg       Config
	log       logger.Logger

	mu           sync.Mutex // guards controlConns + rrIndex + openCount + negotiated state
	controlConns []*controlConnection
	rrIndex      uint64
	openCount    int32
	requested    wire.MasterID
	negotiated   wire.MasterID
	closed       bool

	pool   *pool
	reaper *reaper

	sessMu   sync.Mutex
	sessions map[int32]*Session

	createSessionMu sync.Mutex

	metrics *metrics.Recorder
}

// NewRemoteDataSource builds a DataSource that opens new Ports as TCP
// connections to address, with keepAlive applied to every dial.
func NewRemoteDataSource(address string, keepAlive time.Duration, cfg Config, log logger.Logger) *DataSource {
	connector := func(ctx context.Context) (Transport, error) {
		return transport.NewRemote(address, keepAlive, 30*time.Second)
	}
	return newDataSource(connector, cfg, log)
}

// NewWithConnector builds a DataSource over a caller-supplied Connector,
// used for the in-process Local transport in tests and for server
// implementations sharing this client's process.
func NewWithConnector(connector Connector, cfg Config, log logger.Logger) *DataSource {
	return newDataSource(connector, cfg, log)
}

func newDataSource(connector Connector, cfg Config, log logger.Logger) *DataSource {
	if log == nil {
		log = logger.NewNop()
	}
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNop()
	}
	return &DataSource{
		connector: connector,
		cfg:       cfg,
		log:       log,
		pool:      newPool(cfg.MaximumConnectionPoolCount),
		sessions:  make(map[int32]*Session),
		metrics:   rec,
	}
}

// clientHostName builds the handshake token sent with BeginConnection: the
// local hostname plus a random correlation suffix, so repeated opens from
// the same host are distinguishable in server-side logs.
func clientHostName() string {
	name := "unknown-host"
	if info, err := host.Info(); err == nil && info.Hostname != "" {
		name = info.Hostname
	}
	token, err := uuid.GenerateUUID()
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s#%s", name, token[:8])
}

// Open establishes the DataSource's first control connection and starts
// the reaper. Calling Open twice without an intervening Close returns
// errDataSourceAlreadyOpen.
func (ds *DataSource) Open(ctx context.Context, requested wire.MasterID) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !atomic.CompareAndSwapInt32(&ds.openCount, 0, 1) {
		return errDataSourceAlreadyOpen.Error(nil)
	}
	ds.closed = false

	if requested.Authorize() == wire.AuthorizeNone {
		requested = requested.WithAuthorize(wire.AuthorizePassword)
	}
	ds.requested = requested

	port, err := ds.openNewPort(ctx, requested, wire.AnySlaveID)
	if err != nil {
		atomic.StoreInt32(&ds.openCount, 0)
		return err
	}

	if err = port.writeRequest(wire.BeginConnection, wire.StringData{Value: clientHostName()}); err != nil {
		_ = port.Close()
		atomic.StoreInt32(&ds.openCount, 0)
		return err
	}
	if _, err = port.readStatus(); err != nil {
		_ = port.Close()
		atomic.StoreInt32(&ds.openCount, 0)
		return err
	}

	ds.negotiated = port.MasterID()
	ds.controlConns = []*controlConnection{newControlConnection(port)}
	ds.rrIndex = 0

	if ds.cfg.CheckConnectionPoolPeriod > 0 {
		ds.reaper = newReaper(ds.pool, ds.cfg.CheckConnectionPoolPeriod, ds.cfg.MaximumConnectionPoolCount, ds.anyControlConnection, ds.log, ds.metrics)
		ds.reaper.start()
	}

	ds.metrics.SetControlConnCount(len(ds.controlConns))
	return nil
}

// openNewPort dials a brand-new transport and runs the per-Port handshake.
func (ds *DataSource) openNewPort(ctx context.Context, masterID wire.MasterID, slaveID int32) (*Port, error) {
	tr, err := ds.connector(ctx)
	if err != nil {
		return nil, sydnerr.ConnectionRanOut.Error(err)
	}
	port := newPort(tr)
	if err = port.open(ctx, masterID, slaveID); err != nil {
		_ = port.Close()
		return nil, err
	}
	return port, nil
}

// NegotiatedMasterID returns the master-ID agreed during Open, including
// the server's actual protocol version — used by Session to pick between
// PrepareStatement and PrepareStatement2 (scenario S6).
func (ds *DataSource) NegotiatedMasterID() wire.MasterID {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.negotiated
}

// supportsSessionScopedPrepare reports whether the negotiated protocol
// version is new enough for PrepareStatement2, compared via
// hashicorp/go-version rather than a raw integer comparison, so the
// threshold reads the same way a semver gate would anywhere else in this
// stack.
func (ds *DataSource) supportsSessionScopedPrepare() bool {
	negotiated, err := version.NewVersion(fmt.Sprintf("%d.0.0", ds.NegotiatedMasterID().Version()))
	if err != nil {
		return false
	}
	threshold, _ := version.NewVersion("3.0.0")
	return negotiated.GreaterThanOrEqual(threshold)
}

func (ds *DataSource) anyControlConnection() (*controlConnection, error) {
	return ds.getControlConnection()
}

// getControlConnection returns the next control connection, round-robin.
func (ds *DataSource) getControlConnection() (*controlConnection, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil, sydnerr.NotInitialized.Error(nil)
	}
	if len(ds.controlConns) == 0 {
		return nil, errControlEmpty.Error(nil)
	}
	idx := ds.rrIndex % uint64(len(ds.controlConns))
	ds.rrIndex++
	return ds.controlConns[idx], nil
}

func (ds *DataSource) controlConnectionCount() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.controlConns)
}

// addControlConnection opens one more control Port with a server-assigned
// SlaveID, sends BeginConnection on that new Port while holding an existing
// control connection's latch, and appends it to the array. No request is
// sent over the existing control connection itself.
func (ds *DataSource) addControlConnection(ctx context.Context) error {
	cc, err := ds.getControlConnection()
	if err != nil {
		return err
	}

	port, err := ds.openNewPort(ctx, ds.requested, wire.AnySlaveID)
	if err != nil {
		return err
	}

	err = cc.do(func(*Port) error {
		if werr := port.writeRequest(wire.BeginConnection, wire.StringData{Value: clientHostName()}); werr != nil {
			return werr
		}
		_, werr := port.readStatus()
		return werr
	})
	if err != nil {
		_ = port.Close()
		return err
	}

	ds.mu.Lock()
	ds.controlConns = append(ds.controlConns, newControlConnection(port))
	count := len(ds.controlConns)
	ds.mu.Unlock()
	ds.metrics.SetControlConnCount(count)
	return nil
}

// beginWorker implements §4.4's beginWorker protocol: reuse a pooled port
// when one is available, otherwise mint a brand new one.
func (ds *DataSource) beginWorker(ctx context.Context, cc *controlConnection) (port *Port, err error) {
	pooled := ds.pool.popPort()
	sendSlaveID := wire.AnySlaveID
	if pooled != nil {
		sendSlaveID = pooled.SlaveID()
		ds.metrics.SetPoolSize(ds.pool.len())
	}

	var assignedSlaveID, workerID int32
	err = cc.do(func(p *Port) error {
		if werr := p.writeRequest(wire.BeginWorker, wire.IntegerData{Value: sendSlaveID}); werr != nil {
			return werr
		}
		obj, werr := p.readObject()
		if werr != nil {
			return werr
		}
		slaveObj, ok := obj.(wire.IntegerData)
		if !ok {
			return errControl.Error(nil)
		}
		assignedSlaveID = slaveObj.Value

		obj, werr = p.readObject()
		if werr != nil {
			return werr
		}
		workerObj, ok := obj.(wire.IntegerData)
		if !ok {
			return errControl.Error(nil)
		}
		workerID = workerObj.Value

		_, werr = p.readStatus()
		return werr
	})

	if err != nil {
		if pooled != nil {
			ds.releaseOnError(pooled)
		}
		return nil, err
	}

	defer func() {
		if err != nil && port != nil {
			ds.releaseOnError(port)
			port = nil
		}
	}()

	if pooled == nil {
		port, err = ds.openNewPort(ctx, ds.requested, assignedSlaveID)
		if err != nil {
			return nil, err
		}
		port.setKey(nil)
	} else {
		port = pooled
		// Sync frame: tell the server this pooled SlaveID's channel is
		// being reactivated for the new worker.
		if err = port.transport.Codec().WriteInteger(workerID); err != nil {
			return nil, err
		}
	}

	port.setWorkerID(workerID)
	return port, nil
}

// releaseOnError returns port to the pool if its reuse-flag says it is
// still usable, otherwise closes it — the pool-or-close discipline used
// after every exception on a worker Port.
func (ds *DataSource) releaseOnError(port *Port) {
	if port.IsReusable() {
		_ = ds.pool.pushPort(port)
	} else {
		_ = ds.pool.expungePort(port)
	}
	ds.metrics.SetPoolSize(ds.pool.len())
}

// release returns port to the pool unconditionally, the discipline used
// after a successful non-streaming exchange.
func (ds *DataSource) release(port *Port) {
	_ = ds.pool.pushPort(port)
	ds.metrics.SetPoolSize(ds.pool.len())
}

// CreateSession opens a new session against dbName. If user/password are
// both given, BeginSession2 is used; otherwise BeginSession.
func (ds *DataSource) CreateSession(ctx context.Context, dbName string, userPassword ...string) (*Session, error) {
	ds.createSessionMu.Lock()
	defer ds.createSessionMu.Unlock()

	session, err := ds.createSessionOnce(ctx, dbName, userPassword...)
	if err == nil {
		return session, nil
	}

	if !liberr.Has(err, sydnerr.ConnectionRanOut) && !liberr.Has(err, sydnerr.ConnectionClosed) {
		return nil, err
	}

	ds.sessMu.Lock()
	noSessions := len(ds.sessions) == 0
	ds.sessMu.Unlock()
	if !noSessions {
		// Partial reconnection would orphan live sessions; re-throw.
		return nil, err
	}

	if cerr := ds.Close(); cerr != nil {
		ds.log.Warning("createSession: close before reopen failed", logger.Field("error", cerr))
	}
	if oerr := ds.Open(ctx, ds.requested); oerr != nil {
		return nil, oerr
	}
	return ds.createSessionOnce(ctx, dbName, userPassword...)
}

func (ds *DataSource) createSessionOnce(ctx context.Context, dbName string, userPassword ...string) (*Session, error) {
	cc, err := ds.getControlConnection()
	if err != nil {
		return nil, err
	}

	port, err := ds.beginWorker(ctx, cc)
	if err != nil {
		return nil, err
	}

	var sessionID int32
	if len(userPassword) == 2 {
		sessionID, err = cc.beginSession2(dbName, userPassword[0], userPassword[1])
	} else {
		sessionID, err = cc.beginSession(dbName)
	}
	if err != nil {
		ds.releaseOnError(port)
		return nil, err
	}
	ds.release(port)

	session := newSession(ds, sessionID)
	ds.sessMu.Lock()
	ds.sessions[sessionID] = session
	count := len(ds.sessions)
	ds.sessMu.Unlock()
	ds.metrics.SetSessionCount(count)

	if count > ds.cfg.ConnectionThreshold*ds.controlConnectionCount() {
		if aerr := ds.addControlConnection(ctx); aerr != nil {
			ds.log.Warning("createSession: failed to add control connection past threshold", logger.Field("error", aerr))
		}
	}

	return session, nil
}

func (ds *DataSource) forgetSession(sessionID int32) {
	ds.sessMu.Lock()
	delete(ds.sessions, sessionID)
	count := len(ds.sessions)
	ds.sessMu.Unlock()
	ds.metrics.SetSessionCount(count)
}

// IsServerAvailable reports whether the server itself answers
// CheckAvailability(Server).
func (ds *DataSource) IsServerAvailable(ctx context.Context) (bool, error) {
	cc, err := ds.getControlConnection()
	if err != nil {
		return false, err
	}
	return cc.checkAvailability(wire.AvailabilityServer, 0)
}

// IsDatabaseAvailable reports whether the database identified by dbID
// answers CheckAvailability(Database, dbID).
func (ds *DataSource) IsDatabaseAvailable(ctx context.Context, dbID int32) (bool, error) {
	cc, err := ds.getControlConnection()
	if err != nil {
		return false, err
	}
	return cc.checkAvailability(wire.AvailabilityDatabase, dbID)
}

// Close is idempotent: it detaches the control connections, aborts and
// joins the reaper, closes every session, then every control connection,
// then every pooled port. Because the control connections are detached
// first, Session.Close only drops each session locally; no EndSession
// request reaches the server.
// Teardown errors are aggregated and logged, never returned.
func (ds *DataSource) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	conns := ds.controlConns
	ds.controlConns = nil
	ds.mu.Unlock()

	if ds.reaper != nil {
		ds.reaper.abort()
		ds.reaper.join()
		ds.reaper = nil
	}

	var merr *multierror.Error

	ds.sessMu.Lock()
	sessions := make([]*Session, 0, len(ds.sessions))
	for _, s := range ds.sessions {
		sessions = append(sessions, s)
	}
	ds.sessMu.Unlock()

	g, _ := errgroup.WithContext(context.Background())
	var mu sync.Mutex
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			if err := s.Close(); err != nil {
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, cc := range conns {
		if err := cc.close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	for {
		p := ds.pool.popPort()
		if p == nil {
			break
		}
		if err := p.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	atomic.StoreInt32(&ds.openCount, 0)
	ds.metrics.SetPoolSize(0)
	ds.metrics.SetControlConnCount(0)
	ds.metrics.SetSessionCount(0)

	if merr.ErrorOrNil() != nil {
		ds.log.Warning("DataSource.Close: teardown errors swallowed", logger.Field("errors", merr.Error()))
	}
	return nil
}
