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

package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/sydney-client/wire"
)

// addrFamilyCache remembers, per host:port, which network ("tcp4" or
// "tcp6") last succeeded so repeated connects to the same server skip the
// fallback probe.
var addrFamilyCache sync.Map // map[string]string

// Remote is a TCP transport, with IPv4/IPv6 fallback and optional
// keep-alive, to a server listening on a remote or loopback address.
type Remote struct {
	address     string
	keepAlive   time.Duration
	dialTimeout time.Duration

	mu        sync.Mutex
	conn      net.Conn
	codec     *wire.Codec
	connected bool
}

// NewRemote builds a Remote transport bound to address ("host:port").
// keepAlive of zero disables TCP keep-alive probes.
func NewRemote(address string, keepAlive, dialTimeout time.Duration) (*Remote, error) {
	if address == "" {
		return nil, ErrAddress.Error(nil)
	}
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &Remote{address: address, keepAlive: keepAlive, dialTimeout: dialTimeout}, nil
}

func (r *Remote) Address() string { return r.address }

// Connect dials r.address, trying the cached address family first and
// falling back to the other one (IPv6 then IPv4, or the reverse) when the
// cached family fails or none is cached yet.
func (r *Remote) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return nil
	}

	dialer := &net.Dialer{Timeout: r.dialTimeout, KeepAlive: r.keepAlive}
	if r.keepAlive <= 0 {
		dialer.KeepAlive = -1
	}

	networks := []string{"tcp6", "tcp4"}
	if cached, ok := addrFamilyCache.Load(r.address); ok {
		fam := cached.(string)
		if fam == "tcp4" {
			networks = []string{"tcp4", "tcp6"}
		}
	}

	var (
		conn net.Conn
		err  error
	)
	for _, network := range networks {
		conn, err = dialer.DialContext(ctx, network, r.address)
		if err == nil {
			addrFamilyCache.Store(r.address, network)
			break
		}
	}
	if err != nil {
		return ErrDial.Error(err)
	}

	r.conn = conn
	r.codec = wire.NewCodec(conn)
	r.connected = true
	return nil
}

func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil
	}
	r.connected = false
	err := r.conn.Close()
	r.conn = nil
	r.codec = nil
	if err != nil {
		return ErrAlreadyClosed.Error(err)
	}
	return nil
}

func (r *Remote) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *Remote) Codec() *wire.Codec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected {
		panic("transport: Codec called before Connect")
	}
	return r.codec
}
