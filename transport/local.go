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
	"io"
	"sync"

	"github.com/nabbar/sydney-client/wire"
)

// duplex glues two io.Pipe pairs into a single io.ReadWriter: what one side
// writes, the other reads, and vice versa.
type duplex struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (d *duplex) Read(p []byte) (int, error)  { return d.r.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.w.Write(p) }
func (d *duplex) Close() error {
	_ = d.r.Close()
	return d.w.Close()
}

// NewLocalPair returns two Local transports already connected to each
// other, one for the client side and one for the in-process server side.
// This is the transport a DataSource opened with a Local connector uses
// instead of dialing out over TCP.
func NewLocalPair(address string) (client *Local, server *Local) {
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()

	c := &duplex{r: cr, w: cw}
	s := &duplex{r: sr, w: sw}

	client = &Local{address: address, pipe: c}
	server = &Local{address: address, pipe: s}
	return client, server
}

// Local is an in-process, bounded duplex transport: no sockets, no
// serialization across an OS boundary, used when the client and the server
// share the same process.
type Local struct {
	address string
	pipe    *duplex

	mu        sync.Mutex
	codec     *wire.Codec
	connected bool
}

func (l *Local) Address() string { return l.address }

// Connect attaches the codec to the already-open pipe pair. NewLocalPair
// does the actual wiring; Connect only needs to flip the state machine, so
// it never blocks and ignores ctx.
func (l *Local) Connect(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return nil
	}
	l.codec = wire.NewCodec(l.pipe)
	l.connected = true
	return nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return nil
	}
	l.connected = false
	err := l.pipe.Close()
	l.codec = nil
	if err != nil {
		return ErrAlreadyClosed.Error(err)
	}
	return nil
}

func (l *Local) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *Local) Codec() *wire.Codec {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		panic("transport: Codec called before Connect")
	}
	return l.codec
}
