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

// Package transport provides the two byte-pipe implementations a Port can be
// built on: Remote, a TCP socket with IPv4/IPv6 fallback and optional
// keep-alive, and Local, an in-process duplex used when the client and the
// server share the same binary. Both expose the same Transport interface so
// the wire codec and everything above it never special-cases which one it
// got.
package transport

import (
	"context"

	"github.com/nabbar/sydney-client/wire"
)

// Transport is a connected, framed byte-pipe: Connect establishes it,
// Close tears it down, and the embedded Codec frames Objects and raw
// handshake words over it.
type Transport interface {
	// Connect dials (Remote) or attaches (Local) the underlying pipe. It is
	// a no-op if the transport is already connected.
	Connect(ctx context.Context) error

	// Close releases the underlying pipe. Close is idempotent.
	Close() error

	// IsConnected reports whether Connect succeeded and Close has not been
	// called since.
	IsConnected() bool

	// Codec returns the framed object codec bound to this transport. It
	// panics if called before a successful Connect.
	Codec() *wire.Codec

	// Address returns the human-readable endpoint this transport is bound
	// to, for logging.
	Address() string
}
