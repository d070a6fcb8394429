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

// Package sydnerr declares the API-boundary error codes shared by every
// subsystem of the client: transport, wire, port pool, control connection,
// data source, session, prepare statement and result set all wrap one of
// these sentinels rather than inventing their own spelling of "the session
// is gone" or "the server rejected the argument".
package sydnerr

import (
	"fmt"

	liberr "github.com/nabbar/sydney-client/errors"
)

const (
	BadArgument liberr.CodeError = iota + liberr.MinPkgSydnErr
	ClassCast
	ConnectionClosed
	ConnectionRanOut
	NotInitialized
	NotSupported
	NumericValueOutOfRange
	InvalidStatementIdentifier
	SessionNotAvailable
	ServerNotAvailable
	ArrayRightTruncation
	StringRightTruncation
	Unexpected
)

func init() {
	if liberr.ExistInMapMessage(BadArgument) {
		panic(fmt.Errorf("error code collision with package sydney-client/sydnerr"))
	}
	liberr.RegisterIdFctMessage(BadArgument, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case BadArgument:
		return "argument value is invalid for this operation"
	case ClassCast:
		return "wire frame did not carry the expected class identifier"
	case ConnectionClosed:
		return "the peer closed the connection"
	case ConnectionRanOut:
		return "the connection could not be reached"
	case NotInitialized:
		return "the data source is not open"
	case NotSupported:
		return "the negotiated server mode does not support this operation"
	case NumericValueOutOfRange:
		return "numeric value is out of the representable range"
	case InvalidStatementIdentifier:
		return "prepare statement identifier is not valid for this scope"
	case SessionNotAvailable:
		return "session is not valid anymore"
	case ServerNotAvailable:
		return "server reported itself or the target database as unavailable"
	case ArrayRightTruncation:
		return "array value truncated on assignment"
	case StringRightTruncation:
		return "string value truncated on assignment"
	case Unexpected:
		return "unexpected frame or internal state desync"
	}

	return liberr.NullMessage
}
