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
	"fmt"

	liberr "github.com/nabbar/sydney-client/errors"
	"github.com/nabbar/sydney-client/sydnerr"
)

const (
	errPort liberr.CodeError = iota + liberr.MinPkgPort
	errPortHandshake
	errPortExpunged
)

const (
	errPool liberr.CodeError = iota + liberr.MinPkgPool
	errPoolDuplicatePush
)

const (
	errControl liberr.CodeError = iota + liberr.MinPkgControl
	errControlEmpty
)

const (
	errDataSource liberr.CodeError = iota + liberr.MinPkgDataSource
	errDataSourceAlreadyOpen
	errDataSourceClosed
)

const (
	errSession liberr.CodeError = iota + liberr.MinPkgSession
)

const (
	errPrepareStatement liberr.CodeError = iota + liberr.MinPkgPrepareStatement
)

const (
	errResultSet liberr.CodeError = iota + liberr.MinPkgResultSet
)

func init() {
	if liberr.ExistInMapMessage(errPort) {
		panic(fmt.Errorf("error code collision with package sydney-client/client (port)"))
	}
	liberr.RegisterIdFctMessage(errPort, getMessage)

	if liberr.ExistInMapMessage(errPool) {
		panic(fmt.Errorf("error code collision with package sydney-client/client (pool)"))
	}
	liberr.RegisterIdFctMessage(errPool, getMessage)

	if liberr.ExistInMapMessage(errControl) {
		panic(fmt.Errorf("error code collision with package sydney-client/client (control)"))
	}
	liberr.RegisterIdFctMessage(errControl, getMessage)

	if liberr.ExistInMapMessage(errDataSource) {
		panic(fmt.Errorf("error code collision with package sydney-client/client (datasource)"))
	}
	liberr.RegisterIdFctMessage(errDataSource, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case errPort:
		return "port is closed"
	case errPortHandshake:
		return "port handshake failed"
	case errPortExpunged:
		return sydnerr.ConnectionClosed.GetMessage()
	case errPool:
		return "pool is empty"
	case errPoolDuplicatePush:
		return "port already present in pool"
	case errControl:
		return "control connection failed"
	case errControlEmpty:
		return sydnerr.NotInitialized.GetMessage()
	case errDataSource:
		return "data source error"
	case errDataSourceAlreadyOpen:
		return "data source is already open"
	case errDataSourceClosed:
		return sydnerr.NotInitialized.GetMessage()
	}
	return liberr.NullMessage
}
