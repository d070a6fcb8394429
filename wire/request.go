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

package wire

// RequestCode is the first argument of every Request object a client sends
// on a control connection or a freshly acquired worker Port.
type RequestCode int32

const (
	BeginConnection RequestCode = iota + 1
	BeginWorker
	CancelWorker
	EndConnection
	NoReuseConnection
	ErasePrepareStatement
	ErasePrepareStatement2
	CheckAvailability
	Shutdown
	Shutdown2
	CreateUser
	DropUser
	ChangeOwnPassword
	ChangePassword
	BeginSession
	BeginSession2
	ExecuteStatement
	ExecutePrepare
	PrepareStatement
	PrepareStatement2
	EndSession
)

func (r RequestCode) String() string {
	switch r {
	case BeginConnection:
		return "BeginConnection"
	case BeginWorker:
		return "BeginWorker"
	case CancelWorker:
		return "CancelWorker"
	case EndConnection:
		return "EndConnection"
	case NoReuseConnection:
		return "NoReuseConnection"
	case ErasePrepareStatement:
		return "ErasePrepareStatement"
	case ErasePrepareStatement2:
		return "ErasePrepareStatement2"
	case CheckAvailability:
		return "CheckAvailability"
	case Shutdown:
		return "Shutdown"
	case Shutdown2:
		return "Shutdown2"
	case CreateUser:
		return "CreateUser"
	case DropUser:
		return "DropUser"
	case ChangeOwnPassword:
		return "ChangeOwnPassword"
	case ChangePassword:
		return "ChangePassword"
	case BeginSession:
		return "BeginSession"
	case BeginSession2:
		return "BeginSession2"
	case ExecuteStatement:
		return "ExecuteStatement"
	case ExecutePrepare:
		return "ExecutePrepare"
	case PrepareStatement:
		return "PrepareStatement"
	case PrepareStatement2:
		return "PrepareStatement2"
	case EndSession:
		return "EndSession"
	}
	return "Unknown"
}

// AvailabilityTarget is the argument of a CheckAvailability request.
type AvailabilityTarget int32

const (
	AvailabilityServer AvailabilityTarget = iota
	AvailabilityDatabase
)
