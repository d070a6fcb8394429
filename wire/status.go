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

// StatusValue is the terminal marker that closes every request/response
// exchange and every ResultSet frame stream.
type StatusValue int32

const (
	StatusSuccess StatusValue = iota
	StatusCanceled
	StatusHasMoreData
)

func (s StatusValue) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusCanceled:
		return "Canceled"
	case StatusHasMoreData:
		return "HasMoreData"
	}
	return "Unknown"
}

// ErrorLevelValue precedes an ExceptionObject and tells the client whether
// the Port that produced it remains reusable.
type ErrorLevelValue int32

const (
	ErrorLevelUser ErrorLevelValue = iota
	ErrorLevelSystem
)

func (e ErrorLevelValue) String() string {
	switch e {
	case ErrorLevelUser:
		return "User"
	case ErrorLevelSystem:
		return "System"
	}
	return "Unknown"
}

// Reusable reports whether a Port that received this error level may be
// returned to the pool after the enclosing exception has been surfaced.
func (e ErrorLevelValue) Reusable() bool {
	return e == ErrorLevelUser
}
