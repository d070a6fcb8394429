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

// ClassID tags every framed object on the wire. The client only needs to
// recognise a small, fixed set of classes; Codec.ReadObject rejects any
// other class with ErrUnknownClass.
type ClassID int32

const (
	ClassUndefined ClassID = iota
	ClassIntegerData
	ClassUnsignedIntegerData
	ClassStringData
	ClassIntegerArrayData
	ClassDataArrayData
	ClassResultSetMetaData
	ClassStatus
	ClassExceptionObject
	ClassErrorLevel
	ClassRequest
)

func (c ClassID) String() string {
	switch c {
	case ClassIntegerData:
		return "IntegerData"
	case ClassUnsignedIntegerData:
		return "UnsignedIntegerData"
	case ClassStringData:
		return "StringData"
	case ClassIntegerArrayData:
		return "IntegerArrayData"
	case ClassDataArrayData:
		return "DataArrayData"
	case ClassResultSetMetaData:
		return "ResultSetMetaData"
	case ClassStatus:
		return "Status"
	case ClassExceptionObject:
		return "ExceptionObject"
	case ClassErrorLevel:
		return "ErrorLevel"
	case ClassRequest:
		return "Request"
	}
	return "Undefined"
}
