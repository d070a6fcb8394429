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

// Package wire implements the framed, class-tagged object protocol shared by
// every Port: a stream of length-delimited frames, each prefixed by a 32-bit
// ClassID, whose payload is CBOR-encoded. A small raw int32 handshake (no
// framing, no CBOR) bootstraps every connection before the first frame.
package wire

// Object is anything that can travel as the payload of a framed message.
// ClassID identifies the concrete type so Codec.ReadObject can dispatch to
// the right factory without out-of-band type information.
type Object interface {
	ClassID() ClassID
}

// IntegerData carries a single signed 32-bit column or argument value.
type IntegerData struct {
	Value int32
}

func (IntegerData) ClassID() ClassID { return ClassIntegerData }

// UnsignedIntegerData carries a single unsigned 32-bit column or argument
// value.
type UnsignedIntegerData struct {
	Value uint32
}

func (UnsignedIntegerData) ClassID() ClassID { return ClassUnsignedIntegerData }

// StringData carries a single text column or argument value.
type StringData struct {
	Value string
}

func (StringData) ClassID() ClassID { return ClassStringData }

// IntegerArrayData carries a vector of signed 32-bit values, used by requests
// whose argument list is itself variable-length (column index lists, batch
// parameter positions).
type IntegerArrayData struct {
	Value []int32
}

func (IntegerArrayData) ClassID() ClassID { return ClassIntegerArrayData }

// DataArrayData carries one row of a ResultSet: each element is the raw
// payload bytes of a column value, still tagged by the column's own class so
// the caller can decode it with the matching Go type.
type DataArrayData struct {
	Value [][]byte
}

func (DataArrayData) ClassID() ClassID { return ClassDataArrayData }

// ColumnMetaData describes one projected column of a ResultSet.
type ColumnMetaData struct {
	Name     string
	TypeName string
	Nullable bool
}

// ResultSetMetaData is sent once, before the first Data frame of a streamed
// cursor, and describes every projected column in order.
type ResultSetMetaData struct {
	Columns []ColumnMetaData
}

func (ResultSetMetaData) ClassID() ClassID { return ClassResultSetMetaData }

// Status closes a request/response exchange or a ResultSet frame stream.
type Status struct {
	Value StatusValue
}

func (Status) ClassID() ClassID { return ClassStatus }

// ExceptionObject carries a server-side failure. It is always preceded on
// the wire by an ErrorLevel object that tells the client whether the Port
// that produced it may be reused.
type ExceptionObject struct {
	Code    int32
	Message string
}

func (ExceptionObject) ClassID() ClassID { return ClassExceptionObject }

// ErrorLevel precedes an ExceptionObject frame.
type ErrorLevel struct {
	Value ErrorLevelValue
}

func (ErrorLevel) ClassID() ClassID { return ClassErrorLevel }

// Request is the first frame of every client-initiated exchange: a request
// code followed by a positional argument list, each argument itself a framed
// Object so mixed-type argument lists (int, string, array) round-trip
// without a separate schema per RequestCode.
type Request struct {
	Code RequestCode
	Args []Object
}

func (Request) ClassID() ClassID { return ClassRequest }
