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

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// frame is the on-the-wire shape of every object: a class tag followed by
// its CBOR-encoded body. Request arguments are themselves frames, nested
// recursively, which is how a mixed-type argument list survives a single
// generic envelope instead of needing one schema per RequestCode.
type frame struct {
	Class ClassID
	Body  []byte
}

type requestBody struct {
	Code RequestCode
	Args []frame
}

// Codec frames Objects over an underlying stream: a big-endian uint32 byte
// length, a big-endian int32 ClassID, then the CBOR body. The same stream
// also carries the unframed raw int32 handshake words exchanged before the
// first Object, via WriteInteger/ReadInteger.
//
// A Codec is not safe for concurrent use by multiple goroutines on the same
// direction (read or write); the owning Port serializes access.
type Codec struct {
	r  *bufio.Reader
	w  *bufio.Writer
	mu sync.Mutex
}

// NewCodec wraps rw with the framed object protocol.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r: bufio.NewReader(rw),
		w: bufio.NewWriter(rw),
	}
}

// WriteInteger sends a raw, unframed 32-bit word. Used only for the
// handshake preceding the first framed Object on a fresh connection.
func (c *Codec) WriteInteger(v int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	if _, err := c.w.Write(buf[:]); err != nil {
		return ErrTransportWrite.Error(err)
	}
	return c.w.Flush()
}

// ReadInteger reads a raw, unframed 32-bit word.
func (c *Codec) ReadInteger() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		return 0, ErrTransportRead.Error(err)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func encodeFrame(o Object) (frame, error) {
	body, err := marshalBody(o)
	if err != nil {
		return frame{}, err
	}
	return frame{Class: o.ClassID(), Body: body}, nil
}

func marshalBody(o Object) ([]byte, error) {
	switch v := o.(type) {
	case Request:
		args := make([]frame, 0, len(v.Args))
		for _, a := range v.Args {
			f, err := encodeFrame(a)
			if err != nil {
				return nil, err
			}
			args = append(args, f)
		}
		return cbor.Marshal(requestBody{Code: v.Code, Args: args})
	default:
		return cbor.Marshal(o)
	}
}

// WriteObject frames and sends o: length prefix, ClassID, CBOR body.
func (c *Codec) WriteObject(o Object) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := encodeFrame(o)
	if err != nil {
		return ErrMalformedFrame.Error(err)
	}

	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], uint32(len(f.Body)))
	binary.BigEndian.PutUint32(head[4:8], uint32(f.Class))

	if _, err = c.w.Write(head[:]); err != nil {
		return ErrTransportWrite.Error(err)
	}
	if len(f.Body) > 0 {
		if _, err = c.w.Write(f.Body); err != nil {
			return ErrTransportWrite.Error(err)
		}
	}
	return c.w.Flush()
}

// WriteEndOfData sends the sentinel "no more data" marker: a classless,
// empty frame. ReadObject decodes it back as a nil Object.
func (c *Codec) WriteEndOfData() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var head [8]byte
	binary.BigEndian.PutUint32(head[4:8], uint32(ClassUndefined))
	if _, err := c.w.Write(head[:]); err != nil {
		return ErrTransportWrite.Error(err)
	}
	return c.w.Flush()
}

// ReadObject reads one framed Object and dispatches it to the concrete type
// registered for its ClassID.
func (c *Codec) ReadObject() (Object, error) {
	var head [8]byte
	if _, err := io.ReadFull(c.r, head[:]); err != nil {
		return nil, ErrTransportRead.Error(err)
	}
	size := binary.BigEndian.Uint32(head[0:4])
	class := ClassID(binary.BigEndian.Uint32(head[4:8]))

	body := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(c.r, body); err != nil {
			return nil, ErrTransportRead.Error(err)
		}
	}
	return decodeBody(class, body)
}

func decodeBody(class ClassID, body []byte) (Object, error) {
	switch class {
	case ClassUndefined:
		// The sentinel "no more data" marker: a DataArrayData stream ends
		// with an empty, classless frame rather than a Status when the
		// server still has a trailing Status to send afterwards.
		return nil, nil
	case ClassIntegerData:
		var v IntegerData
		return v, unmarshalOrFail(body, &v)
	case ClassUnsignedIntegerData:
		var v UnsignedIntegerData
		return v, unmarshalOrFail(body, &v)
	case ClassStringData:
		var v StringData
		return v, unmarshalOrFail(body, &v)
	case ClassIntegerArrayData:
		var v IntegerArrayData
		return v, unmarshalOrFail(body, &v)
	case ClassDataArrayData:
		var v DataArrayData
		return v, unmarshalOrFail(body, &v)
	case ClassResultSetMetaData:
		var v ResultSetMetaData
		return v, unmarshalOrFail(body, &v)
	case ClassStatus:
		var v Status
		return v, unmarshalOrFail(body, &v)
	case ClassExceptionObject:
		var v ExceptionObject
		return v, unmarshalOrFail(body, &v)
	case ClassErrorLevel:
		var v ErrorLevel
		return v, unmarshalOrFail(body, &v)
	case ClassRequest:
		var raw requestBody
		if err := unmarshalOrFail(body, &raw); err != nil {
			return nil, err
		}
		args := make([]Object, 0, len(raw.Args))
		for _, f := range raw.Args {
			a, err := decodeBody(f.Class, f.Body)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return Request{Code: raw.Code, Args: args}, nil
	default:
		return nil, ErrUnknownClass.Error(fmt.Errorf("class id %d", int32(class)))
	}
}

func unmarshalOrFail(body []byte, out interface{}) error {
	if err := cbor.Unmarshal(body, out); err != nil {
		return ErrMalformedFrame.Error(err)
	}
	return nil
}
