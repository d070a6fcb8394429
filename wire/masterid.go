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

// MasterID is the negotiated 32-bit word exchanged on every Port handshake:
//
//	bits 0..15  protocol version
//	bits 16..23 crypto algorithm (0 = none)
//	bits 24..27 authorization mode (0 = none, 1 = password)
//	bits 28..31 reserved (0)
type MasterID uint32

const (
	maskVersion = 0x0000FFFF
	shiftCrypto = 16
	maskCrypto  = 0x000000FF
	shiftAuth   = 24
	maskAuth    = 0x0000000F
)

// ProtocolVersion enumerates the protocol generations the client may request
// or that a server may agree to.
type ProtocolVersion uint16

const (
	Version1 ProtocolVersion = iota + 1
	Version2
	Version3
	Version4
	Version5
)

// CryptoAlgorithm identifies the optional session-key cipher. None is the
// only algorithm this repository implements; the value is still carried so a
// future codec has a seam to plug into, per the original design notes.
type CryptoAlgorithm uint8

const (
	CryptoNone CryptoAlgorithm = 0
)

// AuthorizeMode identifies how BeginSession authenticates.
type AuthorizeMode uint8

const (
	AuthorizeNone     AuthorizeMode = 0
	AuthorizePassword AuthorizeMode = 1
)

// NewMasterID packs a protocol version, crypto algorithm and authorization
// mode into the wire word sent on every Port handshake.
func NewMasterID(version ProtocolVersion, crypto CryptoAlgorithm, auth AuthorizeMode) MasterID {
	return MasterID(uint32(version)&maskVersion) |
		MasterID(uint32(crypto)&maskCrypto)<<shiftCrypto |
		MasterID(uint32(auth)&maskAuth)<<shiftAuth
}

// Version extracts the negotiated protocol version.
func (m MasterID) Version() ProtocolVersion {
	return ProtocolVersion(uint32(m) & maskVersion)
}

// Crypto extracts the negotiated crypto algorithm.
func (m MasterID) Crypto() CryptoAlgorithm {
	return CryptoAlgorithm((uint32(m) >> shiftCrypto) & maskCrypto)
}

// Authorize extracts the negotiated authorization mode.
func (m MasterID) Authorize() AuthorizeMode {
	return AuthorizeMode((uint32(m) >> shiftAuth) & maskAuth)
}

// WithAuthorize returns a copy of m with its authorization bits replaced;
// used by DataSource.Open to OR in the default Password mode when the
// caller's requested word left the authorization bits unset.
func (m MasterID) WithAuthorize(auth AuthorizeMode) MasterID {
	return MasterID(uint32(m)&^(maskAuth<<shiftAuth)) | MasterID(uint32(auth)&maskAuth)<<shiftAuth
}

// AnySlaveID is the sentinel slave-ID value a client sends when it wants the
// server to assign a fresh one rather than reusing a pooled Port.
const AnySlaveID int32 = ^int32(0x7FFFFFFF) // 0x80000000
