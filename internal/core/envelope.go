/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// envelope.go: packing and parsing of the .gbyte container
package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
)

// Envelope is the parsed form of a .gbyte blob. The filename is stored in the
// clear and is not covered by the GCM tag.
type Envelope struct {
	Salt       []byte
	Nonce      []byte
	Filename   string
	Ciphertext []byte
}

// PlaintextLen is the size the plaintext will have once decrypted, or -1 if
// the ciphertext is too short to even hold a tag.
func (e *Envelope) PlaintextLen() int {
	if len(e.Ciphertext) < TagSize {
		return -1
	}
	return len(e.Ciphertext) - TagSize
}

// Size is the encoded length of the envelope.
func (e *Envelope) Size() int {
	return HeaderSize + len(e.Filename) + len(e.Ciphertext)
}

// MarshalBinary encodes the envelope as salt || nonce || len || filename || ciphertext.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	if len(e.Salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", crypto.ErrMalformedEnvelope, SaltSize, len(e.Salt))
	}
	if len(e.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", crypto.ErrMalformedEnvelope, NonceSize, len(e.Nonce))
	}
	out, err := appendHeader(make([]byte, 0, e.Size()), e.Salt, e.Nonce, e.Filename)
	if err != nil {
		return nil, err
	}
	return append(out, e.Ciphertext...), nil
}

// UnmarshalBinary is ParseEnvelope in encoding.BinaryUnmarshaler form.
func (e *Envelope) UnmarshalBinary(data []byte) error {
	parsed, err := ParseEnvelope(data)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// ParseEnvelope splits data at the fixed offsets of the format. The returned
// slices alias data. No password is needed, nothing is authenticated.
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", crypto.ErrMalformedEnvelope, HeaderSize, len(data))
	}

	salt := data[:SaltSize]
	nonce := data[SaltSize : SaltSize+NonceSize]
	nameLen := int(binary.BigEndian.Uint16(data[SaltSize+NonceSize : HeaderSize]))

	rest := data[HeaderSize:]
	if nameLen > len(rest) {
		return nil, fmt.Errorf("%w: filename length %d exceeds remaining %d bytes", crypto.ErrMalformedEnvelope, nameLen, len(rest))
	}

	return &Envelope{
		Salt:       salt,
		Nonce:      nonce,
		Filename:   string(rest[:nameLen]),
		Ciphertext: rest[nameLen:],
	}, nil
}

// appendHeader writes everything up to the ciphertext onto dst.
func appendHeader(dst, salt, nonce []byte, filename string) ([]byte, error) {
	if len(filename) > MaxFilenameLength {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", crypto.ErrFilenameTooLong, len(filename), MaxFilenameLength)
	}
	dst = append(dst, salt...)
	dst = append(dst, nonce...)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(filename))) // #nosec G115 -- bounded by MaxFilenameLength above
	return append(dst, filename...), nil
}

// validFilename returns the UTF-8 form of name. Each maximal ill-formed
// subsequence becomes one U+FFFD, as a browser TextDecoder does.
func validFilename(name string) string {
	if utf8.ValidString(name) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 2)
	for i := 0; i < len(name); {
		r, size := utf8.DecodeRuneInString(name[i:])
		if r != utf8.RuneError || size > 1 {
			b.WriteString(name[i : i+size])
			i += size
			continue
		}
		b.WriteRune(utf8.RuneError)
		i += maximalSubpart(name[i:])
	}
	return b.String()
}

// maximalSubpart is the length of the longest prefix of s that could begin a
// well-formed UTF-8 sequence but does not complete one. Always at least 1.
func maximalSubpart(s string) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch c := s[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	case c == 0xF4:
		need, hi = 3, 0x8F
	default:
		return 1
	}
	n := 1
	for n <= need && n < len(s) && s[n] >= lo && s[n] <= hi {
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
