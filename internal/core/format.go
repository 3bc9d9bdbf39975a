/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// format.go: .gbyte envelope layout constants for go-ghostbyte
package core

import "math"

const (
	// SaltSize is the size of the PBKDF2 salt at the start of every envelope.
	SaltSize = 16
	// NonceSize is the size of the AES-GCM nonce following the salt.
	NonceSize = 12
	// LengthFieldSize is the size of the big-endian filename length.
	LengthFieldSize = 2
	// HeaderSize is the fixed part of the envelope.
	// Envelope format: [16 bytes salt][12 bytes nonce][2 bytes name length][name][ciphertext+tag]
	HeaderSize = SaltSize + NonceSize + LengthFieldSize
	// TagSize is the GCM authentication tag appended to the ciphertext.
	TagSize = 16
	// MaxFilenameLength is the largest UTF-8 filename the length field can describe.
	MaxFilenameLength = math.MaxUint16
	// FileExtension is the conventional suffix of envelope files and download URLs.
	FileExtension = ".gbyte"
)
