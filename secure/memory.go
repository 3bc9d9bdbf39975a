/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package secure holds helpers for handling passwords and derived keys in memory.
package secure

import (
	"crypto/subtle"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	clear(b)
	// Keeps the compiler from eliding the clear on a slice that is never read again.
	_ = subtle.ConstantTimeCompare(b, make([]byte, len(b)))
}

// ZeroAll zeroes every slice passed to it.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		Zero(b)
	}
}

// Equal reports whether a and b hold the same bytes, in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// PasswordBytes copies a password string into a fresh byte slice the caller
// owns and is expected to Zero once done. Go strings are immutable, so the
// original string itself cannot be wiped.
func PasswordBytes(password string) []byte {
	b := make([]byte, len(password))
	copy(b, password)
	return b
}
