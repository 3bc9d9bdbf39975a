/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bytes"
	"context"
	"testing"
)

// fastKDF is PBKDF2 at a single iteration, for exhaustive grids where 100,000
// iterations per case would take minutes. Envelopes it produces only open
// with fastKDF.
func fastKDF(password, salt []byte, _ int, keyLen int) ([]byte, error) {
	return DeriveKeyPBKDF2(password, salt, 1, keyLen)
}

// countingReader yields 0x01, 0x02, ... so "random" fields are predictable.
type countingReader struct{ next byte }

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		r.next++
		p[i] = r.next
	}
	return len(p), nil
}

func mustEncrypt(t testing.TB, password string, plaintext []byte, filename string, opts ...Option) []byte {
	t.Helper()
	enc, err := NewEncryptor(password, opts...)
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}
	defer enc.Destroy()

	envelope, err := enc.Encrypt(context.Background(), plaintext, filename)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return envelope
}

func decrypt(t testing.TB, password string, envelope []byte, opts ...Option) (*Payload, error) {
	t.Helper()
	dec, err := NewDecryptor(password, opts...)
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}
	defer dec.Destroy()
	return dec.Decrypt(context.Background(), envelope)
}

func flipBit(data []byte, bit int) []byte {
	out := bytes.Clone(data)
	out[bit/8] ^= 1 << (bit % 8)
	return out
}
