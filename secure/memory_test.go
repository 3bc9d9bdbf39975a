/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// memory_test.go: Memory utility tests for go-ghostbyte
package secure_test

import (
	"bytes"
	"crypto/rand"
	"runtime"
	"testing"

	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

func TestLockUnlockMemory(t *testing.T) {
	buf := make([]byte, 4096)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("failed to generate test data: %v", err)
	}
	original := bytes.Clone(buf)

	if err := secure.LockMemory(buf); err != nil {
		// RLIMIT_MEMLOCK is often tiny in containers.
		t.Logf("LockMemory failed on %s (may be expected): %v", runtime.GOOS, err)
	}
	if err := secure.UnlockMemory(buf); err != nil {
		t.Logf("UnlockMemory failed on %s: %v", runtime.GOOS, err)
	}

	if !bytes.Equal(buf, original) {
		t.Error("buffer contents changed across lock/unlock")
	}
}

func TestLockMemory_EmptyBuffer(t *testing.T) {
	if err := secure.LockMemory(nil); err != nil {
		t.Errorf("LockMemory failed for empty buffer: %v", err)
	}
	if err := secure.UnlockMemory([]byte{}); err != nil {
		t.Errorf("UnlockMemory failed for empty buffer: %v", err)
	}
}

func TestZero(t *testing.T) {
	buf := make([]byte, 1024)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("failed to generate test data: %v", err)
	}
	if bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatal("test buffer is already all zeros")
	}

	secure.Zero(buf)

	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte at index %d is not zero after Zero(): got %d", i, b)
		}
	}

	// Must not panic.
	secure.Zero(nil)
}

func TestZeroAll(t *testing.T) {
	a := []byte("password")
	b := []byte("derived-key-material")
	secure.ZeroAll(a, nil, b)

	if !bytes.Equal(a, make([]byte, len(a))) || !bytes.Equal(b, make([]byte, len(b))) {
		t.Error("ZeroAll left non-zero bytes behind")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a        []byte
		b        []byte
		expected bool
	}{
		{"equal slices", []byte("hello"), []byte("hello"), true},
		{"different slices", []byte("hello"), []byte("world"), false},
		{"different lengths", []byte("hello"), []byte("hi"), false},
		{"empty slices", []byte{}, []byte{}, true},
		{"one empty", []byte("hello"), []byte{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := secure.Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestPasswordBytes(t *testing.T) {
	pw := "Str0ngPass!"
	b := secure.PasswordBytes(pw)
	if string(b) != pw {
		t.Fatalf("PasswordBytes = %q, want %q", b, pw)
	}

	secure.Zero(b)
	if pw != "Str0ngPass!" {
		t.Error("zeroing the copy must not affect the source string")
	}
}
