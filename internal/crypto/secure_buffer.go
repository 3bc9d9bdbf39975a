/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"errors"
	"sync"

	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

// ErrBufferDestroyed is returned by Use after Destroy has run.
var ErrBufferDestroyed = errors.New("secure buffer destroyed")

// SecureBuffer keeps a password in locked memory for the lifetime of an
// Encryptor or Decryptor.
type SecureBuffer struct {
	buf    []byte
	mu     sync.RWMutex
	zeroed bool
	locked bool
}

// NewSecureBufferFromBytes copies b into a new SecureBuffer. Locking the copy
// into RAM is best effort.
func NewSecureBufferFromBytes(b []byte) *SecureBuffer {
	buf := make([]byte, len(b))
	copy(buf, b)

	return &SecureBuffer{
		buf:    buf,
		locked: secure.LockMemory(buf) == nil,
	}
}

// NewSecureBufferFromString is NewSecureBufferFromBytes for a password string.
func NewSecureBufferFromString(s string) *SecureBuffer {
	b := secure.PasswordBytes(s)
	defer secure.Zero(b)
	return NewSecureBufferFromBytes(b)
}

// Use calls fn with the buffer contents under a read lock. fn must not retain
// the slice. Concurrent Use calls are allowed.
func (s *SecureBuffer) Use(fn func([]byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.zeroed {
		return ErrBufferDestroyed
	}
	return fn(s.buf)
}

// Len returns the number of bytes held.
func (s *SecureBuffer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

// Destroy zeroes the buffer and releases the memory lock. Safe to call twice.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zeroed {
		return
	}
	secure.Zero(s.buf)
	s.zeroed = true
	if s.locked {
		_ = secure.UnlockMemory(s.buf)
		s.locked = false
	}
}
