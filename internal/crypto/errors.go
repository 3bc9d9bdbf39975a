/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Error kinds returned by the envelope codec. Callers classify with errors.Is.
var (
	// ErrKeyDerivation means PBKDF2 or the AES-GCM construction rejected its parameters.
	ErrKeyDerivation = errors.New("key derivation failed")
	// ErrFilenameTooLong means the UTF-8 filename does not fit the 2-byte length field.
	ErrFilenameTooLong = errors.New("filename too long")
	// ErrMalformedEnvelope means the envelope is truncated or its length field overruns the buffer.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrDecryptionFailed covers a wrong password and corrupted or tampered ciphertext alike.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrTooLarge means the input exceeds the configured size limit.
	ErrTooLarge        = errors.New("input exceeds size limit")
	ErrContextCanceled = errors.New("context canceled")
)

// DecryptionFailedMessage is the only thing an end user should learn about a failed decrypt.
const DecryptionFailedMessage = "decryption failed: check the password or file integrity"

// SanitizeError removes sensitive details for external consumption
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrDecryptionFailed):
		return errors.New(DecryptionFailedMessage)
	case errors.Is(err, ErrMalformedEnvelope):
		return errors.New("not a valid .gbyte file")
	case errors.Is(err, ErrFilenameTooLong):
		return errors.New("file name is too long, please shorten it")
	case errors.Is(err, ErrTooLarge):
		return errors.New("file is too large")
	case errors.Is(err, ErrContextCanceled):
		return errors.New("operation canceled")
	case errors.Is(err, os.ErrPermission):
		return errors.New("insufficient permissions")
	case errors.Is(err, os.ErrNotExist):
		return errors.New("file not found")
	default:
		return errors.New("encryption operation failed")
	}
}

// EnvelopeError attaches the failing operation and the envelope's file name to an error.
type EnvelopeError struct {
	Op   string // "encrypt", "decrypt", "derive", "parse"
	Name string // original or on-disk file name, may be empty
	Err  error
}

func (e *EnvelopeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// NewEnvelopeError creates a new EnvelopeError
func NewEnvelopeError(op, name string, err error) *EnvelopeError {
	return &EnvelopeError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}

// WrapError adds context to an error
func WrapError(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Canceled reports a context cancellation as ErrContextCanceled while keeping
// the context's own error in the chain.
func Canceled(cause error) error {
	return fmt.Errorf("%w: %w", ErrContextCanceled, cause)
}
