/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package ghostbyte seals files into password-protected .gbyte envelopes and
// opens them again. Envelopes are byte-compatible with the GhostByte browser
// client.
//
// An envelope is laid out as:
//
//	[16 bytes salt][12 bytes IV][2 bytes filename length, big-endian][filename][ciphertext + 16-byte tag]
//
// The key is derived with PBKDF2-HMAC-SHA256 (100,000 iterations, 32 bytes)
// from the password and the salt, and the plaintext is sealed with AES-256-GCM
// under the IV with no additional data. The whole file is processed in memory.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	envelope, err := ghostbyte.EncryptFile(ctx, data, "Str0ngPass!", "notes.txt")
//	if err != nil {
//	    return err
//	}
//
//	payload, err := ghostbyte.DecryptFile(ctx, envelope, "Str0ngPass!")
//	if errors.Is(err, ghostbyte.ErrDecryptionFailed) {
//	    // wrong password or damaged file, deliberately indistinguishable
//	}
//	fmt.Println(payload.OriginalFilename, len(payload.Plaintext))
//
// # Files on Disk
//
// EncryptPath and DecryptPath work on paths. DecryptPath writes into a
// directory under SafeFilename of the stored name and refuses to replace an
// existing file unless WithOverwrite(true) is given.
//
// # Security Considerations
//
// The filename is stored in the clear and is not authenticated: anyone can
// change it without breaking decryption. Never use it as a path without
// passing it through SafeFilename first.
//
// Show end users SanitizeError(err) rather than err itself.
package ghostbyte

import (
	"context"

	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

// Option configures an encryption or decryption call (re-exported from internal/core).
type Option = core.Option

// Payload is the result of DecryptFile.
type Payload = core.Payload

// Envelope is a parsed .gbyte header plus ciphertext.
type Envelope = core.Envelope

// Key is a derived key usable only to seal and open.
type Key = core.Key

// KeyDerivationFn and AEADFactory are the injectable primitives.
type (
	KeyDerivationFn = core.KeyDerivationFn
	AEADFactory     = core.AEADFactory
)

// EnvelopeError carries the failing operation and file name.
type EnvelopeError = crypto.EnvelopeError

var (
	WithRandom        = core.WithRandom
	WithKeyDerivation = core.WithKeyDerivation
	WithCipher        = core.WithCipher
	WithMaxSize       = core.WithMaxSize
	WithOverwrite     = core.WithOverwrite
	MaxSizeFromEnv    = core.MaxSizeFromEnv
)

// Error kinds. Classify with errors.Is.
var (
	ErrKeyDerivation     = crypto.ErrKeyDerivation
	ErrFilenameTooLong   = crypto.ErrFilenameTooLong
	ErrMalformedEnvelope = crypto.ErrMalformedEnvelope
	ErrDecryptionFailed  = crypto.ErrDecryptionFailed
	ErrTooLarge          = crypto.ErrTooLarge
	ErrContextCanceled   = crypto.ErrContextCanceled
)

// SanitizeError maps any error from this package to a message safe to show an end user.
var SanitizeError = crypto.SanitizeError

const (
	SaltSize          = core.SaltSize
	NonceSize         = core.NonceSize
	HeaderSize        = core.HeaderSize
	TagSize           = core.TagSize
	MaxFilenameLength = core.MaxFilenameLength
	PBKDF2Iterations  = core.PBKDF2Iterations
	KeySize           = core.KeySize
	FileExtension     = core.FileExtension
	DefaultFilename   = core.DefaultFilename
	DefaultMaxSize    = core.DefaultMaxSize
	SizeLimitEnv      = core.SizeLimitEnv
)

// Re-export checksum helpers from internal/core so callers can fingerprint envelopes.
var (
	Checksum             = core.Checksum
	ChecksumHex          = core.ChecksumHex
	CalculateChecksum    = core.CalculateChecksum
	CalculateChecksumHex = core.CalculateChecksumHex
	VerifyChecksumHex    = core.VerifyChecksumHex
)

// SafeFilename reduces an untrusted envelope filename to one path element.
var SafeFilename = core.SafeFilename

// WritePayload stores a decrypted payload in a directory under SafeFilename
// of its stored name.
var WritePayload = core.WritePayload

// ReadEnvelopeFile reads a local envelope that can carry at most maxSize
// bytes of plaintext.
var ReadEnvelopeFile = core.ReadEnvelopeFile

// MaxEnvelopeSize is the largest envelope a maxSize plaintext can produce.
var MaxEnvelopeSize = core.MaxEnvelopeSize

// Zero securely zeroes a sensitive slice.
var Zero = secure.Zero

// DeriveKey derives the envelope key for password and a 16-byte salt with
// PBKDF2-HMAC-SHA256 at 100,000 iterations.
func DeriveKey(ctx context.Context, password string, salt []byte, opts ...Option) (*Key, error) {
	pw := secure.PasswordBytes(password)
	defer secure.Zero(pw)
	return core.DeriveKey(ctx, pw, salt, opts...)
}

// EncryptFile seals plaintext under password and returns the envelope.
// originalFilename is stored in the clear.
func EncryptFile(ctx context.Context, plaintext []byte, password, originalFilename string, opts ...Option) ([]byte, error) {
	enc, err := core.NewEncryptor(password, opts...)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()
	return enc.Encrypt(ctx, plaintext, originalFilename)
}

// DecryptFile opens envelope with password.
func DecryptFile(ctx context.Context, envelope []byte, password string, opts ...Option) (*Payload, error) {
	dec, err := core.NewDecryptor(password, opts...)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()
	return dec.Decrypt(ctx, envelope)
}

// EncryptPath seals the file at srcPath into dstPath.
func EncryptPath(ctx context.Context, srcPath, dstPath, password string, opts ...Option) error {
	enc, err := core.NewEncryptor(password, opts...)
	if err != nil {
		return err
	}
	defer enc.Destroy()
	return enc.EncryptFile(ctx, srcPath, dstPath)
}

// DecryptPath opens the envelope at srcPath and writes the plaintext into
// dstDir. It returns the path written. Existing files are never replaced
// unless WithOverwrite(true) is passed.
func DecryptPath(ctx context.Context, srcPath, dstDir, password string, opts ...Option) (string, error) {
	dec, err := core.NewDecryptor(password, opts...)
	if err != nil {
		return "", err
	}
	defer dec.Destroy()
	return dec.DecryptFile(ctx, srcPath, dstDir)
}

// Inspect parses an envelope without a password. Nothing is authenticated.
func Inspect(envelope []byte) (*Envelope, error) {
	return core.ParseEnvelope(envelope)
}

// NewEncryptor returns a reusable Encryptor bound to password.
func NewEncryptor(password string, opts ...Option) (*core.Encryptor, error) {
	return core.NewEncryptor(password, opts...)
}

// NewDecryptor returns a reusable Decryptor bound to password.
func NewDecryptor(password string, opts ...Option) (*core.Decryptor, error) {
	return core.NewDecryptor(password, opts...)
}
