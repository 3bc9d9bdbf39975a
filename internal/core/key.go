/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// key.go: Password-based key derivation for go-ghostbyte
package core

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

const (
	// PBKDF2Iterations is fixed by the envelope format; both sides must agree on it.
	PBKDF2Iterations = 100000

	// KeySize is the derived key size (32 bytes for AES-256)
	KeySize = 32
)

// KeyDerivationFn stretches a password and salt into keyLen bytes of key material.
type KeyDerivationFn func(password, salt []byte, iterations, keyLen int) ([]byte, error)

// AEADFactory builds the authenticated cipher for a derived key.
type AEADFactory func(key []byte) (cipher.AEAD, error)

// DeriveKeyPBKDF2 is the default KeyDerivationFn: PBKDF2-HMAC-SHA256.
// The caller must zero the returned key after use.
func DeriveKeyPBKDF2(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("salt cannot be empty")
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}
	if keyLen <= 0 || keyLen > 128 {
		return nil, fmt.Errorf("keyLen must be between 1 and 128 bytes, got %d", keyLen)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}

// NewAESGCM is the default AEADFactory: AES-256 in GCM mode with a 12-byte
// nonce and 16-byte tag.
func NewAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: must be %d bytes for AES-256, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, crypto.WrapError("create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, crypto.WrapError("create GCM", err)
	}
	return gcm, nil
}

// Key is a derived key usable only to seal and open with AES-GCM. The raw key
// bytes are wiped as soon as the cipher is built and are never exposed.
type Key struct {
	aead cipher.AEAD
}

// Seal encrypts plaintext with no additional data and appends ciphertext+tag to dst.
func (k *Key) Seal(dst, nonce, plaintext []byte) ([]byte, error) {
	if k == nil || k.aead == nil {
		return nil, fmt.Errorf("key destroyed")
	}
	if len(nonce) != k.aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length: must be %d bytes, got %d", k.aead.NonceSize(), len(nonce))
	}
	return k.aead.Seal(dst, nonce, plaintext, nil), nil // #nosec G407 -- nonce is drawn from the CSPRNG per envelope
}

// Open authenticates and decrypts ciphertext, appending the plaintext to dst.
// Every failure, including a bad nonce length, is ErrDecryptionFailed.
func (k *Key) Open(dst, nonce, ciphertext []byte) ([]byte, error) {
	if k == nil || k.aead == nil || len(nonce) != k.aead.NonceSize() {
		return nil, crypto.ErrDecryptionFailed
	}
	plaintext, err := k.aead.Open(dst, nonce, ciphertext, nil)
	if err != nil {
		return nil, crypto.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Destroy drops the cipher so the key can no longer be used.
func (k *Key) Destroy() {
	if k != nil {
		k.aead = nil
	}
}

// DeriveKey derives the envelope key for password and salt. Identical inputs
// always yield a key that opens what the other sealed.
//
// Derivation runs on its own goroutine so a canceled ctx returns promptly; the
// abandoned goroutine still wipes its copies of the password and key bytes.
func DeriveKey(ctx context.Context, password []byte, salt []byte, opts ...Option) (*Key, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return deriveKey(ctx, password, salt, cfg)
}

func deriveKey(ctx context.Context, password, salt []byte, cfg *Config) (*Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, crypto.Canceled(err)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", crypto.ErrKeyDerivation, SaltSize, len(salt))
	}

	type result struct {
		key *Key
		err error
	}
	done := make(chan result, 1)

	pw := bytes.Clone(password)
	saltCopy := bytes.Clone(salt)
	go func() {
		var raw []byte
		defer func() { secure.ZeroAll(pw, raw) }()

		raw, err := cfg.KDF(pw, saltCopy, PBKDF2Iterations, KeySize)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %w", crypto.ErrKeyDerivation, err)}
			return
		}

		aead, err := cfg.Cipher(raw)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %w", crypto.ErrKeyDerivation, err)}
			return
		}
		done <- result{key: &Key{aead: aead}}
	}()

	select {
	case <-ctx.Done():
		return nil, crypto.Canceled(ctx.Err())
	case r := <-done:
		return r.key, r.err
	}
}

// GenerateSalt reads a fresh salt from r (crypto/rand.Reader unless overridden).
func GenerateSalt(r io.Reader) ([]byte, error) {
	return readRandom(r, SaltSize, "generate salt")
}

// GenerateNonce reads a fresh AES-GCM nonce from r.
func GenerateNonce(r io.Reader) ([]byte, error) {
	return readRandom(r, NonceSize, "generate nonce")
}

func readRandom(r io.Reader, n int, op string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, crypto.WrapError(op, err)
	}
	return b, nil
}
