/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// options.go: Configuration options for go-ghostbyte
package core

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
)

// SizeLimitEnv overrides DefaultMaxSize for the whole process, e.g. "250MB" or "2GiB".
const SizeLimitEnv = "GHOSTBYTE_SIZE_LIMIT"

// DefaultMaxSize bounds plaintexts and envelopes held in memory (1 GiB).
const DefaultMaxSize int64 = 1 << 30

// Config holds the pluggable primitives and limits of an Encryptor or Decryptor.
type Config struct {
	Rand    io.Reader
	KDF     KeyDerivationFn
	Cipher  AEADFactory
	MaxSize int64
	// Overwrite lets DecryptFile replace an existing file in the destination.
	Overwrite bool
}

// Option defines functional options for encryption/decryption (randomness source, primitives, size limit)
type Option func(*Config)

// WithRandom replaces the CSPRNG used for salts and nonces. Only tests should need this.
func WithRandom(r io.Reader) Option {
	return func(cfg *Config) {
		cfg.Rand = r
	}
}

// WithKeyDerivation replaces PBKDF2-HMAC-SHA256. Envelopes sealed with a
// different function are unreadable by every other implementation.
func WithKeyDerivation(fn KeyDerivationFn) Option {
	return func(cfg *Config) {
		cfg.KDF = fn
	}
}

// WithCipher replaces the AES-256-GCM factory.
func WithCipher(fn AEADFactory) Option {
	return func(cfg *Config) {
		cfg.Cipher = fn
	}
}

// WithMaxSize sets the largest plaintext accepted by Encrypt, and the largest
// plaintext an envelope may carry on Decrypt.
func WithMaxSize(size int64) (Option, error) {
	if size < 1 {
		return nil, errors.New("invalid size limit: must be at least 1 byte")
	}
	return func(cfg *Config) {
		cfg.MaxSize = size
	}, nil
}

// WithOverwrite lets DecryptFile replace a file that already exists under the
// stored name. The stored name is not authenticated, so leave this off for
// envelopes from untrusted sources.
func WithOverwrite(overwrite bool) Option {
	return func(cfg *Config) {
		cfg.Overwrite = overwrite
	}
}

// MaxSizeFromEnv reads SizeLimitEnv. It returns DefaultMaxSize when the
// variable is unset or unparseable.
func MaxSizeFromEnv() (int64, error) {
	envLimit, exists := os.LookupEnv(SizeLimitEnv)
	if !exists {
		return DefaultMaxSize, nil
	}
	limit, err := humanize.ParseBytes(envLimit)
	if err != nil || limit == 0 {
		return DefaultMaxSize, nil
	}
	// G115: Prevent integer overflow conversion uint64 -> int64
	if limit > uint64(math.MaxInt64) {
		return 0, fmt.Errorf("%s too large: exceeds int64 max value", SizeLimitEnv)
	}
	return int64(limit), nil
}

func newConfig(opts []Option) (*Config, error) {
	maxSize, err := MaxSizeFromEnv()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Rand:    rand.Reader,
		KDF:     DeriveKeyPBKDF2,
		Cipher:  NewAESGCM,
		MaxSize: maxSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Rand == nil || cfg.KDF == nil || cfg.Cipher == nil {
		return nil, errors.New("invalid options: randomness source, key derivation and cipher are required")
	}
	if cfg.MaxSize < 1 {
		return nil, fmt.Errorf("invalid size limit: %d", cfg.MaxSize)
	}
	return cfg, nil
}

// MaxEnvelopeSize is the largest envelope that can carry a plaintext of
// maxSize bytes with the longest allowed filename. A maxSize of zero or less
// means no limit.
func MaxEnvelopeSize(maxSize int64) int64 {
	limit := maxSize + HeaderSize + MaxFilenameLength + TagSize
	if maxSize <= 0 || limit < maxSize { // overflow
		return math.MaxInt64
	}
	return limit
}

func (c *Config) maxEnvelopeSize() int64 {
	return MaxEnvelopeSize(c.MaxSize)
}
