/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// encryptor.go: Envelope sealing for go-ghostbyte
package core

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

// Encryptor seals plaintexts into .gbyte envelopes under one password.
// It keeps no per-call state and is safe for concurrent use.
type Encryptor struct {
	password *crypto.SecureBuffer
	cfg      *Config
}

func NewEncryptor(password string, opts ...Option) (*Encryptor, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Encryptor{
		password: crypto.NewSecureBufferFromString(password),
		cfg:      cfg,
	}, nil
}

// Encrypt derives a key under a fresh salt, seals plaintext under a fresh
// nonce and returns salt || nonce || len || filename || ciphertext.
func (e *Encryptor) Encrypt(ctx context.Context, plaintext []byte, filename string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, crypto.Canceled(err)
	}

	name := validFilename(filename)
	if len(name) > MaxFilenameLength {
		return nil, crypto.NewEnvelopeError("encrypt", "",
			fmt.Errorf("%w: %d bytes, limit is %d", crypto.ErrFilenameTooLong, len(name), MaxFilenameLength))
	}
	if int64(len(plaintext)) > e.cfg.MaxSize {
		return nil, crypto.NewEnvelopeError("encrypt", name,
			fmt.Errorf("%w: %d bytes, limit is %d", crypto.ErrTooLarge, len(plaintext), e.cfg.MaxSize))
	}

	salt, err := GenerateSalt(e.cfg.Rand)
	if err != nil {
		return nil, err
	}
	nonce, err := GenerateNonce(e.cfg.Rand)
	if err != nil {
		return nil, err
	}

	var key *Key
	err = e.password.Use(func(pw []byte) error {
		var derr error
		key, derr = deriveKey(ctx, pw, salt, e.cfg)
		return derr
	})
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	if err := ctx.Err(); err != nil {
		return nil, crypto.Canceled(err)
	}

	out := make([]byte, 0, HeaderSize+len(name)+len(plaintext)+TagSize)
	out, err = appendHeader(out, salt, nonce, name)
	if err != nil {
		return nil, err
	}
	out, err = key.Seal(out, nonce, plaintext)
	if err != nil {
		return nil, crypto.WrapError("seal", err)
	}
	return out, nil
}

// EncryptStream reads all of src (bounded by the size limit), seals it and
// writes the envelope to dst.
func (e *Encryptor) EncryptStream(ctx context.Context, src io.Reader, dst io.Writer, filename string) error {
	plaintext, err := readLimited(src, e.cfg.MaxSize)
	if err != nil {
		return crypto.NewEnvelopeError("encrypt", filename, err)
	}

	envelope, err := e.Encrypt(ctx, plaintext, filename)
	if err != nil {
		return err
	}

	if _, err := dst.Write(envelope); err != nil {
		return crypto.WrapError("write envelope", err)
	}
	return nil
}

// EncryptFile seals the file at srcPath into dstPath. The base name of srcPath
// becomes the filename recorded in the envelope. The source is read in full
// before dstPath is touched, so both may name the same file.
func (e *Encryptor) EncryptFile(ctx context.Context, srcPath, dstPath string) error {
	plaintext, err := readFileLimited(srcPath, e.cfg.MaxSize)
	if err != nil {
		return crypto.NewEnvelopeError("encrypt", srcPath, err)
	}
	defer secure.Zero(plaintext)

	envelope, err := e.Encrypt(ctx, plaintext, filepath.Base(srcPath))
	if err != nil {
		return err
	}
	return writeFileAtomic(dstPath, envelope)
}

// Destroy zeroes the password and unlocks its memory
func (e *Encryptor) Destroy() {
	if e.password != nil {
		e.password.Destroy()
	}
}

// readLimited reads src to EOF, failing with ErrTooLarge past limit bytes.
func readLimited(src io.Reader, limit int64) ([]byte, error) {
	n := limit
	if n < math.MaxInt64 {
		n++
	}
	data, err := io.ReadAll(io.LimitReader(src, n))
	if err != nil {
		return nil, crypto.WrapError("read source stream", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", crypto.ErrTooLarge, limit)
	}
	return data, nil
}
