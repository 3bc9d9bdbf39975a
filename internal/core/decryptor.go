/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// decryptor.go: Envelope opening for go-ghostbyte
package core

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
)

// Payload is what a successful decryption yields.
type Payload struct {
	OriginalFilename string
	Plaintext        []byte
}

// Decryptor opens .gbyte envelopes under one password. Safe for concurrent use.
type Decryptor struct {
	password *crypto.SecureBuffer
	cfg      *Config
}

func NewDecryptor(password string, opts ...Option) (*Decryptor, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Decryptor{
		password: crypto.NewSecureBufferFromString(password),
		cfg:      cfg,
	}, nil
}

// Decrypt parses envelope, re-derives the key from its salt and opens the
// ciphertext. A wrong password and a damaged ciphertext both yield
// ErrDecryptionFailed and nothing else.
func (d *Decryptor) Decrypt(ctx context.Context, envelope []byte) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, crypto.Canceled(err)
	}
	if limit := d.cfg.maxEnvelopeSize(); int64(len(envelope)) > limit {
		return nil, crypto.NewEnvelopeError("decrypt", "",
			fmt.Errorf("%w: envelope is %d bytes, limit is %d", crypto.ErrTooLarge, len(envelope), limit))
	}

	env, err := ParseEnvelope(envelope)
	if err != nil {
		return nil, crypto.NewEnvelopeError("parse", "", err)
	}

	var key *Key
	err = d.password.Use(func(pw []byte) error {
		var derr error
		key, derr = deriveKey(ctx, pw, env.Salt, d.cfg)
		return derr
	})
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	if err := ctx.Err(); err != nil {
		return nil, crypto.Canceled(err)
	}

	plaintext, err := key.Open(nil, env.Nonce, env.Ciphertext)
	if err != nil {
		return nil, crypto.NewEnvelopeError("decrypt", "", crypto.ErrDecryptionFailed)
	}

	return &Payload{
		OriginalFilename: validFilename(env.Filename),
		Plaintext:        plaintext,
	}, nil
}

// DecryptStream reads a whole envelope from src, writes the plaintext to dst
// and returns the original filename. Nothing is written unless authentication succeeds.
func (d *Decryptor) DecryptStream(ctx context.Context, src io.Reader, dst io.Writer) (string, error) {
	envelope, err := readLimited(src, d.cfg.maxEnvelopeSize())
	if err != nil {
		return "", crypto.NewEnvelopeError("decrypt", "", err)
	}

	payload, err := d.Decrypt(ctx, envelope)
	if err != nil {
		return "", err
	}

	if _, err := dst.Write(payload.Plaintext); err != nil {
		return "", crypto.WrapError("write plaintext", err)
	}
	return payload.OriginalFilename, nil
}

// DecryptFile opens the envelope at srcPath and writes the plaintext into
// dstDir under the sanitized original filename. It returns the written path.
// An existing file is left alone and the error wraps fs.ErrExist, unless the
// Decryptor was built WithOverwrite(true).
func (d *Decryptor) DecryptFile(ctx context.Context, srcPath, dstDir string) (string, error) {
	envelope, err := readFileLimited(srcPath, d.cfg.maxEnvelopeSize())
	if err != nil {
		return "", crypto.NewEnvelopeError("decrypt", srcPath, err)
	}

	payload, err := d.Decrypt(ctx, envelope)
	if err != nil {
		return "", err
	}

	return WritePayload(dstDir, payload, d.cfg.Overwrite)
}

// WritePayload writes the plaintext into dstDir under SafeFilename of the
// stored name and returns the path. An existing file is replaced only when
// overwrite is set; otherwise the error wraps fs.ErrExist.
func WritePayload(dstDir string, payload *Payload, overwrite bool) (string, error) {
	info, err := os.Stat(dstDir)
	if err != nil {
		return "", crypto.WrapError("stat destination directory", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("destination %s is not a directory", dstDir)
	}

	dstPath := filepath.Join(dstDir, SafeFilename(payload.OriginalFilename))
	if !overwrite {
		if _, err := os.Lstat(dstPath); err == nil {
			return "", fmt.Errorf("%s: %w", dstPath, fs.ErrExist)
		}
	}
	if err := writeFileAtomic(dstPath, payload.Plaintext); err != nil {
		return "", err
	}
	return dstPath, nil
}

// Destroy zeroes the password and unlocks its memory
func (d *Decryptor) Destroy() {
	if d.password != nil {
		d.password.Destroy()
	}
}
