/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"os"
	"path/filepath"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
)

// readFileLimited opens path (following symlinks) and reads at most limit bytes.
func readFileLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- File path provided by caller, library purpose is file encryption
	if err != nil {
		return nil, crypto.WrapError("open source file", err)
	}
	defer f.Close()
	return readLimited(f, limit)
}

// ReadEnvelopeFile reads the envelope at path, refusing files larger than
// MaxEnvelopeSize(maxSize) without reading them in full.
func ReadEnvelopeFile(path string, maxSize int64) ([]byte, error) {
	return readFileLimited(path, MaxEnvelopeSize(maxSize))
}

// writeFileAtomic writes data to a temporary file next to path (CreateTemp
// uses mode 0600) and renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return crypto.WrapError("create destination file", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crypto.WrapError("write destination file", err)
	}
	if err = tmp.Close(); err != nil {
		return crypto.WrapError("close destination file", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return crypto.WrapError("rename destination file", err)
	}
	return nil
}
